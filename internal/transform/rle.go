package transform

import "errors"

// ErrRLECorrupted indicates run-length data with a dangling count
// byte or a zero-length run.
var ErrRLECorrupted = errors.New("transform: corrupted run-length data")

// maxRun is the longest run a single (count, value) token can carry.
const maxRun = 255

// RLEEncode replaces maximal runs of identical bytes with
// (count, value) pairs. Runs longer than 255 are split across
// multiple tokens. An empty input yields an empty output.
func RLEEncode(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}

	// Worst case doubles the input (all runs of length 1).
	dst := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		val := src[i]
		run := 1
		for i+run < len(src) && src[i+run] == val && run < maxRun {
			run++
		}
		dst = append(dst, byte(run), val)
		i += run
	}
	return dst
}

// RLEDecode expands (count, value) pairs back into the original byte
// sequence.
func RLEDecode(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	if len(src)%2 != 0 {
		return nil, ErrRLECorrupted
	}

	// Each token expands to at least one byte.
	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); i += 2 {
		run := int(src[i])
		if run == 0 {
			return nil, ErrRLECorrupted
		}
		val := src[i+1]
		for j := 0; j < run; j++ {
			dst = append(dst, val)
		}
	}
	return dst, nil
}
