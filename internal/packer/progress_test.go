package packer

import "testing"

func TestTracker_Monotonic(t *testing.T) {
	var reported []int
	tr := newTracker(8, func(pct int) { reported = append(reported, pct) })

	for i := 0; i < 8; i++ {
		tr.chunkDone()
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress not strictly increasing: %v", reported)
		}
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestTracker_GrowingTotal(t *testing.T) {
	var reported []int
	tr := newTracker(4, func(pct int) { reported = append(reported, pct) })

	// Finish the initial chunks, then learn about four more. The
	// percentage would fall from 100 to 50; the guard must hold it.
	for i := 0; i < 4; i++ {
		tr.chunkDone()
	}
	tr.addTotal(4)
	for i := 0; i < 4; i++ {
		tr.chunkDone()
	}

	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress moved backwards: %v", reported)
		}
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestTracker_NilSafe(t *testing.T) {
	tr := newTracker(4, nil)
	tr.addTotal(2)
	tr.chunkDone() // must not panic
}
