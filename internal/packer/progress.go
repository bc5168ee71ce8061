package packer

import "sync"

// ProgressFunc receives a completion percentage in [0,100]. Calls are
// monotonic non-decreasing over the life of one pack or unpack.
type ProgressFunc func(percent int)

// tracker turns per-chunk completions into monotonic percent
// callbacks. The total may grow mid-operation (label chunk counts are
// only known once the label sub-header is read); the monotonic guard
// keeps reported percentages from moving backwards when it does.
type tracker struct {
	fn ProgressFunc

	mu        sync.Mutex
	total     int
	completed int
	last      int
}

func newTracker(total int, fn ProgressFunc) *tracker {
	return &tracker{fn: fn, total: total, last: -1}
}

// addTotal raises the expected chunk count.
func (t *tracker) addTotal(n int) {
	if t == nil || t.fn == nil {
		return
	}
	t.mu.Lock()
	t.total += n
	t.mu.Unlock()
}

// chunkDone records one finished chunk and reports progress.
func (t *tracker) chunkDone() {
	if t == nil || t.fn == nil {
		return
	}
	t.mu.Lock()
	t.completed++
	pct := 0
	if t.total > 0 {
		pct = t.completed * 100 / t.total
	}
	report := pct > t.last
	if report {
		t.last = pct
	}
	t.mu.Unlock()

	if report {
		t.fn(pct)
	}
}
