package services

import (
	"io"
	"sync"
)

// ProgressFunc receives the aggregate upload progress of a batch as a
// percentage in [0,100].
type ProgressFunc func(percent int)

// progressTracker folds the byte-level progress of every file in a batch
// into one percentage. Totals are precomputed from the input file sizes;
// per-file completion snaps that file to its full size so missed events
// (or re-encoding shrinking the stream) cannot strand the aggregate below
// 100.
type progressTracker struct {
	mu     sync.Mutex
	sizes  []int64
	sent   []int64
	total  int64
	last   int
	report ProgressFunc
}

func newProgressTracker(sizes []int64, report ProgressFunc) *progressTracker {
	t := &progressTracker{
		sizes:  sizes,
		sent:   make([]int64, len(sizes)),
		last:   -1,
		report: report,
	}
	for _, s := range sizes {
		t.total += s
	}
	return t
}

func (t *progressTracker) add(idx int, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[idx] += n
	if t.sent[idx] > t.sizes[idx] {
		t.sent[idx] = t.sizes[idx]
	}
	t.flushLocked()
}

func (t *progressTracker) complete(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[idx] = t.sizes[idx]
	t.flushLocked()
}

func (t *progressTracker) flushLocked() {
	if t.report == nil || t.total == 0 {
		return
	}
	var sum int64
	for _, s := range t.sent {
		sum += s
	}
	pct := int(sum * 100 / t.total)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct != t.last {
		t.last = pct
		t.report(pct)
	}
}

// progressReader reports bytes handed to the uploader as they are read.
type progressReader struct {
	r       io.Reader
	idx     int
	tracker *progressTracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.tracker.add(p.idx, int64(n))
	}
	return n, err
}
