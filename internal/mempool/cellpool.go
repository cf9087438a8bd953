// Package mempool pools the cell buffers of the rasters built while merging
// polygons, so concurrent page workers do not reallocate them per region.
package mempool

import "sync"

// cellPools maps a size class to the *sync.Pool holding buffers of that class.
var cellPools sync.Map

// sizeClass rounds n up to a multiple of 1024 cells, with 1024 as minimum.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func poolFor(cls int) *sync.Pool {
	if p, ok := cellPools.Load(cls); ok {
		if pool, ok := p.(*sync.Pool); ok {
			return pool
		}
	}
	p, _ := cellPools.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]bool, cls)
		return &buf
	}})
	pool, _ := p.(*sync.Pool)
	return pool
}

// GetCells returns a zeroed buffer of n cells. Return it with PutCells.
func GetCells(n int) []bool {
	if n < 0 {
		n = 0
	}
	cls := sizeClass(n)
	var buf []bool
	if bp, ok := poolFor(cls).Get().(*[]bool); ok && cap(*bp) >= cls {
		buf = (*bp)[:n]
		clear(buf)
	} else {
		buf = make([]bool, n, cls)
	}
	return buf
}

// PutCells hands buf back for reuse. Nil buffers and buffers not obtained
// from GetCells are ignored.
func PutCells(buf []bool) {
	c := cap(buf)
	if c == 0 || sizeClass(c) != c {
		return
	}
	full := buf[:c]
	poolFor(c).Put(&full)
}
