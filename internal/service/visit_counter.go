package service

import "sync/atomic"

// VisitCounter counts health-check visits for the lifetime of the process.
type VisitCounter struct {
	n atomic.Int64
}

// Visit records one visit and returns the new total.
func (v *VisitCounter) Visit() int64 {
	return v.n.Add(1)
}

func (v *VisitCounter) Count() int64 {
	return v.n.Load()
}
