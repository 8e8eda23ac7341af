package comm

import "sync/atomic"

// CycleSequence hands out 16 bit transaction ids in [min, max], wrapping
// around after max.
type CycleSequence struct {
	min, max uint16
	next     uint32
}

func NewCycleSequence(min, max uint16) *CycleSequence {
	if max < min {
		min, max = max, min
	}
	return &CycleSequence{min: min, max: max}
}

func (s *CycleSequence) NextVal() uint16 {
	span := uint32(s.max-s.min) + 1
	n := atomic.AddUint32(&s.next, 1) - 1
	return s.min + uint16(n%span)
}
