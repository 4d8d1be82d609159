// internal/satellite/stack.go
package satellite

import (
	"errors"
	"fmt"
)

// ErrStackOverflow is the fault raised when a checkpoint lands below the
// stack limit.
var ErrStackOverflow = errors.New("satellite: stack overflow")

// StackProbe reports the stack pointer at a given call depth.
type StackProbe interface {
	// SP returns the stack address at depth (1 = loop entry).
	SP(depth int) uint32
	// Limit is the lowest legal stack address.
	Limit() uint32
}

// SimStack is a descending stack of fixed-size frames.
//
//	SP(depth) = Top - depth*Frame
type SimStack struct {
	Top   uint32
	Frame uint32
	Floor uint32
}

// DefaultStack matches an 8 KiB RTC slow memory block with the stack
// growing down from its end.
var DefaultStack = SimStack{
	Top:   0x50002000,
	Frame: 0x20,
	Floor: 0x50001C00,
}

func (s SimStack) SP(depth int) uint32 {
	used := uint64(depth) * uint64(s.Frame)
	if used >= uint64(s.Top) {
		return 0
	}
	return s.Top - uint32(used)
}

func (s SimStack) Limit() uint32 { return s.Floor }

// checkpoint records the stack watermark and traps on overflow.
func (sat *Satellite) checkpoint(depth int) {
	sp := sat.stack.SP(depth)
	if sp != 0 {
		sat.view.CheckpointStack(sp)
	}
	if sp < sat.stack.Limit() {
		panic(fmt.Errorf("%w: sp=%#x limit=%#x", ErrStackOverflow, sp, sat.stack.Limit()))
	}
}
