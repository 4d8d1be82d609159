// internal/region/region.go
package region

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// Region is the Shared State Region: a fixed block of bytes that the host
// and the satellite read and write without arbitration.
//
// Every field is one naturally aligned word and is accessed with a single
// atomic load or store. That is the only atomicity the region offers:
// there is no multi-field update, and readers must treat reading.state as
// the sole synchronization signal.
//
// Fields are stored in native byte order, which is little-endian on every
// target this module builds for.
//
// A Region lives as long as both domains. It is never resized.
type Region struct {
	buf     []byte
	closeFn func() error
}

// New allocates a zero-initialized in-process region.
func New() *Region {
	// uint64 backing guarantees 8-byte alignment for the float64 words.
	words := make([]uint64, Size/8)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), Size)
	return &Region{buf: buf}
}

// wrap adopts an externally provided buffer (e.g. a file mapping).
func wrap(buf []byte, closeFn func() error) (*Region, error) {
	if len(buf) < Size {
		return nil, fmt.Errorf("region: buffer too small: got=%d want>=%d", len(buf), Size)
	}
	if uintptr(unsafe.Pointer(&buf[0]))%8 != 0 {
		return nil, errors.New("region: buffer not 8-byte aligned")
	}
	return &Region{buf: buf[:Size], closeFn: closeFn}, nil
}

// Close releases the backing storage if it is externally owned.
func (r *Region) Close() error {
	if r == nil || r.closeFn == nil {
		return nil
	}
	fn := r.closeFn
	r.closeFn = nil
	return fn()
}

// Zero clears every field, as the loader does when it places a new image.
func (r *Region) Zero() {
	for off := 0; off < Size; off += 8 {
		atomic.StoreUint64(r.u64(off), 0)
	}
}

// Host returns the host-side view.
func (r *Region) Host() HostView { return HostView{r: r} }

// Satellite returns the satellite-side view.
func (r *Region) Satellite() SatelliteView { return SatelliteView{r: r} }

// CrashLine returns the write-only view used by the crash interrupt handler.
func (r *Region) CrashLine() CrashLine { return CrashLine{r: r} }

// ---- raw word access ----

func (r *Region) u32(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&r.buf[off]))
}

func (r *Region) u64(off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&r.buf[off]))
}

func (r *Region) loadU32(off int) uint32 { return atomic.LoadUint32(r.u32(off)) }

func (r *Region) storeU32(off int, v uint32) { atomic.StoreUint32(r.u32(off), v) }

func (r *Region) loadF64(off int) float64 {
	return math.Float64frombits(atomic.LoadUint64(r.u64(off)))
}

func (r *Region) storeF64(off int, v float64) {
	atomic.StoreUint64(r.u64(off), math.Float64bits(v))
}

func (r *Region) state() State { return State(r.loadU32(OffReadingState)) }

func (r *Region) casState(from, to State) bool {
	return atomic.CompareAndSwapUint32(r.u32(OffReadingState), uint32(from), uint32(to))
}

func historyOffset(i int) int { return OffHistory + i*historyStride }
