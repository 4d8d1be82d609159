// internal/satellite/loader.go
package satellite

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Loader is the satellite image collaborator.
// The host treats any error from it as fatal to cold boot.
type Loader interface {
	Load(image []byte) (Handle, error)
	SetTickPeriod(h Handle, us uint32) error
	Start(h Handle) error
}

// Handle identifies a loaded image.
type Handle struct {
	id    uint32
	entry uint32
}

// Entry returns the image entry point.
func (h Handle) Entry() uint32 { return h.entry }

// Loader errors.
var (
	ErrBadImage       = errors.New("satellite loader: bad image")
	ErrUnknownHandle  = errors.New("satellite loader: unknown handle")
	ErrAlreadyStarted = errors.New("satellite loader: already started")
	ErrNoTickPeriod   = errors.New("satellite loader: tick period not set")
)

// ---- IMAGE FORMAT ----
//
// Layout (16 bytes header, little-endian):
// 0–3   Magic "ULPI"
// 4–5   Version (1)
// 6–7   Reserved (0)
// 8–11  Entry address
// 12–15 Body length
// 16+   Body

const (
	imageHeaderLen = 16
	imageVersion   = 1
)

var imageMagic = [4]byte{'U', 'L', 'P', 'I'}

// BuildImage assembles a loadable image.
func BuildImage(entry uint32, body []byte) []byte {
	out := make([]byte, imageHeaderLen+len(body))
	copy(out[0:4], imageMagic[:])
	binary.LittleEndian.PutUint16(out[4:6], imageVersion)
	binary.LittleEndian.PutUint32(out[8:12], entry)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(body)))
	copy(out[imageHeaderLen:], body)
	return out
}

// DefaultImage is used when no image file is configured.
func DefaultImage() []byte {
	return BuildImage(0x50000000, []byte("sensor"))
}

func parseImage(image []byte) (entry uint32, err error) {
	if len(image) < imageHeaderLen {
		return 0, fmt.Errorf("%w: short header (%d bytes)", ErrBadImage, len(image))
	}
	if [4]byte(image[0:4]) != imageMagic {
		return 0, fmt.Errorf("%w: magic mismatch", ErrBadImage)
	}
	if v := binary.LittleEndian.Uint16(image[4:6]); v != imageVersion {
		return 0, fmt.Errorf("%w: version %d", ErrBadImage, v)
	}
	bodyLen := binary.LittleEndian.Uint32(image[12:16])
	if uint64(len(image)-imageHeaderLen) < uint64(bodyLen) {
		return 0, fmt.Errorf("%w: body shorter than declared length", ErrBadImage)
	}
	return binary.LittleEndian.Uint32(image[8:12]), nil
}

// ---- SIMULATED LOADER ----

// Factory builds the satellite program for a freshly loaded image.
type Factory func() (*Satellite, error)

// SimLoader places images by building an in-process Satellite and runs it
// on its own goroutine once started.
type SimLoader struct {
	ctx     context.Context
	factory Factory
	zero    func()

	mu      sync.Mutex
	nextID  uint32
	loaded  map[uint32]*Satellite
	started map[uint32]bool

	wg sync.WaitGroup
}

// NewSimLoader returns a loader whose satellites run until ctx ends.
// zero is called on every load to zero-initialize shared memory; it may be nil.
func NewSimLoader(ctx context.Context, factory Factory, zero func()) *SimLoader {
	return &SimLoader{
		ctx:     ctx,
		factory: factory,
		zero:    zero,
		loaded:  make(map[uint32]*Satellite),
		started: make(map[uint32]bool),
	}
}

func (l *SimLoader) Load(image []byte) (Handle, error) {
	entry, err := parseImage(image)
	if err != nil {
		return Handle{}, err
	}

	if l.zero != nil {
		l.zero()
	}

	sat, err := l.factory()
	if err != nil {
		return Handle{}, fmt.Errorf("satellite loader: build: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.loaded[l.nextID] = sat
	return Handle{id: l.nextID, entry: entry}, nil
}

func (l *SimLoader) SetTickPeriod(h Handle, us uint32) error {
	sat, err := l.lookup(h)
	if err != nil {
		return err
	}
	sat.SetPeriod(time.Duration(us) * time.Microsecond)
	return nil
}

func (l *SimLoader) Start(h Handle) error {
	sat, err := l.lookup(h)
	if err != nil {
		return err
	}
	if sat.Period() <= 0 {
		return ErrNoTickPeriod
	}

	l.mu.Lock()
	if l.started[h.id] {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started[h.id] = true
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		_ = sat.Run(l.ctx)
	}()
	return nil
}

// Satellite returns the program behind h.
func (l *SimLoader) Satellite(h Handle) (*Satellite, error) {
	return l.lookup(h)
}

// Wait blocks until every started satellite has returned.
func (l *SimLoader) Wait() { l.wg.Wait() }

func (l *SimLoader) lookup(h Handle) (*Satellite, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sat, ok := l.loaded[h.id]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return sat, nil
}
