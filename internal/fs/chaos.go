package fs

import (
	"io"
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	OpenFailRate    float64 // Fail Open/ReadFile
	ReadFailRate    float64 // Fail reads from an opened file
	ReadDirFailRate float64 // Fail ReadDir entirely
	StatFailRate    float64 // Fail Stat/Exists
	WriteFailRate   float64 // Fail WriteFileAtomic
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS and ignores broken
	// paths. Broken paths are not cleared; they are simply not consulted.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection and broken paths.
	ChaosModeInject

	// ChaosModeStickyOnly applies only broken paths. Fault rates are disabled.
	ChaosModeStickyOnly
)

// Chaos wraps an [FS] and injects failures for testing.
//
// Random failures follow [ChaosConfig]. Paths registered with [Chaos.Break]
// fail with the same errno on every access, like a bad sector.
//
// All injected errors are *fs.PathError values wrapping a syscall.Errno, so
// they behave like real filesystem errors. Use [IsInjected] to tell them
// apart.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32

	mu     sync.RWMutex
	broken map[string]syscall.Errno

	openFails    atomic.Int64
	readFails    atomic.Int64
	readDirFails atomic.Int64
	statFails    atomic.Int64
	writeFails   atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// A new Chaos starts in [ChaosModeInject].
func NewChaos(fsys FS, seed int64, config ChaosConfig) *Chaos {
	c := &Chaos{
		fs:     fsys,
		rng:    rand.New(rand.NewSource(seed)),
		config: config,
		broken: make(map[string]syscall.Errno),
	}
	c.SetMode(ChaosModeInject)

	return c
}

// SetMode updates Chaos behavior. Safe to call concurrently with filesystem
// operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Break makes every access to path fail with errno until [Chaos.Repair].
func (c *Chaos) Break(path string, errno syscall.Errno) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.broken[path] = errno
}

// Repair clears a broken path.
func (c *Chaos) Repair(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.broken, path)
}

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	OpenFails    int64
	ReadFails    int64
	ReadDirFails int64
	StatFails    int64
	WriteFails   int64
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		OpenFails:    c.openFails.Load(),
		ReadFails:    c.readFails.Load(),
		ReadDirFails: c.readDirFails.Load(),
		StatFails:    c.statFails.Load(),
		WriteFails:   c.writeFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.OpenFails + s.ReadFails + s.ReadDirFails + s.StatFails + s.WriteFails
}

func (c *Chaos) Open(path string) (io.ReadCloser, error) {
	if err := c.fault("open", path, c.config.OpenFailRate, &c.openFails, syscall.EACCES, syscall.EIO); err != nil {
		return nil, err
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: f, chaos: c, path: path}, nil
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if err := c.fault("read", path, c.config.OpenFailRate, &c.openFails, syscall.EACCES, syscall.EIO); err != nil {
		return nil, err
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if err := c.fault("readdir", path, c.config.ReadDirFailRate, &c.readDirFails, syscall.EACCES, syscall.EIO); err != nil {
		return nil, err
	}

	return c.fs.ReadDir(path)
}

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if err := c.fault("stat", path, c.config.StatFailRate, &c.statFails, syscall.EACCES, syscall.EIO); err != nil {
		return nil, err
	}

	return c.fs.Stat(path)
}

func (c *Chaos) Exists(path string) (bool, error) {
	if err := c.fault("stat", path, c.config.StatFailRate, &c.statFails, syscall.EACCES, syscall.EIO); err != nil {
		return false, err
	}

	return c.fs.Exists(path)
}

// MkdirAll is never faulted directly; only broken paths apply.
func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if err := c.fault("mkdir", path, 0, nil); err != nil {
		return err
	}

	return c.fs.MkdirAll(path, perm)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := c.fault("write", path, c.config.WriteFailRate, &c.writeFails, syscall.EIO, syscall.ENOSPC, syscall.EROFS); err != nil {
		return err
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// fault returns an injected error for op on path, or nil to let the call
// through. Broken paths win over random injection.
func (c *Chaos) fault(op, path string, rate float64, counter *atomic.Int64, errs ...syscall.Errno) error {
	mode := ChaosMode(c.mode.Load())
	if mode == ChaosModePassthrough {
		return nil
	}

	c.mu.RLock()
	errno, isBroken := c.broken[path]
	c.mu.RUnlock()

	if isBroken {
		if counter != nil {
			counter.Add(1)
		}

		return pathError(op, path, errno)
	}

	if mode != ChaosModeInject || len(errs) == 0 || !c.roll(rate) {
		return nil
	}

	counter.Add(1)

	return pathError(op, path, errs[c.randIntn(len(errs))])
}

// roll returns true with the given probability (thread-safe).
func (c *Chaos) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}

	c.mu.Lock()
	result := c.rng.Float64()
	c.mu.Unlock()

	return result < rate
}

// randIntn returns a random int in [0, n) (thread-safe).
func (c *Chaos) randIntn(n int) int {
	c.mu.Lock()
	result := c.rng.Intn(n)
	c.mu.Unlock()

	return result
}

// pathError creates an *fs.PathError with the given operation, path, and errno.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &fs.PathError{Op: op, Path: path, Err: errno}
	markInjected(pe)

	return pe
}

// chaosFile fails reads mid-stream according to ReadFailRate.
type chaosFile struct {
	f     io.ReadCloser
	chaos *Chaos
	path  string
}

func (cf *chaosFile) Read(p []byte) (int, error) {
	if err := cf.chaos.fault("read", cf.path, cf.chaos.config.ReadFailRate, &cf.chaos.readFails, syscall.EIO); err != nil {
		return 0, err
	}

	return cf.f.Read(p)
}

func (cf *chaosFile) Close() error {
	return cf.f.Close()
}
