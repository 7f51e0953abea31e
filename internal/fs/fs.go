// Package fs provides the filesystem seam used by the scanner and the export
// command.
//
// The main types are:
//   - [FS]: interface for the operations todoscan performs
//   - [Real]: production implementation using the [os] package
//   - [Chaos]: testing implementation that injects read failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.Open("src/main.go")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	items, err := parser.ParseReader(f, "src/main.go")
package fs

import (
	"io"
	"os"
)

// FS defines the filesystem operations needed to walk a source tree and
// write export files.
//
// All read methods mirror their [os] package equivalents so errors keep
// working with [errors.Is] and [os.IsNotExist].
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// WriteFileAtomic writes data to path via temp file + rename, so readers
	// never observe a half-written export.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
}

// Compile-time interface checks.
var (
	_ FS = (*Real)(nil)
	_ FS = (*Chaos)(nil)
)
