// Package scan discovers source files under a set of roots and parses them
// for marker comments in parallel.
//
// Files are parsed independently and their results collected in discovery
// order. Cancellation is checked between files: a cancelled scan returns
// the results of every file already parsed together with the context error.
package scan

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/todoscan/internal/fs"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Result holds the outcome of scanning a single path.
//
// Err is set when the path could not be read. A directory that could not be
// listed also produces a Result with Err and no items.
type Result struct {
	Path  string
	Items []todo.Item
	Err   error
}

// Options configures a [Scanner].
type Options struct {
	// Extensions lists file extensions (without the dot) picked up while
	// walking directories. Matching is case-insensitive. Empty means every
	// regular file. Files named explicitly as roots are always scanned.
	Extensions []string
	// ExcludeDirs lists directory base names that are never descended into.
	ExcludeDirs []string
	// Workers bounds parse concurrency. Zero or less means runtime.NumCPU().
	Workers int
	// DisplayPath maps a file path to the FilePath recorded on its items.
	// Nil records the path as given.
	DisplayPath func(path string) string
}

// Scanner walks roots and parses files. A Scanner is safe for concurrent use.
type Scanner struct {
	fs      fs.FS
	parser  *todo.Parser
	exts    map[string]bool
	exclude map[string]bool
	workers int
	display func(string) string
}

// New returns a Scanner reading through fsys and parsing with parser.
func New(fsys fs.FS, parser *todo.Parser, opts Options) *Scanner {
	s := &Scanner{
		fs:      fsys,
		parser:  parser,
		exts:    make(map[string]bool, len(opts.Extensions)),
		exclude: make(map[string]bool, len(opts.ExcludeDirs)),
		workers: opts.Workers,
		display: opts.DisplayPath,
	}

	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			s.exts[ext] = true
		}
	}

	for _, dir := range opts.ExcludeDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			s.exclude[dir] = true
		}
	}

	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}

	if s.display == nil {
		s.display = func(path string) string { return path }
	}

	return s
}

// job is one discovered path. A job with err set is reported as-is.
type job struct {
	path string
	err  error
}

// Discover walks roots and returns the files a scan would parse, in
// discovery order: roots in the given order, directory entries sorted by
// name, depth first. Paths reachable from several roots appear once.
// Unreadable roots and directories are returned as failed results.
func (s *Scanner) Discover(ctx context.Context, roots []string) ([]string, []Result, error) {
	jobs, err := s.discover(ctx, roots)

	var (
		files  []string
		failed []Result
	)

	for _, j := range jobs {
		if j.err != nil {
			failed = append(failed, Result{Path: j.path, Err: j.err})

			continue
		}

		files = append(files, j.path)
	}

	return files, failed, err
}

// Scan discovers and parses every file under roots.
//
// Returns one Result per discovered file (and per unreadable directory) in
// discovery order. Per-file failures never abort the scan. If ctx is
// cancelled, Scan stops starting new files and returns the results gathered
// so far with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]Result, error) {
	jobs, err := s.discover(ctx, roots)
	if err != nil {
		return failedJobs(jobs), err
	}

	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))

	var group errgroup.Group
	group.SetLimit(s.workers)

	for i, j := range jobs {
		if ctx.Err() != nil {
			break
		}

		if j.err != nil {
			results[i] = Result{Path: j.path, Err: j.err}
			done[i] = true

			continue
		}

		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			results[i] = s.ScanFile(j.path)
			done[i] = true

			return nil
		})
	}

	_ = group.Wait()

	var out []Result

	for i := range results {
		if done[i] {
			out = append(out, results[i])
		}
	}

	if ctx.Err() != nil {
		return out, ctx.Err()
	}

	return out, nil
}

// ScanFile parses a single file. Items carry the display path of path.
func (s *Scanner) ScanFile(path string) Result {
	f, err := s.fs.Open(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	defer func() { _ = f.Close() }()

	items, err := s.parser.ParseReader(f, s.display(path))
	if err != nil {
		return Result{Path: path, Items: items, Err: err}
	}

	return Result{Path: path, Items: items}
}

func (s *Scanner) discover(ctx context.Context, roots []string) ([]job, error) {
	var jobs []job

	seen := make(map[string]bool)

	add := func(j job) {
		if seen[j.path] {
			return
		}

		seen[j.path] = true
		jobs = append(jobs, j)
	}

	var walk func(dir string) error

	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			add(job{path: dir, err: err})

			return nil
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				if s.exclude[entry.Name()] {
					continue
				}

				if err := walk(path); err != nil {
					return err
				}

				continue
			}

			if entry.Type().IsRegular() && s.wantFile(entry.Name()) {
				add(job{path: path})
			}
		}

		return nil
	}

	for _, root := range roots {
		root = filepath.Clean(root)

		info, err := s.fs.Stat(root)
		if err != nil {
			add(job{path: root, err: err})

			continue
		}

		if !info.IsDir() {
			add(job{path: root})

			continue
		}

		if err := walk(root); err != nil {
			return jobs, err
		}
	}

	return jobs, nil
}

func (s *Scanner) wantFile(name string) bool {
	if len(s.exts) == 0 {
		return true
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	return ext != "" && s.exts[ext]
}

func failedJobs(jobs []job) []Result {
	var out []Result

	for _, j := range jobs {
		if j.err != nil {
			out = append(out, Result{Path: j.path, Err: j.err})
		}
	}

	return out
}

// Items flattens results into one item list, in result order.
func Items(results []Result) []todo.Item {
	items := make([]todo.Item, 0, len(results))

	for _, r := range results {
		items = append(items, r.Items...)
	}

	return items
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	return slices.DeleteFunc(slices.Clone(results), func(r Result) bool { return r.Err == nil })
}
