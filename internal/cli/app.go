package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"

	"github.com/calvinalkan/todoscan/internal/config"
	"github.com/calvinalkan/todoscan/internal/fs"
	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/scan"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// app is the resolved state shared by all commands of one invocation.
type app struct {
	cfg     config.Config
	reg     *priority.Registry
	fs      fs.FS
	scanner *scan.Scanner
	in      io.Reader
	out     io.Writer
	now     func() time.Time

	// renderer paints priority labels; nil when color is off.
	renderer *lipgloss.Renderer

	// historyPath is where the shell keeps its line history; "" disables it.
	historyPath string
}

func newApp(cfg config.Config, fsys fs.FS, in io.Reader, out io.Writer, env map[string]string, noColor bool) (*app, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		reg: reg,
		fs:  fsys,
		in:  in,
		out: out,
		now: time.Now,

		renderer:    newRenderer(out, !noColor && env["NO_COLOR"] == "" && isTerminal(out)),
		historyPath: historyPath(env),
	}

	opts := cfg.ScanOptions()
	opts.DisplayPath = a.relative
	a.scanner = scan.New(fsys, todo.NewParser(cfg.ParserConfig()), opts)

	return a, nil
}

func historyPath(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".todoscan_history")
	}

	return ""
}

func (a *app) commands() []*Command {
	return []*Command{
		LsCmd(a),
		StatsCmd(a),
		ExportCmd(a),
		IssuesCmd(a),
		ShellCmd(a),
		PrintConfigCmd(a),
	}
}

func (a *app) today() civil.Date {
	return civil.DateOf(a.now())
}

// resolve makes a user-supplied path absolute against the effective cwd.
func (a *app) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(a.cfg.EffectiveCwd, path)
}

// relative renders path relative to the effective cwd when it lies below it.
func (a *app) relative(path string) string {
	rel, err := filepath.Rel(a.cfg.EffectiveCwd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}

	return rel
}

// scanItems scans roots (default: the effective cwd) and returns every item
// found. Item file paths are relative to the cwd. Unreadable paths become
// warnings. A cancelled scan yields its partial items plus a warning.
func (a *app) scanItems(ctx context.Context, o *IO, roots []string) ([]todo.Item, error) {
	if len(roots) == 0 {
		roots = []string{a.cfg.EffectiveCwd}
	}

	abs := make([]string, len(roots))
	for i, root := range roots {
		abs[i] = a.resolve(root)
	}

	results, err := a.scanner.Scan(ctx, abs)

	for _, r := range scan.Failed(results) {
		o.Warn(a.relative(r.Path), r.Err.Error())
	}

	switch {
	case errors.Is(err, context.Canceled):
		o.Warn(fmt.Sprintf("scan interrupted after %d files", len(results)), "results are partial, re-run to scan everything")
	case err != nil:
		return nil, err
	}

	return scan.Items(results), nil
}
