// Package diag renders validation results for people: one line per
// diagnostic with its path and code, and an inline character diff
// where a comparison failed.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/eure-format/go-eure/validate"
)

type Colors struct {
	Path    func(string, ...any) string
	Code    func(string, ...any) string
	Error   func(string, ...any) string
	Warn    func(string, ...any) string
	Insert  func(string, ...any) string
	Delete  func(string, ...any) string
	Default func(string, ...any) string
}

func NewColors() *Colors {
	c := &Colors{
		Path:    color.RGB(128, 168, 196).SprintfFunc(),
		Code:    color.RGB(196, 96, 16).SprintfFunc(),
		Error:   color.RedString,
		Warn:    color.YellowString,
		Insert:  color.RGB(8, 196, 16).SprintfFunc(),
		Delete:  color.RGB(196, 16, 8).SprintfFunc(),
		Default: func(v string, _ ...any) string { return v },
	}
	for _, f := range []*func(string, ...any) string{&c.Path, &c.Code, &c.Error, &c.Warn, &c.Insert, &c.Delete} {
		g := *f
		*f = func(v string, _ ...any) string {
			return g(strings.Replace(v, "%", "%%", -1))
		}
	}
	return c
}

func NoColors() *Colors {
	id := func(v string, _ ...any) string { return v }
	return &Colors{Path: id, Code: id, Error: id, Warn: id, Insert: id, Delete: id, Default: id}
}

type Renderer struct {
	w      io.Writer
	colors *Colors
}

// NewRenderer colors its output when w is a terminal.
func NewRenderer(w io.Writer) *Renderer {
	colors := NoColors()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		colors = NewColors()
	}
	return &Renderer{w: w, colors: colors}
}

func NewRendererColors(w io.Writer, colors *Colors) *Renderer {
	return &Renderer{w: w, colors: colors}
}

// Result writes every diagnostic, errors before warnings.
func (r *Renderer) Result(res *validate.Result) error {
	for _, e := range res.Errors {
		if err := r.Error(e); err != nil {
			return err
		}
	}
	for _, w := range res.Warnings {
		if _, err := fmt.Fprintf(r.w, "%s %s: %s: %s\n",
			r.colors.Warn("warning"), r.colors.Path(w.Path.String()),
			r.colors.Code(string(w.Code)), w.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Error(e validate.Error) error {
	if _, err := fmt.Fprintf(r.w, "%s %s: %s: %s\n",
		r.colors.Error("error"), r.colors.Path(e.Path.String()),
		r.colors.Code(string(e.Code)), e.Message); err != nil {
		return err
	}
	if e.Expected != "" && e.Actual != "" && e.Expected != e.Actual {
		if _, err := fmt.Fprintf(r.w, "    %s\n", r.Diff(e.Expected, e.Actual)); err != nil {
			return err
		}
	}
	return nil
}

// Diff renders expected against actual as one line: dropped runs
// struck from expected, inserted runs from actual.
func (r *Renderer) Diff(expected, actual string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	b := &strings.Builder{}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			b.WriteString(r.colors.Delete("-" + d.Text))
		case diffpatch.DiffInsert:
			b.WriteString(r.colors.Insert("+" + d.Text))
		default:
			b.WriteString(r.colors.Default(d.Text))
		}
	}
	return b.String()
}
