package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eure-format/go-eure/ir/epath"
	"github.com/eure-format/go-eure/validate"
)

func TestRenderResult(t *testing.T) {
	res := &validate.Result{
		Errors: []validate.Error{{
			Path:     epath.Path{epath.Ident("version")},
			Code:     validate.CodeLiteralMismatch,
			Message:  `expected exactly "v2"`,
			Expected: `"v2"`,
			Actual:   `"v3"`,
		}},
		Warnings: []validate.Warning{{
			Path:    epath.Path{epath.Ident("old")},
			Code:    validate.CodeDeprecated,
			Message: "deprecated",
		}},
	}
	var buf bytes.Buffer
	r := NewRendererColors(&buf, NoColors())
	if err := r.Result(res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"error version: literal_mismatch",
		"warning old: deprecated",
		"-2", "+3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiffPercentLiterals(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererColors(&buf, NoColors())
	got := r.Diff("100%", "50%")
	if !strings.Contains(got, "%") {
		t.Errorf("percent mangled: %q", got)
	}
}
