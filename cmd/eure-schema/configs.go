package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/eure-format/go-eure/codec"
	"github.com/eure-format/go-eure/ir"
)

type Format int

const (
	AutoFormat Format = iota
	JSONFormat
	YAMLFormat
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "j":
		return JSONFormat, nil
	case "yaml", "y":
		return YAMLFormat, nil
	}
	return AutoFormat, fmt.Errorf("unknown format %q", s)
}

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) outOpt(_ *cli.Context, v string) (any, error) {
	cfg.Out = v
	return v, nil
}

func (cfg *MainConfig) inFormat(path string) Format {
	switch {
	case cfg.InFormat != nil:
		return *cfg.InFormat
	case cfg.J:
		return JSONFormat
	case cfg.Y:
		return YAMLFormat
	}
	return formatOf(path)
}

func (cfg *MainConfig) outFormat() Format {
	switch {
	case cfg.OutFormat != nil:
		return *cfg.OutFormat
	case cfg.J:
		return JSONFormat
	case cfg.Y:
		return YAMLFormat
	}
	return formatOf(cfg.Out)
}

func formatOf(path string) Format {
	switch {
	case strings.HasSuffix(path, ".json"):
		return JSONFormat
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return YAMLFormat
	}
	return AutoFormat
}

// loadValue reads one document from path, "-" meaning stdin. With no
// explicit format, the extension decides, then a leading '{' means
// JSON.
func loadValue(cfg *MainConfig, path string) (ir.Value, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ir.Value{}, err
	}
	fmat := cfg.inFormat(path)
	if fmat == AutoFormat {
		if t := bytes.TrimLeft(data, " \t\r\n"); len(t) > 0 && (t[0] == '{' || t[0] == '[') {
			fmat = JSONFormat
		} else {
			fmat = YAMLFormat
		}
	}
	if fmat == JSONFormat {
		return codec.DecodeJSON(bytes.NewReader(data))
	}
	return codec.DecodeYAML(data)
}

func (cfg *MainConfig) output(cc *cli.Context) (io.Writer, error) {
	if cfg.Out == "" {
		return cc.Out, nil
	}
	f, err := os.Create(cfg.Out)
	if err != nil {
		return nil, err
	}
	cfg.CloseOut = f.Close
	return f, nil
}

func writeValue(cfg *MainConfig, w io.Writer, v ir.Value) error {
	if cfg.outFormat() == JSONFormat {
		if err := codec.EncodeJSON(w, v); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	data, err := codec.EncodeYAML(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type ExtractConfig struct {
	*MainConfig

	Strict bool `cli:"name=strict desc='reject documents that are not pure schemas'"`

	Extract *cli.Command
}

type ValidateConfig struct {
	*MainConfig

	Lenient bool `cli:"name=lenient desc='infer union variants when tags are absent'"`
	Depth   int  `cli:"name=depth desc='maximum nesting depth'"`

	Validate *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Check *cli.Command
}
