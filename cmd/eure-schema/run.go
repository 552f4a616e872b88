package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/eure-format/go-eure/diag"
	"github.com/eure-format/go-eure/ir"
	"github.com/eure-format/go-eure/schema"
	"github.com/eure-format/go-eure/validate"
)

func extractRun(cfg *ExtractConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Extract.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: extract takes exactly one file", cli.ErrUsage)
	}
	v, err := loadValue(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	sch, pure, err := schema.Extract(ir.FromValue(v))
	if err != nil {
		return err
	}
	if cfg.Strict && !pure {
		return fmt.Errorf("%s carries data alongside its schema", args[0])
	}
	w, err := cfg.output(cc)
	if err != nil {
		return err
	}
	return writeValue(cfg.MainConfig, w, schema.Export(sch))
}

func validateRun(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("%w: validate needs a schema file", cli.ErrUsage)
	}
	sv, err := loadValue(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	sch, _, err := schema.Extract(ir.FromValue(sv))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	opts := &validate.Options{MaxDepth: cfg.Depth}
	if cfg.Lenient {
		opts.TagMode = validate.Lenient
	}
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	r := diag.NewRenderer(cc.Out)
	failed := 0
	for _, file := range files {
		dv, err := loadValue(cfg.MainConfig, file)
		if err != nil {
			return err
		}
		res, err := validate.Document(ir.FromValue(dv), sch, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := r.Result(res); err != nil {
			return err
		}
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed validation", failed, len(files))
	}
	return nil
}

func checkRun(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: check takes exactly one file", cli.ErrUsage)
	}
	v, err := loadValue(cfg.MainConfig, args[0])
	if err != nil {
		return err
	}
	sch, pure, err := schema.Extract(ir.FromValue(v))
	if err != nil {
		return err
	}
	w, err := cfg.output(cc)
	if err != nil {
		return err
	}
	kind := "self-describing document"
	if pure {
		kind = "pure schema"
	}
	fmt.Fprintf(w, "%s: %s, %d nodes\n", args[0], kind, sch.Len())
	for _, name := range sch.Types.Names() {
		id, _ := sch.Resolve(name)
		fmt.Fprintf(w, "  $types.%s: %s\n", name, sch.Node(id).Kind)
	}
	return nil
}
