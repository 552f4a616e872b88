package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		}, {
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "eure-schema").
		WithSynopsis("eure-schema [opts] command [opts]").
		WithDescription("eure-schema extracts schemas from annotated documents and validates documents against them.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return schemaMain(cfg, cc, args)
		}).
		WithSubs(
			ExtractCommand(cfg),
			ValidateCommand(cfg),
			CheckCommand(cfg))
}

func schemaMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.J && cfg.Y {
		return fmt.Errorf("%w: must specify at most one of -j[son] -y[aml]", cli.ErrUsage)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ExtractCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExtractConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("extract").
		WithAliases("x", "ex").
		WithSynopsis("extract [-strict] <file>").
		WithDescription("extract the schema carried by a document's annotations").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return extractRun(cfg, cc, args)
		})
	cfg.Extract = cmd
	return cmd
}

func ValidateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ValidateConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("validate").
		WithAliases("v", "val").
		WithSynopsis("validate [-lenient] <schema> [files]").
		WithDescription("validate documents against a schema").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return validateRun(cfg, cc, args)
		})
	cfg.Validate = cmd
	return cmd
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("check").
		WithAliases("c", "ch").
		WithSynopsis("check <file>").
		WithDescription("report whether a document is a pure schema and list its named types").
		WithRun(func(cc *cli.Context, args []string) error {
			return checkRun(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}
