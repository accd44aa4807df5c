package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "live-expand").
		WithSynopsis("live-expand [opts] command [opts]").
		WithDescription("live-expand expands live document bundles.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return liveMain(cfg, cc, args)
		}).
		WithSubs(
			ExpandCommand(cfg),
			ViewCommand(cfg),
			DepsCommand(cfg))
}

func ExpandCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExpandConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Expand, "expand").
		WithAliases("e", "x").
		WithSynopsis("expand [opts] [bundles]").
		WithDescription("expand all bundles and report diagnostics").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return expand(cfg, cc, args)
		})
}

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.View, "view").
		WithAliases("v").
		WithSynopsis("view [opts] <crate::module> [bundles]").
		WithDescription("view one expanded document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
}

func DepsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DepsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Deps, "deps").
		WithAliases("d").
		WithSynopsis("deps [opts] [bundles]").
		WithDescription("show module dependency order").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return deps(cfg, cc, args)
		})
}
