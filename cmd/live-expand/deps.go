package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func deps(cfg *DepsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Deps.Parse(cc, args)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg.MainConfig, args)
	if err != nil {
		return err
	}
	in := reg.Interner()
	for _, cm := range reg.DepOrder() {
		fmt.Fprintln(cc.Out, cm.Format(in))
		if !cfg.Graph {
			continue
		}
		for _, dep := range reg.DepsOf(cm) {
			fmt.Fprintf(cc.Out, "  <- %s\n", dep.Format(in))
		}
	}
	return nil
}
