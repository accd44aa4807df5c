package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/peter-lyons-kehl/live-format/go-live/debug"
	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

func expand(cfg *ExpandConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Expand.Parse(cc, args)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg.MainConfig, args)
	if err != nil {
		return err
	}
	errs := reg.ExpandAll()
	colorize := cfg.colorize(os.Stderr)
	for _, e := range errs {
		reg.FileError(e).Render(os.Stderr, colorize)
	}
	if cfg.Dump {
		in := reg.Interner()
		for _, cm := range reg.DepOrder() {
			file, ok := reg.FileIDByCrateModule(cm)
			if !ok {
				continue
			}
			doc := reg.Expanded(file)
			if doc == nil {
				continue
			}
			fmt.Fprintf(cc.Out, "--- %s\n", cm.Format(in))
			fmt.Fprint(cc.Out, debug.DumpDocument(doc, in))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d error(s)", len(errs))
	}
	return nil
}

func crateModuleArg(reg interface{ Intern(string) ir.Id }, arg string) (ir.CrateModule, error) {
	crate, module, ok := splitCrateModule(arg)
	if !ok {
		return ir.CrateModule{}, fmt.Errorf("%w: want crate::module, got %q", cli.ErrUsage, arg)
	}
	return ir.CrateModule{
		Crate:  reg.Intern(crate),
		Module: reg.Intern(module),
	}, nil
}

func splitCrateModule(s string) (string, string, bool) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && s[i+1] == ':' {
			return s[:i], s[i+2:], i > 0 && i+2 < len(s)
		}
	}
	return "", "", false
}
