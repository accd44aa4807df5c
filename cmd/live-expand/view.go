package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/peter-lyons-kehl/live-format/go-live/debug"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: missing crate::module argument", cli.ErrUsage)
	}
	reg, err := loadRegistry(cfg.MainConfig, args[1:])
	if err != nil {
		return err
	}
	cm, err := crateModuleArg(reg, args[0])
	if err != nil {
		return err
	}
	file, ok := reg.FileIDByCrateModule(cm)
	if !ok {
		return fmt.Errorf("no bundle for %s", args[0])
	}
	if cfg.Raw {
		lf := reg.RawFile(file)
		fmt.Fprint(cc.Out, debug.DumpDocument(lf.Document, reg.Interner()))
		return nil
	}
	errs := reg.ExpandAll()
	colorize := cfg.colorize(os.Stderr)
	for _, e := range errs {
		reg.FileError(e).Render(os.Stderr, colorize)
	}
	doc := reg.Expanded(file)
	if doc == nil {
		return fmt.Errorf("%s did not expand", args[0])
	}
	fmt.Fprint(cc.Out, debug.DumpDocument(doc, reg.Interner()))
	return nil
}
