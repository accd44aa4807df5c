package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Manifest string `cli:"name=m aliases=manifest desc='bundle manifest file (live.yaml)'"`
	Color    bool   `cli:"name=color desc='force colorized diagnostics'"`
	NoColor  bool   `cli:"name=no-color desc='disable colorized diagnostics'"`
	Gops     bool   `cli:"name=gops desc='start a gops agent'"`

	Main *cli.Command
}

func (cfg *MainConfig) colorize(w io.Writer) bool {
	if cfg.NoColor {
		return false
	}
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ExpandConfig struct {
	*MainConfig
	Dump bool `cli:"name=dump desc='dump expanded documents'"`

	Expand *cli.Command
}

type ViewConfig struct {
	*MainConfig
	Raw bool `cli:"name=raw desc='show the document before expansion'"`

	View *cli.Command
}

type DepsConfig struct {
	*MainConfig
	Graph bool `cli:"name=g aliases=graph desc='show the dependency graph, not just the order'"`

	Deps *cli.Command
}
