package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/peter-lyons-kehl/live-format/go-live/bundle"
	"github.com/peter-lyons-kehl/live-format/go-live/registry"
)

const defaultManifest = "live.yaml"

// Manifest lists the bundles making up a project.  Paths are
// relative to the manifest file.
type Manifest struct {
	Bundles []string `yaml:"bundles"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, b := range m.Bundles {
		if !filepath.IsAbs(b) {
			m.Bundles[i] = filepath.Join(dir, b)
		}
	}
	return m, nil
}

// bundlePaths resolves the set of bundle files for a command:
// explicit args win, then -m, then live.yaml if present.
func bundlePaths(cfg *MainConfig, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	path := cfg.Manifest
	if path == "" {
		if _, err := os.Stat(defaultManifest); err != nil {
			return nil, fmt.Errorf("no bundles given and no %s found", defaultManifest)
		}
		path = defaultManifest
	}
	m, err := loadManifest(path)
	if err != nil {
		return nil, err
	}
	return m.Bundles, nil
}

func loadRegistry(cfg *MainConfig, args []string) (*registry.Registry, error) {
	paths, err := bundlePaths(cfg, args)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	for _, path := range paths {
		b, err := bundle.Load(path)
		if err != nil {
			return nil, err
		}
		if _, err := b.Register(reg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return reg, nil
}
