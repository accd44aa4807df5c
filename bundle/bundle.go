// Package bundle defines the interchange envelope parser front ends emit
// for the expansion engine: one raw document together with the file,
// crate-module and source text it was parsed from. Bundles are how the
// expand CLI and the LSP server feed the registry without in-process
// lexing.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
	"github.com/peter-lyons-kehl/live-format/go-live/registry"
)

type Bundle struct {
	File   string `json:"file"`
	Crate  string `json:"crate"`
	Module string `json:"module"`
	// Source is the live source text the document's spans index into.
	Source   string          `json:"source"`
	Document json.RawMessage `json:"document"`
}

func Decode(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, err
	}
	if b.File == "" || b.Crate == "" || b.Module == "" {
		return nil, fmt.Errorf("bundle missing file/crate/module")
	}
	return b, nil
}

func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Register decodes the bundled document and registers it, returning the
// assigned file identity.
func (b *Bundle) Register(reg *registry.Registry) (ir.FileID, error) {
	crateID := reg.Intern(b.Crate)
	moduleID := reg.Intern(b.Module)
	// the document's token spans refer to the bundled source, so the
	// file identity must be fixed before decoding
	fileID := ir.NoFile
	if id, ok := reg.FileIDByCrateModule(ir.CrateModule{Crate: crateID, Module: moduleID}); ok {
		fileID = id
	} else {
		fileID = reg.NextFileID(b.File)
	}
	doc, err := ir.DecodeDocument(b.Document, reg.Interner(), fileID)
	if err != nil {
		return ir.NoFile, fmt.Errorf("%s: %w", b.File, err)
	}
	return reg.RegisterDocument(b.File, crateID, moduleID, b.Source, doc)
}

// Encode packages a raw document for transport.
func Encode(file, crate, module, source string, doc *ir.Document, in *ir.Interner) ([]byte, error) {
	docJSON, err := ir.EncodeDocument(doc, in)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(&Bundle{
		File:     file,
		Crate:    crate,
		Module:   module,
		Source:   source,
		Document: docJSON,
	}, "", "  ")
}
