package ir

import "fmt"

// FileID identifies one registered live file. It indexes the registry's
// parallel file and expanded-document stores.
type FileID int32

const NoFile FileID = -1

func (f FileID) Valid() bool {
	return f >= 0
}

// LocalPtr addresses a node within one document.
type LocalPtr struct {
	Level int
	Index int
}

// FullPtr addresses a node in any registered document. It is the only way
// to reference another file's nodes. Pointers are non-owning; they must be
// re-validated through the registry since a document can be wholesale
// rebuilt.
type FullPtr struct {
	File  FileID
	Local LocalPtr
}

// CrateModule is the two-part namespace key identifying one source file's
// declarations.
type CrateModule struct {
	Crate  Id
	Module Id
}

func (cm CrateModule) Format(in *Interner) string {
	return fmt.Sprintf("%s::%s", in.Name(cm.Crate), in.Name(cm.Module))
}
