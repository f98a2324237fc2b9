package model

import "strings"

// SubmodulePointer is a submodule path and the commit pinned by the parent repository
type SubmodulePointer struct {
	Path     string
	CommitID string
}

// Name returns the leaf name of the submodule path
func (p SubmodulePointer) Name() string {
	path := strings.TrimRight(p.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Snapshot is the submodule pointer table of the parent repository at a tag
type Snapshot struct {
	Tag      string
	Pointers []SubmodulePointer
}
