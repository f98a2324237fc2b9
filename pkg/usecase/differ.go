package usecase

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// DiffMode selects how submodules present in only one snapshot are handled
type DiffMode string

const (
	// DiffModeStrict fails with a snapshot mismatch when the submodule sets differ
	DiffModeStrict DiffMode = "strict"
	// DiffModeIntersect compares only submodules present in both snapshots
	DiffModeIntersect DiffMode = "intersect"
)

// ParseDiffMode validates a diff mode name
func ParseDiffMode(s string) (DiffMode, error) {
	switch DiffMode(s) {
	case DiffModeStrict, DiffModeIntersect:
		return DiffMode(s), nil
	case "":
		return DiffModeStrict, nil
	}
	return "", goerr.New("unknown diff mode", goerr.V("mode", s), goerr.T(types.ErrTagInvalidConfig))
}

// DiffSnapshots returns the submodules whose pinned commit differs between oldSnap and newSnap,
// keyed by leaf name. Pointers are paired by leaf name, never by position.
func DiffSnapshots(oldSnap, newSnap *model.Snapshot, mode DiffMode) (model.ChangeSet, error) {
	oldIdx, err := indexByName(oldSnap)
	if err != nil {
		return nil, err
	}
	newIdx, err := indexByName(newSnap)
	if err != nil {
		return nil, err
	}

	added := missingFrom(newIdx, oldIdx)
	removed := missingFrom(oldIdx, newIdx)
	if mode != DiffModeIntersect && (len(added) > 0 || len(removed) > 0) {
		return nil, goerr.New("submodule sets differ between tags",
			goerr.V("old_tag", oldSnap.Tag),
			goerr.V("new_tag", newSnap.Tag),
			goerr.V("added", added),
			goerr.V("removed", removed),
			goerr.T(types.ErrTagSnapshotMismatch),
		)
	}

	changes := model.ChangeSet{}
	for name, newPtr := range newIdx {
		oldPtr, ok := oldIdx[name]
		if !ok || oldPtr.CommitID == newPtr.CommitID {
			continue
		}
		changes[name] = &model.ChangeRecord{
			Name:        name,
			Path:        newPtr.Path,
			OldCommitID: oldPtr.CommitID,
			NewCommitID: newPtr.CommitID,
		}
	}

	return changes, nil
}

func indexByName(snap *model.Snapshot) (map[string]model.SubmodulePointer, error) {
	if snap == nil {
		return nil, goerr.New("snapshot is nil", goerr.T(types.ErrTagSnapshotMismatch))
	}

	idx := make(map[string]model.SubmodulePointer, len(snap.Pointers))
	for _, p := range snap.Pointers {
		name := p.Name()
		if name == "" {
			return nil, goerr.New("submodule without name",
				goerr.V("tag", snap.Tag),
				goerr.V("path", p.Path),
				goerr.T(types.ErrTagSnapshotMismatch),
			)
		}
		// Leaf names are the repository names, two paths sharing one cannot be told apart.
		if dup, ok := idx[name]; ok {
			return nil, goerr.New("submodule leaf name collision",
				goerr.V("tag", snap.Tag),
				goerr.V("name", name),
				goerr.V("paths", []string{dup.Path, p.Path}),
				goerr.T(types.ErrTagSnapshotMismatch),
			)
		}
		idx[name] = p
	}
	return idx, nil
}

func missingFrom(src, dst map[string]model.SubmodulePointer) []string {
	var names []string
	for name := range src {
		if _, ok := dst[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
