package model

import "sort"

// ChangeRecord is a submodule whose pinned commit differs between two parent tags
type ChangeRecord struct {
	Name         string // leaf name, also the repository name
	Path         string // path in the newer snapshot
	OldCommitID  string
	NewCommitID  string
	RepositoryID RepositoryID
	Err          error
}

// ChangeSet maps a submodule leaf name to its change
type ChangeSet map[string]*ChangeRecord

// Names returns the leaf names in lexical order
func (s ChangeSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the changes ordered by leaf name
func (s ChangeSet) Records() []*ChangeRecord {
	records := make([]*ChangeRecord, 0, len(s))
	for _, name := range s.Names() {
		records = append(records, s[name])
	}
	return records
}
