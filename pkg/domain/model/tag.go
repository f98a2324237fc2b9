package model

// TagRef is a named tag of a repository. Lists of TagRef are ordered newest first.
type TagRef struct {
	Name   string
	Commit string
}

// TagNames returns the names of tags keeping their order
func TagNames(tags []TagRef) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// TagRequest is a request to create a tag (as a release) in a repository
type TagRequest struct {
	Name            string
	TargetCommitish string
	Body            string
}

// TagDerivation is the input of a tag strategy
type TagDerivation struct {
	Submodule    string   // leaf name of the submodule
	ExistingTags []TagRef // most recent tags of the submodule repository, newest first
	ParentTag    string   // parent tag that triggered the run
}
