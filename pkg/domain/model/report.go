package model

import "time"

// SubmoduleResult is the outcome of one changed submodule
type SubmoduleResult struct {
	Name         string           `json:"name"`
	Path         string           `json:"path"`
	CommitID     string           `json:"commit_id"`
	RepositoryID RepositoryID     `json:"repository_id,omitempty"`
	Tag          string           `json:"tag,omitempty"`
	State        PropagationState `json:"state"`
	Error        string           `json:"error,omitempty"`
	ErrorKind    string           `json:"error_kind,omitempty"`
}

// RunReport is the final summary of a propagation run
type RunReport struct {
	RunID              string            `json:"run_id"`
	ParentRepo         string            `json:"parent_repo"`
	NewTag             string            `json:"new_tag"`
	OldTag             string            `json:"old_tag"`
	DryRun             bool              `json:"dry_run"`
	Changed            []string          `json:"changed"`
	Results            []SubmoduleResult `json:"results"`
	ResolutionFailures []SubmoduleResult `json:"resolution_failures"`
	StartedAt          time.Time         `json:"started_at"`
	FinishedAt         time.Time         `json:"finished_at"`
}

// RunSummary holds counters of a report
type RunSummary struct {
	Changed  int `json:"changed"`
	Created  int `json:"created"`
	Planned  int `json:"planned"`
	Failed   int `json:"failed"`
	Resolved int `json:"resolved"`
}

// Summary counts results by outcome. Resolution failures count as failed.
func (r *RunReport) Summary() RunSummary {
	s := RunSummary{
		Changed:  len(r.Changed),
		Resolved: len(r.Results),
		Failed:   len(r.ResolutionFailures),
	}
	for _, res := range r.Results {
		switch res.State {
		case StateCreated:
			s.Created++
		case StatePlanned:
			s.Planned++
		default:
			s.Failed++
		}
	}
	return s
}

// Failed reports whether any submodule was not propagated
func (r *RunReport) Failed() bool {
	return r.Summary().Failed > 0
}

// RunInput parameterizes a single run
type RunInput struct {
	// TriggerTag is the parent tag that caused the run. When set it must be the newest parent tag.
	TriggerTag string
}
