package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

func TestSubmodulePointer_Name(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "git-scripts", want: "git-scripts"},
		{path: "Aurix/plugins/cdd-bai", want: "cdd-bai"},
		{path: "x/y/mod1/", want: "mod1"},
		{path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p := model.SubmodulePointer{Path: tt.path, CommitID: "c1"}
			gt.Value(t, p.Name()).Equal(tt.want)
		})
	}
}

func TestPropagationState_CanTransitionTo(t *testing.T) {
	t.Run("forward path", func(t *testing.T) {
		gt.True(t, model.StatePending.CanTransitionTo(model.StateTagsFetched))
		gt.True(t, model.StateTagsFetched.CanTransitionTo(model.StateTagDerived))
		gt.True(t, model.StateTagDerived.CanTransitionTo(model.StateCreating))
		gt.True(t, model.StateCreating.CanTransitionTo(model.StateCreated))
		gt.True(t, model.StateTagDerived.CanTransitionTo(model.StatePlanned))
	})

	t.Run("failed from any non terminal state", func(t *testing.T) {
		gt.True(t, model.StatePending.CanTransitionTo(model.StateFailed))
		gt.True(t, model.StateCreating.CanTransitionTo(model.StateFailed))
	})

	t.Run("no skipping and no way back", func(t *testing.T) {
		gt.False(t, model.StatePending.CanTransitionTo(model.StateCreating))
		gt.False(t, model.StateTagDerived.CanTransitionTo(model.StateTagsFetched))
		gt.False(t, model.StateTagsFetched.CanTransitionTo(model.StateCreated))
		gt.False(t, model.StateCreated.CanTransitionTo(model.StateFailed))
		gt.False(t, model.StateFailed.CanTransitionTo(model.StatePending))
	})
}

func TestRunReport_Summary(t *testing.T) {
	report := &model.RunReport{
		Changed: []string{"a", "b", "c", "d"},
		Results: []model.SubmoduleResult{
			{Name: "a", State: model.StateCreated},
			{Name: "b", State: model.StateFailed},
			{Name: "c", State: model.StatePlanned},
		},
		ResolutionFailures: []model.SubmoduleResult{
			{Name: "d", State: model.StateFailed},
		},
	}

	s := report.Summary()
	gt.Value(t, s.Changed).Equal(4)
	gt.Value(t, s.Created).Equal(1)
	gt.Value(t, s.Planned).Equal(1)
	gt.Value(t, s.Failed).Equal(2)
	gt.True(t, report.Failed())

	ok := &model.RunReport{Results: []model.SubmoduleResult{{Name: "a", State: model.StateCreated}}}
	gt.False(t, ok.Failed())
}
