package reporter

import (
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

type jsonReport struct {
	*model.RunReport
	Summary model.RunSummary `json:"summary"`
}

func (x *JSON) Report(w io.Writer, report *model.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&jsonReport{RunReport: report, Summary: report.Summary()}); err != nil {
		return goerr.Wrap(err, "failed to write JSON report")
	}
	return nil
}
