package reporter

import (
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Reporter renders the final report of a run
type Reporter interface {
	Report(w io.Writer, report *model.RunReport) error
}

// New returns the reporter for an output format. An empty format means table.
func New(format string) (Reporter, error) {
	switch format {
	case "", FormatTable:
		return NewTable(), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, goerr.New("unknown output format", goerr.V("format", format), goerr.T(types.ErrTagInvalidConfig))
	}
}
