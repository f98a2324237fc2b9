package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy of a propagation run. Errors carry one of these tags via goerr.T
// and are classified with goerr.HasTag.
var (
	// ErrTagTransport marks a network failure or a non-success answer of the gateway
	ErrTagTransport = goerr.NewTag(KindTransport)

	// ErrTagSnapshotMismatch marks two submodule snapshots that cannot be compared
	ErrTagSnapshotMismatch = goerr.NewTag(KindSnapshotMismatch)

	// ErrTagResolution marks a failed repository id lookup of one submodule
	ErrTagResolution = goerr.NewTag(KindResolution)

	// ErrTagNoApplicableStrategy marks a tag derivation without a matching rule
	ErrTagNoApplicableStrategy = goerr.NewTag(KindNoApplicableStrategy)

	// ErrTagTagCreation marks a tag creation rejected by the gateway
	ErrTagTagCreation = goerr.NewTag(KindTagCreation)

	// ErrTagInvalidConfig marks an invalid option or configuration file
	ErrTagInvalidConfig = goerr.NewTag(KindInvalidConfig)
)

// Kinds reported by ErrorKind
const (
	KindTransport            = "transport"
	KindSnapshotMismatch     = "snapshot_mismatch"
	KindResolution           = "resolution"
	KindNoApplicableStrategy = "no_applicable_tag_strategy"
	KindTagCreation          = "tag_creation"
	KindInvalidConfig        = "invalid_config"
	KindUnknown              = "unknown"
)

// ErrorKind classifies err by its most specific taxonomy tag
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case goerr.HasTag(err, ErrTagSnapshotMismatch):
		return KindSnapshotMismatch
	case goerr.HasTag(err, ErrTagResolution):
		return KindResolution
	case goerr.HasTag(err, ErrTagNoApplicableStrategy):
		return KindNoApplicableStrategy
	case goerr.HasTag(err, ErrTagTagCreation):
		return KindTagCreation
	case goerr.HasTag(err, ErrTagInvalidConfig):
		return KindInvalidConfig
	case goerr.HasTag(err, ErrTagTransport):
		return KindTransport
	}
	return KindUnknown
}
