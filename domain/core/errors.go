package core

import (
	"github.com/cockroachdb/errors"
)

// Domain errors - centralized error definitions
var (
	// Session errors
	ErrInvalidTarget = errors.New("invalid target column")

	// Recoverable analysis conditions, embedded in results rather than returned
	ErrInsufficientFeatures = errors.New("insufficient features for analysis")
	ErrUndefinedStatistic   = errors.New("statistic undefined for zero-variance data")
	ErrEmptyGroup           = errors.New("group has too few observations")

	// Request errors
	ErrColumnNotFound   = errors.New("column not found")
	ErrKindMismatch     = errors.New("column kind not valid for this analysis")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotFound         = errors.New("resource not found")
	ErrSessionNotFound  = errors.Wrap(ErrNotFound, "session")

	// Dataset validation errors
	ErrInvalidDataset   = errors.New("invalid dataset")
	ErrDuplicateColumn  = errors.Wrap(ErrInvalidDataset, "duplicate column name")
	ErrRaggedColumns    = errors.Wrap(ErrInvalidDataset, "column length mismatch")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewInvalidTargetError(target string) error {
	return errors.Wrapf(ErrInvalidTarget, "target %q is not a column of the dataset", target)
}

func NewColumnNotFoundError(column string) error {
	return errors.Wrapf(ErrColumnNotFound, "%q", column)
}

func NewKindMismatchError(column, kind, want string) error {
	return errors.Wrapf(ErrKindMismatch, "%q is %s, want %s", column, kind, want)
}

func NewParameterError(name string, reason string) error {
	return errors.Wrapf(ErrInvalidParameter, "%s: %s", name, reason)
}

func NewValidationError(field string, reason string) error {
	return errors.Wrapf(ErrInvalidDataset, "validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrColumnNotFound)
}

func IsRequestError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrKindMismatch) ||
		errors.Is(err, ErrInvalidParameter)
}

// IsRecoverable reports whether err is one of the conditions that analyses
// surface as sentinel values instead of failing.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInsufficientFeatures) ||
		errors.Is(err, ErrUndefinedStatistic) ||
		errors.Is(err, ErrEmptyGroup)
}
