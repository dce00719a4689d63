package core

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	DatasetID ID
)

// String conversions for domain IDs
func (id SessionID) String() string { return ID(id).String() }
func (id DatasetID) String() string { return ID(id).String() }

// NewSessionID creates a session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewDatasetID creates a dataset identifier
func NewDatasetID() DatasetID { return DatasetID(NewID()) }

// ParseSessionID parses a string into SessionID. Session IDs are UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewParameterError("session_id", "cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", errors.Wrap(NewParameterError("session_id", "not a UUID"), err.Error())
	}
	return SessionID(s), nil
}

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewParameterError("dataset_id", "cannot be empty")
	}
	return DatasetID(s), nil
}
