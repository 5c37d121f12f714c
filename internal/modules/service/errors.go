package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrPlantNotFound   = errors.New("plant not found")
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrPhotoNotFound   = errors.New("photo not found")

	// ErrForbidden means the actor is neither owner nor collaborator.
	ErrForbidden = errors.New("access denied")
	ErrNotOwner  = fmt.Errorf("%w: only the project owner can delete it", ErrForbidden)

	// ErrInvalidCredentials never says whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// ValidationError carries one message per offending input field. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e, or nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid is a single-field ValidationError.
func Invalid(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

const msgRequired = "this field is required"
