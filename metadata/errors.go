package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrModelFinalized indicates a mutation of a finalized model.
	ErrModelFinalized = errors.New("metagraph: model is finalized")
	// ErrConflictingConfiguration indicates a fatal configuration conflict.
	ErrConflictingConfiguration = errors.New("metagraph: conflicting configuration")
	// ErrAmbiguousConfiguration indicates an ambiguity still unresolved
	// when it had to be decided.
	ErrAmbiguousConfiguration = errors.New("metagraph: ambiguous configuration")
)

// MemberError represents a configuration conflict on a single member of
// an entity type: a name resolving to more than one member kind, a
// self-referencing inverse, mismatched attribute declarations, and the like.
type MemberError struct {
	EntityType string
	Member     string
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *MemberError) Error() string {
	var b strings.Builder
	b.WriteString("metagraph: member error")
	if e.EntityType != "" {
		b.WriteString(" on type ")
		b.WriteString(e.EntityType)
	}
	if e.Member != "" {
		b.WriteString(" member ")
		b.WriteString(e.Member)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *MemberError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for MemberError.
func (e *MemberError) Is(target error) bool {
	return target == ErrConflictingConfiguration
}

// NewMemberError creates a new MemberError.
func NewMemberError(entityType, member, message string) *MemberError {
	return &MemberError{
		EntityType: entityType,
		Member:     member,
		Message:    message,
	}
}

// ForeignKeyError represents a fatal foreign-key configuration conflict,
// such as a property set already backing a different pinned foreign key.
type ForeignKeyError struct {
	EntityType string
	Properties []string
	Message    string
}

// Error implements the error interface.
func (e *ForeignKeyError) Error() string {
	var b strings.Builder
	b.WriteString("metagraph: foreign-key error")
	if e.EntityType != "" {
		b.WriteString(" on type ")
		b.WriteString(e.EntityType)
	}
	if len(e.Properties) > 0 {
		fmt.Fprintf(&b, " properties (%s)", strings.Join(e.Properties, ", "))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ForeignKeyError.
func (e *ForeignKeyError) Is(target error) bool {
	return target == ErrConflictingConfiguration
}

// NewForeignKeyError creates a new ForeignKeyError.
func NewForeignKeyError(entityType string, properties []string, message string) *ForeignKeyError {
	return &ForeignKeyError{
		EntityType: entityType,
		Properties: properties,
		Message:    message,
	}
}

// AmbiguityError represents an ambiguity that was still unresolved when
// it had to be decided, such as duplicate service properties surviving
// until model finalization.
type AmbiguityError struct {
	EntityType string
	Subject    string
	Candidates []string
	Message    string
}

// Error implements the error interface.
func (e *AmbiguityError) Error() string {
	var b strings.Builder
	b.WriteString("metagraph: ambiguity error")
	if e.EntityType != "" {
		b.WriteString(" on type ")
		b.WriteString(e.EntityType)
	}
	if e.Subject != "" {
		b.WriteString(" for ")
		b.WriteString(e.Subject)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for AmbiguityError.
func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguousConfiguration
}

// NewAmbiguityError creates a new AmbiguityError.
func NewAmbiguityError(entityType, subject string, candidates []string, message string) *AmbiguityError {
	return &AmbiguityError{
		EntityType: entityType,
		Subject:    subject,
		Candidates: candidates,
		Message:    message,
	}
}

// IsMemberError reports whether the error is a MemberError.
func IsMemberError(err error) bool {
	var memberErr *MemberError
	return errors.As(err, &memberErr)
}

// IsForeignKeyError reports whether the error is a ForeignKeyError.
func IsForeignKeyError(err error) bool {
	var fkErr *ForeignKeyError
	return errors.As(err, &fkErr)
}

// IsAmbiguityError reports whether the error is an AmbiguityError.
func IsAmbiguityError(err error) bool {
	var ambErr *AmbiguityError
	return errors.As(err, &ambErr)
}
