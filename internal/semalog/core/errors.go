package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Conflict is raised when Change.Transform cannot rebase self past other.
type Conflict struct {
	Self  interface{}
	Other interface{}
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("conflict: %v cannot be rebased past %v", c.Self, c.Other)
}

// NewConflict wraps a Conflict with errors.WithStack so the top-level
// operation that aborts the rebase keeps a stack trace for diagnostics.
func NewConflict(self, other interface{}) error {
	return errors.WithStack(&Conflict{Self: self, Other: other})
}

// PathUnresolved means an AST-Path matched zero children at some element.
type PathUnresolved struct {
	Path    fmt.Stringer
	Element interface{}
}

func (e *PathUnresolved) Error() string {
	return fmt.Sprintf("path %s: could not resolve element %v", e.Path, e.Element)
}

// NewPathUnresolved builds a wrapped PathUnresolved error.
func NewPathUnresolved(path fmt.Stringer, element interface{}) error {
	return errors.WithStack(&PathUnresolved{Path: path, Element: element})
}

// PathAmbiguous means an AST-Path matched more than one child at some element.
type PathAmbiguous struct {
	Path    fmt.Stringer
	Element interface{}
}

func (e *PathAmbiguous) Error() string {
	return fmt.Sprintf("path %s: element %v matched more than one child", e.Path, e.Element)
}

// NewPathAmbiguous builds a wrapped PathAmbiguous error.
func NewPathAmbiguous(path fmt.Stringer, element interface{}) error {
	return errors.WithStack(&PathAmbiguous{Path: path, Element: element})
}

// UnsupportedInsertion means a SubASTInserted targets an empty parent with no predecessor.
type UnsupportedInsertion struct {
	ParentPath fmt.Stringer
}

func (e *UnsupportedInsertion) Error() string {
	return fmt.Sprintf("cannot insert into empty parent %s with no predecessor", e.ParentPath)
}

// NewUnsupportedInsertion builds a wrapped UnsupportedInsertion error.
func NewUnsupportedInsertion(parentPath fmt.Stringer) error {
	return errors.WithStack(&UnsupportedInsertion{ParentPath: parentPath})
}

// MalformedLedger means a ledger line failed to parse.
type MalformedLedger struct {
	Line  string
	Cause error
}

func (e *MalformedLedger) Error() string {
	return fmt.Sprintf("malformed ledger line %q: %v", e.Line, e.Cause)
}

func (e *MalformedLedger) Unwrap() error { return e.Cause }

// NewMalformedLedger builds a wrapped MalformedLedger error.
func NewMalformedLedger(line string, cause error) error {
	return errors.WithStack(&MalformedLedger{Line: line, Cause: cause})
}

// StoreError wraps an underlying object-store I/O failure.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("object store error during %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// NewStoreError builds a wrapped StoreError.
func NewStoreError(op string, cause error) error {
	return errors.WithStack(&StoreError{Op: op, Cause: cause})
}

// IsConflict reports whether err (or something it wraps) is a *Conflict.
func IsConflict(err error) bool {
	var c *Conflict
	return errors.As(err, &c)
}
