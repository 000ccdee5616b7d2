// internal/app/registration/errors.go
package registration

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for single-cause registration failures. Batch failures
// that need to carry the offending IDs get their own types below.
var (
	ErrFormUnavailable     = errors.New("registration form is not active")
	ErrLedgerMissing       = errors.New("registration has not been initialized for this form")
	ErrProjectNotFound     = errors.New("project not found on this form")
	ErrProjectMismatch     = errors.New("project id does not match the project at the given index")
	ErrCapacityExceeded    = errors.New("project has no remaining group slots")
	ErrTransactionConflict = errors.New("registration conflicted with a concurrent request")
	ErrLedgerExists        = errors.New("registration is already initialized for this form")
)

// InvalidStudentIDError reports IDs that fail the STU### format check
// after normalization. All offenders are collected before failing.
type InvalidStudentIDError struct {
	IDs []string
}

func (e *InvalidStudentIDError) Error() string {
	return fmt.Sprintf("invalid student IDs: %s", strings.Join(e.IDs, ", "))
}

// IneligibleStudentsError reports students that are already registered
// (or otherwise absent from the form's unregistered set).
type IneligibleStudentsError struct {
	IDs []string
}

func (e *IneligibleStudentsError) Error() string {
	return fmt.Sprintf("students already registered or not eligible: %s", strings.Join(e.IDs, ", "))
}

// UnknownStudentsError reports IDs with no directory record.
type UnknownStudentsError struct {
	IDs []string
}

func (e *UnknownStudentsError) Error() string {
	return fmt.Sprintf("unknown students: %s", strings.Join(e.IDs, ", "))
}

// TeamSizeError reports a team whose size falls outside the project's
// configured bounds.
type TeamSizeError struct {
	Min, Max, Size int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("team size %d outside allowed range %d-%d", e.Size, e.Min, e.Max)
}
