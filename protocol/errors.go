package protocol

import (
	"errors"
	"fmt"
)

// Every rejection the engine produces is one of the typed errors below. A
// rejection leaves engine state untouched, so a corrected resubmission is
// always safe. None of these conditions is fatal to the process; only
// programming-level invariant violations abort.

// PhaseViolationError indicates an operation was invoked outside the phase
// that permits it.
type PhaseViolationError struct {
	error
}

func NewPhaseViolationErrorf(msg string, args ...interface{}) error {
	return PhaseViolationError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e PhaseViolationError) Unwrap() error {
	return e.error
}

// IsPhaseViolationError returns whether the given error is a PhaseViolationError.
func IsPhaseViolationError(err error) bool {
	var target PhaseViolationError
	return errors.As(err, &target)
}

// UnknownParticipantError indicates the sender is not a registered participant.
type UnknownParticipantError struct {
	error
}

func NewUnknownParticipantErrorf(msg string, args ...interface{}) error {
	return UnknownParticipantError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e UnknownParticipantError) Unwrap() error {
	return e.error
}

// IsUnknownParticipantError returns whether the given error is an UnknownParticipantError.
func IsUnknownParticipantError(err error) bool {
	var target UnknownParticipantError
	return errors.As(err, &target)
}

// DuplicateSubmissionError indicates the sender already has an accepted entry
// for the current round. First write wins; later writes are rejected.
type DuplicateSubmissionError struct {
	error
}

func NewDuplicateSubmissionErrorf(msg string, args ...interface{}) error {
	return DuplicateSubmissionError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e DuplicateSubmissionError) Unwrap() error {
	return e.error
}

// IsDuplicateSubmissionError returns whether the given error is a DuplicateSubmissionError.
func IsDuplicateSubmissionError(err error) bool {
	var target DuplicateSubmissionError
	return errors.As(err, &target)
}

// HashChainMismatchError indicates a revealed value does not hash to the
// previously locked commitment: H(co) != cv or H(s) != co.
type HashChainMismatchError struct {
	error
}

func NewHashChainMismatchErrorf(msg string, args ...interface{}) error {
	return HashChainMismatchError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e HashChainMismatchError) Unwrap() error {
	return e.error
}

// IsHashChainMismatchError returns whether the given error is a HashChainMismatchError.
func IsHashChainMismatchError(err error) bool {
	var target HashChainMismatchError
	return errors.As(err, &target)
}

// SignatureInvalidError indicates a signature failed verification against the
// sender's registered public key.
type SignatureInvalidError struct {
	error
}

func NewSignatureInvalidErrorf(msg string, args ...interface{}) error {
	return SignatureInvalidError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e SignatureInvalidError) Unwrap() error {
	return e.error
}

// IsSignatureInvalidError returns whether the given error is a SignatureInvalidError.
func IsSignatureInvalidError(err error) bool {
	var target SignatureInvalidError
	return errors.As(err, &target)
}

// RevealOrderViolationError indicates the sender is not the next expected
// revealer. Strict sequential enforcement is what makes a withheld final
// reveal observable rather than silently reordered around.
type RevealOrderViolationError struct {
	error
}

func NewRevealOrderViolationErrorf(msg string, args ...interface{}) error {
	return RevealOrderViolationError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e RevealOrderViolationError) Unwrap() error {
	return e.error
}

// IsRevealOrderViolationError returns whether the given error is a RevealOrderViolationError.
func IsRevealOrderViolationError(err error) bool {
	var target RevealOrderViolationError
	return errors.As(err, &target)
}

// RootMismatchError indicates the merkle root rebuilt from a final batch
// disagrees with the previously published root.
type RootMismatchError struct {
	error
}

func NewRootMismatchErrorf(msg string, args ...interface{}) error {
	return RootMismatchError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e RootMismatchError) Unwrap() error {
	return e.error
}

// IsRootMismatchError returns whether the given error is a RootMismatchError.
func IsRootMismatchError(err error) bool {
	var target RootMismatchError
	return errors.As(err, &target)
}

// IncompleteStateError indicates a read was requested before all required
// entries exist, e.g. the final randomness before the run is done.
type IncompleteStateError struct {
	error
}

func NewIncompleteStateErrorf(msg string, args ...interface{}) error {
	return IncompleteStateError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e IncompleteStateError) Unwrap() error {
	return e.error
}

// IsIncompleteStateError returns whether the given error is an IncompleteStateError.
func IsIncompleteStateError(err error) bool {
	var target IncompleteStateError
	return errors.As(err, &target)
}
