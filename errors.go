package hibf

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is returned when a pack file line cannot be parsed.
	ErrMalformedRecord = errors.New("hibf: malformed layout record")

	// ErrEmptyPath is returned when a record carries no bin indices.
	ErrEmptyPath = errors.New("hibf: record path is empty")

	// ErrUnresolvedPath is returned when an intermediate slot of a record's
	// path does not lead to an existing child node.
	ErrUnresolvedPath = errors.New("hibf: record path does not resolve to an existing node")

	// ErrDuplicateSlot is returned when two merged-bin records continue the
	// same slot of the same parent node.
	ErrDuplicateSlot = errors.New("hibf: slot already continued by another node")

	// ErrSlotConflict is returned when a user bin occupies a slot that is
	// continued by a merged-bin child.
	ErrSlotConflict = errors.New("hibf: user bin occupies a merged-bin slot")

	// ErrInvalidConfig is returned when the build configuration is rejected.
	ErrInvalidConfig = errors.New("hibf: invalid configuration")

	// ErrNumericalDegeneracy is returned when the FPR correction produces a
	// non-finite value.
	ErrNumericalDegeneracy = errors.New("hibf: non-finite false positive correction")

	// ErrSlotWritten is returned when an IBF slot of the index is written twice.
	ErrSlotWritten = errors.New("hibf: ibf slot already written")
)

// RecordKind names the kind of layout record an error refers to.
type RecordKind string

const (
	// KindMaxBin is a merged-bin header record.
	KindMaxBin RecordKind = "merged bin"
	// KindUserBin is a user bin (leaf dataset) record.
	KindUserBin RecordKind = "user bin"
)

// RecordError identifies the layout record that made the tree unbuildable.
//
// The underlying sentinel can be matched with errors.Is.
type RecordError struct {
	Kind  RecordKind
	Index int // position of the record in its input sequence
	Path  []int
	cause error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record %d (path %s): %v", e.Kind, e.Index, formatPath(e.Path), e.cause)
}

func (e *RecordError) Unwrap() error { return e.cause }

// ParseError reports a malformed pack file line.
type ParseError struct {
	Line  int
	Text  string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.cause, e.Text)
}

func (e *ParseError) Unwrap() error { return e.cause }
