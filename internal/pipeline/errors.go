package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoInputDocuments is returned when a run has nothing to analyze.
var ErrNoInputDocuments = errors.New("no input documents")

// DecodeError reports a document that could not be read or parsed.
type DecodeError struct {
	Document string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Document, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
