package hyperlane

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding is returned when configuration bytes are not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("configuration bytes are not valid UTF-8")

// DeserializationError reports a configuration document that is structurally
// invalid against the expected schema: missing required fields, type
// mismatches, malformed addresses or unrecognized enum tags.
type DeserializationError struct {
	Doc string // document kind, e.g. "core config"
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %s: %v", e.Doc, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
