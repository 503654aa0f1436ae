package record

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRecordType = errors.New("unknown record type")
	ErrIncompleteRecord  = errors.New("record field missing after decode")
	ErrAlreadyDecoded    = errors.New("record decode already ran")
)

// FieldError reports which field of which record type failed and where.
type FieldError struct {
	Variant string
	Field   string
	Offset  int64
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %s at offset %d: %v", e.Variant, e.Field, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
