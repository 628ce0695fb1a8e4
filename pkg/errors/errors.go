package errors

import (
	"github.com/pingcap/errors"
)

// all error codes
var (
	// ErrQueueCorrupted indicates that a queue's shared structure has been
	// observed in a state the protocol can never produce, such as an absent
	// head or tail cursor. There is no valid state to retry from.
	ErrQueueCorrupted = errors.Normalize(
		"concurrent queue structure corrupted: %s",
		errors.RFCCodeText("CONQ:ErrQueueCorrupted"),
	)

	ErrConfigDecodeFile = errors.Normalize(
		"decode options file failed",
		errors.RFCCodeText("CONQ:ErrConfigDecodeFile"),
	)
	ErrConfigUnknownItem = errors.Normalize(
		"options file contains unknown configuration items: %s",
		errors.RFCCodeText("CONQ:ErrConfigUnknownItem"),
	)
	ErrConfigInvalid = errors.Normalize(
		"invalid option: %s",
		errors.RFCCodeText("CONQ:ErrConfigInvalid"),
	)
)

// Wrap generates a new error based on given `*errors.Error`, wraps the err
// as cause error.
// If given `err` is nil, returns a nil error, which is a different behavior
// against `Wrap` in pingcap/errors.
func Wrap(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}
