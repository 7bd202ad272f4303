// Package fastc implements a GPU texture block codec: BPTC/BC7, PVRTC
// 4bpp/2bpp, DXT1/DXT5 and ETC1 block encoders and decoders, plus a work
// dispatcher that drives any of them across a compression job.
package fastc

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrorCode identifies the kind of failure a job-level operation reported.
type ErrorCode uint32

const (
	// Success indicates no error.
	Success ErrorCode = 0

	// ErrInvalidDimensions means the job's width/height isn't a multiple of
	// the format's block dimensions, or (PVRTC) isn't a square power of two.
	ErrInvalidDimensions ErrorCode = 1

	// ErrInvalidBlockModes means the configured block-mode mask disables
	// every mode capable of representing the block's alpha content.
	ErrInvalidBlockModes ErrorCode = 2

	// ErrBufferTooSmall means the output buffer is smaller than
	// blockCount * blockSizeBytes.
	ErrBufferTooSmall ErrorCode = 3

	// ErrMalformedBlock is never returned to a caller: per spec, a
	// malformed block decodes to a defined fallback pattern instead of
	// aborting the job. It exists so per-block diagnostics can name the
	// condition without the decoder needing to fail.
	ErrMalformedBlock ErrorCode = 4
)

func (c ErrorCode) String() string {
	switch c {
	case Success:
		return "success"
	case ErrInvalidDimensions:
		return "invalid dimensions"
	case ErrInvalidBlockModes:
		return "invalid block modes"
	case ErrBufferTooSmall:
		return "buffer too small"
	case ErrMalformedBlock:
		return "malformed block"
	default:
		return "unknown error"
	}
}

// Error is a typed error carrying an ErrorCode, mirroring the codec's
// job-validation failure modes.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "fastc: " + e.Code.String()
}

// ErrorCodeOf returns the ErrorCode carried by err, or Success for nil.
// Non-*Error errors conservatively report ErrInvalidDimensions.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrInvalidDimensions
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// wrap annotates err with additional context at a package boundary that
// composes multiple fallible steps (job validation, dispatcher entry).
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
