// Package status implements the library-wide Status sum type: every
// fallible operation in rasterio returns an error whose root cause can be
// recovered with Of, mirroring the teacher's own FormatError /
// UnsupportedError / InternalError family in util.go, generalized to the
// full taxonomy of spec section 4.7.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is one member of the closed Status enumeration.
type Code int

const (
	// Common.
	NullPointer Code = iota + 1
	MemoryAllocation
	OpenFile
	ReadFile
	WriteFile
	SeekFile
	CloseFile
	ParseFile
	InvalidArgument

	// I/O.
	ReadIO
	WriteIO
	SeekIO
	TellIO
	FlushIO
	CloseIO
	EndOfStream
	UnsupportedSeekWhence
	InvalidIO

	// Image.
	InvalidImageDimensions
	UnsupportedPixelFormat
	InvalidPixelFormat
	UnsupportedCompression
	UnsupportedMetaData
	InterlacingUnsupported
	InvalidBytesPerLine
	UnsupportedBitDepth
	MissingPalette
	InvalidImage

	// Frame flow.
	NoMoreFrames

	// Codec.
	CodecNotFound
	UnderlyingCodec
	UnsupportedCodecFeature
	IncompleteCodecInfo
	ConflictingOperation

	// Generic.
	NotImplemented
	EmptyString
	InvalidVariant
)

var names = map[Code]string{
	NullPointer:             "null pointer",
	MemoryAllocation:        "memory allocation failure",
	OpenFile:                "failed to open file",
	ReadFile:                "failed to read file",
	WriteFile:               "failed to write file",
	SeekFile:                "failed to seek file",
	CloseFile:               "failed to close file",
	ParseFile:               "failed to parse file",
	InvalidArgument:         "invalid argument",
	ReadIO:                  "I/O read error",
	WriteIO:                 "I/O write error",
	SeekIO:                  "I/O seek error",
	TellIO:                  "I/O tell error",
	FlushIO:                 "I/O flush error",
	CloseIO:                 "I/O close error",
	EndOfStream:             "end of stream",
	UnsupportedSeekWhence:   "unsupported seek whence",
	InvalidIO:               "invalid I/O object",
	InvalidImageDimensions:  "invalid image dimensions",
	UnsupportedPixelFormat:  "unsupported pixel format",
	InvalidPixelFormat:      "invalid pixel format",
	UnsupportedCompression:  "unsupported compression",
	UnsupportedMetaData:     "unsupported meta data",
	InterlacingUnsupported:  "interlacing unsupported",
	InvalidBytesPerLine:     "invalid bytes per line",
	UnsupportedBitDepth:     "unsupported bit depth",
	MissingPalette:          "missing palette",
	InvalidImage:            "invalid image",
	NoMoreFrames:            "no more frames",
	CodecNotFound:           "codec not found",
	UnderlyingCodec:         "underlying codec error",
	UnsupportedCodecFeature: "unsupported codec feature",
	IncompleteCodecInfo:     "incomplete codec info",
	ConflictingOperation:    "conflicting operation",
	NotImplemented:          "not implemented",
	EmptyString:             "empty string",
	InvalidVariant:          "invalid variant",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("status(%d)", int(c))
}

// Error is the concrete error type carried by a Status code. It keeps the
// faulting operation name so log lines and %+v formatting stay useful
// without needing a structured logging dependency the teacher never pulls
// in either.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op == "" {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	}
	if e.Op == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a bare Status error with no operation context.
func New(code Code) error {
	return errors.WithStack(&Error{Code: code})
}

// Newf builds a Status error carrying an operation description.
func Newf(code Code, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Code: code, Op: fmt.Sprintf(format, args...)})
}

// Wrap attaches a Status code to an underlying error, the way the spec's
// UnderlyingCodec wraps a third-party library failure (section 4.7).
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Code: code, Op: op, Err: err})
}

// Is reports whether err carries the given Status code anywhere in its
// chain, the idiomatic replacement for the source's SAIL_TRY/SAIL_ERROR_*
// macro comparisons (spec section 9, "error-macro idiom").
func Is(err error, code Code) bool {
	var se *Error
	for err != nil {
		if errors.As(err, &se) {
			if se.Code == code {
				return true
			}
			err = se.Err
			continue
		}
		return false
	}
	return false
}

// Of extracts the Status code from err, returning false if err does not
// carry one (e.g. a plain I/O error surfaced without wrapping yet).
func Of(err error) (Code, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
