package extraction

import (
	"errors"
	"fmt"
)

// ExtractionErrorCode represents specific extraction error types.
type ExtractionErrorCode string

const (
	ErrFileNotFound    ExtractionErrorCode = "FILE_NOT_FOUND"
	ErrInvalidFileType ExtractionErrorCode = "INVALID_FILE_TYPE"
	ErrPDFReadFailure  ExtractionErrorCode = "PDF_READ_FAILURE"
)

// ExtractionError is a structured error for extraction failures.
// Matching never produces one; a missing line-item is reported as zero.
type ExtractionError struct {
	Code    ExtractionErrorCode
	Message string
	Path    string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func newFileNotFound(path string, cause error) *ExtractionError {
	return &ExtractionError{Code: ErrFileNotFound, Message: "file not found", Path: path, Cause: cause}
}

func newInvalidFileType(path string) *ExtractionError {
	return &ExtractionError{Code: ErrInvalidFileType, Message: "file must be a PDF", Path: path}
}

func newPDFReadFailure(path string, cause error) *ExtractionError {
	return &ExtractionError{Code: ErrPDFReadFailure, Message: "failed to read PDF", Path: path, Cause: cause}
}

// CodeOf returns the extraction error code carried by err, or "" if err is
// not an ExtractionError.
func CodeOf(err error) ExtractionErrorCode {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Code
	}
	return ""
}

// IsFileNotFound reports whether err is a FILE_NOT_FOUND extraction error.
func IsFileNotFound(err error) bool {
	return CodeOf(err) == ErrFileNotFound
}

// IsInvalidFileType reports whether err is an INVALID_FILE_TYPE extraction error.
func IsInvalidFileType(err error) bool {
	return CodeOf(err) == ErrInvalidFileType
}

// IsPDFReadFailure reports whether err is a PDF_READ_FAILURE extraction error.
func IsPDFReadFailure(err error) bool {
	return CodeOf(err) == ErrPDFReadFailure
}
