package httpclient

import (
	"errors"
	"fmt"
	"io"
)

// BodyTooLargeError reports that a response body exceeded the read limit.
type BodyTooLargeError struct {
	MaxBytes int64
}

func (e BodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeded %d bytes", e.MaxBytes)
}

// IsBodyTooLarge reports whether err indicates a response body limit violation.
func IsBodyTooLarge(err error) bool {
	var tooLarge BodyTooLargeError
	return errors.As(err, &tooLarge)
}

// ReadBody reads r up to maxBytes. A maxBytes <= 0 reads everything.
//
// Oracle HCM listing responses can be large; callers bound them so a single
// runaway payload cannot exhaust memory.
func ReadBody(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	limited := &io.LimitedReader{R: r, N: maxBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, BodyTooLargeError{MaxBytes: maxBytes}
	}
	return data, nil
}
