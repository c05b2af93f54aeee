package fetcher

import "fmt"

// NetworkError is a transport-level failure: DNS, timeout, refused connection
// or a non-200 response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError means the body was not valid JSON or not shaped like a menu
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode menu: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
