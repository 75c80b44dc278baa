package sheets

import "fmt"

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: server returned HTTP code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: could not fetch data from the URL: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports CSV input that could not be read at all.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse csv line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
