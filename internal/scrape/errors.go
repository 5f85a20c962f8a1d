package scrape

import "fmt"

// SourceError tags a fetch failure with the adapter it came from so the
// cycle can report it without unwrapping transport specifics.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string { return fmt.Sprintf("source %s: %v", e.Source, e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

// WrapSource attaches the adapter name to err. nil stays nil.
func WrapSource(name string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: name, Err: err}
}
