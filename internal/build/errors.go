package build

import "fmt"

// EntryError reports a route entry that failed to compile.
type EntryError struct {
	// Entry is the entry file relative to the project root.
	Entry string

	// Context names the compilation context.
	Context string

	Err error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %s (%s): %v", e.Entry, e.Context, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
