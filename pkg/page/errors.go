package page

import "fmt"

// NavigationError indicates the target location could not be reached, or
// navigation to it is not permitted.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ElementNotFoundError indicates an element id did not resolve against the
// current snapshot. Ids are invalidated by every refresh, so a stale id from
// before a page change produces this error.
type ElementNotFoundError struct {
	ID int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element with id %d not found on the current page", e.ID)
}

// ActionError indicates a page action that resolved its target still failed
// to execute.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s action failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
