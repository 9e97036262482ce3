package runner

import "fmt"

// StartError reports that a process could not be spawned: the binary was
// not found, was not executable, or the OS refused to start it.
type StartError struct {
	Program string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.Program, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
