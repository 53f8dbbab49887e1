package main

import (
	"fmt"
	"os"
)

// Exit codes for different failure modes.
const (
	ExitSuccess = 0 // Task completed
	ExitTask    = 1 // Task run ended with a failure mode
	ExitError   = 2 // Configuration or runtime error
)

// TaskFailureError indicates the agent ran to completion but the task ended
// with a non-clean failure mode.
type TaskFailureError struct {
	Message string
}

func (e *TaskFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		if _, ok := err.(*TaskFailureError); ok {
			os.Exit(ExitTask)
		}

		os.Exit(ExitError)
	}
}
