package domain

import "fmt"

// ToolExecutionError means a tool call failed. The turn transitions to Failed;
// no partial answer is composed and nothing is retried.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// ModelInvocationError means the underlying model call failed or timed out.
type ModelInvocationError struct {
	Binding Binding
	Err     error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation (%s) failed: %v", e.Binding, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }
