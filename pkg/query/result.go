package query

import "time"

// Status is the tri-state of an accessor, plus idle for mutations that
// have not run.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Result is the observable state of a query or mutation.
// Exactly one of Data and Err is meaningful, depending on Status.
type Result[T any] struct {
	Data      T
	Err       error
	Status    Status
	UpdatedAt time.Time
}

// IsPending reports whether the result is still loading.
func (r Result[T]) IsPending() bool { return r.Status == StatusPending }

// IsError reports whether the last attempt failed.
func (r Result[T]) IsError() bool { return r.Status == StatusError }

// IsSuccess reports whether Data holds a value.
func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }
