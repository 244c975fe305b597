package api

import (
	"context"
	"fmt"

	"mealer/internal/models"
)

// outcome is the resolved result of one dispatched operation.
type outcome struct {
	op      models.Operation
	payload interface{}
	message string
	failed  bool
}

// futureView bridges the handlers' asynchronous completion callbacks
// into a value an HTTP handler can wait on. Each future observes at
// most one completion; subsequent ones are dropped.
type futureView struct {
	done chan outcome
}

func newFutureView() *futureView {
	return &futureView{done: make(chan outcome, 1)}
}

func (v *futureView) DBOperationSuccess(op models.Operation, payload interface{}) {
	select {
	case v.done <- outcome{op: op, payload: payload}:
	default:
	}
}

func (v *futureView) DBOperationFailure(op models.Operation, message string) {
	select {
	case v.done <- outcome{op: op, message: message, failed: true}:
	default:
	}
}

// Await blocks until the operation completes or the context ends.
// There is no timeout of our own; the transport's is the only bound.
func (v *futureView) Await(ctx context.Context) (outcome, error) {
	select {
	case out := <-v.done:
		return out, nil
	case <-ctx.Done():
		return outcome{}, fmt.Errorf("request abandoned: %w", ctx.Err())
	}
}
