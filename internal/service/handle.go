package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Func is one unit of work. Its result becomes the success payload.
type Func func(ctx context.Context) (any, error)

// Handle runs fn under a new RequestContext and returns the finished
// envelope. When fn fails or panics, the rest of the work is abandoned
// and the failure is classified; nothing is retried.
func Handle(ctx context.Context, requestID string, fn Func) Response {
	rc := New(requestID)
	run(ctx, rc, fn)
	resp, _ := rc.Response()
	return resp
}

func run(ctx context.Context, rc *RequestContext, fn Func) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling request",
				slog.String("request_id", rc.ID()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			if !rc.Done() {
				rc.Fail(fmt.Errorf("internal error: %v", r))
			}
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Succeed(value)
}
