/*
Package executor dispatches test requests and classifies what came back.

# Classification

Any received response, whatever its status code, produces an outcome with
that numeric status. An outcome is FAILED only when nothing was received:

  - timeout: the request ran past TimeoutSeconds; ErrorDetail
    reads "timeout (N seconds)"
  - network: the transport failed (refused, DNS, TLS, reset); ErrorDetail
    carries a hint from Hint

Execute never returns an error. The outcome is appended to the configured
Recorder after classification.

# Timeouts

Each dispatch runs under context.WithTimeout derived from the caller's
context. There is no user-initiated cancel; a cancelled parent context is
reported as a network failure.

# Example Usage

	h := history.New(history.DefaultCapacity)
	d := executor.NewDispatcher(executor.WithRecorder(h))

	outcome := d.Execute(ctx, types.TestRequestSpec{
		Method:         types.MethodGet,
		URL:            "http://localhost:8080/api/users",
		TimeoutSeconds: 5,
	})
	fmt.Println(outcome.Status, executor.FormatDuration(outcome.ResponseTime))

# Thread Safety

Execute is safe to call concurrently. Concurrent dispatches race to the
recorder independently.
*/
package executor
