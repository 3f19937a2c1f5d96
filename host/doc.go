// Package host provides host environment implementations for pushsub handlers.
//
// Memory is a complete in-process host: a worker registry with a single
// registration, a push manager that issues subscriptions with random
// endpoints and client keys, and a permission gate with a scripted prompt.
// It backs tests, demos and headless runtimes where no browser-like push
// service exists.
//
// Every capability can be removed or made to fail, so each branch of the
// handler state machine can be reached deterministically:
//
//	h := host.NewMemory(
//	    host.WithPermission(types.PermissionDefault),
//	    host.WithPromptAnswer(types.PermissionGranted),
//	)
//	h.FailSubscribe(errors.New("AbortError: push service unreachable"))
package host
