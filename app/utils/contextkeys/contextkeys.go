// Package contextkeys holds the unexported-by-convention key types used to
// stash request-scoped values on a context.Context.
package contextkeys

// RequestId is the context key under which the HTTP logging middleware
// stores the generated request id.
type RequestId struct{}
