package model

import (
	"errors"
	"fmt"
)

// FetchKind classifies a failed data-source call.
type FetchKind int

const (
	// NetworkFailure is transient; callers may retry by re-invoking the fetch.
	NetworkFailure FetchKind = iota
	// InvalidResponseShape means the payload lacked or contradicted the
	// pagination fields. Fatal for that request only.
	InvalidResponseShape
	// NotFound is returned by detail lookups for unknown ids.
	NotFound
)

func (k FetchKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case InvalidResponseShape:
		return "invalid response shape"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// FetchError is returned by every PagedSource and Catalog implementation.
type FetchError struct {
	Kind     FetchKind
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Resource, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Resource, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err with a kind and the resource being fetched.
func NewFetchError(kind FetchKind, resource string, err error) *FetchError {
	return &FetchError{Kind: kind, Resource: resource, Err: err}
}

func fetchKind(err error) (FetchKind, bool) {
	var target *FetchError
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return 0, false
}

func IsNetworkFailure(err error) bool {
	k, ok := fetchKind(err)
	return ok && k == NetworkFailure
}

func IsInvalidShape(err error) bool {
	k, ok := fetchKind(err)
	return ok && k == InvalidResponseShape
}

func IsNotFound(err error) bool {
	k, ok := fetchKind(err)
	return ok && k == NotFound
}
