// Package paging computes the page-number controls shown under a listing.
package paging

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid pagination input")

// ValidationError reports a contract violation in the window arguments.
// It indicates a programming error in the caller; inputs are never clamped.
type ValidationError struct {
	Field string
	Value int
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("paging: %s=%d: %s", e.Field, e.Value, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Window returns the page numbers to render as direct controls.
//
// The window keeps currentPage roughly centred and pins to the first or last
// page near either end. With an even maxButtons the window may be asymmetric
// by one. The result is ascending, contiguous, within [1, totalPages] and has
// length min(maxButtons, totalPages).
func Window(currentPage, totalPages, maxButtons int) ([]int, error) {
	if totalPages < 1 {
		return nil, &ValidationError{Field: "totalPages", Value: totalPages, Msg: "must be >= 1"}
	}
	if maxButtons < 1 {
		return nil, &ValidationError{Field: "maxButtons", Value: maxButtons, Msg: "must be >= 1"}
	}
	if currentPage < 1 || currentPage > totalPages {
		return nil, &ValidationError{Field: "currentPage", Value: currentPage, Msg: fmt.Sprintf("outside [1, %d]", totalPages)}
	}

	half := maxButtons / 2
	start := max(1, currentPage-half)
	end := min(totalPages, currentPage+half)

	if currentPage <= half {
		end = min(totalPages, maxButtons)
	} else if currentPage+half >= totalPages {
		start = max(1, totalPages-maxButtons+1)
	}

	// An even maxButtons centred away from both ends spans maxButtons+1
	// pages; trim the trailing page so the length contract holds.
	if end-start+1 > maxButtons {
		end = start + maxButtons - 1
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages, nil
}

// Shortcuts describes the jump-to-edge controls around a window.
type Shortcuts struct {
	First bool // render page 1 followed by an ellipsis
	Last  bool // render an ellipsis followed by totalPages
}

// Controls reports which edge shortcuts accompany window.
func Controls(window []int, totalPages int) Shortcuts {
	if len(window) == 0 {
		return Shortcuts{}
	}
	return Shortcuts{
		First: window[0] > 1,
		Last:  window[len(window)-1] < totalPages,
	}
}
