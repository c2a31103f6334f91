// Package utils provides a collection of small reusable helpers shared by the
// workspace packages.
//
// Functional Programming Utilities:
//   - Map, Filter, Find: Generic implementations for slice processing.
//
// Set Helpers:
//   - Contains: membership test on a comparable slice.
//   - IsSubset: every element of one slice is present in another.
//   - Uniq: drops duplicates preserving first-seen order.
//
// String Helpers:
//   - ContainsFold: case-insensitive substring test.
//   - EqualFoldAny: case-insensitive equality against a list.
//
// Error Formatting:
//   - NewError, NewWarning, NewInfo: Formats error messages with severity tags.
package utils

import (
	"fmt"
	"strings"
)

/* some Functional Programming in Go */
// map
type mapFunc[E any, R any] func(E) R

// Map function definition of a functional programming "function"
func Map[S ~[]E, E any, R any](s S, f mapFunc[E, R]) []R {
	result := make([]R, len(s))
	for i, e := range s {
		result[i] = f(e)
	}

	return result
}

// filter
type keepFunc[E any] func(E) bool

// Filter keeps the elements for which f is true, preserving input order.
// The result is never nil, so an empty match encodes as [] rather than null.
func Filter[S ~[]E, E any](s S, f keepFunc[E]) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// Find returns the first element for which f is true.
func Find[S ~[]E, E any](s S, f keepFunc[E]) (E, bool) {
	for _, v := range s {
		if f(v) {
			return v, true
		}
	}
	var zero E

	return zero, false
}

// Contains function iterates over a slice and checks if the given value is there
func Contains[E comparable](slice []E, val E) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}

	return false
}

// IsSubset reports whether every element of sub is in super. An empty sub is
// a subset of anything.
func IsSubset[E comparable](sub, super []E) bool {
	if len(sub) == 0 {
		return true
	}
	set := make(map[E]struct{}, len(super))
	for _, v := range super {
		set[v] = struct{}{}
	}
	for _, v := range sub {
		if _, ok := set[v]; !ok {
			return false
		}
	}

	return true
}

// Uniq drops duplicates, keeping the first occurrence.
func Uniq[E comparable](in []E) []E {
	seen := make(map[E]struct{}, len(in))
	out := make([]E, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// EqualFoldAny reports whether s equals any of candidates, ignoring case.
func EqualFoldAny(s string, candidates ...string) bool {
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}

	return false
}

// short error messaging funcs..

// NewError as a wrapper function to fmt.Errorf with a format
func NewError(msg string, args ...any) error {
	return fmt.Errorf("[ERROR] %s", fmt.Sprintf(msg, args...))
}

// NewWarning as a wrapper function to fmt.Errorf with a format
func NewWarning(msg string, args ...any) error {
	return fmt.Errorf("[WARNING] %s", fmt.Sprintf(msg, args...))
}

// NewInfo as a wrapper function to fmt.Errorf with a format
func NewInfo(msg string, args ...any) error {
	return fmt.Errorf("[INFO] %s", fmt.Sprintf(msg, args...))
}
