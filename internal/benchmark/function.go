// Package benchmark binds a function under test to the argument sets a
// sweep runs it with.
package benchmark

import (
	"fmt"
	"sort"
	"strings"
)

// Function is a callable taking a dataset working copy of type W followed by
// an argument set of type A. Argument sets are swept in the order they were
// added.
type Function[W, A any] struct {
	name string
	fn   func(work W, args A) error
	args []A
}

// NewFunction binds fn under name. With no argument sets added the sweep
// runs fn once per dataset with the zero A.
func NewFunction[W, A any](name string, fn func(work W, args A) error) *Function[W, A] {
	return &Function[W, A]{name: name, fn: fn}
}

// Wrap adapts a function that cannot fail.
func Wrap[W, A any](name string, fn func(work W, args A)) *Function[W, A] {
	return NewFunction(name, func(work W, args A) error {
		fn(work, args)
		return nil
	})
}

func (f *Function[W, A]) Name() string {
	return f.name
}

// AddArguments appends argument sets and returns f for chaining.
func (f *Function[W, A]) AddArguments(args ...A) *Function[W, A] {
	f.args = append(f.args, args...)
	return f
}

// Arguments returns the argument sets to sweep, never empty.
func (f *Function[W, A]) Arguments() []A {
	if len(f.args) == 0 {
		var zero A
		return []A{zero}
	}
	out := make([]A, len(f.args))
	copy(out, f.args)
	return out
}

func (f *Function[W, A]) Call(work W, args A) error {
	return f.fn(work, args)
}

// NoArgs is the argument type of functions that take only the working copy.
type NoArgs struct{}

func (NoArgs) String() string { return "" }

// Describe renders an argument set for the report. Stringers are used as is,
// slices are joined with ", " and anything else goes through %v.
func Describe(args any) string {
	switch v := args.(type) {
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, a := range v {
			parts[i] = Describe(a)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return describeMap(v)
	}
	return fmt.Sprintf("%v", args)
}

func describeMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + Describe(m[k])
	}
	return strings.Join(parts, ", ")
}
