// Package dataset defines the capability set the sweep needs from an input
// dataset and provides array, matrix and text implementations backed by
// files.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrNoWorkingCopy = errors.New("no working copy to save")

// Dataset owns a primary representation and at most one working copy of
// type W handed to the function under test.
type Dataset[W any] interface {
	// Read loads the primary representation from durable storage.
	Read() error
	// Clear releases the primary representation.
	Clear()
	// Copy releases any previous working copy and returns a fresh one.
	Copy() (W, error)
	// ClearCopy releases the working copy. Safe to call when none exists.
	ClearCopy()
	// SaveCopy persists the working copy into runDir and returns the
	// artifact name. A threads value of 0 leaves the thread count out of
	// the name.
	SaveCopy(runDir string, argIndex, threads int) (string, error)
	Title() string
}

// Collection is an ordered set of datasets sharing a working-copy type.
type Collection[W any] struct {
	items []Dataset[W]
}

func NewCollection[W any](items ...Dataset[W]) *Collection[W] {
	c := &Collection[W]{}
	c.Add(items...)
	return c
}

func (c *Collection[W]) Add(items ...Dataset[W]) {
	c.items = append(c.items, items...)
}

func (c *Collection[W]) Items() []Dataset[W] {
	return c.items
}

func (c *Collection[W]) Len() int {
	return len(c.items)
}

// ArtifactName builds the file name of a saved working copy:
// proc[_args_<i>][_thread_<t>]_<base>.
func ArtifactName(argIndex, threads int, base string) string {
	name := "proc"
	if argIndex != 0 {
		name += "_args_" + strconv.Itoa(argIndex)
	}
	if threads != 0 {
		name += "_thread_" + strconv.Itoa(threads)
	}
	return name + "_" + base
}

// TimestampName formats t as YYYY_MM_DD_HH_MM_SS_<nanoseconds>, used for
// generated dataset files and run directories.
func TimestampName(t time.Time) string {
	return fmt.Sprintf("%s_%d", t.Format("2006_01_02_15_04_05"), t.Nanosecond())
}
