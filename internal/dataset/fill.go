package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

// Number is the element type of array and matrix datasets. Only fixed-size
// types are allowed so the binary encoding is portable.
type Number interface {
	constraints.Float | ~int32 | ~int64 | ~uint32 | ~uint64
}

type FillType string

const (
	FillRandom     FillType = "random"
	FillAscending  FillType = "ascending"
	FillDescending FillType = "descending"
)

// Fill describes how a generated dataset is populated. Random uses Min and
// Max (inclusive for integers); ascending and descending start at Start and
// change by Step every StepInterval elements.
type Fill struct {
	Type         FillType
	Min, Max     float64
	Start, Step  float64
	StepInterval int
	Seed         int64
}

func isFloat[T Number]() bool {
	return T(1)/T(2) != 0
}

func fill[T Number](dst []T, f Fill) error {
	switch f.Type {
	case FillRandom, "":
		if f.Min > f.Max {
			return fmt.Errorf("min %v exceeds max %v", f.Min, f.Max)
		}
		seed := f.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r := rand.New(rand.NewSource(seed))
		if isFloat[T]() {
			for i := range dst {
				dst[i] = T(f.Min + r.Float64()*(f.Max-f.Min))
			}
		} else {
			span := int64(f.Max) - int64(f.Min) + 1
			for i := range dst {
				dst[i] = T(int64(f.Min) + r.Int63n(span))
			}
		}
	case FillAscending, FillDescending:
		interval := f.StepInterval
		if interval < 1 {
			interval = 1
		}
		step := T(f.Step)
		current := T(f.Start)
		for i := range dst {
			dst[i] = current
			if (i+1)%interval == 0 {
				if f.Type == FillAscending {
					current += step
				} else {
					current -= step
				}
			}
		}
	default:
		return fmt.Errorf("invalid fill type %q", f.Type)
	}
	return nil
}
