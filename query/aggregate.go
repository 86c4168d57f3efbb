package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	dberrors "github.com/vegasq/flatdb/internal/errors"
)

// AggregateFunc names an aggregate function
type AggregateFunc string

const (
	AggCount AggregateFunc = "count"
	AggSum   AggregateFunc = "sum"
	AggAvg   AggregateFunc = "avg"
	AggMin   AggregateFunc = "min"
	AggMax   AggregateFunc = "max"
)

// AggregateSpec is one aggregate over one column
type AggregateSpec struct {
	Func   AggregateFunc
	Column string
}

func (s AggregateSpec) String() string {
	return fmt.Sprintf("%s(%s)", s.Func, s.Column)
}

// ParseAggregate recognizes func(col). It returns ok=false when s is not
// a call at all, and ErrInvalidAggregate for a call to an unknown function.
func ParseAggregate(s string) (spec AggregateSpec, ok bool, err error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return AggregateSpec{}, false, nil
	}

	name := strings.ToLower(strings.TrimSpace(s[:open]))
	column := strings.TrimSpace(s[open+1 : len(s)-1])

	switch fn := AggregateFunc(name); fn {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		if column == "" {
			return AggregateSpec{}, true, fmt.Errorf("%w: %s has no column", dberrors.ErrInvalidAggregate, name)
		}
		return AggregateSpec{Func: fn, Column: column}, true, nil
	default:
		return AggregateSpec{}, true, fmt.Errorf("%w: unknown function %q", dberrors.ErrInvalidAggregate, name)
	}
}

// AggregateResult is the outcome of an aggregate. Valid is false for
// min/max when no value parsed.
type AggregateResult struct {
	Spec  AggregateSpec
	Value float64
	Valid bool
	Count int64 // values that parsed
}

// Aggregator folds text values into one numeric result.
type Aggregator struct {
	spec  AggregateSpec
	count int64
	sum   float64
	min   *float64
	max   *float64
}

// NewAggregator creates a new aggregator
func NewAggregator(spec AggregateSpec) *Aggregator {
	return &Aggregator{spec: spec}
}

// Spec returns the aggregate being computed
func (a *Aggregator) Spec() AggregateSpec {
	return a.spec
}

// Add folds one value. Values that do not parse as a number are skipped.
func (a *Aggregator) Add(value string) {
	f, ok := parseNumber(value)
	if !ok {
		return
	}

	a.count++
	a.sum += f

	if a.min == nil || f < *a.min {
		v := f
		a.min = &v
	}
	if a.max == nil || f > *a.max {
		v := f
		a.max = &v
	}
}

// Result returns the aggregate over the values added so far
func (a *Aggregator) Result() AggregateResult {
	res := AggregateResult{Spec: a.spec, Count: a.count, Valid: true}

	switch a.spec.Func {
	case AggCount:
		res.Value = float64(a.count)
	case AggSum:
		res.Value = a.sum
	case AggAvg:
		if a.count > 0 {
			res.Value = a.sum / float64(a.count)
		}
	case AggMin:
		if a.min == nil {
			res.Valid = false
		} else {
			res.Value = *a.min
		}
	case AggMax:
		if a.max == nil {
			res.Valid = false
		} else {
			res.Value = *a.max
		}
	}

	return res
}

// parseNumber parses a decimal or scientific number with surrounding
// whitespace. Out of range values saturate to +/-Inf.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}
