package transform

import (
	"fmt"
	"math/rand/v2"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
)

// ArrayOperation names one of the whole-array rewrites.
type ArrayOperation string

const (
	OpConcat  ArrayOperation = "concat"
	OpSlice   ArrayOperation = "slice"
	OpReverse ArrayOperation = "reverse"
	OpShuffle ArrayOperation = "shuffle"
	OpUnique  ArrayOperation = "unique"
)

// ParseArrayOperation validates an operation name.
func ParseArrayOperation(name string) (ArrayOperation, error) {
	switch op := ArrayOperation(name); op {
	case OpConcat, OpSlice, OpReverse, OpShuffle, OpUnique:
		return op, nil
	}
	return "", errors.NewTransformError(fmt.Sprintf("unknown array operation %q", name), errors.ErrUnknownOperation)
}

// ArrayParams carries the operation-specific arguments of ArrayOp.
type ArrayParams struct {
	// Other is appended by concat and must be set for it. A non-array value
	// is appended as one element.
	Other *models.Value
	// Start and End bound slice as a half-open range; a nil End means the
	// array's length. Negative bounds count from the end.
	Start int
	End   *int
	// Rand drives shuffle; nil uses the package generator.
	Rand *rand.Rand
}

// ArrayOp applies op to arr and returns a new array. Non-array input is
// returned as a copy.
func ArrayOp(arr models.Value, op ArrayOperation, params ArrayParams) (models.Value, error) {
	if op == OpConcat && params.Other == nil {
		return models.Value{}, errors.NewTransformError("concat needs a value to append", errors.ErrNoInput)
	}
	if !arr.IsArray() {
		if _, err := ParseArrayOperation(string(op)); err != nil {
			return models.Value{}, err
		}
		return arr.Clone(), nil
	}
	items := cloneItems(arr.AsArray())

	switch op {
	case OpConcat:
		switch {
		case params.Other.IsArray():
			items = append(items, cloneItems(params.Other.AsArray())...)
		default:
			items = append(items, params.Other.Clone())
		}
	case OpSlice:
		end := len(items)
		if params.End != nil {
			end = *params.End
		}
		start, stop := clampIndex(params.Start, len(items)), clampIndex(end, len(items))
		if start >= stop {
			return models.Array(), nil
		}
		items = items[start:stop]
	case OpReverse:
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	case OpShuffle:
		swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
		if params.Rand != nil {
			params.Rand.Shuffle(len(items), swap)
		} else {
			rand.Shuffle(len(items), swap)
		}
	case OpUnique:
		out, _ := Deduplicate(arr, "")
		return out, nil
	default:
		return models.Value{}, errors.NewTransformError(fmt.Sprintf("unknown array operation %q", op), errors.ErrUnknownOperation)
	}
	return models.Array(items...), nil
}

func cloneItems(items []models.Value) []models.Value {
	out := make([]models.Value, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
