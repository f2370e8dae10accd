package model

import (
	"fmt"
	"strconv"
)

// Value is an upstream field, either a single scalar or an ordered sequence of
// scalars. Which one is decided once by the stream adapter. Everything after
// that only sees Len, Strings and Ints.
type Value struct {
	items []string
}

func Scalar(v string) Value {
	return Value{items: []string{v}}
}

func Sequence(v []string) Value {
	return Value{items: v}
}

// A scalar counts as a sequence of one.
func (v Value) Len() int {
	return len(v.items)
}

func (v Value) Strings() []string {
	return v.items
}

func (v Value) Ints() ([]int, error) {
	out := make([]int, len(v.items))
	for i, s := range v.items {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("item %d (%q) is not an integer: %w", i, s, err)
		}
		out[i] = n
	}
	return out, nil
}
