package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// RandomIntTool draws a uniform integer from an inclusive range.
type RandomIntTool struct{}

// NewRandomIntTool creates a new random integer tool.
func NewRandomIntTool() *RandomIntTool {
	return &RandomIntTool{}
}

type randomArgs struct {
	Min *int64 `json:"min" validate:"required"`
	Max *int64 `json:"max" validate:"required"`
}

// RandomIntOutput holds the drawn value.
type RandomIntOutput struct {
	Value int64 `json:"value"`
}

// Metadata returns the tool metadata.
func (t *RandomIntTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "random_int",
		Description: "Return a random integer between min and max, inclusive",
		Parameters: []ToolParameter{
			{Name: "min", ParamType: "integer", Description: "Lower bound (inclusive)", Required: true},
			{Name: "max", ParamType: "integer", Description: "Upper bound (inclusive)", Required: true},
		},
	}
}

// Validate validates the arguments.
func (t *RandomIntTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[randomArgs](args)
	return err
}

// Execute draws the value.
func (t *RandomIntTool) Execute(ctx context.Context, args json.RawMessage, _ Policy) (any, error) {
	in, err := decodeArgs[randomArgs](args)
	if err != nil {
		return nil, err
	}

	lo, hi := *in.Min, *in.Max
	if lo > hi {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, lo, hi)
	}

	span := uint64(hi-lo) + 1
	if span == 0 {
		// full int64 range
		return RandomIntOutput{Value: int64(rand.Uint64())}, nil
	}
	return RandomIntOutput{Value: lo + int64(rand.Uint64N(span))}, nil
}
