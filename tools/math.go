package tools

import (
	"context"
	"encoding/json"
	"math"
)

// MathTool performs basic arithmetic on two numbers.
type MathTool struct{}

// NewMathTool creates a new arithmetic tool.
func NewMathTool() *MathTool {
	return &MathTool{}
}

type mathArgs struct {
	Op string   `json:"op" validate:"required,oneof=add sub mul div"`
	A  *float64 `json:"a" validate:"required"`
	B  *float64 `json:"b" validate:"required"`
}

// MathOutput echoes the operands with the result.
// Division by zero yields NaN, which is encoded as null.
type MathOutput struct {
	Op     string  `json:"op"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Result float64 `json:"result"`
}

// MarshalJSON encodes non-finite results as null.
func (o MathOutput) MarshalJSON() ([]byte, error) {
	var result *float64
	if !math.IsNaN(o.Result) && !math.IsInf(o.Result, 0) {
		result = &o.Result
	}
	return json.Marshal(struct {
		Op     string   `json:"op"`
		A      float64  `json:"a"`
		B      float64  `json:"b"`
		Result *float64 `json:"result"`
	}{o.Op, o.A, o.B, result})
}

// Metadata returns the tool metadata.
func (t *MathTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "math",
		Description: "Basic arithmetic on two numbers: add, sub, mul or div",
		Parameters: []ToolParameter{
			{Name: "op", ParamType: "string", Description: "Operation", Required: true, Enum: []string{"add", "sub", "mul", "div"}},
			{Name: "a", ParamType: "number", Description: "Left operand", Required: true},
			{Name: "b", ParamType: "number", Description: "Right operand", Required: true},
		},
	}
}

// Validate validates the arguments.
func (t *MathTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[mathArgs](args)
	return err
}

// Execute computes the result.
func (t *MathTool) Execute(ctx context.Context, args json.RawMessage, _ Policy) (any, error) {
	in, err := decodeArgs[mathArgs](args)
	if err != nil {
		return nil, err
	}

	a, b := *in.A, *in.B
	var result float64
	switch in.Op {
	case "add":
		result = a + b
	case "sub":
		result = a - b
	case "mul":
		result = a * b
	case "div":
		if b == 0 {
			result = math.NaN()
		} else {
			result = a / b
		}
	}

	return MathOutput{Op: in.Op, A: a, B: b, Result: result}, nil
}
