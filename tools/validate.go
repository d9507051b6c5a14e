package tools

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// decodeArgs unmarshals tool arguments and checks them against the
// struct's validate tags. Empty arguments decode as an empty object.
func decodeArgs[T any](args json.RawMessage) (T, error) {
	var in T
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return in, fmt.Errorf("%w: invalid arguments: %v", ErrValidation, err)
	}
	if err := validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return in, nil
}

// validateOutput checks a tool's output against its schema.
func validateOutput(out any) error {
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: output: %v", ErrValidation, err)
	}
	return nil
}
