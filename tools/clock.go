package tools

import (
	"context"
	"encoding/json"
	"time"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NowTool reports the current instant.
type NowTool struct {
	now func() time.Time
}

// NewNowTool creates a clock tool backed by time.Now.
func NewNowTool() *NowTool {
	return &NowTool{now: time.Now}
}

// NowOutput is the current instant as ISO-8601 and epoch milliseconds.
type NowOutput struct {
	ISO       string `json:"iso" validate:"required"`
	Timestamp int64  `json:"timestamp" validate:"gt=0"`
}

type nowArgs struct{}

// Metadata returns the tool metadata.
func (t *NowTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "now",
		Description: "Get the current date and time as ISO-8601 and epoch milliseconds",
		Parameters:  []ToolParameter{},
	}
}

// Validate validates the arguments.
func (t *NowTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[nowArgs](args)
	return err
}

// Execute reads the clock.
func (t *NowTool) Execute(ctx context.Context, args json.RawMessage, _ Policy) (any, error) {
	now := t.now().UTC()
	return NowOutput{
		ISO:       now.Format(isoMillis),
		Timestamp: now.UnixMilli(),
	}, nil
}
