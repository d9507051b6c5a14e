package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EchoTool returns its input with the length in characters.
type EchoTool struct{}

// NewEchoTool creates a new echo tool.
func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

type echoArgs struct {
	Text *string `json:"text" validate:"required"`
}

// EchoOutput is the unchanged text and its rune count.
type EchoOutput struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// Metadata returns the tool metadata.
func (t *EchoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "echo",
		Description: "Return the input text unchanged together with its length",
		Parameters: []ToolParameter{
			{Name: "text", ParamType: "string", Description: "Text to echo", Required: true},
		},
	}
}

// Validate validates the arguments.
func (t *EchoTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[echoArgs](args)
	return err
}

// Execute echoes the text.
func (t *EchoTool) Execute(ctx context.Context, args json.RawMessage, _ Policy) (any, error) {
	in, err := decodeArgs[echoArgs](args)
	if err != nil {
		return nil, err
	}
	return EchoOutput{Text: *in.Text, Length: utf8.RuneCountInString(*in.Text)}, nil
}

var titlePattern = regexp.MustCompile(`(?i)<title>(.*?)</title>`)

// ExtractTitleTool pulls the first <title> element out of an HTML document.
type ExtractTitleTool struct{}

// NewExtractTitleTool creates a new title extraction tool.
func NewExtractTitleTool() *ExtractTitleTool {
	return &ExtractTitleTool{}
}

type titleArgs struct {
	HTML *string `json:"html" validate:"required"`
}

// TitleOutput holds the trimmed title, or null when the document has none.
type TitleOutput struct {
	Title *string `json:"title"`
}

// Metadata returns the tool metadata.
func (t *ExtractTitleTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "extract_title",
		Description: "Extract the <title> text from an HTML document",
		Parameters: []ToolParameter{
			{Name: "html", ParamType: "string", Description: "HTML source", Required: true},
		},
	}
}

// Validate validates the arguments.
func (t *ExtractTitleTool) Validate(args json.RawMessage) error {
	_, err := decodeArgs[titleArgs](args)
	return err
}

// Execute finds the first title.
func (t *ExtractTitleTool) Execute(ctx context.Context, args json.RawMessage, _ Policy) (any, error) {
	in, err := decodeArgs[titleArgs](args)
	if err != nil {
		return nil, err
	}
	return TitleOutput{Title: ExtractTitle(*in.HTML)}, nil
}

// ExtractTitle returns the trimmed text of the first <title> element, or nil.
func ExtractTitle(html string) *string {
	m := titlePattern.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	title := strings.TrimSpace(m[1])
	return &title
}
