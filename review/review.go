// Package review turns a model's code review answer into a typed result.
//
// Information Hiding:
// - Prompt wording and JSON shape instructions
// - Recovery of JSON from free-form text
// - Field-by-field normalization and the unstructured fallback
package review

import (
	"context"
	"fmt"
	"math"
	"strconv"

	jsonutil "github.com/richinex/modelgate/internal/json"
	"github.com/richinex/modelgate/llm"
)

// Severity of a finding.
type Severity string

// Severities, in increasing order.
const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Fallback wording used when the answer has no usable structure.
const (
	FallbackSummary     = "Model returned unstructured output; included as a single note."
	FallbackTitle       = "Unstructured review"
	FallbackDescription = "No response"
)

// Request is a code review request.
type Request struct {
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model" validate:"required"`
	Code        string   `json:"code" validate:"required"`
	Filename    string   `json:"filename,omitempty"`
	Language    string   `json:"language,omitempty"`
	Goals       []string `json:"goals,omitempty"`
	Guidelines  string   `json:"guidelines,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty" validate:"omitempty,min=1"`
}

// Options returns the call options. Temperature defaults to 0.
func (r Request) Options() llm.CallOptions {
	temp := r.Temperature
	if temp == nil {
		zero := float32(0)
		temp = &zero
	}
	return llm.CallOptions{Model: r.Model, Temperature: temp, MaxTokens: r.MaxTokens}
}

// Location points into the reviewed code.
type Location struct {
	Path      *string `json:"path"`
	LineStart *int    `json:"lineStart"`
	LineEnd   *int    `json:"lineEnd"`
}

// Finding is one review issue.
type Finding struct {
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    *Location `json:"location"`
	Suggestion  *string   `json:"suggestion"`
	Rule        *string   `json:"rule"`
}

// Result is the outcome of a review. It never signals parse failure:
// unstructured answers become a single INFO finding.
type Result struct {
	Summary string    `json:"summary"`
	Score   *float64  `json:"score"`
	Issues  []Finding `json:"issues"`
}

// Review asks the model for a review and parses the answer.
func Review(ctx context.Context, client *llm.Client, req Request) (Result, error) {
	answer, err := client.Chat(ctx, llm.ChatRequest{
		Model:       req.Model,
		Messages:    Messages(req),
		Temperature: req.Options().Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Result{}, err
	}
	return Parse(answer.Content, req.Filename), nil
}

// Parse recovers a Result from raw model text.
func Parse(raw, filename string) Result {
	parsed, ok := jsonutil.Recover[map[string]interface{}](raw)
	if !ok {
		return Fallback(raw, filename)
	}
	items, ok := parsed["issues"].([]interface{})
	if !ok {
		return Fallback(raw, filename)
	}

	issues := make([]Finding, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]interface{})
		issues = append(issues, normalizeFinding(fields, filename))
	}

	result := Result{Issues: issues}
	if truthy(parsed["summary"]) {
		result.Summary = stringify(parsed["summary"])
	}
	if score, ok := parsed["score"].(float64); ok {
		result.Score = &score
	}
	return result
}

// Fallback wraps raw text as a single INFO finding.
func Fallback(raw, filename string) Result {
	description := raw
	if description == "" {
		description = FallbackDescription
	}
	return Result{
		Summary: FallbackSummary,
		Issues: []Finding{{
			Severity:    SeverityInfo,
			Title:       FallbackTitle,
			Description: description,
			Location:    fileLocation(filename),
		}},
	}
}

func normalizeFinding(fields map[string]interface{}, filename string) Finding {
	f := Finding{
		Severity:    SeverityWarn,
		Title:       "Issue",
		Description: "",
	}

	switch s, _ := fields["severity"].(string); Severity(s) {
	case SeverityInfo, SeverityWarn, SeverityError:
		f.Severity = Severity(s)
	}
	if truthy(fields["title"]) {
		f.Title = stringify(fields["title"])
	}
	if truthy(fields["description"]) {
		f.Description = stringify(fields["description"])
	}

	if loc := fields["location"]; truthy(loc) {
		locFields, _ := loc.(map[string]interface{})
		f.Location = &Location{
			Path:      optionalString(locFields["path"]),
			LineStart: lineNumber(locFields["lineStart"]),
			LineEnd:   lineNumber(locFields["lineEnd"]),
		}
		if f.Location.Path == nil && filename != "" {
			f.Location.Path = &filename
		}
	} else {
		f.Location = fileLocation(filename)
	}

	f.Suggestion = optionalString(fields["suggestion"])
	f.Rule = optionalString(fields["rule"])
	return f
}

func fileLocation(filename string) *Location {
	if filename == "" {
		return nil
	}
	return &Location{Path: &filename}
}

func optionalString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// maxLine bounds accepted line numbers so the conversion to int is exact
// on every platform.
const maxLine = math.MaxInt32

// lineNumber keeps integral JSON numbers in [1, maxLine] only.
func lineNumber(v interface{}) *int {
	n, ok := v.(float64)
	if !ok || n != math.Trunc(n) || n < 1 || n > maxLine {
		return nil
	}
	line := int(n)
	return &line
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
