package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richinex/modelgate/llm"
)

func TestParseStructured(t *testing.T) {
	raw := `Here you go: {"summary":"Looks fine","score":87,"issues":[
		{"severity":"ERROR","title":"Nil deref","description":"x may be nil",
		 "location":{"path":"a.go","lineStart":3,"lineEnd":4},"suggestion":"check x","rule":"nil-check"}
	]} Thanks!`

	result := Parse(raw, "main.go")

	if result.Summary != "Looks fine" {
		t.Errorf("unexpected summary %q", result.Summary)
	}
	if result.Score == nil || *result.Score != 87 {
		t.Errorf("unexpected score %v", result.Score)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(result.Issues))
	}
	issue := result.Issues[0]
	if issue.Severity != SeverityError || issue.Title != "Nil deref" || issue.Description != "x may be nil" {
		t.Errorf("unexpected issue %+v", issue)
	}
	if issue.Location == nil || *issue.Location.Path != "a.go" || *issue.Location.LineStart != 3 || *issue.Location.LineEnd != 4 {
		t.Errorf("unexpected location %+v", issue.Location)
	}
	if issue.Suggestion == nil || *issue.Suggestion != "check x" || issue.Rule == nil || *issue.Rule != "nil-check" {
		t.Errorf("unexpected suggestion/rule %v %v", issue.Suggestion, issue.Rule)
	}
}

func TestParseEmptyIssues(t *testing.T) {
	result := Parse(`{"summary":"ok","issues":[]}`, "")
	if result.Summary != "ok" || len(result.Issues) != 0 || result.Score != nil {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestParseNormalizesFindings(t *testing.T) {
	raw := `{"summary":42,"score":"high","issues":[
		{"severity":"CRITICAL"},
		{"severity":"info","title":7,"description":"","location":{"lineStart":"3","lineEnd":2.5}},
		{"severity":"INFO","title":"t","location":"line 9","suggestion":5,"rule":null},
		"not an object"
	]}`

	result := Parse(raw, "pkg/file.go")

	if result.Summary != "42" {
		t.Errorf("expected stringified summary, got %q", result.Summary)
	}
	if result.Score != nil {
		t.Errorf("non-numeric score must be dropped, got %v", *result.Score)
	}
	if len(result.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %d", len(result.Issues))
	}

	first := result.Issues[0]
	if first.Severity != SeverityWarn || first.Title != "Issue" || first.Description != "" {
		t.Errorf("unexpected defaults %+v", first)
	}
	if first.Location == nil || *first.Location.Path != "pkg/file.go" || first.Location.LineStart != nil {
		t.Errorf("missing location should default to filename, got %+v", first.Location)
	}

	second := result.Issues[1]
	if second.Severity != SeverityWarn {
		t.Errorf("severity is case-sensitive, got %s", second.Severity)
	}
	if second.Title != "7" {
		t.Errorf("expected stringified title, got %q", second.Title)
	}
	if second.Location == nil || *second.Location.Path != "pkg/file.go" {
		t.Fatalf("location path should default to filename, got %+v", second.Location)
	}
	if second.Location.LineStart != nil || second.Location.LineEnd != nil {
		t.Errorf("non-integral line bounds must be null, got %+v", second.Location)
	}

	third := result.Issues[2]
	if third.Severity != SeverityInfo || third.Location == nil || third.Location.LineStart != nil {
		t.Errorf("unexpected third issue %+v", third)
	}
	if third.Suggestion != nil || third.Rule != nil {
		t.Errorf("non-string suggestion/rule must be dropped, got %v %v", third.Suggestion, third.Rule)
	}

	if result.Issues[3].Title != "Issue" {
		t.Errorf("non-object issue should normalize to defaults, got %+v", result.Issues[3])
	}
}

func TestParseWithoutFilename(t *testing.T) {
	result := Parse(`{"summary":"s","issues":[{"title":"x"}]}`, "")
	if result.Issues[0].Location != nil {
		t.Errorf("expected nil location, got %+v", result.Issues[0].Location)
	}
}

func TestParseFallback(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		filename string
		wantDesc string
	}{
		{"not json", "not json at all", "", "not json at all"},
		{"empty", "", "", "No response"},
		{"missing issues", `{"summary":"ok"}`, "x.go", `{"summary":"ok"}`},
		{"issues not array", `{"summary":"ok","issues":{}}`, "", `{"summary":"ok","issues":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.raw, tt.filename)
			if result.Summary != FallbackSummary {
				t.Errorf("unexpected summary %q", result.Summary)
			}
			if result.Score != nil {
				t.Error("fallback has no score")
			}
			if len(result.Issues) != 1 {
				t.Fatalf("expected exactly one finding, got %d", len(result.Issues))
			}
			issue := result.Issues[0]
			if issue.Severity != SeverityInfo || issue.Title != FallbackTitle || issue.Description != tt.wantDesc {
				t.Errorf("unexpected finding %+v", issue)
			}
			if tt.filename == "" && issue.Location != nil {
				t.Errorf("expected nil location, got %+v", issue.Location)
			}
			if tt.filename != "" && (issue.Location == nil || *issue.Location.Path != tt.filename || issue.Location.LineStart != nil) {
				t.Errorf("expected filename location, got %+v", issue.Location)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	msgs := Messages(Request{
		Model:      "m",
		Code:       "func f() {}",
		Filename:   "f.go",
		Language:   "go",
		Guidelines: "  prefer early returns  ",
	})

	if len(msgs) != 2 || msgs[0].Role != llm.RoleSystem || msgs[1].Role != llm.RoleUser {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	user := msgs[1].Content
	for _, want := range []string{
		"- File: f.go",
		"- Language: go",
		"1. Correctness and potential bugs",
		"5. Edge cases and error handling",
		"Additional guidelines:\nprefer early returns\n",
		"Return ONLY a minified JSON object",
		"CODE START\n\n```\nfunc f() {}\n```\n\nCODE END",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	custom := Messages(Request{Code: "x", Goals: []string{"Naming"}})[1].Content
	if !strings.Contains(custom, "1. Naming") || strings.Contains(custom, "Security pitfalls") {
		t.Errorf("custom goals should replace defaults: %q", custom)
	}
	if strings.Contains(custom, "- File:") || strings.Contains(custom, "Additional guidelines") {
		t.Errorf("optional sections should be omitted: %q", custom)
	}
}

func TestOptionsDefaultTemperature(t *testing.T) {
	opts := Request{Model: "m"}.Options()
	if opts.Temperature == nil || *opts.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", opts.Temperature)
	}

	temp := float32(0.7)
	if got := (Request{Model: "m", Temperature: &temp}).Options().Temperature; *got != 0.7 {
		t.Errorf("expected override, got %v", *got)
	}
}

func TestReviewAgainstUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"r1","choices":[{"message":{"role":"assistant",
			"content":"{\"summary\":\"tidy\",\"issues\":[{\"severity\":\"INFO\",\"title\":\"t\",\"description\":\"d\"}]}"}}]}`))
	}))
	defer server.Close()

	client := llm.NewClient(llm.NewOpenAIProvider("k", server.URL), nil)
	result, err := Review(context.Background(), client, Request{Model: "m", Code: "x", Filename: "x.go"})
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if result.Summary != "tidy" || len(result.Issues) != 1 || *result.Issues[0].Location.Path != "x.go" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestLineNumberBounds(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want *int
	}{
		{"first line", float64(1), intPtr(1)},
		{"large but valid", float64(2147483647), intPtr(2147483647)},
		{"zero", float64(0), nil},
		{"negative", float64(-3), nil},
		{"huge", 1e300, nil},
		{"fraction", 2.5, nil},
		{"string", "3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineNumber(tt.in)
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("lineNumber(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	result := Parse(`{"summary":"s","issues":[{"title":"t","location":{"path":"a.go","lineStart":1e300,"lineEnd":0}}]}`, "")
	loc := result.Issues[0].Location
	if loc == nil || loc.LineStart != nil || loc.LineEnd != nil {
		t.Errorf("out-of-range line bounds must be null, got %+v", loc)
	}
}

func intPtr(n int) *int { return &n }
