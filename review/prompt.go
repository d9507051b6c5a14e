package review

import (
	"fmt"
	"strings"

	"github.com/richinex/modelgate/llm"
)

const systemPrompt = "You are a meticulous senior code reviewer. Produce concise, actionable, " +
	"structured feedback. Prefer precise pointers with line hints and short, concrete suggestions. " +
	"Respond in English unless the code/comments are in Chinese, then respond in Chinese."

// DefaultGoals are used when a request names none.
var DefaultGoals = []string{
	"Correctness and potential bugs",
	"Security pitfalls",
	"Performance issues",
	"Readability and maintainability",
	"Edge cases and error handling",
}

const formatInstructions = `Return ONLY a minified JSON object with this exact shape (no markdown):
{
  "summary": string,
  "score": number (0-100) optional,
  "issues": [
    {
      "severity": one of ["INFO", "WARN", "ERROR"],
      "title": string,
      "description": string,
      "location": { "path": string optional, "lineStart": number optional, "lineEnd": number optional } optional,
      "suggestion": string optional,
      "rule": string optional
    }
  ]
}`

// Messages builds the two-message review conversation.
func Messages(req Request) []llm.ChatMessage {
	goals := req.Goals
	if len(goals) == 0 {
		goals = DefaultGoals
	}
	numbered := make([]string, len(goals))
	for i, g := range goals {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, g)
	}

	var b strings.Builder
	b.WriteString("Please review the following code. Context:")
	if req.Filename != "" {
		b.WriteString("\n- File: " + req.Filename)
	}
	if req.Language != "" {
		b.WriteString("\n- Language: " + req.Language)
	}
	b.WriteString("\n\nGoals:\n")
	b.WriteString(strings.Join(numbered, "\n"))
	b.WriteString("\n")
	if guidelines := strings.TrimSpace(req.Guidelines); guidelines != "" {
		b.WriteString("\nAdditional guidelines:\n" + guidelines + "\n")
	}
	b.WriteString("\n" + formatInstructions)
	b.WriteString("\n\nCODE START\n\n```\n" + req.Code + "\n```\n\nCODE END")

	return []llm.ChatMessage{
		llm.SystemMessage(systemPrompt),
		llm.UserMessage(b.String()),
	}
}
