// Package analysis turns user-supplied claims into fact-check verdicts via
// the language-model boundary.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"factlens/pkg/llm"
)

const defaultSystemPersona = "You are a helpful assistant"

// Request is one fact-check invocation.
type Request struct {
	Language string
	Content  string
}

// Result carries either generated analysis text or a user-displayable
// diagnostic. Exactly one of the two fields is non-empty.
type Result struct {
	Text         string
	ErrorMessage string
}

// Failed reports whether the result carries a diagnostic instead of text.
func (r Result) Failed() bool {
	return r.ErrorMessage != ""
}

// Analyzer orchestrates prompt construction and the external model call.
type Analyzer struct {
	client llm.Client
	log    *slog.Logger
}

func New(client llm.Client, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}

	return &Analyzer{
		client: client,
		log:    log.With("component", "analysis.analyzer"),
	}
}

// Analyze runs one fact-check request. It never returns an error: any
// transport, auth, quota, or provider failure is folded into the result as
// a displayable diagnostic, so callers relay success and failure uniformly.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Result {
	prompt := BuildPrompt(strings.TrimSpace(req.Content), req.Language)

	text, err := a.client.Complete(ctx, defaultSystemPersona, prompt)
	if err != nil {
		a.log.Warn("Analysis request failed", "lang", req.Language, "error", err)
		return Result{ErrorMessage: fmt.Sprintf("OpenAI API xatosi: %v", err)}
	}

	return Result{Text: text}
}
