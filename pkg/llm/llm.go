// Package llm defines the boundary to the external language-model service.
package llm

import (
	"context"

	"factlens/pkg/config"
	llmopenai "factlens/pkg/llm/openai"
)

// Client is the minimal surface the analysis pipeline needs from a
// language-model provider.
type Client interface {
	Health(ctx context.Context) error
	Complete(ctx context.Context, system string, user string) (string, error)
}

// New constructs the configured provider client.
func New(cfg *config.Config) (Client, error) {
	return llmopenai.New(cfg)
}
