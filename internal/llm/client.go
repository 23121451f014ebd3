package llm

import (
	"context"
)

// Client is the one-shot generation interface the reflection engine uses.
// Implementations wrap a specific provider SDK.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
