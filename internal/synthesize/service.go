package synthesize

import "context"

// Service generates text from a system and user prompt. Implementations
// must be safe for concurrent use; map-reduce synthesis calls Complete from
// multiple workers.
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
