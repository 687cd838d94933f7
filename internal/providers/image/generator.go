// Package image wraps the external generative-image capability behind a
// small Generator contract. Retry and prompt fallback live in the
// orchestrator, never here.
package image

import "context"

// maxReferenceImages bounds how many likeness references are forwarded to
// the provider; excess references are silently truncated.
const maxReferenceImages = 5

// Generator produces raw image bytes for a prompt and a set of reference
// images. Provider rejections and empty responses surface as a
// *GenerationError.
type Generator interface {
	Generate(ctx context.Context, prompt string, refs [][]byte) ([]byte, error)
}

// GenerationError carries the provider's rejection message (content policy,
// quota, malformed input) or signals an empty payload.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

func truncateRefs(refs [][]byte) [][]byte {
	if len(refs) > maxReferenceImages {
		return refs[:maxReferenceImages]
	}
	return refs
}
