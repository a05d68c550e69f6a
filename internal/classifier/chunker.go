package classifier

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the character budget per chunk, sized to the
// sentiment model's context window.
const DefaultChunkSize = 400

var sentenceBoundary = regexp.MustCompile(`(?m)([.!?])\s+`)

// ChunkText splits long text into chunks of at most maxChars characters,
// preferring paragraph boundaries and falling back to sentence
// boundaries. A fragment longer than the budget is kept whole rather
// than split mid-sentence. Non-blank input always yields at least one
// chunk.
func ChunkText(text string, maxChars int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			fragments = append(fragments, s)
		}
	}

	// Single-paragraph text: fall back to sentence splitting.
	if len(fragments) <= 1 {
		fragments = splitSentences(strings.TrimSpace(text))
	}

	var chunks []string
	current := ""
	for _, fragment := range fragments {
		if current == "" {
			current = fragment
			continue
		}
		if len(current)+len(fragment)+1 <= maxChars {
			current = current + " " + fragment
		} else {
			chunks = append(chunks, current)
			current = fragment
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	if len(chunks) == 0 {
		chunks = append(chunks, strings.TrimSpace(text))
	}
	return chunks
}

func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
