package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// Source supplies raw conversations for the classification stage. The
// extraction of tickets and transcripts from upstream systems is an
// external concern; the core only consumes this interface. Sources do
// not know what has been analyzed; the analyzer filters against the
// record store.
type Source interface {
	// ListConversations returns up to limit conversations.
	ListConversations(ctx context.Context, limit int) ([]models.Conversation, error)
}

// JSONFileSource reads conversations from a JSON file of the shape
// {"conversations": [...]}. It backs the CLI when no live upstream is
// wired in.
type JSONFileSource struct {
	path string
}

func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

func (s *JSONFileSource) ListConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading conversations file: %w", err)
	}

	var payload struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("error parsing conversations file: %w", err)
	}

	convs := payload.Conversations
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}
