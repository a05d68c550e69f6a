package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONFileSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.json")
	content := `{
  "conversations": [
    {"source_id": "T1", "client_id": "CL001", "source_kind": "ticket",
     "messages": [{"text": "hello", "author_role": "end-user"}]},
    {"source_id": "C1", "client_id": "CL001", "source_kind": "transcript"},
    {"source_id": "T2", "client_id": "CL002", "source_kind": "ticket"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write conversations: %v", err)
	}

	src := NewJSONFileSource(path)

	all, err := src.ListConversations(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d conversations, want 3", len(all))
	}
	if all[0].SourceID != "T1" || len(all[0].Messages) != 1 {
		t.Fatalf("first conversation parsed wrong: %+v", all[0])
	}

	limited, err := src.ListConversations(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d conversations, want limit of 2", len(limited))
	}

	if _, err := NewJSONFileSource(filepath.Join(dir, "missing.json")).ListConversations(context.Background(), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
