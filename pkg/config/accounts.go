package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadClientList reads a target-accounts file of the shape
// {"accounts": ["CL004114", ...]} and returns the trimmed, non-empty
// client IDs.
func LoadClientList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading client list: %w", err)
	}

	var payload struct {
		Accounts []string `json:"accounts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("error parsing client list: %w", err)
	}

	ids := make([]string, 0, len(payload.Accounts))
	for _, id := range payload.Accounts {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids, nil
}
