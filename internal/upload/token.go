package upload

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// LoadToken reads the persisted OAuth token blob from a previous run
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken persists the OAuth token blob for the next run. Tokens are
// credentials, so the file is user-readable only.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
