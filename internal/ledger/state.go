package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"CompSim/internal/model"
)

// LoadState reads the run state from a JSON file. A missing file is a fresh
// ledger at season 0.
func LoadState(filePath string) (*model.RunState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.RunState{}, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var state model.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", filePath, err)
	}
	if state.Season < 0 {
		return nil, fmt.Errorf("parse ledger %s: negative season %d", filePath, state.Season)
	}
	return &state, nil
}

// SaveState stamps UpdatedAt and replaces the ledger file with a renamed
// sibling temp file.
func SaveState(filePath string, state *model.RunState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
