package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Alert is the last position change announced for one symbol and strategy.
type Alert struct {
	Time   time.Time `json:"time"`
	Change int       `json:"change"`
	Price  float64   `json:"price"`
}

// AlertState is the persisted alert history keyed by "symbol:strategy".
type AlertState struct {
	Alerts    map[string]Alert `json:"alerts"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// LoadState reads the alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AlertState{Alerts: map[string]Alert{}}, nil
		}
		return nil, errors.Wrapf(err, "read state %s", filePath)
	}
	var st AlertState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, "decode state %s", filePath)
	}
	if st.Alerts == nil {
		st.Alerts = map[string]Alert{}
	}
	return &st, nil
}

// SaveState writes the alert state to a JSON file.
func SaveState(filePath string, st *AlertState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create dir for %s", filePath)
		}
	}
	return errors.Wrapf(os.WriteFile(filePath, data, 0644), "write state %s", filePath)
}
