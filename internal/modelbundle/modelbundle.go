// Package modelbundle serializes a fitted regression to disk so reports can
// reload the exact model instead of refitting it. Bundles are
// msgpack-encoded and carry the run id and creation time for provenance.
package modelbundle

import (
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/antlab/forageshift/internal/analysis"
)

// Bundle is a serialized regression model with its provenance.
type Bundle struct {
	RunID      string                    `msgpack:"run_id"`
	Label      string                    `msgpack:"label"`
	CreatedAt  time.Time                 `msgpack:"created_at"`
	Predictors []string                  `msgpack:"predictors"`
	Model      analysis.RegressionResult `msgpack:"model"`
}

// New wraps a fitted model in a bundle tied to an analysis run.
func New(runID, label string, model analysis.RegressionResult) Bundle {
	return Bundle{
		RunID:      runID,
		Label:      label,
		CreatedAt:  time.Now().UTC(),
		Predictors: PredictorNames(),
		Model:      model,
	}
}

// PredictorNames returns the model's term names in coefficient order.
func PredictorNames() []string {
	names := make([]string, len(analysis.PredictorNames))
	copy(names, analysis.PredictorNames)
	return names
}

// Save writes the bundle to path, replacing any existing file.
func Save(path string, b Bundle) error {
	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode model bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model bundle: %w", err)
	}
	return nil
}

// Load reads a bundle from path and validates that it carries the full
// coefficient set the current predictors expect.
func Load(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read model bundle: %w", err)
	}

	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("failed to decode model bundle: %w", err)
	}
	if len(b.Model.Coefficients) != len(analysis.PredictorNames) {
		return Bundle{}, fmt.Errorf("model bundle has %d coefficients, expected %d",
			len(b.Model.Coefficients), len(analysis.PredictorNames))
	}
	return b, nil
}
