package ensemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lotcli/internal/errors"
)

// ScalerArtifact is the scaler's file name inside the models directory.
const ScalerArtifact = "scaler.json"

// ModelArtifact returns the artifact file name for a model.
func ModelArtifact(name string) string {
	return name + "_model.json"
}

// Save writes the scaler and every model as JSON artifacts under dir,
// creating the directory if needed.
func (p *Predictor) Save(dir string) error {
	if err := p.ready(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating models dir: %w", err)
	}

	if err := writeArtifact(filepath.Join(dir, ScalerArtifact), p.Scaler); err != nil {
		return fmt.Errorf("saving scaler: %w", err)
	}
	for _, name := range ModelNames {
		if err := writeArtifact(filepath.Join(dir, ModelArtifact(name)), p.Models[name]); err != nil {
			return fmt.Errorf("saving model %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the scaler and every model artifact from dir. Any artifact that
// cannot be read or decoded yields a MissingArtifactError; scoring must not
// start with a partial ensemble.
func Load(dir string) (*Predictor, error) {
	predictor := &Predictor{
		Scaler: &StandardScaler{},
		Models: make(map[string]BinaryClassifier, len(ModelNames)),
	}

	scalerPath := filepath.Join(dir, ScalerArtifact)
	if err := readArtifact(scalerPath, predictor.Scaler); err != nil {
		return nil, &errors.MissingArtifactError{Name: "scaler", Path: scalerPath, Err: err}
	}

	for _, name := range ModelNames {
		model := emptyModel(name)
		path := filepath.Join(dir, ModelArtifact(name))
		if err := readArtifact(path, model); err != nil {
			return nil, &errors.MissingArtifactError{Name: name, Path: path, Err: err}
		}
		predictor.Models[name] = model
	}
	return predictor, nil
}

// emptyModel maps an artifact name to its concrete type for decoding.
func emptyModel(name string) BinaryClassifier {
	switch name {
	case ModelGradientBoost:
		return &GradientBoost{}
	case ModelHistBoost:
		return &HistBoost{}
	case ModelAdaBoost:
		return &AdaBoost{}
	case ModelRandomForest:
		return &RandomForest{}
	default:
		return nil
	}
}

func writeArtifact(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
