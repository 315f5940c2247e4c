package ensemble

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Trainer fits the scaler and all four ensemble members from a labeled
// feature matrix.
type Trainer struct {
	config TrainingConfig
	logger *slog.Logger
}

// NewTrainer creates a trainer with the given hyperparameters.
func NewTrainer(cfg TrainingConfig, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{config: cfg, logger: logger}
}

// Train shuffles the rows with the configured seed, holds out the configured
// fraction for evaluation, fits the scaler and every model on the training
// portion, and logs holdout accuracy per model. The holdout never influences
// the fitted parameters.
func (t *Trainer) Train(ctx context.Context, features [][]float64, labels []int) (*Predictor, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("training: empty feature matrix")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("training: %d rows but %d labels", len(features), len(labels))
	}

	rng := rand.New(rand.NewSource(t.config.Seed))
	order := allIndices(len(features))
	rng.Shuffle(len(order), func(a, b int) {
		order[a], order[b] = order[b], order[a]
	})

	holdoutSize := int(float64(len(order)) * t.config.HoldoutFraction)
	if holdoutSize >= len(order) {
		holdoutSize = 0
	}
	trainIdx := order[holdoutSize:]
	holdoutIdx := order[:holdoutSize]

	trainX, trainY := subset(features, labels, trainIdx)
	holdX, holdY := subset(features, labels, holdoutIdx)

	t.logger.InfoContext(ctx, "training ensemble",
		"rows", len(features),
		"train_rows", len(trainX),
		"holdout_rows", len(holdX),
		"positives", countPositives(labels),
		"seed", t.config.Seed,
		"estimators", t.config.Estimators)

	scaler := &StandardScaler{}
	if err := scaler.Fit(trainX); err != nil {
		return nil, fmt.Errorf("fitting scaler: %w", err)
	}
	scaledTrain, err := scaler.Transform(trainX)
	if err != nil {
		return nil, fmt.Errorf("scaling training rows: %w", err)
	}
	var scaledHold [][]float64
	if len(holdX) > 0 {
		if scaledHold, err = scaler.Transform(holdX); err != nil {
			return nil, fmt.Errorf("scaling holdout rows: %w", err)
		}
	}

	predictor := &Predictor{
		Scaler: scaler,
		Models: make(map[string]BinaryClassifier, len(ModelNames)),
	}
	for _, name := range ModelNames {
		model := t.newModel(name)
		start := time.Now()
		if err := model.Fit(scaledTrain, trainY); err != nil {
			return nil, fmt.Errorf("fitting %s: %w", name, err)
		}
		predictor.Models[name] = model

		attrs := []any{"model", name, "duration", time.Since(start)}
		if len(scaledHold) > 0 {
			attrs = append(attrs, "holdout_accuracy", accuracy(model.PredictProba(scaledHold), holdY))
		}
		t.logger.InfoContext(ctx, "model fitted", attrs...)
	}
	return predictor, nil
}

// newModel constructs the named unfitted member with the trainer's
// hyperparameters.
func (t *Trainer) newModel(name string) BinaryClassifier {
	switch name {
	case ModelGradientBoost:
		return NewGradientBoost(t.config)
	case ModelHistBoost:
		return NewHistBoost(t.config)
	case ModelAdaBoost:
		return NewAdaBoost(t.config)
	default:
		return NewRandomForest(t.config)
	}
}

func subset(features [][]float64, labels []int, indices []int) ([][]float64, []int) {
	x := make([][]float64, len(indices))
	y := make([]int, len(indices))
	for k, i := range indices {
		x[k] = features[i]
		y[k] = labels[i]
	}
	return x, y
}

func countPositives(labels []int) int {
	pos := 0
	for _, y := range labels {
		if y == 1 {
			pos++
		}
	}
	return pos
}

func accuracy(probs []float64, labels []int) float64 {
	if len(probs) == 0 {
		return 0
	}
	correct := 0
	for i, p := range probs {
		predicted := 0
		if p >= 0.5 {
			predicted = 1
		}
		if predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(probs))
}
