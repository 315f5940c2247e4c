package lots

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func enrich(t *testing.T, batch []Lot) []LotFeatures {
	t.Helper()
	p := NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return p.Enrich(context.Background(), batch)
}

func TestHighPriceRule(t *testing.T) {
	// The outlier is part of its own baseline: mean is 325, so the rule
	// needs a unit price above 975 to fire.
	batch := []Lot{
		testLot("a1", "paper", 100, 1),
		testLot("a1", "paper", 100, 1),
		testLot("a2", "paper", 100, 1),
		testLot("a2", "paper", 1000, 1),
	}

	labels := DeriveWeakLabels(enrich(t, batch))

	assert.Equal(t, []int{0, 0, 0, 1}, labels.HighPrice)
	assert.Equal(t, 1, labels.Suspicious[3])
}

func TestHighPriceRuleNoBaseline(t *testing.T) {
	// Two lots only: no baseline, so even an extreme price cannot fire.
	batch := []Lot{
		testLot("a1", "paper", 100, 1),
		testLot("a1", "paper", 99999, 1),
	}

	labels := DeriveWeakLabels(enrich(t, batch))

	assert.Equal(t, []int{0, 0}, labels.HighPrice)
}

func TestSplitRule(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []float64
		expected int
	}{
		{"four lots under ceiling over floor", []float64{999_999, 999_999, 999_999, 999_999}, 1},
		{"two lots never fire", []float64{999_999, 2_500_000}, 0},
		{"one lot at ceiling blocks the rule", []float64{1_000_000, 999_999, 999_999, 999_999}, 0},
		{"total below floor", []float64{900_000, 900_000, 900_000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := make([]Lot, len(tt.amounts))
			for i, a := range tt.amounts {
				batch[i] = testLot("ann", "s", a, 1)
			}
			labels := DeriveWeakLabels(enrich(t, batch))
			for i := range batch {
				assert.Equal(t, tt.expected, labels.Split[i], "lot %d", i)
			}
		})
	}
}

func TestSplitRuleSingleLargeLot(t *testing.T) {
	// A single lot of one million is not a split purchase.
	labels := DeriveWeakLabels(enrich(t, []Lot{testLot("ann", "s", 1_000_000, 1)}))
	assert.Equal(t, []int{0}, labels.Split)
}

func TestRoundAmountRule(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int
	}{
		{"round and above floor", 150_000, 1},
		{"exactly at floor", 100_000, 1},
		{"round but below floor", 90_000, 0},
		{"above floor but not round", 150_001, 0},
		{"divisible by 1000 only", 153_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := DeriveWeakLabels(enrich(t, []Lot{testLot("a", "s", tt.amount, 1)}))
			assert.Equal(t, tt.expected, labels.RoundAmount[0])
		})
	}
}

func TestSuspiciousIsUnionOfRules(t *testing.T) {
	batch := []Lot{
		testLot("split", "s1", 999_000, 1),
		testLot("split", "s2", 999_000, 1),
		testLot("split", "s3", 999_000, 1),
		testLot("split", "s4", 999_000, 1),
		testLot("clean", "s5", 123_457, 1),
	}

	labels := DeriveWeakLabels(enrich(t, batch))

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, labels.HighPrice[i])
		assert.Equal(t, 0, labels.RoundAmount[i])
		assert.Equal(t, 1, labels.Split[i])
		assert.Equal(t, 1, labels.Suspicious[i])
	}
	assert.Equal(t, 0, labels.Suspicious[4])
}

func TestDeriveWeakLabelsIdempotent(t *testing.T) {
	rows := enrich(t, []Lot{
		testLot("a1", "paper", 150_000, 1),
		testLot("a1", "paper", 80_000, 2),
		testLot("a2", "paper", 400_000, 4),
	})

	first := DeriveWeakLabels(rows)
	second := DeriveWeakLabels(rows)

	assert.Equal(t, first, second)
}
