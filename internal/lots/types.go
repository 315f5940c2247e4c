package lots

import (
	"encoding/json"
)

// Lot represents a single procurement line item as it appears in the input
// document. Numeric fields arrive either as JSON numbers or as
// locale-formatted strings ("1 234,56") and are decoded tolerantly.
type Lot struct {
	ID           string      `json:"lot_id,omitempty"`
	Announcement string      `json:"announcement"`
	Customer     string      `json:"customer,omitempty"`
	Subject      string      `json:"subject"`
	SubjectLink  string      `json:"subject_link,omitempty"`
	PurchaseType string      `json:"purchase_type,omitempty"`
	Status       string      `json:"status,omitempty"`
	Quantity     LocaleFloat `json:"quantity"`
	Amount       LocaleFloat `json:"amount"`
}

// NullFloat is an optional float64. It stays invalid for values that could
// not be parsed or that are undefined for a lot (e.g. no subject baseline),
// so "missing" never collides with a legitimate zero. The reserved sentinel
// is substituted only at feature-matrix materialization.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Valid wraps a defined float value.
func Valid(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Null returns an undefined value.
func Null() NullFloat {
	return NullFloat{}
}

// Or returns the value, or fallback when undefined.
func (n NullFloat) Or(fallback float64) float64 {
	if n.Valid {
		return n.Float64
	}
	return fallback
}

// MarshalJSON encodes undefined values as JSON null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Null()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = Null()
		return nil
	}
	*n = Valid(v)
	return nil
}

// SubjectBaseline holds per-subject unit-price statistics computed over a
// cohort of at least MinSubjectCohort lots with positive quantity. Subjects
// with smaller cohorts have no baseline at all.
type SubjectBaseline struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"` // population standard deviation
	Count int     `json:"count"`
}

// AnnouncementStats holds aggregates over all lots sharing a parent
// announcement. Aggregates are computed over lots with a parseable amount;
// announcements where no amount parsed keep the aggregates undefined.
type AnnouncementStats struct {
	LotCount       int       `json:"lot_count"`
	MaxAmount      NullFloat `json:"max_amount"`
	MinAmount      NullFloat `json:"min_amount"`
	TotalAmount    NullFloat `json:"total_amount"`
	AmountMean     NullFloat `json:"amount_mean"`
	AmountStd      NullFloat `json:"amount_std"` // undefined for single-lot announcements
	UniqueSubjects int       `json:"unique_subjects"`
}

// LotFeatures is a lot joined with every derived signal the pipeline
// computes: parsed numerics, unit price, subject-baseline deviations,
// announcement aggregates and rounding flags.
type LotFeatures struct {
	Lot Lot

	Amount   NullFloat
	Quantity NullFloat

	UnitPrice      NullFloat
	AvgUnitPrice   NullFloat
	StdUnitPrice   NullFloat
	PriceDeviation NullFloat
	PriceRatio     NullFloat

	Announcement AnnouncementStats

	Round1000   int
	Round5000   int
	Round10000  int
	Round50000  int
	Round100000 int
}

// SuspicionLevel is the categorical tier derived from the ensemble
// probability. One canonical policy: low < 25, medium 25-75, high >= 75.
type SuspicionLevel string

const (
	LevelLow    SuspicionLevel = "low"
	LevelMedium SuspicionLevel = "medium"
	LevelHigh   SuspicionLevel = "high"

	// LevelMediumThreshold and LevelHighThreshold bound the medium tier.
	LevelMediumThreshold = 25.0
	LevelHighThreshold   = 75.0
)

// LevelFor maps a 0-100 suspicion probability to its tier.
func LevelFor(probability float64) SuspicionLevel {
	switch {
	case probability < LevelMediumThreshold:
		return LevelLow
	case probability < LevelHighThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// ScoredLot is the per-lot analysis result returned to callers and written
// by the exporters.
type ScoredLot struct {
	LotID                string         `json:"lot_id"`
	Announcement         string         `json:"announcement"`
	Customer             string         `json:"customer"`
	Subject              string         `json:"subject"`
	Quantity             NullFloat      `json:"quantity"`
	Amount               NullFloat      `json:"amount"`
	UnitPrice            NullFloat      `json:"unit_price"`
	SuspicionProbability float64        `json:"suspicion_probability"`
	SuspicionLevel       SuspicionLevel `json:"suspicion_level"`
	IsSuspicious         int            `json:"is_suspicious"`
}

// RoundingThresholds are the divisibility checks applied to each amount, in
// feature-column order.
var RoundingThresholds = [5]float64{1000, 5000, 10000, 50000, 100000}

const (
	// MinSubjectCohort is the minimum number of positive-quantity lots a
	// subject needs before its unit-price baseline is considered defined.
	MinSubjectCohort = 3

	// SuspiciousThreshold is the probability at or above which a lot is
	// flagged as suspicious.
	SuspiciousThreshold = 75.0
)
