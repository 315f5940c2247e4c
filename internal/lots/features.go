package lots

import "fmt"

// FeatureColumns is the fixed feature order shared by training and
// inference. The scaler and every classifier depend on this order; it must
// never be reshuffled without retraining.
var FeatureColumns = []string{
	"unit_price",
	"quantity",
	"amount",
	"price_deviation",
	"price_ratio",
	"lot_count",
	"max_amount",
	"min_amount",
	"total_amount",
	"unique_subjects",
	"amount_std",
	"amount_mean",
	"amount_round_1000",
	"amount_round_5000",
	"amount_round_10000",
	"amount_round_50000",
	"amount_round_100000",
}

// FeatureCount is the width of the feature matrix.
const FeatureCount = 17

// MissingSentinel replaces undefined entries at matrix materialization.
// It is a reserved out-of-range marker, never a legitimate observed value;
// tree splits learn to isolate it.
const MissingSentinel = -999.0

// AssembleFeatures materializes the fixed feature matrix for a batch. Rows
// follow FeatureColumns exactly; every column name resolves through
// featureValue, so the header and the matrix cannot drift apart.
// Undefined values survive as NullFloat through the whole pipeline and are
// only collapsed to the sentinel here, immediately before the matrix
// crosses into the classifier interface.
func AssembleFeatures(rows []LotFeatures) [][]float64 {
	matrix := make([][]float64, len(rows))
	for i := range rows {
		row := make([]float64, len(FeatureColumns))
		for j, column := range FeatureColumns {
			row[j] = featureValue(&rows[i], column)
		}
		matrix[i] = row
	}
	return matrix
}

// featureValue resolves one named feature for a row.
func featureValue(r *LotFeatures, column string) float64 {
	switch column {
	case "unit_price":
		return r.UnitPrice.Or(MissingSentinel)
	case "quantity":
		return r.Quantity.Or(MissingSentinel)
	case "amount":
		return r.Amount.Or(MissingSentinel)
	case "price_deviation":
		return r.PriceDeviation.Or(MissingSentinel)
	case "price_ratio":
		return r.PriceRatio.Or(MissingSentinel)
	case "lot_count":
		return float64(r.Announcement.LotCount)
	case "max_amount":
		return r.Announcement.MaxAmount.Or(MissingSentinel)
	case "min_amount":
		return r.Announcement.MinAmount.Or(MissingSentinel)
	case "total_amount":
		return r.Announcement.TotalAmount.Or(MissingSentinel)
	case "unique_subjects":
		return float64(r.Announcement.UniqueSubjects)
	case "amount_std":
		return r.Announcement.AmountStd.Or(MissingSentinel)
	case "amount_mean":
		return r.Announcement.AmountMean.Or(MissingSentinel)
	case "amount_round_1000":
		return float64(r.Round1000)
	case "amount_round_5000":
		return float64(r.Round5000)
	case "amount_round_10000":
		return float64(r.Round10000)
	case "amount_round_50000":
		return float64(r.Round50000)
	case "amount_round_100000":
		return float64(r.Round100000)
	default:
		panic(fmt.Sprintf("unknown feature column %q", column))
	}
}
