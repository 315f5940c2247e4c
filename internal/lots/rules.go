package lots

// WeakLabels holds the rule-derived binary labels for a batch, aligned by
// index with the enriched rows.
//
// These are heuristic proxies used only as a training target. They are not
// verified fraud, and they are derived from the same engineered signals the
// models consume, so a degree of label leakage is inherent to the approach.
// Nothing downstream may treat them as ground truth or as the deployed
// score.
type WeakLabels struct {
	HighPrice   []int
	Split       []int
	RoundAmount []int
	Suspicious  []int
}

// Rule thresholds. The split rule targets announcements that look like one
// large purchase broken into pieces small enough to dodge scrutiny.
const (
	highPriceRatio = 3.0

	splitMinLots     = 3
	splitMaxLot      = 1_000_000.0
	splitMinTotal    = 3_000_000.0

	roundDivisor   = 10_000.0
	roundMinAmount = 100_000.0
)

// DeriveWeakLabels computes the three heuristic rules and their OR over an
// enriched batch. Pure function of the already-derived fields: recomputing
// it on the same rows yields identical labels.
func DeriveWeakLabels(rows []LotFeatures) WeakLabels {
	n := len(rows)
	labels := WeakLabels{
		HighPrice:   make([]int, n),
		Split:       make([]int, n),
		RoundAmount: make([]int, n),
		Suspicious:  make([]int, n),
	}

	for i, r := range rows {
		if highPriceRule(r) {
			labels.HighPrice[i] = 1
		}
		if splitRule(r) {
			labels.Split[i] = 1
		}
		if roundRule(r) {
			labels.RoundAmount[i] = 1
		}
		if labels.HighPrice[i] == 1 || labels.Split[i] == 1 || labels.RoundAmount[i] == 1 {
			labels.Suspicious[i] = 1
		}
	}
	return labels
}

// highPriceRule fires when the subject baseline is defined and the lot's
// unit price exceeds three times the baseline mean.
func highPriceRule(r LotFeatures) bool {
	return r.AvgUnitPrice.Valid && r.UnitPrice.Valid &&
		r.UnitPrice.Float64 > highPriceRatio*r.AvgUnitPrice.Float64
}

// splitRule fires for announcements with at least three lots, all below the
// per-lot ceiling, that together still clear the total floor.
func splitRule(r LotFeatures) bool {
	a := r.Announcement
	return a.LotCount >= splitMinLots &&
		a.MaxAmount.Valid && a.MaxAmount.Float64 < splitMaxLot &&
		a.TotalAmount.Valid && a.TotalAmount.Float64 >= splitMinTotal
}

// roundRule fires for conspicuously round amounts at or above the floor.
func roundRule(r LotFeatures) bool {
	return r.Amount.Valid &&
		r.Round10000 == 1 &&
		r.Amount.Float64 >= roundMinAmount
}
