package lots

import (
	"context"
	"log/slog"
	"math"
)

// Pipeline derives anomaly signals from a raw batch of lots. The whole
// batch is processed together: subject baselines and announcement
// aggregates need the full cohort, so none of this works row by row.
//
// Everything is recomputed from scratch per batch; the pipeline keeps no
// state between invocations.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a feature pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Enrich runs the full derivation over a batch: numeric normalization,
// unit prices, subject baselines, announcement aggregates and rounding
// flags. Row-level parse failures are recovered as undefined values and
// never abort the batch.
func (p *Pipeline) Enrich(ctx context.Context, batch []Lot) []LotFeatures {
	rows := make([]LotFeatures, len(batch))

	unparseable := 0
	for i, lot := range batch {
		rows[i].Lot = lot
		rows[i].Amount = lot.Amount.Value
		rows[i].Quantity = lot.Quantity.Value
		if !rows[i].Amount.Valid {
			unparseable++
		}
		rows[i].UnitPrice = unitPrice(rows[i].Amount, rows[i].Quantity)
	}
	if unparseable > 0 {
		p.logger.WarnContext(ctx, "batch contains unparseable amounts",
			"count", unparseable,
			"total", len(batch))
	}

	baselines := SubjectBaselines(rows)
	p.applyBaselines(rows, baselines)

	stats := AnnouncementAggregates(rows)
	for i := range rows {
		rows[i].Announcement = stats[rows[i].Lot.Announcement]
	}

	for i := range rows {
		applyRoundingFlags(&rows[i])
	}

	p.logger.DebugContext(ctx, "batch enriched",
		"lots", len(rows),
		"subjects_with_baseline", len(baselines),
		"announcements", len(stats))

	return rows
}

// unitPrice is amount/quantity for positive quantities; otherwise the
// amount stands in for the unit price (avoids dividing by zero or a
// negative count). Undefined amount stays undefined.
func unitPrice(amount, quantity NullFloat) NullFloat {
	if !amount.Valid {
		return Null()
	}
	if quantity.Valid && quantity.Float64 > 0 {
		return Valid(amount.Float64 / quantity.Float64)
	}
	return Valid(amount.Float64)
}

// SubjectBaselines groups lots by subject text and computes the unit-price
// mean and population standard deviation for every subject whose cohort
// (lots with positive quantity and a defined unit price) has at least
// MinSubjectCohort members. Smaller cohorts get no baseline.
func SubjectBaselines(rows []LotFeatures) map[string]SubjectBaseline {
	cohorts := make(map[string][]float64)
	for _, r := range rows {
		if r.Quantity.Valid && r.Quantity.Float64 > 0 && r.UnitPrice.Valid {
			cohorts[r.Lot.Subject] = append(cohorts[r.Lot.Subject], r.UnitPrice.Float64)
		}
	}

	baselines := make(map[string]SubjectBaseline, len(cohorts))
	for subject, prices := range cohorts {
		if len(prices) < MinSubjectCohort {
			continue
		}
		m := mean(prices)
		baselines[subject] = SubjectBaseline{
			Mean:  m,
			Std:   populationStd(prices, m),
			Count: len(prices),
		}
	}
	return baselines
}

// applyBaselines joins the subject baselines back onto every lot and
// derives deviation and ratio. Both stay undefined when there is no
// baseline; deviation additionally requires a non-zero spread and ratio a
// non-zero mean.
func (p *Pipeline) applyBaselines(rows []LotFeatures, baselines map[string]SubjectBaseline) {
	for i := range rows {
		b, ok := baselines[rows[i].Lot.Subject]
		if !ok || !rows[i].UnitPrice.Valid {
			continue
		}
		rows[i].AvgUnitPrice = Valid(b.Mean)
		rows[i].StdUnitPrice = Valid(b.Std)

		if b.Std != 0 {
			rows[i].PriceDeviation = Valid((rows[i].UnitPrice.Float64 - b.Mean) / b.Std)
		}
		if b.Mean != 0 {
			rows[i].PriceRatio = Valid(rows[i].UnitPrice.Float64 / b.Mean)
		}
	}
}

// AnnouncementAggregates groups lots by parent announcement and computes
// the per-group amount aggregates and distinct-subject count. The result
// is broadcast onto every lot of the group by the caller; sibling lots end
// up carrying identical values.
func AnnouncementAggregates(rows []LotFeatures) map[string]AnnouncementStats {
	type group struct {
		amounts  []float64
		subjects map[string]struct{}
		count    int
	}
	groups := make(map[string]*group)

	for _, r := range rows {
		g, ok := groups[r.Lot.Announcement]
		if !ok {
			g = &group{subjects: make(map[string]struct{})}
			groups[r.Lot.Announcement] = g
		}
		g.count++
		g.subjects[r.Lot.Subject] = struct{}{}
		if r.Amount.Valid {
			g.amounts = append(g.amounts, r.Amount.Float64)
		}
	}

	stats := make(map[string]AnnouncementStats, len(groups))
	for id, g := range groups {
		s := AnnouncementStats{
			LotCount:       g.count,
			UniqueSubjects: len(g.subjects),
		}
		if len(g.amounts) > 0 {
			maxA, minA, sum := g.amounts[0], g.amounts[0], 0.0
			for _, a := range g.amounts {
				maxA = math.Max(maxA, a)
				minA = math.Min(minA, a)
				sum += a
			}
			m := sum / float64(len(g.amounts))
			s.MaxAmount = Valid(maxA)
			s.MinAmount = Valid(minA)
			s.TotalAmount = Valid(sum)
			s.AmountMean = Valid(m)
			s.AmountStd = sampleStd(g.amounts, m)
		}
		stats[id] = s
	}
	return stats
}

// applyRoundingFlags sets the five divisibility flags for the lot's
// amount. An undefined amount leaves all flags at zero.
func applyRoundingFlags(r *LotFeatures) {
	if !r.Amount.Valid {
		return
	}
	flags := [5]*int{&r.Round1000, &r.Round5000, &r.Round10000, &r.Round50000, &r.Round100000}
	for i, threshold := range RoundingThresholds {
		if math.Mod(r.Amount.Float64, threshold) == 0 {
			*flags[i] = 1
		}
	}
}
