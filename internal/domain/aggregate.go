package domain

import (
	"math"
)

// EmptySetRating is the rating reported when no countable reviews exist.
// Empty sets resolve to zero rather than an error or null so the profile
// page contract stays uniform.
const EmptySetRating = 0.0

// RatingSummary is the aggregate trust signal for one provider or solution.
type RatingSummary struct {
	OverallRating    float64            `json:"overall_rating"`
	CriteriaAverages map[string]float64 `json:"criteria_averages"`
	ReviewCount      int                `json:"review_count"`
}

// Round1 rounds to 1 decimal place, the display precision for aggregates.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to 2 decimal places, the storage precision for a review's
// overall score.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeriveOverallScore computes a review's overall score from its criteria
// scores, rounded to 2 decimals. ok is false when no criteria were scored.
func DeriveOverallScore(scores CriteriaScores) (float64, bool) {
	mean, ok := scores.Mean()
	if !ok {
		return 0, false
	}
	return Round2(mean), true
}

// Countable filters the reviews down to those that participate in
// aggregates (approved status).
func Countable(reviews []Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if r.IsCountable() {
			out = append(out, r)
		}
	}
	return out
}

// DedupeByID merges review batches into a single slice with each review id
// appearing once, keeping the first occurrence. The rollup gathers reviews
// through both the direct-provider path and the solutions path; a review
// reachable through both must count once.
func DedupeByID(batches ...[]Review) []Review {
	seen := make(map[string]struct{})
	var out []Review
	for _, batch := range batches {
		for _, r := range batch {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// CriteriaAverages computes the per-criterion mean over the given reviews.
// Every key of the fixed criteria set is present in the result. A review
// that omitted a criterion contributes nothing to that criterion (no
// implicit zero); criteria with zero contributors report 0. Means are
// rounded to 1 decimal.
func CriteriaAverages(reviews []Review) map[string]float64 {
	sums := make(map[string]int, len(CriterionKeys()))
	counts := make(map[string]int, len(CriterionKeys()))

	for _, r := range reviews {
		for key, score := range r.CriteriaScores {
			sums[key] += score
			counts[key]++
		}
	}

	averages := make(map[string]float64, len(CriterionKeys()))
	for _, key := range CriterionKeys() {
		if counts[key] == 0 {
			averages[key] = EmptySetRating
			continue
		}
		averages[key] = Round1(float64(sums[key]) / float64(counts[key]))
	}
	return averages
}

// OverallAverage computes the mean of the reviews' overall scores, rounded
// to 1 decimal; 0 when the set is empty. This is computed independently of
// CriteriaAverages and the two may diverge slightly due to rounding.
func OverallAverage(reviews []Review) float64 {
	if len(reviews) == 0 {
		return EmptySetRating
	}
	sum := 0.0
	for _, r := range reviews {
		sum += r.OverallScore
	}
	return Round1(sum / float64(len(reviews)))
}

// Summarize builds the full rating summary for a set of reviews. Callers
// pass the already-gathered, already-deduplicated review set; only countable
// reviews contribute.
func Summarize(reviews []Review) RatingSummary {
	countable := Countable(reviews)
	return RatingSummary{
		OverallRating:    OverallAverage(countable),
		CriteriaAverages: CriteriaAverages(countable),
		ReviewCount:      len(countable),
	}
}
