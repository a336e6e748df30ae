package services

import (
	"backend/models"
	"fmt"
	"sort"
	"strings"
)

// ScoreWeights are the operator-adjustable weights for the four scoring
// components. They are normalized before use, so any positive mix is
// accepted.
type ScoreWeights struct {
	Price       float64 `json:"price" example:"40"`
	LeadTime    float64 `json:"lead_time" example:"20"`
	Quality     float64 `json:"quality" example:"25"`
	Reliability float64 `json:"reliability" example:"15"`
}

// DefaultScoreWeights returns the standard weighting used when the operator
// has not adjusted the sliders.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Price: 40, LeadTime: 20, Quality: 25, Reliability: 15}
}

// Normalize scales the weights so they sum to 100. An all-zero or negative
// mix is rejected rather than guessed at.
func (w ScoreWeights) Normalize() (ScoreWeights, error) {
	if w.Price < 0 || w.LeadTime < 0 || w.Quality < 0 || w.Reliability < 0 {
		return ScoreWeights{}, fmt.Errorf("score weights must not be negative")
	}
	sum := w.Price + w.LeadTime + w.Quality + w.Reliability
	if sum <= 0 {
		return ScoreWeights{}, fmt.Errorf("score weights must sum to a positive value")
	}
	factor := 100 / sum
	return ScoreWeights{
		Price:       w.Price * factor,
		LeadTime:    w.LeadTime * factor,
		Quality:     w.Quality * factor,
		Reliability: w.Reliability * factor,
	}, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PriceScore maps a unit price onto [0,100] with an inverse-linear formula.
// Absolute rather than pool-relative, so scores are comparable across RFQs.
func PriceScore(unitPrice float64) float64 {
	return clampScore(100 - unitPrice/10)
}

// LeadTimeScore maps a lead time in days onto [0,100].
func LeadTimeScore(leadTimeDays int) float64 {
	return clampScore(100 - float64(leadTimeDays)*2)
}

// QualityScore maps a supplier rating (1-5) onto [20,100].
func QualityScore(rating float64) float64 {
	return clampScore(rating * 20)
}

// ReliabilityScore rewards quotes that are still in the Submitted state;
// anything already pulled into review scores lower until resolved.
func ReliabilityScore(status string) float64 {
	if status == models.QuoteStatusSubmitted {
		return 80
	}
	return 60
}

// QuoteLine is one supplier's offer for a single RFQ item, with the supplier
// attributes the scorer needs.
type QuoteLine struct {
	QuoteID        int     `json:"quote_id"`
	SupplierID     int     `json:"supplier_id"`
	SupplierName   string  `json:"supplier_name"`
	UnitPrice      float64 `json:"unit_price"`
	LeadTimeDays   int     `json:"lead_time_days"`
	SupplierRating float64 `json:"supplier_rating"`
	QuoteStatus    string  `json:"quote_status"`
}

// ScoredLine is a QuoteLine with its component and final scores filled in.
type ScoredLine struct {
	QuoteLine
	PriceScore       float64 `json:"price_score"`
	LeadTimeScore    float64 `json:"lead_time_score"`
	QualityScore     float64 `json:"quality_score"`
	ReliabilityScore float64 `json:"reliability_score"`
	FinalScore       float64 `json:"final_score"`
	BestPrice        bool    `json:"best_price"`
	Fastest          bool    `json:"fastest"`
	BestOverall      bool    `json:"best_overall"`
}

// ItemComparison ranks all supplier offers for one RFQ item.
type ItemComparison struct {
	RFQItemID   int          `json:"rfq_item_id"`
	ItemCode    string       `json:"item_code"`
	Description string       `json:"description"`
	Lines       []ScoredLine `json:"lines"`
}

// ScoreLine computes the weighted final score for one offer. Weights must
// already be normalized.
func ScoreLine(line QuoteLine, w ScoreWeights) ScoredLine {
	scored := ScoredLine{
		QuoteLine:        line,
		PriceScore:       PriceScore(line.UnitPrice),
		LeadTimeScore:    LeadTimeScore(line.LeadTimeDays),
		QualityScore:     QualityScore(line.SupplierRating),
		ReliabilityScore: ReliabilityScore(line.QuoteStatus),
	}
	scored.FinalScore = scored.PriceScore*w.Price/100 +
		scored.LeadTimeScore*w.LeadTime/100 +
		scored.QualityScore*w.Quality/100 +
		scored.ReliabilityScore*w.Reliability/100
	return scored
}

// CompareItem scores every offer for one RFQ item and tags the best price,
// fastest and best overall lines. Ties break on the lower supplier id so the
// outcome is deterministic regardless of input order.
func CompareItem(rfqItemID int, itemCode, description string, lines []QuoteLine, w ScoreWeights) ItemComparison {
	comparison := ItemComparison{RFQItemID: rfqItemID, ItemCode: itemCode, Description: description}
	if len(lines) == 0 {
		return comparison
	}

	for _, line := range lines {
		comparison.Lines = append(comparison.Lines, ScoreLine(line, w))
	}
	sort.SliceStable(comparison.Lines, func(i, j int) bool {
		return comparison.Lines[i].SupplierID < comparison.Lines[j].SupplierID
	})

	bestPrice, fastest, bestOverall := 0, 0, 0
	for i, line := range comparison.Lines {
		if line.UnitPrice < comparison.Lines[bestPrice].UnitPrice {
			bestPrice = i
		}
		if line.LeadTimeDays < comparison.Lines[fastest].LeadTimeDays {
			fastest = i
		}
		if line.FinalScore > comparison.Lines[bestOverall].FinalScore {
			bestOverall = i
		}
	}
	comparison.Lines[bestPrice].BestPrice = true
	comparison.Lines[fastest].Fastest = true
	comparison.Lines[bestOverall].BestOverall = true
	return comparison
}

// ScoreQuote computes the overall weighted score for a whole quote, using
// its average item price. Shown in quote listings; per-item comparison is the
// authoritative ranking.
func ScoreQuote(quote models.Quote, supplier models.Supplier, w ScoreWeights) float64 {
	var avgPrice float64
	if len(quote.Items) > 0 {
		for _, item := range quote.Items {
			avgPrice += item.UnitPrice
		}
		avgPrice /= float64(len(quote.Items))
	}
	line := QuoteLine{
		UnitPrice:      avgPrice,
		LeadTimeDays:   quote.LeadTimeDays,
		SupplierRating: supplier.Rating,
		QuoteStatus:    quote.Status,
	}
	return ScoreLine(line, w).FinalScore
}

// ComparisonSummary renders a short recommendation text from the comparison
// results. Deterministic string formatting over the same min/max data the
// tags are derived from.
func ComparisonSummary(comparisons []ItemComparison) string {
	if len(comparisons) == 0 {
		return "No quotes have been submitted for this RFQ yet."
	}

	var b strings.Builder
	overallWins := map[string]int{}
	priceWins := map[string]int{}
	for _, cmp := range comparisons {
		for _, line := range cmp.Lines {
			if line.BestOverall {
				overallWins[line.SupplierName]++
			}
			if line.BestPrice {
				priceWins[line.SupplierName]++
			}
		}
	}

	fmt.Fprintf(&b, "Compared supplier offers across %d item(s). ", len(comparisons))
	if name, n := topEntry(overallWins); name != "" {
		fmt.Fprintf(&b, "%s scores best overall on %d item(s). ", name, n)
	}
	if name, n := topEntry(priceWins); name != "" {
		fmt.Fprintf(&b, "%s offers the lowest price on %d item(s). ", name, n)
	}
	b.WriteString("Review the per-item breakdown before awarding; scores weigh price, lead time, supplier rating and quote reliability.")
	return b.String()
}

func topEntry(wins map[string]int) (string, int) {
	best, bestCount := "", 0
	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if wins[name] > bestCount {
			best, bestCount = name, wins[name]
		}
	}
	return best, bestCount
}
