package services

import (
	"backend/models"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name    string
		in      ScoreWeights
		want    ScoreWeights
		wantErr bool
	}{
		{"default already normalized", DefaultScoreWeights(), ScoreWeights{40, 20, 25, 15}, false},
		{"scaled up", ScoreWeights{80, 40, 50, 30}, ScoreWeights{40, 20, 25, 15}, false},
		{"fractions", ScoreWeights{0.4, 0.2, 0.25, 0.15}, ScoreWeights{40, 20, 25, 15}, false},
		{"single component", ScoreWeights{Price: 1}, ScoreWeights{Price: 100}, false},
		{"all zero", ScoreWeights{}, ScoreWeights{}, true},
		{"negative", ScoreWeights{Price: -10, LeadTime: 110}, ScoreWeights{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !almostEqual(got.Price, tt.want.Price) || !almostEqual(got.LeadTime, tt.want.LeadTime) ||
				!almostEqual(got.Quality, tt.want.Quality) || !almostEqual(got.Reliability, tt.want.Reliability) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComponentScoresClamp(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"price zero", PriceScore(0), 100},
		{"price mid", PriceScore(250), 75},
		{"price extreme", PriceScore(5000), 0},
		{"lead time zero days", LeadTimeScore(0), 100},
		{"lead time ten days", LeadTimeScore(10), 80},
		{"lead time extreme", LeadTimeScore(90), 0},
		{"quality top rating", QualityScore(5), 100},
		{"quality mid rating", QualityScore(3.5), 70},
		{"quality zero rating", QualityScore(0), 0},
		{"reliability submitted", ReliabilityScore(models.QuoteStatusSubmitted), 80},
		{"reliability under review", ReliabilityScore(models.QuoteStatusUnderReview), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !almostEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
			if tt.got < 0 || tt.got > 100 {
				t.Errorf("score %v outside [0,100]", tt.got)
			}
		})
	}
}

func TestScoreLineWeighting(t *testing.T) {
	line := QuoteLine{UnitPrice: 100, LeadTimeDays: 10, SupplierRating: 4, QuoteStatus: models.QuoteStatusSubmitted}
	scored := ScoreLine(line, DefaultScoreWeights())

	// 90*0.4 + 80*0.2 + 80*0.25 + 80*0.15 = 84
	if !almostEqual(scored.FinalScore, 84) {
		t.Errorf("FinalScore = %v, want 84", scored.FinalScore)
	}

	// shifting all weight onto price makes the cheaper line win outright
	priceOnly, err := ScoreWeights{Price: 100}.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	cheap := ScoreLine(QuoteLine{UnitPrice: 50, LeadTimeDays: 60, SupplierRating: 1}, priceOnly)
	slow := ScoreLine(QuoteLine{UnitPrice: 200, LeadTimeDays: 1, SupplierRating: 5}, priceOnly)
	if cheap.FinalScore <= slow.FinalScore {
		t.Errorf("price-only weights: cheap=%v should beat expensive=%v", cheap.FinalScore, slow.FinalScore)
	}
}

func TestCheapestLineRankImprovesWithPriceWeight(t *testing.T) {
	// the cheapest offer is also the slowest and lowest rated, so it starts
	// near the bottom and should only climb as price gains weight
	lines := []QuoteLine{
		{SupplierID: 1, UnitPrice: 60, LeadTimeDays: 45, SupplierRating: 1.5, QuoteStatus: models.QuoteStatusSubmitted},
		{SupplierID: 2, UnitPrice: 150, LeadTimeDays: 20, SupplierRating: 3, QuoteStatus: models.QuoteStatusSubmitted},
		{SupplierID: 3, UnitPrice: 300, LeadTimeDays: 10, SupplierRating: 4, QuoteStatus: models.QuoteStatusSubmitted},
		{SupplierID: 4, UnitPrice: 450, LeadTimeDays: 2, SupplierRating: 5, QuoteStatus: models.QuoteStatusSubmitted},
	}

	// rank = how many other lines score strictly higher than the cheapest one
	rankOfCheapest := func(w ScoreWeights) int {
		weights, err := w.Normalize()
		if err != nil {
			t.Fatal(err)
		}
		cheapest := ScoreLine(lines[0], weights).FinalScore
		rank := 0
		for _, line := range lines[1:] {
			if ScoreLine(line, weights).FinalScore > cheapest {
				rank++
			}
		}
		return rank
	}

	prev := rankOfCheapest(ScoreWeights{LeadTime: 1, Quality: 1, Reliability: 1})
	for w := 10.0; w <= 100; w += 10 {
		rest := (100 - w) / 3
		rank := rankOfCheapest(ScoreWeights{Price: w, LeadTime: rest, Quality: rest, Reliability: rest})
		if rank > prev {
			t.Fatalf("price weight %v: cheapest line dropped from rank %d to %d", w, prev, rank)
		}
		prev = rank
	}
	if prev != 0 {
		t.Errorf("with all weight on price the cheapest line should rank first, got rank %d", prev)
	}
}

func TestCompareItemTags(t *testing.T) {
	lines := []QuoteLine{
		{QuoteID: 1, SupplierID: 9, SupplierName: "FibreCo", UnitPrice: 80, LeadTimeDays: 20, SupplierRating: 3, QuoteStatus: models.QuoteStatusSubmitted},
		{QuoteID: 2, SupplierID: 4, SupplierName: "OptiSupply", UnitPrice: 120, LeadTimeDays: 5, SupplierRating: 5, QuoteStatus: models.QuoteStatusSubmitted},
	}

	cmp := CompareItem(7, "DC-48F", "48F drop cable", lines, DefaultScoreWeights())
	if len(cmp.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(cmp.Lines))
	}
	// lines come back sorted by supplier id
	if cmp.Lines[0].SupplierID != 4 || cmp.Lines[1].SupplierID != 9 {
		t.Fatalf("lines not sorted by supplier id: %d, %d", cmp.Lines[0].SupplierID, cmp.Lines[1].SupplierID)
	}
	if !cmp.Lines[1].BestPrice {
		t.Error("FibreCo should be tagged best price")
	}
	if !cmp.Lines[0].Fastest {
		t.Error("OptiSupply should be tagged fastest")
	}

	var overall int
	for _, line := range cmp.Lines {
		if line.BestOverall {
			overall++
		}
	}
	if overall != 1 {
		t.Errorf("exactly one line should be best overall, got %d", overall)
	}
}

func TestCompareItemTieBreaksOnSupplierID(t *testing.T) {
	// identical offers: the lower supplier id must win every tag, regardless
	// of input order
	a := QuoteLine{QuoteID: 1, SupplierID: 9, SupplierName: "B", UnitPrice: 100, LeadTimeDays: 10, SupplierRating: 4, QuoteStatus: models.QuoteStatusSubmitted}
	b := QuoteLine{QuoteID: 2, SupplierID: 4, SupplierName: "A", UnitPrice: 100, LeadTimeDays: 10, SupplierRating: 4, QuoteStatus: models.QuoteStatusSubmitted}

	for _, order := range [][]QuoteLine{{a, b}, {b, a}} {
		cmp := CompareItem(1, "X", "item", order, DefaultScoreWeights())
		winner := cmp.Lines[0]
		if winner.SupplierID != 4 {
			t.Fatalf("first line supplier = %d, want 4", winner.SupplierID)
		}
		if !winner.BestPrice || !winner.Fastest || !winner.BestOverall {
			t.Errorf("tie should resolve to supplier 4: %+v", winner)
		}
		if cmp.Lines[1].BestPrice || cmp.Lines[1].Fastest || cmp.Lines[1].BestOverall {
			t.Errorf("supplier 9 should carry no tags on a tie: %+v", cmp.Lines[1])
		}
	}
}

func TestCompareItemEmpty(t *testing.T) {
	cmp := CompareItem(1, "X", "item", nil, DefaultScoreWeights())
	if len(cmp.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(cmp.Lines))
	}
}

func TestScoreQuote(t *testing.T) {
	quote := models.Quote{
		LeadTimeDays: 10,
		Status:       models.QuoteStatusSubmitted,
		Items: []models.QuoteItem{
			{UnitPrice: 50},
			{UnitPrice: 150},
		},
	}
	supplier := models.Supplier{Rating: 4}

	got := ScoreQuote(quote, supplier, DefaultScoreWeights())
	// avg price 100 → same inputs as the single-line case above
	if !almostEqual(got, 84) {
		t.Errorf("ScoreQuote = %v, want 84", got)
	}
}

func TestComparisonSummary(t *testing.T) {
	if got := ComparisonSummary(nil); got == "" {
		t.Error("empty comparison should still produce a message")
	}

	comparisons := []ItemComparison{
		{Lines: []ScoredLine{
			{QuoteLine: QuoteLine{SupplierName: "OptiSupply"}, BestOverall: true, BestPrice: false},
			{QuoteLine: QuoteLine{SupplierName: "FibreCo"}, BestPrice: true},
		}},
	}
	got := ComparisonSummary(comparisons)
	for _, want := range []string{"OptiSupply", "FibreCo"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}
