package analytics_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/domain/market"
	"marketlens/internal/service/analytics"
)

type fakeInterest struct {
	calls     int
	keywords  []string
	timeframe string
	frame     market.InterestFrame
	err       error
}

func (f *fakeInterest) InterestOverTime(ctx context.Context, keywords []string, timeframe string) (market.InterestFrame, error) {
	f.calls++
	f.keywords = keywords
	f.timeframe = timeframe
	return f.frame, f.err
}

func (f *fakeInterest) TrendingSearches(ctx context.Context, region string) ([]string, error) {
	return nil, errors.New("not used")
}

// frameFor gives every keyword the same 14 samples
func frameFor(keywords []string, series map[string][]int) market.InterestFrame {
	dates := make([]time.Time, 14)
	for i := range dates {
		dates[i] = time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)
	}
	values := map[string][]int{}
	for _, kw := range keywords {
		if s, ok := series[kw]; ok {
			values[kw] = s
		} else {
			values[kw] = []int{50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50}
		}
	}
	return market.InterestFrame{Dates: dates, Values: values}
}

func expectRanked(items []market.SectorTrendItem) {
	for i, item := range items {
		Expect(item.Rank).To(Equal(i + 1))
		if i > 0 {
			Expect(items[i-1].Growth).To(BeNumerically(">=", item.Growth))
		}
	}
}

var _ = Describe("Engine", func() {
	var (
		ctx      context.Context
		interest *fakeInterest
	)

	BeforeEach(func() {
		ctx = context.Background()
		interest = &fakeInterest{}
	})

	Describe("NormalizeTimeframe", func() {
		DescribeTable("aliases",
			func(in, out string) {
				Expect(analytics.NormalizeTimeframe(in)).To(Equal(out))
			},
			Entry("empty", "", "today 1-m"),
			Entry("week", "7d", "now 7-d"),
			Entry("month", "30d", "today 1-m"),
			Entry("quarter", "90d", "today 3-m"),
			Entry("year", "12M", "today 12-m"),
			Entry("pass through", "today 5-y", "today 5-y"),
		)
	})

	Describe("Keywords", func() {
		It("builds the macro view from macro keywords and each sector lead", func() {
			e := analytics.NewEngine(nil, analytics.Config{})

			Expect(e.Keywords("all")).To(Equal([]string{
				"Global Trade AI", "Supply Chain Tokenization", "Borderless Logistics",
				"Green Energy 2026", "Automation Economy",
				"Artificial Intelligence", "Sustainable Fashion", "Lab Grown Meat", "VR Fitness",
			}))
			Expect(e.Keywords("tech")).To(HaveLen(15))
			Expect(e.Keywords("pets")).To(Equal([]string{"Global Enterprise", "Market Nexus", "Logic Layer"}))
		})
	})

	Describe("live reports", func() {
		It("computes growth, volume and sentiment from one batched call", func() {
			kws := []string{"Global Enterprise", "Market Nexus", "Logic Layer"}
			interest.frame = frameFor(kws, map[string][]int{
				"Global Enterprise": {10, 10, 10, 10, 10, 10, 10, 20, 20, 20, 20, 20, 20, 20},
				"Market Nexus":      {0, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3, 3, 3},
				"Logic Layer":       {40, 40, 40, 40, 40, 40, 40, 30, 30, 30, 30, 30, 30, 30},
			})
			e := analytics.NewEngine(interest, analytics.Config{Mode: market.ModeLive})

			report := e.FetchSectorReport(ctx, "pets", "7d")

			Expect(interest.calls).To(Equal(1))
			Expect(interest.keywords).To(Equal(kws))
			Expect(interest.timeframe).To(Equal("now 7-d"))
			Expect(report.Origin).To(Equal(market.OriginLive))
			Expect(report.Items).To(Equal([]market.SectorTrendItem{
				{Keyword: "Market Nexus", Volume: "4,000", Growth: 300, Sentiment: market.SentimentExploding, Rank: 1},
				{Keyword: "Global Enterprise", Volume: "31,000", Growth: 100, Sentiment: market.SentimentExploding, Rank: 2},
				{Keyword: "Logic Layer", Volume: "71,000", Growth: -25, Sentiment: market.SentimentVolatile, Rank: 3},
			}))
		})

		It("rounds growth to one decimal", func() {
			kws := []string{"Global Enterprise", "Market Nexus", "Logic Layer"}
			interest.frame = frameFor(kws, map[string][]int{
				"Global Enterprise": {30, 30, 30, 30, 30, 30, 30, 31, 31, 31, 31, 31, 31, 32},
			})
			e := analytics.NewEngine(interest, analytics.Config{Mode: market.ModeLive})

			report := e.FetchSectorReport(ctx, "pets", "")

			item := report.Items[0]
			Expect(item.Keyword).To(Equal("Global Enterprise"))
			Expect(item.Growth).To(Equal(3.8))
			Expect(item.Sentiment).To(Equal(market.SentimentStable))
		})

		It("simulates when a keyword is missing from the frame", func() {
			interest.frame = frameFor([]string{"Global Enterprise"}, nil)
			e := analytics.NewEngine(interest, analytics.Config{Mode: market.ModeLive})

			report := e.FetchSectorReport(ctx, "pets", "")

			Expect(report.Origin).To(Equal(market.OriginSimulated))
		})
	})

	Describe("simulated reports", func() {
		var e *analytics.Engine

		BeforeEach(func() {
			e = analytics.NewEngine(interest, analytics.Config{Mode: market.ModeSimulated})
		})

		It("never calls the live source", func() {
			e.FetchSectorReport(ctx, "tech", "")
			Expect(interest.calls).To(BeZero())
		})

		It("uses the curated macro table for all markets", func() {
			report := e.FetchSectorReport(ctx, "all", "")

			Expect(report.Items).To(HaveLen(10))
			Expect(report.Items[0]).To(Equal(market.SectorTrendItem{
				Keyword: "Quantum Logistics", Volume: "72,000", Growth: 115,
				Sentiment: market.SentimentExploding, Rank: 1,
			}))
			Expect(report.Items[9].Keyword).To(Equal("Market Elasticity AI"))
			expectRanked(report.Items)
		})

		It("draws bounded items for the first ten sector keywords", func() {
			report := e.FetchSectorReport(ctx, "fashion", "")

			Expect(report.Items).To(HaveLen(10))
			Expect(report.Timeframe).To(Equal("today 1-m"))
			for _, item := range report.Items {
				Expect(item.Growth).To(BeNumerically(">=", -10))
				Expect(item.Growth).To(BeNumerically("<", 140))
				Expect(item.Keyword).NotTo(Equal("Slow Fashion"))
			}
			expectRanked(report.Items)
		})

		It("is reproducible and depends on the category", func() {
			Expect(e.FetchSectorReport(ctx, "food", "")).To(Equal(e.FetchSectorReport(ctx, "Food ", "")))
			Expect(e.FetchSectorReport(ctx, "pets", "").Items).
				NotTo(Equal(e.FetchSectorReport(ctx, "toys", "").Items))
		})

		It("labels unknown categories with the generic keywords", func() {
			report := e.FetchSectorReport(ctx, "pets", "")

			keywords := make([]string, 0, len(report.Items))
			for _, item := range report.Items {
				keywords = append(keywords, item.Keyword)
			}
			Expect(keywords).To(ConsistOf("Enterprise Logic", "Nexus Point", "System Alpha"))
		})
	})

	It("falls back when the live call fails", func() {
		interest.err = errors.New("429 Too Many Requests")
		live := analytics.NewEngine(interest, analytics.Config{Mode: market.ModeLive})
		sim := analytics.NewEngine(nil, analytics.Config{Mode: market.ModeSimulated})

		Expect(live.FetchSectorReport(ctx, "gym", "30d")).To(Equal(sim.FetchSectorReport(ctx, "gym", "30d")))
	})
})
