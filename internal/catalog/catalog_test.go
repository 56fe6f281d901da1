package catalog_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/catalog"
)

var _ = Describe("Catalog", func() {
	var c *catalog.Catalog

	BeforeEach(func() {
		c = catalog.Default()
	})

	It("loads the embedded data", func() {
		Expect(c.SectorNames()).To(Equal([]string{"tech", "fashion", "food", "gym"}))
		Expect(c.MacroKeywords).To(HaveLen(5))
		Expect(c.MacroFallback).To(HaveLen(10))
		Expect(c.Marquee).To(HaveLen(7))
		Expect(c.SimulatedSectorSize).To(Equal(10))
		for _, s := range c.Sectors {
			Expect(s.Keywords).To(HaveLen(15), s.Name)
		}
	})

	DescribeTable("TickerFor",
		func(keyword, ticker string) {
			Expect(c.TickerFor(keyword)).To(Equal(ticker))
		},
		Entry("exact", "gym", "BFIT"),
		Entry("case-insensitive substring", "Boutique GYM Franchise", "BFIT"),
		Entry("first rule wins", "fintech", "XLK"),
		Entry("ai inside another word", "Retail", "BOTZ"),
		Entry("no match", "coffee", "EURUSD=X"),
		Entry("global default", "global", "EURUSD=X"),
		Entry("empty", "", "EURUSD=X"),
	)

	It("rejects a catalog without sectors", func() {
		_, err := catalog.Load(strings.NewReader("default_ticker: X\nbuzz: {prefixes: [a], suffixes: [b]}\n"))
		Expect(err).To(MatchError(ContainSubstring("sector")))
	})

	It("rejects malformed YAML", func() {
		_, err := catalog.Parse([]byte("tickers: [unclosed"))
		Expect(err).To(HaveOccurred())
	})

	It("returns the embedded catalog for an empty path", func() {
		loaded, err := catalog.LoadFile("")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(BeIdenticalTo(c))
	})
})
