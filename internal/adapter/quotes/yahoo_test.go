package quotes_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/adapter/quotes"
	"marketlens/internal/domain/market"
)

var _ = Describe("Client", func() {
	var (
		mux    *http.ServeMux
		server *httptest.Server
		client *quotes.Client
	)

	BeforeEach(func() {
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		client = quotes.NewClient(quotes.Config{BaseURL: server.URL})
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns closes and skips empty sessions", func() {
		var gotPath, gotRange string
		mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotRange = r.URL.Query().Get("range")
			fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1704067200,1704153600,1704240000],
"indicators":{"quote":[{"close":[101.5,null,103.25]}]}}],"error":null}}`)
		})

		points, err := client.DailyCloses(context.Background(), "EURUSD=X", "1mo")

		Expect(err).NotTo(HaveOccurred())
		Expect(gotPath).To(Equal("/v8/finance/chart/EURUSD=X"))
		Expect(gotRange).To(Equal("1mo"))
		Expect(points).To(Equal([]market.PricePoint{
			{Date: "2024-01-01", Close: 101.5},
			{Date: "2024-01-03", Close: 103.25},
		}))
	})

	It("surfaces chart errors", func() {
		mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		})

		_, err := client.DailyCloses(context.Background(), "NOPE", "1mo")
		Expect(err).To(MatchError(ContainSubstring("No data found")))
	})

	It("returns ErrNoData when every close is null", func() {
		mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1704067200],"indicators":{"quote":[{"close":[null]}]}}]}}`)
		})

		_, err := client.DailyCloses(context.Background(), "XLK", "5d")
		Expect(err).To(MatchError(quotes.ErrNoData))
	})

	It("fails on non-200 responses", func() {
		mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.DailyCloses(context.Background(), "XLK", "1mo")
		Expect(err).To(MatchError(ContainSubstring("401")))
	})
})
