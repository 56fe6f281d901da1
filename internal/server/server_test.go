package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/adapter/events"
	"marketlens/internal/adapter/storage"
	"marketlens/internal/config"
	"marketlens/internal/domain/market"
	"marketlens/internal/domain/supplier"
	"marketlens/internal/server"
	"marketlens/internal/server/handlers"
	"marketlens/internal/service/analytics"
	"marketlens/internal/service/insight"
	marketsvc "marketlens/internal/service/market"
	"marketlens/internal/service/social"
	"marketlens/internal/service/sourcing"
)

type memoryStore struct {
	suppliers []supplier.Supplier
	err       error
}

func (m *memoryStore) FindByProductKeyword(ctx context.Context, keyword string) ([]supplier.Supplier, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.Contains(strings.ToLower(keyword), "coffee") {
		return m.suppliers[:2], nil
	}
	return nil, nil
}

func (m *memoryStore) ListAll(ctx context.Context) ([]supplier.Supplier, error) {
	return m.suppliers, m.err
}

func (m *memoryStore) GetSupplier(ctx context.Context, id int64) (*supplier.Supplier, error) {
	for _, s := range m.suppliers {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ = Describe("Server", func() {
	var (
		store   *memoryStore
		handler http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		store = &memoryStore{suppliers: []supplier.Supplier{
			{ID: 1, Name: "Bean Co", Location: "Local Market", Quality: supplier.QualityHigh, Rating: 4.5, ShippingCost: 10, Taxes: 5},
			{ID: 2, Name: "Global Beans", Location: "Overseas", Quality: supplier.QualityMedium, Rating: 4.0, ShippingCost: 40, Taxes: 20},
			{ID: 3, Name: "Cup Works", Location: "Local Depot", Quality: supplier.QualityLow, Rating: 3.0, ShippingCost: 5, Taxes: 1},
		}}

		provider := marketsvc.NewProvider(nil, nil, marketsvc.Config{Mode: market.ModeSimulated})
		engine := analytics.NewEngine(nil, analytics.Config{Mode: market.ModeSimulated})
		buzz := social.NewEstimator(nil, social.Config{Mode: market.ModeSimulated})
		matcher := sourcing.NewMatcher(store, nil)

		srv := server.NewServer(config.ServerConfig{CorsOrigins: []string{"*"}}, server.Services{
			Market:        provider,
			Sectors:       engine,
			Buzz:          buzz,
			Matcher:       matcher,
			Analyzer:      insight.NewAnalyzer(provider, buzz, matcher),
			Suppliers:     store,
			EventsSubject: "market.>",
		})
		handler = srv.Handler()
	})

	It("reports health", func() {
		rec := get("/api/health")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("OK"))
	})

	Describe("market signals", func() {
		It("serves a simulated trend series", func() {
			rec := get("/api/v1/market/trend?keyword=coffee+shop")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var series market.TrendSeries
			decode(rec, &series)
			Expect(series.Keyword).To(Equal("coffee shop"))
			Expect(series.Points).To(HaveLen(12))
			Expect(series.Origin).To(Equal(market.OriginSimulated))
		})

		It("rejects a trend request without a keyword", func() {
			rec := get("/api/v1/market/trend?keyword=%20")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("Missing keyword"))
		})

		It("defaults the finance keyword", func() {
			rec := get("/api/v1/market/finance")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var summary market.FinancialSummary
			decode(rec, &summary)
			Expect(summary.Ticker).To(Equal("INDEX:GLOBAL"))
			Expect(summary.History).To(HaveLen(31))
		})

		It("serves a ranked sector report", func() {
			rec := get("/api/v1/market/sectors/tech?timeframe=30d")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var report market.SectorReport
			decode(rec, &report)
			Expect(report.Category).To(Equal("tech"))
			Expect(report.Items).To(HaveLen(10))
			for i, item := range report.Items {
				Expect(item.Rank).To(Equal(i + 1))
			}
		})

		It("serves a buzz estimate", func() {
			rec := get("/api/v1/market/buzz?keyword=coffee")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var buzz market.BuzzReport
			decode(rec, &buzz)
			Expect(buzz.Score).To(BeNumerically(">=", 65))
			Expect(buzz.Score).To(BeNumerically("<=", 98))
		})

		It("serves an empty marquee in simulated mode", func() {
			rec := get("/api/v1/market/marquee")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("[]"))
		})

		It("serves trending searches", func() {
			var searches []string
			decode(get("/api/v1/market/trending"), &searches)
			Expect(searches).To(HaveLen(5))
		})
	})

	Describe("suppliers", func() {
		It("ranks posted suppliers at the requested preference", func() {
			body := `{"preference":100,"suppliers":[
				{"id":1,"name":"Cheap","location":"Overseas","product_quality":"Low","rating":4,"shipping_cost":0,"taxes":0},
				{"id":2,"name":"Premium","location":"Local Hub","product_quality":"High","rating":4,"shipping_cost":500,"taxes":100}
			]}`
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/rank", strings.NewReader(body)))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp handlers.RankResponse
			decode(rec, &resp)
			Expect(resp.Preference).To(Equal(100))
			Expect(resp.Suppliers[0].Supplier.Name).To(Equal("Premium"))
			Expect(resp.Suppliers[0].Score).To(Equal(120.0))
			Expect(resp.Suppliers[1].Score).To(Equal(80.0))
			Expect(resp.Comparison.Local.Count).To(Equal(1))
			Expect(resp.Comparison.International.Count).To(Equal(1))
		})

		It("uses the balanced preference when none is given", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/rank", strings.NewReader(`{"suppliers":[]}`)))

			var resp handlers.RankResponse
			decode(rec, &resp)
			Expect(resp.Preference).To(Equal(50))
			Expect(resp.Suppliers).To(BeEmpty())
		})

		It("rejects a malformed ranking body", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/rank", strings.NewReader("{")))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("matches suppliers by product keyword", func() {
			var match sourcing.Match
			decode(get("/api/v1/suppliers/match?keyword=Coffee"), &match)
			Expect(match.AIMatched).To(BeFalse())
			Expect(match.Suppliers).To(HaveLen(2))
		})

		It("reports a store failure as a server error", func() {
			store.err = errors.New("connection refused")
			rec := get("/api/v1/suppliers/match?keyword=coffee")
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})

		It("looks up a supplier by ID", func() {
			var s supplier.Supplier
			rec := get("/api/v1/suppliers/3")
			Expect(rec.Code).To(Equal(http.StatusOK))
			decode(rec, &s)
			Expect(s.Name).To(Equal("Cup Works"))

			Expect(get("/api/v1/suppliers/99").Code).To(Equal(http.StatusNotFound))
			Expect(get("/api/v1/suppliers/abc").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("analysis", func() {
		It("combines every signal with ranked suppliers", func() {
			rec := get("/api/v1/analysis?keyword=coffee&preference=70")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var analysis insight.Analysis
			decode(rec, &analysis)
			Expect(analysis.ID).NotTo(BeEmpty())
			Expect(analysis.Preference).To(Equal(70))
			Expect(analysis.Trend.Points).To(HaveLen(12))
			Expect(analysis.Suppliers).To(HaveLen(2))
			Expect(analysis.Suppliers[0].Supplier.Name).To(Equal("Bean Co"))
		})

		It("rejects a non-numeric preference", func() {
			Expect(get("/api/v1/analysis?keyword=coffee&preference=high").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("marquee stream", func() {
		It("sends a snapshot on connect", func() {
			ts := httptest.NewServer(handler)
			defer ts.Close()

			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/marquee"
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			defer resp.Body.Close()

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, r, err := conn.NextReader()
			Expect(err).NotTo(HaveOccurred())
			data, err := io.ReadAll(r)
			Expect(err).NotTo(HaveOccurred())

			var env events.Envelope
			Expect(json.Unmarshal(data, &env)).To(Succeed())
			Expect(env.Type).To(Equal(events.TypeMarquee))
			Expect(string(env.Data)).To(Equal("[]"))
		})
	})
})
