package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/medaldash/internal/adapters/http/api"
	"github.com/okian/medaldash/internal/domain/analytics"
	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDeps struct {
	mu         sync.Mutex
	sports     []string
	failWith   error
	selections []string
	lastSport  string
}

func (m *mockDeps) Sports(context.Context) ([]string, error) {
	return m.sports, m.failWith
}

func (m *mockDeps) Chart(_ context.Context, id charts.ID, sport string) (charts.Chart, error) {
	m.mu.Lock()
	m.lastSport = sport
	m.mu.Unlock()
	if m.failWith != nil {
		return charts.Chart{}, m.failWith
	}
	c := charts.ForMedalsByYear([]analytics.YearCount{{Year: 2016, Count: 19}})
	c.ID = id
	return c, nil
}

func (m *mockDeps) Dashboard(ctx context.Context, sport string) ([]charts.Chart, error) {
	var out []charts.Chart
	for _, id := range charts.All() {
		c, err := m.Chart(ctx, id, sport)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockDeps) Forecast(_ context.Context, _ string) (analytics.Forecast, error) {
	return analytics.FitForecast([]analytics.YearCount{{Year: 2016, Count: 10}, {Year: 2020, Count: 12}}, []int{2028}), m.failWith
}

func (m *mockDeps) Export(_ context.Context, _ string, w io.Writer) error {
	if m.failWith != nil {
		return m.failWith
	}
	_, err := io.WriteString(w, "PK-fake")
	return err
}

func (m *mockDeps) RecordSelection(_ context.Context, sport string) {
	m.mu.Lock()
	m.selections = append(m.selections, sport)
	m.mu.Unlock()
}

type mockRenderer struct{}

func (mockRenderer) Render(_ context.Context, c charts.Chart, w io.Writer) error {
	_, err := io.WriteString(w, "png:"+string(c.ID))
	return err
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"started": true}
}

func newMux(deps api.Dependencies, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockRenderer{}, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestDataRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{sports: []string{"Judo", "Sailing"}}
		mux := newMux(deps)

		Convey("When listing sports", func() {
			w := get(mux, "/api/sports")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			So(w.Body.String(), ShouldContainSubstring, `"sports":["Judo","Sailing"]`)
		})

		Convey("When asking for a known chart with a sport", func() {
			w := get(mux, "/api/charts/medals_by_year?sport=Judo")

			Convey("Then the chart is returned for that sport", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var c charts.Chart
				So(json.Unmarshal(w.Body.Bytes(), &c), ShouldBeNil)
				So(c.ID, ShouldEqual, charts.MedalsByYear)
				So(deps.lastSport, ShouldEqual, "Judo")
			})
		})

		Convey("When asking for an unknown chart", func() {
			w := get(mux, "/api/charts/medals_by_planet")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"code":"unknown_chart"`)
		})

		Convey("When the sport parameter is too long", func() {
			w := get(mux, "/api/charts/medals_by_year?sport="+strings.Repeat("x", 200))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
		})

		Convey("When asking for the dashboard", func() {
			w := get(mux, "/api/dashboard?sport=Sailing")

			Convey("Then every chart is returned and the selection is recorded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Sport  string         `json:"sport"`
					Charts []charts.Chart `json:"charts"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Sport, ShouldEqual, "Sailing")
				So(resp.Charts, ShouldHaveLength, len(charts.All()))
				So(deps.selections, ShouldResemble, []string{"Sailing"})
			})
		})

		Convey("When asking for the forecast", func() {
			w := get(mux, "/api/forecast")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"available":true`)
			So(w.Body.String(), ShouldContainSubstring, `"fit":{"slope":`)
		})

		Convey("When exporting", func() {
			w := get(mux, "/api/export.xlsx?sport=Judo")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "medaldash-Judo.xlsx")
			So(w.Body.String(), ShouldEqual, "PK-fake")
		})

		Convey("When asking for stats", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})

	Convey("Given dependencies that fail", t, func() {
		mux := newMux(&mockDeps{failWith: errors.New("boom")})

		Convey("Then errors become 500 without details", func() {
			w := get(mux, "/api/charts/medals_by_sex")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "boom")

			So(get(mux, "/api/export.xlsx").Code, ShouldEqual, http.StatusInternalServerError)
			So(get(mux, "/charts/forecast.png").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestImageRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When asking for a chart image", func() {
			w := get(mux, "/charts/top_athletes.png?sport=Judo")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Body.String(), ShouldEqual, "png:top_athletes")
		})

		Convey("When the suffix is wrong", func() {
			So(get(mux, "/charts/top_athletes.jpg").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the chart is unknown", func() {
			So(get(mux, "/charts/nope.png").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{})
		_ = get(mux, "/api/sports")

		Convey("Then /metrics and /healthz expose Prometheus text", func() {
			for _, path := range []string{"/metrics", "/healthz"} {
				w := get(mux, path)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "medaldash_dashboard_http_requests_total")
			}
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When no request id is sent", func() {
			w := get(mux, "/api/sports")
			So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
		})

		Convey("When a request id is sent", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/sports", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("Then the handler sees the id in its context", func() {
			var seen string
			h := api.RequestIDMiddleware(func(_ http.ResponseWriter, r *http.Request) {
				seen = logger.RequestID(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "ctx-id")
			h(httptest.NewRecorder(), req)
			So(seen, ShouldEqual, "ctx-id")
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limiter of one request per second with burst two", t, func() {
		limiter := api.NewRateLimiter(1, 2, api.WithCleanupEvery(0))
		mux := newMux(&mockDeps{}, api.WithRateLimiter(limiter))

		Convey("When a client exceeds its burst", func() {
			codes := make([]int, 3)
			var last *httptest.ResponseRecorder
			for i := range codes {
				last = get(mux, "/api/sports")
				codes[i] = last.Code
			}

			Convey("Then the extra request is rejected with Retry-After", func() {
				So(codes, ShouldResemble, []int{200, 200, 429})
				So(last.Header().Get("Retry-After"), ShouldEqual, "1")
				So(last.Body.String(), ShouldContainSubstring, `"code":"rate_limited"`)
			})

			Convey("And unlimited routes stay open", func() {
				So(get(mux, "/stats").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And another client has its own bucket", func() {
				req := httptest.NewRequest(http.MethodGet, "/api/sports", http.NoBody)
				req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(limiter.Len(), ShouldEqual, 2)
			})
		})

		Convey("When idle clients are cleaned up", func() {
			l := api.NewRateLimiter(1, 1, api.WithIdleTTL(1), api.WithCleanupEvery(0))
			So(l.Allow("a"), ShouldBeTrue)
			time.Sleep(2 * time.Millisecond)
			l.Cleanup()
			So(l.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given client keys", t, func() {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = "198.51.100.7:5555"
		So(api.ClientKey(req), ShouldEqual, "198.51.100.7")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		So(api.ClientKey(req), ShouldEqual, "203.0.113.1")
	})
}
