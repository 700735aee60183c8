package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/padelrpm/ranking/internal/adapters/http/api"
	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps serves canned rows and remembers the force flag.
type fakeDeps struct {
	rows  []record.Record
	err   error
	force bool
}

func (f *fakeDeps) Sessions(ctx context.Context, force bool) ([]record.Record, error) {
	f.force = force
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return mux
}

func TestSessionsEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := &fakeDeps{rows: []record.Record{
			record.New(map[string]string{
				record.NameField:  "Ana",
				record.LevelField: "4,5",
			}),
		}}
		mux := newMux(deps)

		Convey("When GET /api/sesiones is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sesiones", nil))

			Convey("Then the raw rows come back as a JSON array", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var got []map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				// Values are untouched, comma decimal included.
				So(got[0][record.LevelField], ShouldEqual, "4,5")
			})

			Convey("Then the cache was not bypassed", func() {
				So(deps.force, ShouldBeFalse)
			})
		})

		Convey("When refresh=1 is passed", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sesiones?refresh=1", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.force, ShouldBeTrue)
		})

		Convey("When the source has no rows", func() {
			deps.rows = nil
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sesiones", nil))

			Convey("Then an empty array is served, not null", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldStartWith, "[]")
			})
		})

		Convey("When the source fails", func() {
			deps.err = errors.New("boom")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sesiones", nil))

			Convey("Then a JSON error with status 500 is served", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				var got map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got["code"], ShouldEqual, "sessions_failed")
			})
		})

		Convey("When a non-GET method is used", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sesiones", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then GET /stats serves the provider's snapshot", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got["started"], ShouldEqual, true)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then GET /healthz serves scrapeable metrics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a handler behind the shared middleware", t, func() {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		wrapped := api.NoStoreMiddleware(api.RequestIDMiddleware(inner, logger.Get()))

		Convey("Then dynamic paths get no-store headers", func() {
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ranking", nil))
			So(rec.Header().Get("Cache-Control"), ShouldContainSubstring, "no-store")
		})

		Convey("Then static paths keep their cache headers", func() {
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
			So(rec.Header().Get("Cache-Control"), ShouldBeEmpty)
		})

		Convey("Then a request id is generated when missing", func() {
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
		})

		Convey("Then a client-supplied request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "abc-123")
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			So(rec.Header().Get("X-Request-ID"), ShouldEqual, "abc-123")
		})
	})
}
