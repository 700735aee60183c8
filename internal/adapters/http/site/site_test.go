package site_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/padelrpm/ranking/internal/adapters/http/site"
	service "github.com/padelrpm/ranking/internal/app"
	"github.com/padelrpm/ranking/internal/domain/movement"
	"github.com/padelrpm/ranking/internal/domain/ranking"
	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps serves canned views.
type fakeDeps struct {
	general  service.GeneralView
	category service.CategoryView
}

func (f *fakeDeps) GeneralRanking(ctx context.Context, force bool, gender, cat string) (service.GeneralView, error) {
	return f.general, nil
}

func (f *fakeDeps) CategoryRanking(ctx context.Context, force bool, gender, cat string) (service.CategoryView, error) {
	return f.category, nil
}

func row(name, cat, level string, pos int, mv movement.Flag) ranking.Row {
	return ranking.Row{
		Record: record.New(map[string]string{
			record.NameField:        name,
			record.OfficialCatField: cat,
			record.LevelField:       level,
		}),
		Pos:      pos,
		Movement: mv,
	}
}

func newMux(deps site.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	site.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHomePage(t *testing.T) {
	Convey("Given the site routes", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then GET / renders the landing page", func() {
			rec := get(mux, "/")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(rec.Body.String(), ShouldContainSubstring, "Ranking RPM")
			So(rec.Body.String(), ShouldContainSubstring, "/ranking-femenino")
			// Zero-row fake view renders a zero player count.
			So(rec.Body.String(), ShouldContainSubstring, "0 jugadores")
		})

		Convey("Then an unknown path is a 404, not the landing page", func() {
			So(get(mux, "/nope").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGeneralPage(t *testing.T) {
	Convey("Given a general view with rows and filters", t, func() {
		deps := &fakeDeps{general: service.GeneralView{
			Rows: []ranking.Row{
				row("Ana Pérez", "A", "6,00", 1, movement.Up),
				row("Benito", "3ra", "4.5", 2, movement.Down),
			},
			Gender:     "F",
			Categories: []string{"3ra", "A"},
		}}
		mux := newMux(deps)

		rec := get(mux, "/ranking?genero=F")
		So(rec.Code, ShouldEqual, http.StatusOK)
		body := rec.Body.String()

		Convey("Then player rows render with movement arrows", func() {
			So(body, ShouldContainSubstring, "Ana Pérez")
			So(body, ShouldContainSubstring, "▲")
			So(body, ShouldContainSubstring, "▼")
		})

		Convey("Then levels render with a comma decimal", func() {
			So(body, ShouldContainSubstring, "6,00")
			So(body, ShouldContainSubstring, "4,50")
		})

		Convey("Then the active gender filter is preselected", func() {
			So(body, ShouldContainSubstring, `value="F" selected`)
		})
	})

	Convey("Given an empty general view", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then the empty state renders instead of a table", func() {
			rec := get(mux, "/ranking")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Sin sesiones registradas")
		})
	})
}

func TestCategoryPages(t *testing.T) {
	Convey("Given a masculine category view", t, func() {
		deps := &fakeDeps{category: service.CategoryView{
			Gender:     "M",
			Cats:       []string{"1ra", "2da", "2_3", "3ra"},
			CurrentCat: "3ra",
			Groups: map[string][]ranking.Row{
				"3ra": {row("Carlos", "3ra", "5.0", 1, movement.Same)},
			},
			Rows: []ranking.Row{row("Carlos", "3ra", "5.0", 1, movement.Same)},
		}}
		mux := newMux(deps)

		rec := get(mux, "/ranking-masculino?cat=3ra")
		So(rec.Code, ShouldEqual, http.StatusOK)
		body := rec.Body.String()

		Convey("Then the combined category chip shows its display label", func() {
			So(body, ShouldContainSubstring, "2da y 3ra")
			So(body, ShouldContainSubstring, `href="/ranking-masculino?cat=2_3"`)
		})

		Convey("Then the selected chip is marked active", func() {
			So(body, ShouldContainSubstring, `class="chip active" href="/ranking-masculino?cat=3ra"`)
		})

		Convey("Then the bucket rows render", func() {
			So(body, ShouldContainSubstring, "Carlos")
		})
	})

	Convey("Given an empty feminine category view", t, func() {
		deps := &fakeDeps{category: service.CategoryView{
			Gender:     "F",
			Cats:       []string{"1ra", "A"},
			CurrentCat: "A",
		}}
		mux := newMux(deps)

		Convey("Then the empty state renders", func() {
			rec := get(mux, "/ranking-femenino?cat=A")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Sin sesiones en esta categoría")
		})
	})
}

func TestStaticAssets(t *testing.T) {
	Convey("Given the site routes", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then the stylesheet is served from the embedded tree", func() {
			rec := get(mux, "/static/style.css")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
		})
	})
}
