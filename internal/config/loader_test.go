package config_test

import (
	"context"
	"testing"

	"github.com/padelrpm/ranking/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("PADEL_CONFIG", "")
		t.Setenv("PADEL_ADDR", ":6600")
		t.Setenv("PADEL_SOURCE", "demo")
		t.Setenv("PADEL_CACHE_TTL_SECONDS", "30")

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then env values win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6600")
				So(cfg.Source, ShouldEqual, config.SourceDemo)
				So(cfg.CacheTTLSeconds, ShouldEqual, 30)
				// Untouched fields keep their defaults.
				So(cfg.Worksheet, ShouldEqual, "Sesiones")
			})
		})
	})

	Convey("Given an unknown source", t, func() {
		t.Setenv("PADEL_CONFIG", "")
		t.Setenv("PADEL_SOURCE", "csv")

		Convey("Then loading fails with ErrInvalidConfig", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown source")
		})
	})

	Convey("Given the sheets source without a sheet id", t, func() {
		t.Setenv("PADEL_CONFIG", "")
		t.Setenv("PADEL_SOURCE", "sheets")
		t.Setenv("PADEL_SHEET_ID", "")

		Convey("Then loading fails", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
