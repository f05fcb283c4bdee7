package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/attune/internal/adapters/http/api"
	"github.com/okian/attune/internal/adapters/http/stream"
	"github.com/okian/attune/internal/app"
	"github.com/okian/attune/internal/config"
	"github.com/okian/attune/pkg/metrics"
)

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ATTUNE_ADDR", ":8080")
			_ = os.Setenv("ATTUNE_SYNC_TOLERANCE_MS", "50")
			_ = os.Setenv("ATTUNE_BUFFER_CAPACITY", "8")
			defer func() {
				_ = os.Unsetenv("ATTUNE_ADDR")
				_ = os.Unsetenv("ATTUNE_SYNC_TOLERANCE_MS")
				_ = os.Unsetenv("ATTUNE_BUFFER_CAPACITY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SyncToleranceMS, convey.ShouldEqual, 50)
				convey.So(cfg.BufferCapacity, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc, err := app.New()
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc, err := app.New(
					app.WithTolerance(50*time.Millisecond),
					app.WithBufferCapacity(8),
					app.WithDedupeSize(1000),
				)
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc, err := app.New()
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the API server should be creatable", func() {
				server := api.NewServer(svc)
				convey.So(server, convey.ShouldNotBeNil)
			})

			convey.Convey("And the telemetry hub should be creatable", func() {
				hub := stream.NewHub()
				convey.So(hub, convey.ShouldNotBeNil)
				convey.So(hub.ClientCount(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}
