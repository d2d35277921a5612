package loadgen_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/adapters/http/api"
	service "github.com/okian/pitchperfect/internal/app"
	"github.com/okian/pitchperfect/internal/loadgen"
	"github.com/okian/pitchperfect/internal/pitchsim"
	"github.com/okian/pitchperfect/pkg/logger"
)

func init() {
	_ = logger.InitWithWriter(io.Discard)
}

// newServer serves the real API over a service whose games run a hundred
// times faster than wall time.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithSeed(7), service.WithTickInterval(time.Millisecond))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		svc.Stop()
	})
	return ts
}

func fastConfig(base string) loadgen.Config {
	cfg := loadgen.DefaultConfig()
	cfg.BaseURL = base
	cfg.Games = 6
	cfg.Players = 3
	cfg.Workers = 2
	cfg.Words = 30
	cfg.Pace = 0
	cfg.PollInterval = 5 * time.Millisecond
	cfg.Settle = 5 * time.Second
	cfg.PlayerPrefix = "lt"
	return cfg
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newServer(t)
		cfg := fastConfig(ts.URL)
		cfg.Quality = pitchsim.QualityStrong
		cfg.Delivery = true

		Convey("When a load run plays its games", func() {
			report, err := loadgen.Run(context.Background(), cfg)

			Convey("Then the leaderboard agrees with every player", func() {
				So(err, ShouldBeNil)
				So(report.Mismatches, ShouldBeEmpty)
				So(report.Stats.Games, ShouldEqual, 6)
				So(report.Stats.Failed, ShouldEqual, 0)
				So(report.Stats.Chunks, ShouldBeGreaterThan, 0)
				So(report.Stats.Duplicates, ShouldBeGreaterThan, 0)
				So(report.Players, ShouldHaveLength, 3)
				for _, p := range report.Players {
					So(p.Match, ShouldBeTrue)
					So(p.Games, ShouldEqual, 2)
					So(p.Rank, ShouldBeGreaterThanOrEqualTo, 1)
				}
				So(report.Top, ShouldHaveLength, 3)
				So(report.Top[0].Score, ShouldEqual, report.Players[0].Best)
			})

			Convey("Then the report renders as text", func() {
				var buf bytes.Buffer
				So(loadgen.WriteReport(&buf, report), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "games=6")
				So(buf.String(), ShouldContainSubstring, "lt-000")
			})
		})
	})
}

func TestRunErrors(t *testing.T) {
	Convey("Given bad settings", t, func() {
		cfg := fastConfig("http://127.0.0.1:1")

		Convey("When the config is invalid", func() {
			cfg.Workers = 0
			_, err := loadgen.Run(context.Background(), cfg)
			So(errors.Is(err, loadgen.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the quality is unknown", func() {
			cfg.Quality = "legendary"
			_, err := loadgen.Run(context.Background(), cfg)
			So(errors.Is(err, pitchsim.ErrUnknownQuality), ShouldBeTrue)
		})

		Convey("When the service reports unhealthy", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer ts.Close()

			cfg.BaseURL = ts.URL
			_, err := loadgen.Run(context.Background(), cfg)
			So(errors.Is(err, loadgen.ErrUnhealthy), ShouldBeTrue)

			var se *loadgen.StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
