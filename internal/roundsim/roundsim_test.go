package roundsim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/handicap/internal/adapters/http/api"
	"github.com/okian/handicap/internal/adapters/importer"
	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(service.WithWorkerCount(4), service.WithQueueSize(1000))
	So(svc.Start(ctx), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, 100).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:         url,
		Players:         12,
		RoundsPerPlayer: 22,
		TopN:            10,
		Workers:         8,
		Timeout:         5 * time.Second,
		SettleTimeout:   5 * time.Second,
		Seed:            42,
	}
}

func TestGenerateRounds(t *testing.T) {
	Convey("Given a generation config", t, func() {
		cfg := testConfig("")
		stats := &Stats{}
		rounds := generateRounds(context.Background(), cfg, stats)

		Convey("Then every player gets the requested rounds in time order", func() {
			So(len(rounds), ShouldEqual, 12*22)
			So(stats.RoundsGenerated, ShouldEqual, len(rounds))
			players := byPlayer(rounds)
			So(len(players), ShouldEqual, 12)
			for _, rs := range players {
				So(len(rs), ShouldEqual, 22)
				for i := 1; i < len(rs); i++ {
					So(rs[i].TS.After(rs[i-1].TS), ShouldBeTrue)
				}
			}
		})

		Convey("Then scores are plausible for the tees", func() {
			for _, r := range rounds {
				So(r.AdjustedGrossScore, ShouldBeGreaterThan, r.CourseRating-4)
				So(r.SlopeRating, ShouldBeGreaterThan, 0.0)
				So(r.HolesPlayed == 9 || r.HolesPlayed == 18, ShouldBeTrue)
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running handicap service", t, func() {
		ctx := context.Background()
		srv, svc := newTestServer(ctx)
		defer svc.Stop()
		defer srv.Close()

		Convey("When a simulation is run against it", func() {
			cfg := testConfig(srv.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "rounds.json")
			stats, err := Run(ctx, cfg)

			Convey("Then every index matches the local computation", func() {
				So(err, ShouldBeNil)
				So(stats.RoundsAccepted, ShouldEqual, 12*22)
				So(stats.RoundsFailed, ShouldEqual, 0)
				So(stats.PlayersVerified, ShouldEqual, 12)
				So(stats.Mismatches, ShouldEqual, 0)
				So(stats.LeaderboardEntries, ShouldEqual, 10)
			})

			Convey("And the saved rounds can be loaded back", func() {
				rounds, err := importer.NewFactory().LoadFile(ctx, cfg.OutputFile)
				So(err, ShouldBeNil)
				So(len(rounds), ShouldEqual, 12*22)
			})

			Convey("And replaying the saved file reports duplicates only", func() {
				replay := testConfig(srv.URL)
				replay.InputFile = cfg.OutputFile
				stats, err := Run(ctx, replay)
				So(err, ShouldBeNil)
				So(stats.RoundsDuplicate, ShouldEqual, 12*22)
				So(stats.Mismatches, ShouldEqual, 0)
			})
		})
	})
}

func TestRunUnreachable(t *testing.T) {
	Convey("Given no service", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Timeout = 200 * time.Millisecond

		Convey("Then the health check fails", func() {
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
