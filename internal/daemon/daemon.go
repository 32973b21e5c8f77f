package daemon

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/papaleguas-app/papaleguas/internal/api"
	"github.com/papaleguas-app/papaleguas/internal/app/identity"
	"github.com/papaleguas-app/papaleguas/internal/app/mission"
	"github.com/papaleguas-app/papaleguas/internal/app/notify"
	"github.com/papaleguas-app/papaleguas/internal/app/wallet"
	"github.com/papaleguas-app/papaleguas/internal/infra/catalog"
	"github.com/papaleguas-app/papaleguas/internal/infra/clock"
	"github.com/papaleguas-app/papaleguas/internal/infra/observability"
	"github.com/papaleguas-app/papaleguas/internal/infra/sqlite"
)

// Run assembles the services and serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	clk := clock.System()
	w := wallet.New(cfg.Driver.OpeningBalance, db, clk)

	inbox := notify.NewService(db, clk)
	if err := inbox.Seed(); err != nil {
		return err
	}

	metrics := observability.New(prometheus.DefaultRegisterer)

	missionCfg := mission.DefaultConfig()
	missionCfg.GenerationDelay = parseDuration(cfg.Timers.GenerationDelay, missionCfg.GenerationDelay)
	missionCfg.OrderReadyDelay = parseDuration(cfg.Timers.OrderReadyDelay, missionCfg.OrderReadyDelay)
	missionCfg.AutoAcceptDelay = parseDuration(cfg.Timers.AutoAcceptDelay, missionCfg.AutoAcceptDelay)
	if cfg.Timers.AlertSeconds > 0 {
		missionCfg.AlertSeconds = cfg.Timers.AlertSeconds
	}
	missionCfg.MaxDistance = cfg.Driver.MaxDistance
	missionCfg.MinPrice = cfg.Driver.MinPrice

	ctrl := mission.New(missionCfg, mission.Deps{
		Source:  catalog.New(time.Now().UnixNano()),
		Wallet:  w,
		Clock:   clk,
		Metrics: metrics,
	})
	ctrl.SetAutoAccept(cfg.Driver.AutoAccept)

	verify := identity.NewFlow(&identity.MockCamera{})
	verify.OnSuccess(ctrl.CompleteIdentityVerification)

	srv := api.NewServer(ctrl, w, inbox, verify, db)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("papaleguas listening on http://%s", cfg.Addr())
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
