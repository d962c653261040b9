package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/db"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/logger"
)

const (
	envHeader        = "X-Figorders-Env"
	readinessTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the durable store backing the slots.
func HealthReady(cfg *config.Config, logg *logger.Logger, store db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "durable store unavailable").
					WithDetails(map[string]string{"backend": cfg.Store.NormalizedBackend()}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{
			"status":  "ready",
			"backend": cfg.Store.NormalizedBackend(),
		})
	}
}
