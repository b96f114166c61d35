package controllers

import (
	"net/http"

	"github.com/sk2andy/mattermost-buy-bot/api/responses"
	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	"github.com/sk2andy/mattermost-buy-bot/pkg/db"
	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BuyBot-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BuyBot-Env", cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not reachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
