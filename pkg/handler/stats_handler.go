package handler

import (
	"net/http"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/db"
	"github.com/yumyai/uniref90/pkg/model"
	"go.uber.org/zap"
)

// Size statistics over every stored cluster. An empty store gives the no-data result.
func (dbctx *DBContext) StatisticsAPI(w http.ResponseWriter, r *http.Request) {
	sizes, err := dbctx.Store.Sizes(r.Context())
	if err != nil {
		logger.Error("Reading cluster sizes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Summarize(sizes))
}

// Export runs written into the store, oldest first.
func (dbctx *DBContext) RunsAPI(w http.ResponseWriter, r *http.Request) {
	runs, err := dbctx.Store.Runs(r.Context())
	if err != nil {
		logger.Error("Reading export runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}
