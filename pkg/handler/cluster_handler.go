package handler

import (
	"errors"
	"net/http"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/handler/request"
	"github.com/yumyai/uniref90/pkg/model"
	"github.com/yumyai/uniref90/pkg/render"
	"go.uber.org/zap"
)

// lookupCluster writes the error response itself and returns nil when the
// cluster cannot be served.
func (dbctx *DBContext) lookupCluster(w http.ResponseWriter, r *http.Request) *model.Cluster {

	cluster_id, err := request.ClusterID(r.PathValue("cluster_id"), r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil
	}

	logger.Debug("Searching for", zap.String("cluster_id", cluster_id))

	cluster, err := dbctx.Store.GetCluster(r.Context(), cluster_id)
	if errors.Is(err, model.ErrClusterNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil
	}
	if err != nil {
		logger.Error("Cluster lookup failed", zap.String("cluster_id", cluster_id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return nil
	}
	return cluster
}

// Cluster as its one-record-per-cluster export record
func (dbctx *DBContext) GetClusterAPI(w http.ResponseWriter, r *http.Request) {
	cluster := dbctx.lookupCluster(w, r)
	if cluster == nil {
		return
	}
	writeJSON(w, http.StatusOK, cluster.Record())
}

func (dbctx *DBContext) FilterClustersAPI(w http.ResponseWriter, r *http.Request) {

	filter, err := request.ParseSizeFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	clusters, err := dbctx.Store.FilterBySize(r.Context(), filter.Range(), filter.Limit)
	if err != nil {
		logger.Error("Size filter failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	records := make([]model.ClusterRecord, len(clusters))
	for i, c := range clusters {
		records[i] = c.Record()
	}
	writeJSON(w, http.StatusOK, records)
}

func (dbctx *DBContext) ClusterPage(w http.ResponseWriter, r *http.Request) {
	cluster := dbctx.lookupCluster(w, r)
	if cluster == nil {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := render.RenderClusterPage(w, cluster); err != nil {
		logger.Error("Rendering cluster page failed", zap.Error(err))
	}
}
