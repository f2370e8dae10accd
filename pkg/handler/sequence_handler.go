package handler

import (
	"net/http"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/render"
	"go.uber.org/zap"
)

// All member sequences of a cluster in FASTA format
func (dbctx *DBContext) GetSequenceByClusterIDHandler(w http.ResponseWriter, r *http.Request) {
	cluster := dbctx.lookupCluster(w, r)
	if cluster == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := render.RenderFASTA(w, cluster); err != nil {
		logger.Error("Writing FASTA failed", zap.String("cluster_id", cluster.ID), zap.Error(err))
	}
}
