package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(dbctx *DBContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Pages
	mux.HandleFunc("GET /cluster/{cluster_id}", dbctx.ClusterPage)
	mux.HandleFunc("GET /sequence/by-cluster", dbctx.GetSequenceByClusterIDHandler)

	// API routes
	mux.HandleFunc("GET /api/v1/health", HealthCheck)
	mux.HandleFunc("GET /api/v1/cluster/{cluster_id}", dbctx.GetClusterAPI)
	mux.HandleFunc("GET /api/v1/clusters", dbctx.FilterClustersAPI)
	mux.HandleFunc("GET /api/v1/stats", dbctx.StatisticsAPI)
	mux.HandleFunc("GET /api/v1/runs", dbctx.RunsAPI)

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
