package handlers

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sensor-dashboard/metrics"
)

type Routes struct {
	Readings *ReadingsHandler
	Trend    *TrendHandler
	Charts   *ChartHandler
	Archive  *ArchiveHandler
	History  *HistoryHandler
	Health   *HealthHandler
	Live     *LiveHub
}

func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.MetricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/readings", rt.Readings.GetReadings).Methods("GET")
	api.HandleFunc("/readings/latest", rt.Readings.GetLatest).Methods("GET")
	api.HandleFunc("/readings/table", rt.Readings.GetTable).Methods("GET")
	api.HandleFunc("/readings/sample", rt.Readings.Sample).Methods("POST")
	api.HandleFunc("/trend/{field}", rt.Trend.GetTrend).Methods("GET")
	api.HandleFunc("/charts/{field}.png", rt.Charts.GetChart).Methods("GET")
	api.HandleFunc("/archive", rt.Archive.ListArchive).Methods("GET")
	api.HandleFunc("/history/{field}", rt.History.GetHistory).Methods("GET")

	r.HandleFunc("/ws", rt.Live.ServeWS).Methods("GET")
	r.HandleFunc("/health", rt.Health.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	return r
}
