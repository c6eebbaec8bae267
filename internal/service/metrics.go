package service

import "github.com/prometheus/client_golang/prometheus"

var (
	loginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "agro", Name: "auth_login_total", Help: "Login attempts by outcome"},
		[]string{"outcome"},
	)
	registerTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "agro", Name: "auth_register_total", Help: "Registrations by outcome"},
		[]string{"outcome"},
	)
	weatherCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "agro", Name: "weather_cache_requests_total", Help: "Weather cache lookups by result"},
		[]string{"result"},
	)
	detectionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "agro", Name: "disease_detections_total", Help: "Leaf detections by result"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(loginTotal, registerTotal, weatherCacheTotal, detectionTotal)
}
