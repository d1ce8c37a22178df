package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"parking-facility/internal/parking"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

var spotsDesc = prometheus.NewDesc(
	"parking_spots",
	"Parking spots per level, spot type and state",
	[]string{"level", "spot_type", "state"},
	nil,
)

// OccupancyCollector reports a fresh facility snapshot on every scrape.
type OccupancyCollector struct {
	status func() []parking.LevelStatus
}

func NewOccupancyCollector(status func() []parking.LevelStatus) *OccupancyCollector {
	return &OccupancyCollector{status: status}
}

func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- spotsDesc
}

func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	for _, level := range c.status() {
		id := strconv.Itoa(level.Level)
		for _, t := range parking.SpotTypes() {
			free, claimed := level.Free[t], level.Claimed[t]
			if free+claimed == 0 {
				continue
			}
			ch <- prometheus.MustNewConstMetric(spotsDesc, prometheus.GaugeValue, float64(free), id, t.String(), "free")
			ch <- prometheus.MustNewConstMetric(spotsDesc, prometheus.GaugeValue, float64(claimed), id, t.String(), "occupied")
		}
	}
}
