package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RolloverRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ecoleplus", Name: "rollover_runs_total", Help: "School year rollover runs",
	})
	RolloverCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoleplus", Name: "rollover_created_total", Help: "Entities created by rollover",
	}, []string{"entity"}) // class|assignment|enrollment

	LifeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoleplus", Name: "life_events_total", Help: "Student life events written",
	}, []string{"type"})

	NotifySent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoleplus", Name: "notify_sent_total", Help: "Parent notifications sent",
	}, []string{"channel"})
	NotifyErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoleplus", Name: "notify_errors_total", Help: "Parent notification failures (swallowed)",
	}, []string{"channel"})

	ActiveSchools = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecoleplus", Name: "active_schools", Help: "Schools with an active school year",
	})
	ActiveEnrollments = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecoleplus", Name: "active_enrollments", Help: "ACTIVE enrollments in active school years",
	})

	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ecoleplus", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		RolloverRuns, RolloverCreated,
		LifeEvents,
		NotifySent, NotifyErrors,
		ActiveSchools, ActiveEnrollments,
		DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
