package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling metrics
	BookingsTotal      prometheus.Counter
	BookingRacesLost   prometheus.Counter
	BookingRollbacks   prometheus.Counter
	CancellationsTotal prometheus.Counter
	ReassignmentsTotal prometheus.Counter
	StatusUpdates      *prometheus.CounterVec

	// Notification metrics
	NotificationsEmitted   prometheus.Counter
	NotificationDeliveries *prometheus.CounterVec
	DeliveryLatency        prometheus.Histogram
	PendingQueueSize       prometheus.Gauge
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		BookingsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_total",
			Help:      "Total number of successful bookings",
		}),
		BookingRacesLost: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "booking_races_lost_total",
			Help:      "Total number of bookings rejected because the slot was taken",
		}),
		BookingRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "booking_rollbacks_total",
			Help:      "Total number of reservations released after a failed create",
		}),
		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cancellations_total",
			Help:      "Total number of cancelled appointments",
		}),
		ReassignmentsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reassignments_total",
			Help:      "Total number of reassigned appointments",
		}),
		StatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_updates_total",
			Help:      "Total number of appointment status updates",
		}, []string{"status"}),
		NotificationsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notifications handed to the sink",
		}),
		NotificationDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_deliveries_total",
			Help:      "Total number of notification delivery attempts by outcome",
		}, []string{"outcome"}),
		DeliveryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_delivery_duration_seconds",
			Help:      "Time spent delivering a notification batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		PendingQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_pending",
			Help:      "Number of notifications awaiting delivery in the last poll",
		}),
	}
}
