package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerRelayOnce sync.Once

	// OpenConnections tracks live websocket sessions.
	OpenConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ytrelay",
			Subsystem: "relay",
			Name:      "open_connections",
			Help:      "WebSocket sessions currently connected.",
		},
	)

	// ActiveRooms tracks rooms with at least one member.
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ytrelay",
			Subsystem: "relay",
			Name:      "active_rooms",
			Help:      "Rooms with at least one joined session.",
		},
	)

	// JoinsTotal counts accepted join commands.
	JoinsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ytrelay",
			Subsystem: "relay",
			Name:      "joins_total",
			Help:      "Join commands accepted.",
		},
	)

	// MessagesRelayed counts bus messages fanned out to a non-empty room.
	MessagesRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ytrelay",
			Subsystem: "relay",
			Name:      "messages_relayed_total",
			Help:      "Progress messages fanned out to a room with members.",
		},
	)

	// BusDecodeFailures counts bus messages dropped for failing to decode. A
	// climbing rate usually means publisher/consumer schema drift.
	BusDecodeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ytrelay",
			Subsystem: "relay",
			Name:      "bus_decode_failures_total",
			Help:      "Bus messages dropped because jobId could not be decoded.",
		},
	)
)

// RegisterRelay exposes the relay instruments on the default registry.
func RegisterRelay() {
	registerRelayOnce.Do(func() {
		prometheus.MustRegister(OpenConnections, ActiveRooms, JoinsTotal, MessagesRelayed, BusDecodeFailures)
	})
}
