package channel

import "github.com/prometheus/client_golang/prometheus"

var (
	connectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_chat_channel_connects_total",
			Help: "Total successful chat channel connections.",
		},
	)
	reconnectsScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_chat_channel_reconnects_scheduled_total",
			Help: "Total reconnect cycles scheduled after channel closure.",
		},
	)
	framesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_chat_channel_frames_received_total",
			Help: "Total inbound frames read from the chat channel.",
		},
	)
	framesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_chat_channel_frames_dropped_total",
			Help: "Total inbound frames dropped because they failed to parse.",
		},
	)
	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_chat_channel_messages_sent_total",
			Help: "Total outbound messages written to the chat channel.",
		},
	)
)

func init() {
	prometheus.MustRegister(connectsTotal, reconnectsScheduled, framesReceived, framesDropped, messagesSent)
}
