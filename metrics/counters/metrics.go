package counters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "server",
	Name:      "connections_active",
	Help:      "Number of active ws connections",
})

var decodedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "messages_decoded_total",
	Help:      "Total number of decoded messages by action.",
}, []string{"action"})

var formatErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "format_errors_total",
	Help:      "Total number of messages rejected by the codec.",
}, []string{"action"})

var signatureCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "signature_checks_total",
	Help:      "Total number of signature checks by result.",
}, []string{"result"})

var callResultCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "outgoing_calls_total",
	Help:      "Total number of calls sent to charge points by action and result code.",
}, []string{"action", "result"})

func ObserveConnections(count int) {
	connectionsGauge.Set(float64(count))
}

func CountDecoded(action string) {
	if len(action) == 0 {
		return
	}
	decodedCounter.With(prometheus.Labels{"action": action}).Inc()
}

func CountFormatError(action string) {
	if len(action) == 0 {
		action = "unknown"
	}
	formatErrorCounter.With(prometheus.Labels{"action": action}).Inc()
}

func CountSignatureCheck(result string) {
	signatureCounter.With(prometheus.Labels{"result": result}).Inc()
}

func CountCallResult(action, result string) {
	callResultCounter.With(prometheus.Labels{"action": action, "result": result}).Inc()
}
