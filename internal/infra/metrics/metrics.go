package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estoque_operations_total",
	Help: "Core operations by name and outcome.",
}, []string{"op", "outcome"})

func OK(op string) {
	operations.WithLabelValues(op, "ok").Inc()
}

func Fail(op string) {
	operations.WithLabelValues(op, "fail").Inc()
}

// Observe — удобный хвост для defer: фиксирует исход по ошибке.
func Observe(op string, err error) {
	if err != nil {
		Fail(op)
		return
	}
	OK(op)
}
