package repository

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var groupMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "showlog",
	Name:      "alias_group_mutations_total",
	Help:      "Band grouping changes by operation and outcome.",
}, []string{"operation", "outcome"})

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidGroup):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func recordMutation(operation string, err error) {
	groupMutations.WithLabelValues(operation, outcomeOf(err)).Inc()
}
