package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterDefault()
		RegisterDefault()
	})

	OrdersMaterialized.WithLabelValues("created").Inc()
	families, err := Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	var created float64
	for _, f := range families {
		names[f.GetName()] = true
		if f.GetName() != "orders_materialized_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == "created" {
					created = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.True(t, names["go_goroutines"])
	assert.GreaterOrEqual(t, created, 1.0)
}
