package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstrumentName(t *testing.T) {
	require.Equal(t, "smartschool.session.jar", instrumentName("smartschool: session.jar"))
	require.Equal(t, "a_b", instrumentName("a b"))
}

func TestOtelAPI(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		provider.Shutdown(context.Background())
	})

	inner := &Recorder{}
	tel, err := NewOtelAPI("test", NewScopedAPI("smartschool", inner))
	require.NoError(t, err)

	tel.ReportBroken("login.classify", "drift")
	tel.ReportWarning("call.classify", 401)
	tel.ReportWarning("call.classify", 403)
	tel.ReportCount("session.jar", 3)
	tel.ReportDebug("logged in")

	require.Len(t, inner.Reports("broken"), 1)
	require.Len(t, inner.Reports("warning"), 2)
	require.Len(t, inner.Reports("count"), 1)
	require.Len(t, inner.Reports("debug"), 1)

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &collected))

	values := map[string]int64{}
	for _, scope := range collected.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, point := range data.DataPoints {
					values[m.Name] += point.Value
				}
			case metricdata.Gauge[int64]:
				for _, point := range data.DataPoints {
					values[m.Name] = point.Value
				}
			}
		}
	}
	require.Equal(t, map[string]int64{
		"broken_components": 1,
		"warnings":          2,
		"session.jar":       3,
	}, values)
}
