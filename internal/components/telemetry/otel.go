package telemetry

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelAPI forwards every report to an inner API and additionally counts
// broken components and warnings as otel metrics. Counts are recorded as
// gauges keyed by id.
type OtelAPI struct {
	inner API
	meter metric.Meter

	broken   metric.Int64Counter
	warnings metric.Int64Counter

	mutex  sync.Mutex
	gauges map[string]metric.Int64Gauge
}

func NewOtelAPI(meterName string, inner API) (*OtelAPI, error) {
	meter := otel.Meter(meterName)
	broken, err := meter.Int64Counter("broken_components")
	if err != nil {
		return nil, err
	}
	warnings, err := meter.Int64Counter("warnings")
	if err != nil {
		return nil, err
	}
	return &OtelAPI{
		inner:    inner,
		meter:    meter,
		broken:   broken,
		warnings: warnings,
		gauges:   make(map[string]metric.Int64Gauge),
	}, nil
}

func (o *OtelAPI) ReportBroken(id string, params ...any) {
	o.broken.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportBroken(id, params...)
}

func (o *OtelAPI) ReportWarning(id string, params ...any) {
	o.warnings.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportWarning(id, params...)
}

func (o *OtelAPI) ReportDebug(msg string, params ...any) {
	o.inner.ReportDebug(msg, params...)
}

func (o *OtelAPI) ReportCount(id string, count int64) {
	o.mutex.Lock()
	gauge, ok := o.gauges[id]
	if !ok {
		var err error
		gauge, err = o.meter.Int64Gauge(instrumentName(id))
		if err != nil {
			o.mutex.Unlock()
			o.inner.ReportBroken("otel.create-gauge", id, err)
			return
		}
		o.gauges[id] = gauge
	}
	o.mutex.Unlock()

	gauge.Record(context.Background(), count)
	o.inner.ReportCount(id, count)
}

// instrumentName maps a report id to a valid otel instrument name,
// ex. "smartschool: session.jar" -> "smartschool.session.jar".
func instrumentName(id string) string {
	name := strings.ReplaceAll(id, ": ", ".")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '.', r == '-', r == '/':
			return r
		default:
			return '_'
		}
	}, name)
}
