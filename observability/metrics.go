package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricStageItems     = "stage.items"
	MetricStageFailures  = "stage.failures"
	MetricConnectorDepth = "connector.depth"
)

// Attribute keys.
const (
	AttrPipeline = "pipeline"
	AttrStage    = "stage.index"
	AttrTag      = "stage.tag"
	AttrRole     = "stage.role"
	AttrCode     = "error.code"
	AttrFrom     = "connector.from"
	AttrTo       = "connector.to"
)

// StageAttrs identifies one stage in metric attributes.
type StageAttrs struct {
	Pipeline string
	Index    int
	Tag      string
	Role     string
}

func (a StageAttrs) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPipeline, a.Pipeline),
		attribute.Int(AttrStage, a.Index),
		attribute.String(AttrTag, a.Tag),
		attribute.String(AttrRole, a.Role),
	}
}

// ConnectorDepth is one observation of a connector's buffered item count.
// Index is the index of the upstream stage.
type ConnectorDepth struct {
	Pipeline string
	Index    int
	From     string
	To       string
	Depth    int64
	Capacity int64
}

// PipelineMetrics holds the instruments recorded by pipeline stages. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	meter    metric.Meter
	items    metric.Int64Counter
	failures metric.Int64Counter
	depth    metric.Int64ObservableGauge
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	items, err := meter.Int64Counter(MetricStageItems,
		metric.WithDescription("Values completed by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricStageItems, err)
	}

	failures, err := meter.Int64Counter(MetricStageFailures,
		metric.WithDescription("Stages ended by a component failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricStageFailures, err)
	}

	depth, err := meter.Int64ObservableGauge(MetricConnectorDepth,
		metric.WithDescription("Values buffered in a connector"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricConnectorDepth, err)
	}

	return &PipelineMetrics{
		meter:    meter,
		items:    items,
		failures: failures,
		depth:    depth,
	}, nil
}

// RecordItem counts one completed value for a stage.
func (m *PipelineMetrics) RecordItem(ctx context.Context, attrs StageAttrs) {
	if m == nil {
		return
	}
	m.items.Add(ctx, 1, metric.WithAttributes(attrs.attributes()...))
}

// RecordFailure counts a stage failure with its error code.
func (m *PipelineMetrics) RecordFailure(ctx context.Context, attrs StageAttrs, code string) {
	if m == nil {
		return
	}
	kv := append(attrs.attributes(), attribute.String(AttrCode, code))
	m.failures.Add(ctx, 1, metric.WithAttributes(kv...))
}

// ObserveDepth registers fn as the source of connector depth observations.
// Unregister the returned registration once the connectors are gone.
func (m *PipelineMetrics) ObserveDepth(fn func() []ConnectorDepth) (metric.Registration, error) {
	if m == nil {
		return nil, fmt.Errorf("pipeline metrics not initialized")
	}
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, d := range fn() {
			o.ObserveInt64(m.depth, d.Depth, metric.WithAttributes(
				attribute.String(AttrPipeline, d.Pipeline),
				attribute.Int(AttrStage, d.Index),
				attribute.String(AttrFrom, d.From),
				attribute.String(AttrTo, d.To),
				attribute.Int64("connector.capacity", d.Capacity),
			))
		}
		return nil
	}, m.depth)
}
