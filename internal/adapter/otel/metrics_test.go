package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/leadrecon/internal/adapter/otel"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumWith(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("aggregation = %T, want Sum[int64]", data)
	}
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordSweep(t *testing.T) {
	reader := setupTestMeter(t)
	m, err := adapter.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	report := domain.BatchReport{
		Valid:   []domain.Lead{{ID: "A"}, {ID: "B"}},
		Invalid: []domain.InvalidLead{{Lead: domain.Lead{ID: "C"}}},
	}
	m.RecordSweep(context.Background(), report, 4)

	data := collect(t, reader)

	if got := sumWith(t, data["leadrecon.sweeps"]); got != 1 {
		t.Errorf("sweeps = %d, want 1", got)
	}
	if got := sumWith(t, data["leadrecon.leads_validated"], attribute.String("outcome", "valid")); got != 2 {
		t.Errorf("valid = %d, want 2", got)
	}
	if got := sumWith(t, data["leadrecon.leads_validated"], attribute.String("outcome", "invalid")); got != 1 {
		t.Errorf("invalid = %d, want 1", got)
	}

	gauge, ok := data["leadrecon.invalid_leads"].(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("invalid_leads aggregation = %T, want Gauge[int64]", data["leadrecon.invalid_leads"])
	}
	if len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 4 {
		t.Errorf("invalid_leads = %+v, want 4", gauge.DataPoints)
	}
}

func TestMetrics_RecordFixes(t *testing.T) {
	reader := setupTestMeter(t)
	m, err := adapter.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.RecordFixes(context.Background(), domain.ActionRevertStatus, 2, 1)
	m.RecordFixes(context.Background(), domain.ActionRetryConversion, 1, 0)

	data := collect(t, reader)["leadrecon.fixes"]

	tests := []struct {
		action string
		result string
		want   int64
	}{
		{"revert_status", "success", 2},
		{"revert_status", "failure", 1},
		{"retry_conversion", "success", 1},
		{"retry_conversion", "failure", 0},
	}
	for _, tt := range tests {
		got := sumWith(t, data, attribute.String("action", tt.action), attribute.String("result", tt.result))
		if got != tt.want {
			t.Errorf("fixes{%s,%s} = %d, want %d", tt.action, tt.result, got, tt.want)
		}
	}
}
