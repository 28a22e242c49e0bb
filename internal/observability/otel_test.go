package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/tbourn/go-task-backend/internal/config"
)

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown must not be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupOTel_ExporterErrorPropagates(t *testing.T) {
	orig := newOTLPExporterFn
	defer func() { newOTLPExporterFn = orig }()
	newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("dial boom")
	}

	cfg := config.OTELConfig{Enabled: true, Endpoint: "localhost:4317", Insecure: true, ServiceName: "t", SampleRatio: 1}
	if _, err := SetupOTel(context.Background(), cfg, "test"); err == nil {
		t.Fatal("expected exporter construction error")
	}
}

func TestSetupOTel_ResourceErrorPropagates(t *testing.T) {
	origExp := newOTLPExporterFn
	origRes := newServiceResourceFn
	defer func() {
		newOTLPExporterFn = origExp
		newServiceResourceFn = origRes
	}()
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return &otlptrace.Exporter{}, nil
	}
	newServiceResourceFn = func(context.Context, string, string) (*resource.Resource, error) {
		return nil, errors.New("resource boom")
	}

	cfg := config.OTELConfig{Enabled: true, Endpoint: "localhost:4317", Insecure: true, ServiceName: "t", SampleRatio: 1}
	if _, err := SetupOTel(context.Background(), cfg, "test"); err == nil {
		t.Fatal("expected resource construction error")
	}
}
