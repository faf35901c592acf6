//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry exposes the tracer, meter and instruments the testbed
// reports against. Providers default to the OpenTelemetry globals; install
// real ones with otel.SetTracerProvider / otel.SetMeterProvider before use.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentName identifies this library to telemetry backends.
const InstrumentName = "trpc.group/trpc-go/trpc-rageval-go"

// Span and attribute names.
const (
	SpanCaseInference = "rageval.case_inference"
	SpanRetrieval     = "rageval.retrieval"
	SpanJudge         = "rageval.judge"
)

// Attribute keys.
var (
	KeyCaseID  = attribute.Key("rageval.case_id")
	KeyRunID   = attribute.Key("rageval.run_id")
	KeyVerdict = attribute.Key("rageval.verdict")
	KeyModel   = attribute.Key("rageval.model")
)

// Instruments. They are created against the global providers at first use of
// the package and are safe no-ops until real providers are installed.
var (
	Tracer trace.Tracer
	Meter  metric.Meter

	// ModelCallCount counts outbound chat/judge model calls.
	ModelCallCount metric.Int64Counter
	// VerdictCount counts judged cases by verdict label.
	VerdictCount metric.Int64Counter
)

func init() {
	Tracer = otel.Tracer(InstrumentName)
	Meter = otel.Meter(InstrumentName)
	// The global meter never fails to create instruments.
	ModelCallCount, _ = Meter.Int64Counter(
		"rageval.model.calls",
		metric.WithDescription("Outbound model calls"),
		metric.WithUnit("1"),
	)
	VerdictCount, _ = Meter.Int64Counter(
		"rageval.verdicts",
		metric.WithDescription("Judged cases by verdict"),
		metric.WithUnit("1"),
	)
}

// StartSpan starts a span under the library tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// CountVerdict records one judged case.
func CountVerdict(ctx context.Context, verdict string) {
	VerdictCount.Add(ctx, 1, metric.WithAttributes(KeyVerdict.String(verdict)))
}

// CountModelCall records one outbound model call.
func CountModelCall(ctx context.Context, modelName string) {
	ModelCallCount.Add(ctx, 1, metric.WithAttributes(KeyModel.String(modelName)))
}
