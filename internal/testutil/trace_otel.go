// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// SpanRecorder captures the spans ended while it is installed as the global
// tracer provider. Tests that use one must not run in parallel.
type SpanRecorder struct {
	exporter *tracetest.InMemoryExporter
}

// NewSpanRecorder installs a synchronous, always-sampling tracer provider
// for the duration of t. The previous provider is restored on cleanup.
func NewSpanRecorder(t testing.TB) *SpanRecorder {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("shutting down tracer provider: %v", err)
		}
	})
	return &SpanRecorder{exporter: exporter}
}

// Ended returns the spans ended so far, oldest first.
func (r *SpanRecorder) Ended() tracetest.SpanStubs {
	return r.exporter.GetSpans()
}

// Named returns the ended spans called name.
func (r *SpanRecorder) Named(name string) []tracetest.SpanStub {
	var out []tracetest.SpanStub
	for _, s := range r.exporter.GetSpans() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
