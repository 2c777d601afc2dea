package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"routing/pkg/apperror"
)

// Trace выполняет fn внутри span с именем name. Ошибка fn записывается в span
// вместе с кодом apperror и возвращается без изменений.
func Trace(ctx context.Context, name string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := fn(ctx)
	finishSpan(span, err)
	return err
}

// TraceValue то же, что Trace, для операций с результатом
func TraceValue[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error), attrs ...attribute.KeyValue) (T, error) {
	ctx, span := StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	result, err := fn(ctx)
	finishSpan(span, err)
	return result, err
}

func finishSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.SetAttributes(attribute.String("error.code", string(apperror.Code(err))))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
