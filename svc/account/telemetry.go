package account

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/shubhamtiwari158/securify/pkg/validator"
)

const instrumentationName = "github.com/shubhamtiwari158/securify/svc/account"

type telemetry struct {
	tracer        trace.Tracer
	decisions     metric.Int64Counter
	verifications metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) telemetry {
	meter := mp.Meter(instrumentationName)

	decisions, err := meter.Int64Counter("securify.auth.decisions",
		metric.WithDescription("Password authentication outcomes"))
	if err != nil {
		decisions = noop.Int64Counter{}
	}
	verifications, err := meter.Int64Counter("securify.twofactor.verifications",
		metric.WithDescription("TOTP code verification outcomes"))
	if err != nil {
		verifications = noop.Int64Counter{}
	}

	return telemetry{
		tracer:        tp.Tracer(instrumentationName),
		decisions:     decisions,
		verifications: verifications,
	}
}

func (t telemetry) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// end records err on the span unless it is an expected outcome of user
// input.
func (t telemetry) end(span trace.Span, err error) {
	if err != nil && !isUserError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t telemetry) decision(ctx context.Context, outcome string) {
	t.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (t telemetry) verification(ctx context.Context, purpose, outcome string) {
	t.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("outcome", outcome),
	))
}

func isUserError(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials,
		ErrDuplicateKey,
		ErrNotFound,
		ErrNotEnrolled,
		ErrTwoFactorNotEnabled,
		ErrChallengeNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.Is(err, validator.ErrValidationFailed)
}
