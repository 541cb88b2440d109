package account

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shubhamtiwari158/securify/pkg/clock"
	"github.com/shubhamtiwari158/securify/pkg/logger"
	"github.com/shubhamtiwari158/securify/pkg/password"
	"github.com/shubhamtiwari158/securify/pkg/qrcode"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/pkg/validator"
)

// Option configures Authenticator and Enrollment.
type Option func(*deps)

type deps struct {
	cfg       Config
	logger    *slog.Logger
	clock     clock.Clock
	pool      *password.Pool
	provider  *totp.Provider
	renderer  *qrcode.Renderer
	pending   PendingStore
	validator *validator.Validator

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func newDeps(opts []Option) *deps {
	d := &deps{
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.pool == nil {
		hasher, err := d.cfg.Hasher()
		if err != nil {
			d.logger.Warn("falling back to bcrypt", logger.Component("account"), logger.Error(err))
			hasher = password.NewBcrypt(d.cfg.BcryptCost)
		}
		d.pool = password.MustNewPool(hasher, max(d.cfg.HashWorkers, 1))
	}
	if d.provider == nil {
		d.provider = totp.NewProvider(totp.WithIssuer(d.cfg.Issuer))
	}
	if d.renderer == nil {
		d.renderer = qrcode.NewRenderer()
	}
	if d.validator == nil {
		d.validator = validator.MustNew()
	}
	if d.tracerProvider == nil {
		d.tracerProvider = otel.GetTracerProvider()
	}
	if d.meterProvider == nil {
		d.meterProvider = otel.GetMeterProvider()
	}
	return d
}

// WithConfig replaces the default configuration. Unless WithPasswordPool is
// also given, the pool is built from cfg.Hasher.
func WithConfig(cfg Config) Option {
	return func(d *deps) {
		d.cfg = cfg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *deps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock injects the time source used for TOTP checks and timestamps.
func WithClock(c clock.Clock) Option {
	return func(d *deps) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithPasswordPool sets the bounded pool that runs password hashing.
func WithPasswordPool(p *password.Pool) Option {
	return func(d *deps) {
		d.pool = p
	}
}

func WithSecretProvider(p *totp.Provider) Option {
	return func(d *deps) {
		d.provider = p
	}
}

func WithRenderer(r *qrcode.Renderer) Option {
	return func(d *deps) {
		d.renderer = r
	}
}

// WithPendingStore enables login challenge tokens.
func WithPendingStore(s PendingStore) Option {
	return func(d *deps) {
		d.pending = s
	}
}

func WithValidator(v *validator.Validator) Option {
	return func(d *deps) {
		d.validator = v
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *deps) {
		d.tracerProvider = tp
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(d *deps) {
		d.meterProvider = mp
	}
}
