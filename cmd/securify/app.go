package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shubhamtiwari158/securify/pkg/config"
	"github.com/shubhamtiwari158/securify/pkg/logger"
	"github.com/shubhamtiwari158/securify/pkg/mongo"
	"github.com/shubhamtiwari158/securify/pkg/pg"
	"github.com/shubhamtiwari158/securify/pkg/redis"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
	"github.com/shubhamtiwari158/securify/svc/account/memstore"
	"github.com/shubhamtiwari158/securify/svc/account/mongostore"
	"github.com/shubhamtiwari158/securify/svc/account/pgstore"
	"github.com/shubhamtiwari158/securify/svc/account/redispending"
)

// Store and pending-store backends.
const (
	backendMemory   = "memory"
	backendMongo    = "mongo"
	backendPostgres = "postgres"
	backendRedis    = "redis"
)

var (
	errUsage            = errors.New("invalid usage")
	errUnknownBackend   = errors.New("unknown backend")
	errEphemeralBackend = errors.New("backend does not persist between runs")
)

type appConfig struct {
	Logger  logger.Config
	Account account.Config
	Cipher  totp.CipherConfig

	StoreBackend   string `env:"ACCOUNT_STORE" envDefault:"postgres"`
	PendingBackend string `env:"PENDING_STORE" envDefault:"memory"`
}

type app struct {
	cfg    appConfig
	log    *slog.Logger
	out    io.Writer
	auth   *account.Authenticator
	enroll *account.Enrollment

	migrate func(context.Context) error
	checks  map[string]func(context.Context) error
	closers []func(context.Context) error
}

// requirePersistent rejects in-memory backends for commands whose state has
// to outlive a single invocation. Memory backends are for tests.
func (c appConfig) requirePersistent(cmd string) error {
	switch cmd {
	case "migrate", "healthcheck":
		return nil
	}
	if strings.EqualFold(c.StoreBackend, backendMemory) {
		return fmt.Errorf("%w: ACCOUNT_STORE=%s, use %s or %s", errEphemeralBackend, backendMemory, backendMongo, backendPostgres)
	}
	if cmd == "challenge" && strings.EqualFold(c.PendingBackend, backendMemory) {
		return fmt.Errorf("%w: PENDING_STORE=%s, use %s", errEphemeralBackend, backendMemory, backendRedis)
	}
	return nil
}

func sources(envFile, yamlFile string) []config.Option {
	return []config.Option{config.WithYAMLFile(yamlFile), config.WithDotEnv(envFile)}
}

// newApp loads configuration and connects the selected backends. Backend
// configs are loaded only for the backends in use, since their connection
// URLs are required.
func newApp(ctx context.Context, out io.Writer, src ...config.Option) (_ *app, err error) {
	var cfg appConfig
	if err := config.Load(&cfg, src...); err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    logger.New(logger.FromConfig(cfg.Logger)...),
		out:    out,
		checks: map[string]func(context.Context) error{},
	}
	defer func() {
		if err != nil {
			a.close(context.WithoutCancel(ctx))
		}
	}()

	cipher, err := totp.LoadCipher(cfg.Cipher)
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx, cipher, src)
	if err != nil {
		return nil, err
	}
	pending, err := a.openPending(ctx, src)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Account.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, account.WithLogger(a.log), account.WithPendingStore(pending))

	a.auth = account.NewAuthenticator(store, opts...)
	a.enroll = account.NewEnrollment(store, opts...)

	a.log.DebugContext(ctx, "backends ready",
		logger.Group("backends",
			slog.String("store", cfg.StoreBackend),
			slog.String("pending", cfg.PendingBackend),
			slog.Bool("encrypted", cipher != nil),
		),
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context, cipher *totp.Cipher, src []config.Option) (account.Store, error) {
	switch strings.ToLower(a.cfg.StoreBackend) {
	case backendMemory:
		a.migrate = func(context.Context) error { return nil }
		return memstore.New(), nil

	case backendMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg, src...); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := db.Client()
		a.closers = append(a.closers, client.Disconnect)
		a.checks[backendMongo] = mongo.Healthcheck(client)

		store := mongostore.New(db, mongostore.WithCipher(cipher))
		a.migrate = store.EnsureIndexes
		return store, nil

	case backendPostgres:
		var cfg pg.Config
		if err := config.Load(&cfg, src...); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		a.checks[backendPostgres] = pg.Healthcheck(pool)
		a.migrate = func(ctx context.Context) error {
			return pgstore.Migrate(ctx, pool, cfg, a.log)
		}
		return pgstore.New(pool, pgstore.WithCipher(cipher)), nil

	default:
		return nil, fmt.Errorf("%w: ACCOUNT_STORE=%q", errUnknownBackend, a.cfg.StoreBackend)
	}
}

func (a *app) openPending(ctx context.Context, src []config.Option) (account.PendingStore, error) {
	switch strings.ToLower(a.cfg.PendingBackend) {
	case backendMemory:
		return memstore.NewPendingStore(nil), nil

	case backendRedis:
		var cfg redis.Config
		if err := config.Load(&cfg, src...); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.checks[backendRedis] = redis.Healthcheck(client)
		return redispending.New(client, cfg.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("%w: PENDING_STORE=%q", errUnknownBackend, a.cfg.PendingBackend)
	}
}

func (a *app) close(ctx context.Context) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		a.log.WarnContext(ctx, "failed to close backends", logger.Errors(errs...))
	}
}
