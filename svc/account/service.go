package account

// core is shared by Authenticator and Enrollment.
type core struct {
	*deps
	tel   telemetry
	store boundStore
}

func newCore(store Store, opts []Option) core {
	d := newDeps(opts)
	return core{
		deps: d,
		tel:  newTelemetry(d.tracerProvider, d.meterProvider),
		store: boundStore{
			store:   store,
			pending: d.pending,
			timeout: d.cfg.StoreTimeout,
		},
	}
}
