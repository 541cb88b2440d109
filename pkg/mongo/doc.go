// Package mongo opens MongoDB connections with retry and exposes a ping
// based health check.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// Connection attempts back off on a Fibonacci schedule starting at
// RetryInterval and give up after RetryAttempts tries.
package mongo
