// Package pg provides the PostgreSQL persistence layer for notifications
// using the pgx/v5 driver. It offers a thin abstraction around connection
// pooling, embedded schema migrations, health checks, and the
// notification.Storage implementation backing the delivery worker.
//
// The package purposefully keeps a very small API surface while relying on
// battle-tested upstream libraries (`pgx/v5` for connectivity and `goose/v3`
// for schema migrations) so that callers are never locked-in and can freely
// extend the behaviour where needed.
//
// # Architecture
//
// The package exposes four cooperating building blocks:
//
//   - Config – a declarative struct whose fields are populated from
//     environment variables via github.com/caarlos0/env. It controls
//     connection pool limits, health-check cadence and the migrations table.
//
//   - Connect – opens a *pgxpool.Pool based on Config, retrying with a
//     growing back-off until the database becomes available.
//
//   - Migrate – runs the embedded goose migrations against the same
//     connection pool, guaranteeing the schema is up-to-date before the
//     worker starts delivering.
//
//   - Storage – the notification.Storage implementation: an upsert-keyed
//     notifications table plus an append-only notification_audit table.
//
// # Usage
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		panic(err)
//	}
//
//	ctx := context.Background()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		panic(err)
//	}
//
//	storage := pg.NewStorage(pool)
//
// Register a readiness probe where needed:
//
//	health := pg.Healthcheck(pool)
//	if err := health(ctx); err != nil {
//		// database is not healthy
//	}
//
// # Error Handling
//
// Get maps pgx.ErrNoRows to notification.ErrNotFound so callers never import
// pgx to classify errors. The helpers [pg.IsNotFoundError] and
// [pg.IsDuplicateKeyError] remain available for custom queries.
package pg
