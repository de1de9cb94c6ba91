package notifykit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/notifykit/pkg/idempotency"
	"github.com/dmitrymomot/notifykit/pkg/mailer"
	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// Mail transport selectors for Config.Transport.
const (
	TransportSMTP     = "smtp"
	TransportPostmark = "postmark"
	TransportDev      = "dev"
)

// Config aggregates every knob required to assemble a production System from
// the environment.
type Config struct {
	Transport    string        `env:"NOTIFY_TRANSPORT" envDefault:"smtp"`       // Transport selects the mail transport: smtp, postmark or dev.
	DevOutputDir string        `env:"NOTIFY_DEV_DIR" envDefault:"./tmp/mail"`   // DevOutputDir is where the dev transport writes messages.
	PollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"5s"`     // PollInterval is how often the worker scans storage for due notifications.
	QueueSize    int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`       // QueueSize is the delivery worker's submission buffer size.
	MaxBackoff   time.Duration `env:"NOTIFY_MAX_BACKOFF" envDefault:"60m"`      // MaxBackoff caps the exponential retry delay.
	MaxRetries   int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`        // MaxRetries is the default delivery retry budget per notification.
	Idempotency  bool          `env:"NOTIFY_IDEMPOTENCY" envDefault:"false"`    // Idempotency enables the Redis-backed delivery dedup guard.

	Mailer mailer.Config
	PG     pg.Config
	Redis  idempotency.Config
}

var defaultEnvLoaded sync.Once

// LoadConfig populates Config from environment variables, loading the
// default .env file once if present.
func LoadConfig() (Config, error) {
	defaultEnvLoaded.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrFailedToLoadConfig, err)
	}
	return cfg, nil
}

// NewFromConfig assembles a System with PostgreSQL storage and the configured
// mail transport. It connects to the database, applies the embedded schema
// migrations, and optionally wires the Redis idempotency guard. The returned
// cleanup closes the connections; call it after Stop.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*System, func(), error) {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx, pool, cfg.PG, slog.Default()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	sender, err := buildSender(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	sysOpts := []Option{
		WithPollInterval(cfg.PollInterval),
		WithQueueSize(cfg.QueueSize),
		WithMaxBackoff(cfg.MaxBackoff),
		WithDefaultMaxRetries(cfg.MaxRetries),
	}

	cleanup := pool.Close
	if cfg.Idempotency {
		client, err := idempotency.Connect(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		sysOpts = append(sysOpts, WithIdempotencyGuard(idempotency.NewRedisGuard(client)))
		cleanup = func() {
			_ = client.Close()
			pool.Close()
		}
	}

	// Caller options come last so they win over config-derived ones.
	sysOpts = append(sysOpts, opts...)

	system, err := New(pg.NewStorage(pool), sender, sysOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return system, cleanup, nil
}

func buildSender(cfg Config) (mailer.Sender, error) {
	switch cfg.Transport {
	case TransportSMTP:
		return mailer.NewSMTPSender(cfg.Mailer)
	case TransportPostmark:
		return mailer.NewPostmarkSender(cfg.Mailer)
	case TransportDev:
		return mailer.NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransport, cfg.Transport)
	}
}
