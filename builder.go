package streamauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/robspecs/streamauth/kv"
	"github.com/robspecs/streamauth/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config Config
	store  kv.Store

	users     UserProvider
	mailer    Mailer
	hasher    PasswordHasher
	auditSink AuditSink
	logger    *zap.Logger

	built bool
}

// New returns a Builder preloaded with the default policy constants.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis installs a Redis-backed [kv.Store] on the given client.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.store = kv.NewRedisStore(client)
	return b
}

// WithStore installs an arbitrary store implementation. Tests typically
// inject a fake here; production wiring uses [Builder.WithRedis].
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithUsers installs the user-record collaborator.
func (b *Builder) WithUsers(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithMailer installs the outbound notification collaborator.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithHasher overrides the default Argon2id password hasher.
func (b *Builder) WithHasher(hasher PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

// WithAuditSink installs the audit event consumer.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger installs a structured logger. Absent one, the engine logs
// nowhere (zap.NewNop).
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and collaborator set and returns a
// ready Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("kv store required (use WithRedis or WithStore)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user provider required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	hasher := b.hasher
	if hasher == nil {
		ph, err := password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		hasher = ph
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		config:    cfg,
		store:     b.store,
		otp:       newOTPManager(b.store, cfg.OTP),
		resets:    newResetTokenStore(b.store, cfg.Reset),
		blacklist: newTokenBlacklist(b.store),
		users:     b.users,
		mailer:    b.mailer,
		hasher:    hasher,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
		logger:    logger,
	}

	b.built = true

	return engine, nil
}
