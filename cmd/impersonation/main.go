package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-idm-impersonation/pkg/audit"
	"github.com/tendant/simple-idm-impersonation/pkg/client"
	"github.com/tendant/simple-idm-impersonation/pkg/config"
	"github.com/tendant/simple-idm-impersonation/pkg/impersonate"
	impersonateapi "github.com/tendant/simple-idm-impersonation/pkg/impersonate/api"
	"github.com/tendant/simple-idm-impersonation/pkg/ratelimit"
	"github.com/tendant/simple-idm-impersonation/pkg/user"
)

type SeedConfig struct {
	UserID      string   `env:"SEED_USER_ID" env-default:"admin"`
	DisplayName string   `env:"SEED_USER_DISPLAY_NAME" env-default:"Administrator"`
	Groups      []string `env:"SEED_USER_GROUPS" env-default:"admins"`
}

type Config struct {
	Database      config.DatabaseConfig
	JWT           config.JWTConfig
	Prefix        config.PrefixConfig
	Impersonation config.ImpersonationConfig
	Seed          SeedConfig
	AppConfig     app.AppConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}
	validators := []config.Validator{cfg.JWT.Validate, cfg.Impersonation.Validate}
	if cfg.Impersonation.PersistenceType == "postgres" {
		validators = append(validators, cfg.Database.Validate)
	}
	if err := config.Validate(validators...); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Prefix.Validate(); err != nil {
		slog.Error("Invalid prefix configuration", "error", err)
		os.Exit(1)
	}

	ids, err := user.StrategyByName(cfg.Impersonation.IDStrategy)
	if err != nil {
		slog.Error("Invalid id strategy", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repoConfig := user.RepositoryConfig{
		DataDir:   cfg.Impersonation.DataDir,
		Strategy:  ids,
		CacheSize: cfg.Impersonation.CacheSize,
	}
	if cfg.Impersonation.PersistenceType == "postgres" {
		pool, err := openPool(ctx, cfg.Database, ids)
		if err != nil {
			os.Exit(-1)
		}
		defer pool.Close()
		repoConfig.Pool = pool
	}

	users, err := user.NewRepository(cfg.Impersonation.PersistenceType, repoConfig)
	if err != nil {
		slog.Error("Failed creating user repository", "type", cfg.Impersonation.PersistenceType, "error", err)
		os.Exit(1)
	}
	if err := seedUser(ctx, users, cfg.Seed); err != nil {
		slog.Error("Failed seeding user", "user_id", cfg.Seed.UserID, "error", err)
		os.Exit(1)
	}

	factory := impersonate.NewFactory(users,
		impersonate.WithIDStrategy(ids),
		impersonate.WithRedirect(cfg.Impersonation.ContextRoot),
	)
	handle := impersonateapi.NewHandle(factory)

	var clientOpts []client.MiddlewareOption
	if groups, ok := users.(user.GroupResolver); ok {
		clientOpts = append(clientOpts, client.WithGroupResolver(groups))
	}

	auditor := audit.NewMiddleware(audit.Config{All: cfg.Impersonation.AuditAll})
	var limiter *ratelimit.Middleware
	if cfg.Impersonation.RateLimit > 0 {
		rlConfig := ratelimit.DefaultConfig()
		rlConfig.Capacity = cfg.Impersonation.RateLimit
		rlConfig.RefillRate = float64(cfg.Impersonation.RateLimit) / 60.0
		limiter, err = ratelimit.NewMiddleware(rlConfig)
		if err != nil {
			slog.Error("Failed creating rate limiter", "error", err)
			os.Exit(1)
		}
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(client.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(client.AuthUserMiddleware(clientOpts...))
		r.Use(impersonate.Middleware(factory, cfg.Impersonation.Header))
		r.Use(auditor.Handler)
		r.Use(client.RequireAuth)
		if limiter != nil {
			r.Use(limiter.Handler)
		}

		r.Mount(cfg.Prefix.Users, impersonateapi.Handler(handle))
	})

	slog.Info("Impersonation service ready",
		"users_prefix", cfg.Prefix.Users,
		"persistence", cfg.Impersonation.PersistenceType,
		"id_strategy", cfg.Impersonation.IDStrategy,
		"context_root", cfg.Impersonation.ContextRoot)

	server.Run()
}

func openPool(ctx context.Context, dbCfg config.DatabaseConfig, ids user.IDStrategy) (*pgxpool.Pool, error) {
	dbConfig := dbCfg.ToDbConfig()
	pool, err := dbutils.NewDbPool(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		return nil, err
	}

	repo, err := user.NewPostgresRepository(pool, ids)
	if err == nil {
		err = repo.EnsureSchema(ctx)
	}
	if err != nil {
		slog.Error("Failed preparing user schema", "error", err)
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// seedUser stores the configured user unless a record already exists.
func seedUser(ctx context.Context, users user.Repository, seed SeedConfig) error {
	if seed.UserID == "" {
		return nil
	}
	if _, err := users.GetUser(ctx, seed.UserID); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	w, ok := users.(user.Writer)
	if !ok {
		slog.Warn("User repository is read-only, skipping seed", "user_id", seed.UserID)
		return nil
	}
	slog.Info("Seeding user", "user_id", seed.UserID, "groups", seed.Groups)
	return w.SaveUser(ctx, user.User{
		ID:          seed.UserID,
		UUID:        uuid.New(),
		DisplayName: seed.DisplayName,
		Groups:      seed.Groups,
	})
}
