// cmd/web/main.go
//
// Intake service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (conf/.env → conf/global.yaml → INTAKE_ env overlay).
//
//  2. Start the daily rotating logger (tees to console when in a TTY).
//
//  3. Resolve vault: references, when any secret field holds one.
//
//  4. Build the applicant registry (memory, mysql, or redis) and the upload
//     store (local or s3).
//
//  5. Build the intake engine and register the applications component,
//     then run component migrations on the mysql backend.
//
//  6. Router: RequestID → RealIP → Recoverer → request logger →
//     ForceHTTPS → Security → requestinfo.Enrich → components.
//     /metrics and /healthz sit beside the components.
//
//  7. Serve until SIGINT / SIGTERM, then drain.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/intake/components/applications"
	"github.com/yanizio/intake/internal/applicant"
	"github.com/yanizio/intake/internal/component"
	"github.com/yanizio/intake/internal/config"
	"github.com/yanizio/intake/internal/database"
	"github.com/yanizio/intake/internal/intake"
	"github.com/yanizio/intake/internal/logger"
	"github.com/yanizio/intake/internal/middleware"
	"github.com/yanizio/intake/internal/requestinfo"
	"github.com/yanizio/intake/internal/server"
	"github.com/yanizio/intake/internal/upload"
	"github.com/yanizio/intake/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("intake exited", "err", err)
		_ = zap.S().Sync()
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOut, err := logger.New(logger.Options{
		Dir:   cfg.Logging.Dir,
		Level: cfg.Logging.Level,
		Tee:   cfg.Logging.Tee || runningInTTY(),
	})
	if err != nil {
		return fmt.Errorf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Secrets ─────────────────────────────────────────────────────
	//
	if cfg.NeedsVault() {
		vc, err := vault.New(ctx, logOut)
		if err != nil {
			return err
		}
		if err := cfg.ResolveSecrets(ctx, vc); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
	}

	//
	// ── 2.  Registry and uploads ────────────────────────────────────────
	//
	registry, closeRegistry, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeRegistry.Close() }()

	files, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
			logOut.Warnw("geoip disabled", "err", err)
		}
		defer func() { _ = requestinfo.CloseGeo() }()
	}

	//
	// ── 3.  Engine and components ───────────────────────────────────────
	//
	rules, err := cfg.Rules()
	if err != nil {
		return fmt.Errorf("intake rules: %w", err)
	}
	engine, err := intake.New(registry, files, intake.WithRules(rules), intake.WithLogger(logOut))
	if err != nil {
		return err
	}

	var ddl []string
	if cfg.Store.Backend == "mysql" {
		ddl = []string{applicant.Schema}
	}
	component.Register(applications.New(engine, cfg.HTTP.MaxUploadBytes(), ddl...))

	if db, ok := closeRegistry.(migrator); ok {
		if err := component.Migrate(ctx, db); err != nil {
			return err
		}
		logOut.Infow("migrations applied")
	}

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			l := logOut.With("request_id", chimw.GetReqID(req.Context()))
			next.ServeHTTP(w, req.WithContext(logger.WithContext(req.Context(), l)))
		})
	})
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS), middleware.Security(cfg.HTTP.ForceHTTPS))
	r.Use(requestinfo.Enrich)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
	component.Mount(r)

	srv := server.New(cfg.HTTP.ListenAddr, r, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	logOut.Infow("intake online",
		"store", cfg.Store.Backend,
		"storage", cfg.Storage.Backend,
		"min_age", rules.MinimumAge,
		"education_policy", rules.EducationPolicy.String(),
	)
	return server.Run(ctx, srv)
}

// migrator is the *sqlx.DB handle when the mysql backend is in use.
type migrator interface {
	component.Execer
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRegistry returns the registry plus whatever must be closed on exit.
func openRegistry(ctx context.Context, cfg *config.Config) (intake.Registry, io.Closer, error) {
	switch cfg.Store.Backend {
	case "mysql":
		db, err := database.OpenWithOptions(ctx, cfg.DSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		return applicant.NewMySQL(db), db, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return applicant.NewRedis(rdb, cfg.Redis.KeyPrefix), rdb, nil
	default:
		return applicant.NewMemory(), nopCloser{}, nil
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (intake.FileStore, error) {
	if cfg.Storage.Backend == "s3" {
		s := cfg.Storage.S3
		return upload.NewS3(ctx, upload.S3Config{
			Bucket:         s.Bucket,
			Region:         s.Region,
			Prefix:         s.Prefix,
			AccessKeyID:    s.AccessKeyID,
			SecretKey:      s.SecretKey,
			Endpoint:       s.Endpoint,
			ForcePathStyle: s.ForcePathStyle,
			UploadTimeout:  s.UploadTimeout,
		})
	}
	return upload.NewLocal(cfg.Storage.Local.Dir)
}
