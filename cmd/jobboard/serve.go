package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/marketplace"
	"github.com/jonathan/jobboard/internal/observability"
	"github.com/jonathan/jobboard/internal/server"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath  string
	servePort        int
	serveStore       string
	serveDatabaseURL string
	serveRedisURL    string
	serveAutoMigrate bool
	serveVerbose     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the job marketplace REST API.

Settings are layered: flags override the --config YAML file, which overrides
environment variables (DATABASE_URL, REDIS_URL, PORT), which override defaults.
JWT_SECRET is always required.`,
	RunE: runServe,
}

func init() {
	bindServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func bindServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML config file")
	cmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	cmd.Flags().StringVar(&serveStore, "store", "", "Store backend: memory or postgres")
	cmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&serveRedisURL, "redis-url", "", "Redis URL for shared rate limits (defaults to REDIS_URL env var)")
	cmd.Flags().BoolVar(&serveAutoMigrate, "migrate", false, "Apply the database schema before serving")
	cmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print the resolved configuration and rate limits")
}

// resolveServeConfig layers flags over the config file over the environment over defaults.
func resolveServeConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = serveStore
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
		if !cmd.Flags().Changed("store") {
			cfg.Store = config.StorePostgres
		}
	}
	if cmd.Flags().Changed("redis-url") {
		cfg.RedisURL = serveRedisURL
	}
	if cmd.Flags().Changed("migrate") {
		cfg.AutoMigrate = serveAutoMigrate
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	limits := ratelimit.LoadConfig()
	if serveVerbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintServeConfig(cfg)
		printer.PrintRateLimits(limits)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Store:       store,
		JWT:         jwtConfig,
		Password:    passwordConfig,
		RateLimiter: newRateLimiter(ctx, cfg, limits),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// openStore connects the configured store backend.
func openStore(ctx context.Context, cfg config.Config) (server.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Println("[store] using in-memory store; data is lost on restart")
		return marketplace.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(connectCtx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		log.Println("[store] schema applied")
	}
	return database, nil
}

// newRateLimiter returns the shared Redis limiter when REDIS_URL is set and
// reachable, and the in-process limiter otherwise.
func newRateLimiter(ctx context.Context, cfg config.Config, limits *ratelimit.Config) ratelimit.Allower {
	if cfg.RedisURL == "" {
		return ratelimit.NewLimiter(limits)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := ratelimit.DialRedis(dialCtx, cfg.RedisURL)
	if err != nil {
		log.Printf("[rate-limit] %v; falling back to in-process limits", err)
		return ratelimit.NewLimiter(limits)
	}
	log.Println("[rate-limit] using shared Redis limits")
	return ratelimit.NewRedisLimiter(client, limits)
}
