package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koustreak/schemats/internal/cache"
	"github.com/koustreak/schemats/internal/config"
	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/introspect"
	"github.com/koustreak/schemats/internal/server"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated definitions over HTTP",
		Long: `Serve generated files for the configured database.

  GET /schemas/public.ts
  GET /schemas/public.json?table=users&table=posts
  GET /schemas/_default.yaml

Set cache.redis_addr to share rendered output through Redis; otherwise an
in-process cache is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd, func(v *viper.Viper, _ *config.Options) error {
				if err := v.BindPFlag("database.url", cmd.Flags().Lookup("conn")); err != nil {
					return err
				}
				return v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
			})
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringP("conn", "c", "", "database connection string")
	cmd.Flags().String("addr", ":8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	ctx, log := runContext(cmd, cfg)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		return errs.New(errs.ErrKindInvalidInput, "no connection string: pass -c or set DATABASE_URL")
	}

	src, err := introspect.Open(ctx, cfg.DatabaseConfig())
	if err != nil {
		return err
	}
	defer src.Close()

	var c cache.Cache
	if rc := cfg.RedisConfig(); rc != nil {
		c, err = cache.NewRedisCache(ctx, *rc)
		if err != nil {
			return err
		}
	} else {
		c = cache.NewMemoryCache(cfg.CacheSettings())
	}
	defer c.Close()

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Source:      src,
		SourceName:  database.RedactDSN(cfg.Database.URL),
		Cache:       c,
		CacheTTL:    cfg.Cache.TTL,
		Header:      cfg.Output.Header,
		Concurrency: int(cfg.Database.MaxConns),
		Logger:      log,
	})
	return srv.ListenAndServe(ctx)
}
