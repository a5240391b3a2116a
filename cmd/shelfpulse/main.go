package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shelfpulselabs/shelfpulse/internal/cache"
	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	"github.com/shelfpulselabs/shelfpulse/internal/export"
	"github.com/shelfpulselabs/shelfpulse/internal/ingest"
	"github.com/shelfpulselabs/shelfpulse/internal/insights"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	"github.com/shelfpulselabs/shelfpulse/internal/migration"
	"github.com/shelfpulselabs/shelfpulse/internal/observability"
	"github.com/shelfpulselabs/shelfpulse/internal/reference"
	"github.com/shelfpulselabs/shelfpulse/internal/seed"
	"github.com/shelfpulselabs/shelfpulse/internal/server"
	"github.com/shelfpulselabs/shelfpulse/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "shelfpulse",
		Short:   "ShelfPulse dark-store insights pipeline",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newTransformCmd(), newSeedCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion and insights API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Execute one derived-metrics transform run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
	)
}

func runMigrate() error {
	app := fx.New(
		coreModules(),
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		coreModules(),
		cache.Module,
		reference.Module,
		ingest.Module,
		insights.Module,
		export.Module,
		server.Module,
	)
	app.Run()
}

func runTransform() error {
	var runErr error
	app := fx.New(
		coreModules(),
		cache.Module,
		reference.Module,
		ingest.Module,
		insights.Module,
		fx.Invoke(func(svc insightsdomain.Service, log *zap.Logger, shutdowner fx.Shutdowner) {
			go func() {
				summary, err := svc.Run(context.Background())
				if err != nil {
					log.Error("transform run failed", zap.Error(err))
					runErr = err
				} else {
					log.Info("transform run finished",
						zap.String("run_id", summary.RunID.String()),
						zap.Int("insight_rows", summary.InsightRows))
				}
				_ = shutdowner.Shutdown()
			}()
		}),
	)
	app.Run()
	return runErr
}

func runSeed() error {
	app := fx.New(
		coreModules(),
		fx.Invoke(func(gdb *gorm.DB, log *zap.Logger) error {
			if err := seed.EnsureDemoData(gdb); err != nil {
				return err
			}
			log.Info("demo dataset ready")
			return nil
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
