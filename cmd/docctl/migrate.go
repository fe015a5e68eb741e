package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BahMbeirik/Dossiers-Medicaux/config"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/infra"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/repository"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/usecase"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		_ = godotenv.Load()
		cfg := config.Load()

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		db, err := infra.NewDB(cfg.DatabaseURL, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		// The history table must exist before the first run.
		if err := db.WithContext(ctx).AutoMigrate(&repository.SchemaMigrationModel{}); err != nil {
			return fmt.Errorf("preparing schema_migrations table: %w", err)
		}

		repo := repository.NewMigrationRepository(db)
		service := usecase.NewMigrationService(repo, db, migrationsDir)

		applied, err := service.ApplyMigrations(ctx)
		if err != nil {
			return err
		}

		if applied == 0 {
			fmt.Println("no pending migrations")
		} else {
			fmt.Printf("applied %d migration(s)\n", applied)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		_ = godotenv.Load()
		cfg := config.Load()

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		db, err := infra.NewDB(cfg.DatabaseURL, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		repo := repository.NewMigrationRepository(db)
		service := usecase.NewMigrationService(repo, db, migrationsDir)

		migrations, err := service.GetMigrationStatus(ctx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			appliedAt := "-"
			if m.AppliedAt != nil {
				appliedAt = m.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(os.Stdout, "%-8s %-40s %-8s %s\n", m.Version, m.Name, m.Status, appliedAt)
		}
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "Directory containing migration files")
	migrateCmd.AddCommand(migrateStatusCmd)
}
