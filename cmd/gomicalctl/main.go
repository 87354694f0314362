// gomicalctl manages the catalog database from the command line: schema
// init, seeding, resets, status, snapshot export/import and one-off
// category inserts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gomical/app"
	"gomical/domain"
	"gomical/infra/postgres"
	"gomical/pkg/archive"
	"gomical/pkg/config"
	"gomical/pkg/schedule"
	"gomical/pkg/snapshot"
)

func main() {
	logger := zap.Must(zap.NewDevelopment())
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	root := &cobra.Command{
		Use:           "gomicalctl",
		Short:         "Manage the waste catalog database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		initCmd(),
		seedCmd(),
		resetCmd(),
		statusCmd(),
		exportCmd(),
		importCmd(),
		restoreCmd(),
		addCategoryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openRepository() *postgres.PgRepository {
	appConfig := config.Read()
	return postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the catalog tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := openRepository()
			defer repository.Close()

			if err := repository.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Catalog tables created")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the default sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := openRepository()
			defer repository.Close()

			if err := repository.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			count, err := repository.CountCategories(cmd.Context())
			if err != nil {
				return err
			}
			if count > 0 && !force {
				return fmt.Errorf("catalog already has %d categories, use --force to replace", count)
			}

			stats, err := importDefaults(cmd.Context(), repository, count > 0)
			if err != nil {
				return err
			}
			printStats(stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace existing data")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the whole catalog with the default sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := openRepository()
			defer repository.Close()

			if err := repository.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			stats, err := importDefaults(cmd.Context(), repository, true)
			if err != nil {
				return err
			}
			fmt.Println("Catalog reset to default data")
			printStats(stats)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := openRepository()
			defer repository.Close()

			categories, err := repository.GetCategories(cmd.Context())
			if err != nil {
				return err
			}
			totalTypes, err := repository.CountGarbageTypes(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Categories: %d\n", len(categories))
			fmt.Printf("Garbage types: %d\n", totalTypes)
			for _, cat := range categories {
				types, err := repository.GetGarbageTypes(cmd.Context(), cat.ID)
				if err != nil {
					return err
				}
				fmt.Printf("  - %s (%v) - %d types\n", cat.Name, schedule.Decode(cat.Days), len(types))
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as a snapshot document",
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := openRepository()
			defer repository.Close()

			doc, err := app.BuildExportDocument(cmd.Context(), repository, time.Now().UTC())
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			if file == "" {
				fmt.Println(string(raw))
				return nil
			}
			if err := os.WriteFile(file, raw, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exported %d categories and %d garbage types to %s\n",
				doc.Metadata.TotalCategories, doc.Metadata.TotalTypes, file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "write the snapshot to a file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	var file string
	var merge bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a snapshot document",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			doc, err := snapshot.Parse(raw)
			if err != nil {
				return err
			}
			seeds, err := doc.Seeds()
			if err != nil {
				return err
			}

			repository := openRepository()
			defer repository.Close()

			if err := repository.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			stats, err := repository.ImportSnapshot(cmd.Context(), seeds, !merge)
			if err != nil {
				return err
			}
			printStats(stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot document to import (required)")
	cmd.Flags().BoolVar(&merge, "merge", false, "keep existing categories, skip name collisions")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func restoreCmd() *cobra.Command {
	var key string
	var merge bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the catalog from an archived snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig := config.Read()
			if appConfig.AWSBucket == "" {
				return fmt.Errorf("AWS_BUCKET must be set to restore from the archive")
			}

			archiver := archive.NewS3Archive(
				appConfig.AWSEndpoint,
				appConfig.AWSBucket,
				appConfig.AWSDefaultRegion,
				appConfig.AWSAccessKey,
				appConfig.AWSSecretKey,
			)

			raw, err := archiver.Load(key)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				return fmt.Errorf("backup %q not found", key)
			}

			doc, err := snapshot.Parse(raw)
			if err != nil {
				return err
			}
			seeds, err := doc.Seeds()
			if err != nil {
				return err
			}

			repository := openRepository()
			defer repository.Close()

			if err := repository.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			stats, err := repository.ImportSnapshot(cmd.Context(), seeds, !merge)
			if err != nil {
				return err
			}
			fmt.Printf("Restored catalog from %s\n", key)
			printStats(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", `archive object key, e.g. "backups/backup_20240411_153000.json"`)
	cmd.Flags().BoolVar(&merge, "merge", false, "keep existing categories, skip name collisions")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var name, day, method, note string

	cmd := &cobra.Command{
		Use:   "add-category",
		Short: "Insert a single category",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := schedule.Encode([]string{day})
			if err != nil {
				return err
			}
			specialDays, err := schedule.EncodeDates(nil)
			if err != nil {
				return err
			}

			repository := openRepository()
			defer repository.Close()

			created, err := repository.CreateCategory(cmd.Context(), domain.Category{
				Name:        name,
				Days:        days,
				Method:      method,
				SpecialDays: specialDays,
				Note:        note,
			}, nil)
			if err != nil {
				return err
			}
			fmt.Printf("Category %q added (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	cmd.Flags().StringVar(&day, "day", "", "collection weekday (required)")
	cmd.Flags().StringVar(&method, "method", "", "collection method (required)")
	cmd.Flags().StringVar(&note, "notion", "", "additional note")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}

func importDefaults(ctx context.Context, repository app.Repository, replace bool) (domain.ImportStats, error) {
	seeds, err := snapshot.DefaultDocument().Seeds()
	if err != nil {
		return domain.ImportStats{}, err
	}
	return repository.ImportSnapshot(ctx, seeds, replace)
}

func printStats(stats domain.ImportStats) {
	fmt.Printf("Imported categories: %d\n", stats.ImportedCategories)
	fmt.Printf("Imported garbage types: %d\n", stats.ImportedGarbageTypes)
	fmt.Printf("Skipped categories: %d\n", stats.SkippedCategories)
	fmt.Printf("Total categories: %d\n", stats.TotalCategories)
	fmt.Printf("Total garbage types: %d\n", stats.TotalGarbageTypes)
}
