package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"edascope/adapters/excel"
	"edascope/adapters/postgres"
	"edascope/domain/core"
	"edascope/domain/dataset"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [dataset files or directories...]")
	}

	databaseURL := os.Args[1]
	log.Printf("Migrating dataset catalog at %s", databaseURL)

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := postgres.NewDatasetRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema is up to date")

	files, err := findDatasetFiles(os.Args[2:])
	if err != nil {
		log.Fatalf("Failed to find dataset files: %v", err)
	}
	if len(files) == 0 {
		return
	}

	log.Printf("Found %d dataset files to record", len(files))
	recorded, skipped := 0, 0
	for _, file := range files {
		table, err := excel.NewDataReader(file).Load()
		if err != nil {
			log.Printf("Failed to load %s: %v", file, err)
			skipped++
			continue
		}

		// Content already in the catalog is not recorded twice
		if _, err := repo.FindByFingerprint(ctx, table.Fingerprint()); err == nil {
			log.Printf("Skipping %s: already recorded", file)
			skipped++
			continue
		} else if !errors.Is(err, core.ErrNotFound) {
			log.Fatalf("Catalog lookup failed: %v", err)
		}

		if err := repo.Record(ctx, dataset.NewDatasetInfo(table, "file")); err != nil {
			log.Printf("Failed to record %s: %v", file, err)
			skipped++
			continue
		}
		recorded++
	}

	log.Printf("Backfill complete: %d recorded, %d skipped", recorded, skipped)
}

// findDatasetFiles expands directories into the readable files they contain
func findDatasetFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && excel.SupportedFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
