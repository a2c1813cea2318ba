package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/livepoll/internal/config"
)

const migrationsDir = "internal/adapters/repository/postgres/migrations"

func main() {
	if len(os.Args) < 2 {
		fatal("a migration name is required, e.g. create_voting_tables.up")
	}
	migrationName := os.Args[1]

	v, err := config.NewViper("")
	if err != nil {
		fatal("failed to load configuration", "error", err)
	}
	connStr := v.GetString(config.KeyPostgresDSN)
	if connStr == "" {
		connStr = config.PostgresDSNFromEnv()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fatal("failed to open database", "error", err)
	}
	defer db.Close()

	basePath := filepath.FromSlash(migrationsDir)
	fileName, err := migrationFileName(basePath, migrationName)
	if err != nil {
		fatal("failed to find migration", "name", migrationName, "error", err)
	}

	fileContent, err := os.ReadFile(filepath.Join(basePath, fileName))
	if err != nil {
		fatal("failed to read migration", "file", fileName, "error", err)
	}

	if _, err := db.Exec(string(fileContent)); err != nil {
		fatal("failed to execute migration", "file", fileName, "error", err)
	}

	slog.Info("migration executed", "file", fileName)
}

// migrationFileName returns the first file in basePath whose name ends with
// migrationName followed by ".sql".
func migrationFileName(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", err
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
