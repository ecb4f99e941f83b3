package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"remittance/internal/config"
	"remittance/internal/db"
	"remittance/internal/logging"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the numbered *.sql files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, flush := logging.Init(cfg.Log)
	defer flush()

	database, err := db.Connect(cfg.DatabaseURL, db.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	applied, err := migrate(database, *dir)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations complete", zap.Strings("applied", applied))
}

// migrate applies every file in dir not yet listed in schema_migrations, in name order.
// Each file runs in its own transaction together with its bookkeeping row.
func migrate(database *sqlx.DB, dir string) ([]string, error) {
	if _, err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename text PRIMARY KEY, applied_at timestamptz NOT NULL DEFAULT now())`); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	applied := []string{}
	for _, file := range files {
		filename := filepath.Base(file)
		var exists bool
		if err := database.Get(&exists, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, filename); err != nil {
			return applied, fmt.Errorf("read migration state: %w", err)
		}
		if exists {
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", filename, err)
		}
		tx, err := database.Beginx()
		if err != nil {
			return applied, fmt.Errorf("begin %s: %w", filename, err)
		}
		for _, stmt := range splitSQL(upSection(string(content))) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return applied, fmt.Errorf("apply %s: %w", filename, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record %s: %w", filename, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit %s: %w", filename, err)
		}
		zap.L().Info("applied migration", zap.String("file", filename))
		applied = append(applied, filename)
	}
	return applied, nil
}

// upSection drops everything from the "-- +migrate Down" marker on.
func upSection(content string) string {
	up, _, _ := strings.Cut(content, "-- +migrate Down")
	return up
}

// splitSQL breaks a script into statements on lines ending with a semicolon.
// Comment lines are skipped.
func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
