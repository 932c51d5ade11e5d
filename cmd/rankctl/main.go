// Command rankctl inspects a shadow-rank database from the terminal.
//
//	rankctl leaderboard --limit 10
//	rankctl profile <user-id>
//	echo -n secret | rankctl hash-password
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/shadow-rank/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Same .env as the server, so DB_PATH points at the same file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/shadow-rank.db"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	app := cli.NewApp(dbPath, logger)
	defer app.Close()

	return cli.NewRootCmd(app).Execute()
}
