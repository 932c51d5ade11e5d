// Package cli implements rankctl, the operator console for a shadow-rank
// database.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/repository/sqlite"
	"github.com/sakif/shadow-rank/internal/service"
)

// App holds what the commands need. The store is opened on first use, so
// commands like ranks and hash-password run without a database.
type App struct {
	DBPath    string
	Passwords *auth.PasswordService
	logger    *slog.Logger

	db       *sqlite.DB
	profiles *service.ProfileService
	skills   *service.SkillService
	quests   *service.QuestService
}

func NewApp(dbPath string, logger *slog.Logger) *App {
	return &App{DBPath: dbPath, Passwords: auth.NewPasswordService(), logger: logger}
}

// open connects to an existing database. rankctl never creates one.
func (a *App) open() error {
	if a.db != nil {
		return nil
	}
	if a.DBPath != ":memory:" {
		if _, err := os.Stat(a.DBPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("database %s does not exist", a.DBPath)
			}
			return fmt.Errorf("checking database %s: %w", a.DBPath, err)
		}
	}
	db, err := sqlite.New(a.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.use(db)
	return nil
}

func (a *App) use(db *sqlite.DB) {
	a.db = db
	a.profiles = service.NewProfileService(db, a.logger)
	a.skills = service.NewSkillService(db, nil, nil, a.logger)
	a.quests = service.NewQuestService(db, nil, nil, nil, a.logger)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// NewRootCmd creates the top-level "rankctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "rankctl",
		Short:         "Inspect hunters, ranks and quest history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "path to the SQLite database")

	root.AddCommand(
		newRanksCmd(),
		newProfileCmd(app),
		newSkillsCmd(app),
		newHistoryCmd(app),
		newLeaderboardCmd(app),
		newHashPasswordCmd(app),
	)
	return root
}

// withStore opens the database before the command body runs.
func withStore(app *App, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := app.open(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}
