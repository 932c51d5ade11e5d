package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/shadow-rank/internal/service"
)

func newRanksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranks",
		Short: "Print the rank table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, e := range service.Ranks() {
				rows = append(rows, []string{renderRank(e.Rank), strconv.Itoa(e.Threshold)})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Rank", "XP"}, rows))
			return nil
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile USER_ID",
		Short: "Show a hunter's rank, XP and current quest",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(app, func(cmd *cobra.Command, args []string) error {
			view, err := app.profiles.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, prog := view.Profile, view.Progress
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s  %s\n", styleBold.Render(p.Username), renderRank(p.Rank))
			fmt.Fprintf(out, "  XP:       %d\n", p.XP)
			if prog.NextRank != nil {
				fmt.Fprintf(out, "  Progress: %d%% (%d XP to %s)\n", prog.Percent, prog.XPToNext, *prog.NextRank)
			} else {
				fmt.Fprintf(out, "  Progress: %d%% (top rank)\n", prog.Percent)
			}
			if p.CurrentQuest != nil {
				fmt.Fprintf(out, "  Quest:    %s (+%d XP)\n", p.CurrentQuest.Title, p.CurrentQuest.XPReward)
			} else {
				fmt.Fprintln(out, "  Quest:    "+styleDim.Render("none"))
			}
			if p.Goal != nil {
				fmt.Fprintf(out, "  Goal:     %s\n", *p.Goal)
			}
			return nil
		}),
	}
}

func newSkillsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skills USER_ID",
		Short: "List a hunter's skills",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(app, func(cmd *cobra.Command, args []string) error {
			skills, err := app.skills.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(skills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No skills recorded.")
				return nil
			}

			rows := make([][]string, 0, len(skills))
			for _, s := range skills {
				levelable := ""
				if s.Levelable {
					levelable = "yes"
				}
				rows = append(rows, []string{
					s.Name,
					strconv.Itoa(s.Level),
					strconv.Itoa(s.BaseLevel),
					strconv.Itoa(s.EarnedXP),
					levelable,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Skill", "Level", "Base", "Earned XP", "Levelable"}, rows))
			return nil
		}),
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history USER_ID",
		Short: "List completed quests, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(app, func(cmd *cobra.Command, args []string) error {
			records, err := app.quests.History(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed quests.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				title := r.QuestTitle
				if title == "" {
					title = styleDim.Render("(no quest)")
				}
				rows = append(rows, []string{
					r.CompletedAt.Format("2006-01-02 15:04"),
					title,
					r.RepoURL,
					"+" + strconv.Itoa(r.XPEarned),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Completed", "Quest", "Repository", "XP"}, rows))
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultListLimit, "maximum rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func newLeaderboardCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "List hunters by XP",
		Args:  cobra.NoArgs,
		RunE: withStore(app, func(cmd *cobra.Command, args []string) error {
			views, err := app.profiles.Leaderboard(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No awakened hunters.")
				return nil
			}

			rows := make([][]string, 0, len(views))
			for i, v := range views {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					v.Profile.Username,
					renderRank(v.Profile.Rank),
					strconv.Itoa(v.Profile.XP),
					v.Profile.UserID,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"#", "Hunter", "Rank", "XP", "User ID"}, rows))
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultListLimit, "maximum rows")
	return cmd
}

// newHashPasswordCmd reads the password from stdin so it never lands in
// shell history.
func newHashPasswordCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password from stdin for DEV_LOGIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := app.Passwords.Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password must not be empty")
	}
	return line, nil
}
