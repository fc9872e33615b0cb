package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/okian/bassboard/internal/adapters/source"
	"github.com/okian/bassboard/internal/config"
	"github.com/okian/bassboard/internal/domain/format"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/pkg/logger"
)

func eventsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, func(ctx context.Context, client *source.Client) error {
				events, err := client.Events(ctx)
				if err != nil {
					return fmt.Errorf("load events: %w", err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), events)
				}
				printEvents(cmd.OutOrStdout(), events)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print canonical JSON")
	return cmd
}

func boardCmd() *cobra.Command {
	var (
		tabName string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "board <event-id>",
		Short: "Print one tab of an event's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := model.ParseTab(tabName)
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx context.Context, client *source.Client) error {
				board, err := client.Leaderboard(ctx, args[0], tab)
				if err != nil {
					return fmt.Errorf("load %s board: %w", tab, err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), board)
				}
				printBoard(cmd.OutOrStdout(), board)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tabName, "tab", string(model.TabTotal), "Tab: total, day1, day2 or season")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print canonical JSON")
	return cmd
}

// runQuery loads configuration and hands fn a client. Logs go to stderr so
// stdout carries only the result.
func runQuery(cmd *cobra.Command, fn func(ctx context.Context, client *source.Client) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := setup(ctx, logger.WithWriter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	return query(ctx, cfg, fn)
}

func query(ctx context.Context, cfg *config.Config, fn func(ctx context.Context, client *source.Client) error) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return fn(ctx, client)
}

func printEvents(w io.Writer, events []model.Event) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Event", "ID", "Trail", "Winner", "Anglers", "Fish", "Big Bass")
	for _, e := range events {
		t.Row(
			format.Date(e.Date),
			format.Text(e.Name),
			e.ID,
			format.Text(e.Trail),
			format.Text(e.Winner),
			format.Integer(e.Anglers),
			format.Integer(e.TotalFish),
			format.Length(e.BigBass),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintf(w, "%d events\n", len(events))
}

func printBoard(w io.Writer, b model.Board) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Rank", "Angler", "State", "Total", "Big Bass", "Limit %", "AOY", "Fish")
	for _, r := range b.Rows {
		t.Row(
			format.Integer(r.Rank),
			format.Text(r.Angler),
			format.Text(r.State),
			format.Length(r.TotalLength),
			format.Length(r.BigBass),
			format.Length(r.LimitPercent),
			format.Integer(r.AOYPoints),
			format.Fish(r.Fish),
		)
	}
	_, _ = fmt.Fprintf(w, "%s · %s\n", b.EventID, b.Tab.Label())
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintf(w, "%d anglers\n", len(b.Rows))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
