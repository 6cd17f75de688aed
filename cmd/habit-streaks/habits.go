// ABOUTME: habits command listing an owner's habits without starting the bot
// ABOUTME: Reads straight from the database and prints a table

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/2389/habit-streaks/internal/habits"
	"github.com/2389/habit-streaks/internal/streak"
)

// NewHabitsCommand creates the habits command.
func NewHabitsCommand(opts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "habits",
		Short: "List the habits tracked for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHabits(cmd.Context(), opts, owner, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner (Matrix room ID, or \"local\" for chat sessions)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func runHabits(ctx context.Context, opts *RootOptions, owner string, out io.Writer) error {
	cfg, _, err := opts.loadConfig(true)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := habits.NewService(st, streak.SystemClock{Location: cfg.Bot.Location}, nil)
	list, err := svc.List(ctx, owner)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintf(out, "no habits tracked for %s\n", owner)
		return nil
	}

	today := svc.Today()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HABIT\tSTREAK\tSTARTED\tLAST CHECK-IN")
	for _, h := range list {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			h.Name,
			h.StreakCount,
			h.StartDate,
			lastCheckIn(h.LastUpdated, today),
		)
	}
	return w.Flush()
}

// lastCheckIn renders a date relative to today.
func lastCheckIn(d, today streak.Date) string {
	switch today.DaysSince(d) {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return humanize.RelTime(d.Time(), today.Time(), "ago", "from now")
	}
}
