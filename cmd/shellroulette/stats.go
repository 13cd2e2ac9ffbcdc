package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/lox/shellroulette/internal/storage"
)

// StatsCmd summarises the results ledger.
type StatsCmd struct {
	DB     string `type:"path" help:"SQLite database (default: storage.database or ./shellroulette.db)"`
	Recent int    `default:"10" help:"Number of recent matches to list"`
}

func (c *StatsCmd) Run(g *Globals) error {
	path := c.DB
	if path == "" {
		cfg, err := g.load()
		if err != nil {
			return err
		}
		path = cfg.Storage.Database
	}
	if path == "" {
		path = "shellroulette.db"
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no database at %s: %w", path, err)
	}

	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return printStoreSummary(context.Background(), os.Stdout, store, c.Recent)
}

func printStoreSummary(ctx context.Context, w io.Writer, store *storage.Store, recent int) error {
	total, err := store.CountMatches(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Matches recorded: %d\n\n", total)
	if total == 0 {
		return nil
	}

	summary, err := store.StrategySummary(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\tseats\twins\twin%\trounds\tshots\tself\tkills\tdeaths\titems\trejected")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Strategy, s.Seats, s.Wins, s.WinRate()*100, s.RoundWins, s.Shots, s.SelfShots,
			s.Kills, s.Deaths, s.ItemsUsed, s.Rejected)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rows, err := store.RecentMatches(ctx, recent)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nRecent matches:\n")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tplayed\tplayers\twinner\tactions\tseed")
	for _, r := range rows {
		winner := r.Winner.String()
		if r.Tied {
			winner = "tie"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\n",
			r.ID, r.PlayedAt.Format("2006-01-02 15:04:05"), r.Players, winner, r.Actions, r.Seed)
	}
	return tw.Flush()
}
