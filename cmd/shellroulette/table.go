package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lox/shellroulette/internal/statistics"
)

// writeSeatTable prints one row per seat or strategy.
func writeSeatTable(w io.Writer, rows []*statistics.SeatStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tmatches\twins\twin%\t95% CI\trounds\tshots\tself\tkills\tdeaths\titems\trejected")
	for _, s := range rows {
		lo, hi := s.WinRate.ConfidenceInterval95()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t[%.1f, %.1f]\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Label, s.Matches, s.MatchWins, s.WinRate.Mean()*100, lo*100, hi*100,
			s.RoundWins, s.Shots, s.SelfShots, s.Kills, s.Deaths, s.ItemUses(), s.Rejected)
	}
	_ = tw.Flush()
}
