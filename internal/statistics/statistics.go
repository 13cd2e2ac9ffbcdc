package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/shellroulette/internal/game"
)

// Sample tracks a running mean and variance.
type Sample struct {
	N     int
	Sum   float64
	SumSq float64 // Sum of squares for variance calculation
}

// Add incorporates one observation.
func (s *Sample) Add(x float64) {
	s.N++
	s.Sum += x
	s.SumSq += x * x
}

// Mean returns the arithmetic mean of the observations
func (s Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance
func (s Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return max((s.SumSq-float64(s.N)*mean*mean)/float64(s.N-1), 0)
}

// StdDev returns the sample standard deviation
func (s Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// SeatStats aggregates everything one seat, or one strategy, did.
type SeatStats struct {
	Label     string
	Matches   int
	MatchWins int
	RoundWins int
	// WinRate samples 1 for a match win and 0 otherwise.
	WinRate   Sample
	Shots     int
	SelfShots int
	LiveHits  int
	Kills     int
	Deaths    int
	Rejected  int
	Fallbacks int
	ItemsUsed map[game.Item]int
}

func newSeatStats(label string) *SeatStats {
	return &SeatStats{Label: label, ItemsUsed: make(map[game.Item]int)}
}

func (s *SeatStats) add(p game.PlayerStats, won bool) {
	s.Matches++
	s.RoundWins += len(p.RoundWins)
	if won {
		s.MatchWins++
		s.WinRate.Add(1)
	} else {
		s.WinRate.Add(0)
	}
	s.Shots += p.Shots
	s.SelfShots += p.SelfShots
	s.LiveHits += p.LiveHits
	s.Kills += p.Kills
	s.Deaths += p.Deaths
	s.Rejected += p.Rejected
	s.Fallbacks += p.Fallbacks
	for item, n := range p.ItemsUsed {
		s.ItemsUsed[item] += n
	}
}

// ItemUses returns the total number of item uses.
func (s *SeatStats) ItemUses() int {
	total := 0
	for _, n := range s.ItemsUsed {
		total += n
	}
	return total
}

// Statistics tracks results across many matches with a fixed table size.
type Statistics struct {
	Players int
	Matches int
	Ties    int
	Rounds  int
	Actions int
	// Seats is indexed by seat order.
	Seats      []*SeatStats
	Strategies map[string]*SeatStats
}

// New returns empty statistics for a table of players seats.
func New(players int) *Statistics {
	s := &Statistics{
		Players:    players,
		Seats:      make([]*SeatStats, players),
		Strategies: make(map[string]*SeatStats),
	}
	for i := range s.Seats {
		s.Seats[i] = newSeatStats(game.PlayerNumber(i + 1).String())
	}
	return s
}

// Add incorporates one finished match. strategies names the strategy in each
// seat and may be nil.
func (s *Statistics) Add(result *game.MatchResult, strategies []string) error {
	if len(result.Players) != s.Players {
		return fmt.Errorf("match %s has %d players, statistics track %d", result.MatchID, len(result.Players), s.Players)
	}
	s.Matches++
	s.Rounds += len(result.Rounds)
	s.Actions += result.Actions
	if result.Tied {
		s.Ties++
	}
	for i, p := range result.Players {
		won := !result.Tied && p.Player == result.Winner
		s.Seats[i].add(p, won)
		if i < len(strategies) {
			name := strategies[i]
			st, ok := s.Strategies[name]
			if !ok {
				st = newSeatStats(name)
				s.Strategies[name] = st
			}
			st.add(p, won)
		}
	}
	return nil
}

// StrategyNames returns the tracked strategies, sorted.
func (s *Statistics) StrategyNames() []string {
	names := make([]string, 0, len(s.Strategies))
	for name := range s.Strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks the ledger: every match has one winner or is a tie, every
// round has one winner, and everyone but the round winner is eliminated.
func (s *Statistics) Validate() error {
	if s.Matches <= 0 {
		return fmt.Errorf("invalid matches count: %d", s.Matches)
	}
	if s.Rounds != int(game.FinalRound)*s.Matches {
		return fmt.Errorf("rounds (%d) is not %d per match over %d matches", s.Rounds, game.FinalRound, s.Matches)
	}

	wins, roundWins, deaths := 0, 0, 0
	for _, seat := range s.Seats {
		if seat.Matches != s.Matches {
			return fmt.Errorf("seat %s played %d of %d matches", seat.Label, seat.Matches, s.Matches)
		}
		wins += seat.MatchWins
		roundWins += seat.RoundWins
		deaths += seat.Deaths
	}
	if wins+s.Ties != s.Matches {
		return fmt.Errorf("match wins (%d) plus ties (%d) does not match matches (%d)", wins, s.Ties, s.Matches)
	}
	if roundWins != s.Rounds {
		return fmt.Errorf("round wins (%d) does not match rounds (%d)", roundWins, s.Rounds)
	}
	if want := s.Rounds * (s.Players - 1); deaths != want {
		return fmt.Errorf("eliminations (%d) does not match %d per round (%d)", deaths, s.Players-1, want)
	}
	return nil
}
