// Package history records matches from the event bus and stores them as
// JSON files that can be replayed as text.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lox/shellroulette/internal/fileutil"
	"github.com/lox/shellroulette/internal/game"
)

// FormatVersion is written into every saved history.
const FormatVersion = 1

// ErrIncomplete is returned when saving a match that has not ended.
var ErrIncomplete = errors.New("history: match has not finished")

// Entry is one recorded event.
type Entry struct {
	At       time.Time            `json:"at"`
	Type     game.EventType       `json:"type"`
	Round    game.RoundNumber     `json:"round,omitempty"`
	Player   game.PlayerNumber    `json:"player,omitempty"`
	Decision *game.Decision       `json:"decision,omitempty"`
	Shot     *game.ShotResult     `json:"shot,omitempty"`
	Result   *game.ItemResult     `json:"result,omitempty"`
	Loadout  *game.LoadoutReport  `json:"loadout,omitempty"`
	Error    string               `json:"error,omitempty"`
	Fallback bool                 `json:"fallback,omitempty"`
	Text     string               `json:"text"`
}

// MatchHistory is the stored form of one match.
type MatchHistory struct {
	Version   int                 `json:"version"`
	ID        string              `json:"id"`
	Seed      int64               `json:"seed"`
	Seats     []game.SeatInfo     `json:"seats"`
	Started   time.Time           `json:"started"`
	Finished  time.Time           `json:"finished,omitzero"`
	Rounds    []game.RoundSummary `json:"rounds"`
	Standings []game.Standing     `json:"standings,omitempty"`
	Winner    game.PlayerNumber   `json:"winner,omitempty"`
	Tied      bool                `json:"tied"`
	Entries   []Entry             `json:"entries"`
}

// Complete reports whether the match-end event was recorded.
func (h *MatchHistory) Complete() bool {
	return !h.Finished.IsZero()
}

// Recorder is an EventSubscriber that builds a MatchHistory.
type Recorder struct {
	mu        sync.Mutex
	history   MatchHistory
	formatter *game.EventFormatter
}

// NewRecorder returns a recorder for a match played from seed.
func NewRecorder(seed int64) *Recorder {
	return &Recorder{
		history:   MatchHistory{Version: FormatVersion, Seed: seed},
		formatter: game.NewEventFormatter(game.FormattingOptions{ShowReasonings: true, ShowReveals: true}),
	}
}

// OnEvent implements game.EventSubscriber.
func (r *Recorder) OnEvent(event game.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &r.history
	entry := Entry{
		At:   event.Timestamp(),
		Type: event.EventType(),
		Text: r.formatter.Format(event),
	}

	switch e := event.(type) {
	case game.MatchStartEvent:
		h.ID = e.MatchID
		h.Seats = slices.Clone(e.Seats)
		h.Started = e.Timestamp()
	case game.RoundStartEvent:
		entry.Round = e.Round
		entry.Player = e.First
	case game.LoadoutEvent:
		entry.Round = e.Round
		report := e.Report
		entry.Loadout = &report
	case game.ActionEvent:
		entry.Round = e.Round
		entry.Player = e.Player
		decision, result := e.Decision, e.Result
		entry.Decision = &decision
		if e.Err != nil {
			entry.Error = e.Err.Error()
		} else {
			entry.Result = &result
		}
		entry.Fallback = e.Fallback
	case game.ShotEvent:
		entry.Round = e.Round
		entry.Player = e.Shot.Shooter
		shot := e.Shot
		entry.Shot = &shot
		entry.Fallback = e.Fallback
	case game.EliminationEvent:
		entry.Round = e.Round
		entry.Player = e.Player
	case game.RoundEndEvent:
		entry.Round = e.Summary.Round
		entry.Player = e.Summary.Winner
		h.Rounds = append(h.Rounds, e.Summary)
	case game.MatchEndEvent:
		h.Standings = slices.Clone(e.Standings)
		h.Winner = e.Winner
		h.Tied = e.Tied
		h.Finished = e.Timestamp()
	}
	h.Entries = append(h.Entries, entry)
}

// History returns a copy of what has been recorded so far.
func (r *Recorder) History() *MatchHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.history
	h.Seats = slices.Clone(h.Seats)
	h.Rounds = slices.Clone(h.Rounds)
	h.Standings = slices.Clone(h.Standings)
	h.Entries = slices.Clone(h.Entries)
	return &h
}

// Filename returns the file a match is stored under.
func Filename(id string) string {
	return "match-" + id + ".json"
}

// Save writes a finished match into dir and returns the path.
func Save(dir string, h *MatchHistory) (string, error) {
	if !h.Complete() {
		return "", ErrIncomplete
	}
	if h.ID == "" {
		return "", fmt.Errorf("history: match has no id")
	}
	path := filepath.Join(dir, Filename(h.ID))
	if err := fileutil.WriteJSON(path, h, 0o644); err != nil {
		return "", fmt.Errorf("save match %s: %w", h.ID, err)
	}
	return path, nil
}

// Load reads a match saved by Save.
func Load(path string) (*MatchHistory, error) {
	var h MatchHistory
	if err := fileutil.ReadJSON(path, &h); err != nil {
		return nil, err
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("%s: unsupported history version %d", path, h.Version)
	}
	return &h, nil
}

// Find resolves a match id or a path to a saved history file.
func Find(dir, ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	path := filepath.Join(dir, Filename(ref))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no history for %s in %s", ref, dir)
	}
	return path, nil
}

// List returns the ids of every history in dir, oldest first.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, Filename("*")))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(base, "match-"), ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

// Render writes the match as readable text.
func Render(w io.Writer, h *MatchHistory) error {
	var b strings.Builder
	for _, e := range h.Entries {
		if e.Text == "" {
			continue
		}
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}
	if h.Seed != 0 {
		fmt.Fprintf(&b, "Seed: %d\n", h.Seed)
	}
	if h.Complete() {
		fmt.Fprintf(&b, "Duration: %s\n", h.Finished.Sub(h.Started).Round(time.Millisecond))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
