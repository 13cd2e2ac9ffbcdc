package server

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/shellroulette/internal/bot"
	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/gameid"
	"github.com/lox/shellroulette/internal/protocol"
	"github.com/lox/shellroulette/internal/randutil"
)

// Lobby queues remote players and seats them in matches. A match starts as
// soon as the table is full, or once LobbyWait has passed since the first
// player started waiting, with bots in the empty seats.
type Lobby struct {
	config  Config
	logger  *log.Logger
	mu      sync.Mutex
	waiting []Remote
	changed chan struct{}
	started int
}

// NewLobby creates a lobby. config must already be validated.
func NewLobby(config Config) *Lobby {
	config.applyDefaults()
	return &Lobby{
		config:  config,
		logger:  config.Logger.WithPrefix("lobby"),
		changed: make(chan struct{}, 1),
	}
}

// Players returns the table size.
func (l *Lobby) Players() int {
	return l.config.Players
}

// Join queues r for the next match and returns how many players are waiting.
func (l *Lobby) Join(r Remote) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !slices.Contains(l.waiting, r) {
		l.waiting = append(l.waiting, r)
	}
	l.notify()
	return len(l.waiting)
}

// Leave removes r from the queue. Players already in a match are handled by
// their NetworkAgent.
func (l *Lobby) Leave(r Remote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := slices.Index(l.waiting, r); i >= 0 {
		l.waiting = slices.Delete(l.waiting, i, i+1)
		l.notify()
	}
}

// Waiting returns the number of queued players.
func (l *Lobby) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiting)
}

func (l *Lobby) notify() {
	select {
	case l.changed <- struct{}{}:
	default:
	}
}

// Run starts matches until ctx is cancelled or Matches have been played.
// Matches run concurrently; Run waits for those in flight before returning.
func (l *Lobby) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for l.config.Matches == 0 || l.started < l.config.Matches {
		remotes, err := l.gather(ctx)
		if err != nil {
			break
		}
		info := l.newMatchInfo(remotes)
		l.started++
		g.Go(func() error {
			return l.playMatch(ctx, info, remotes)
		})
	}
	return g.Wait()
}

// gather blocks until a table's worth of players is ready.
func (l *Lobby) gather(ctx context.Context) ([]Remote, error) {
	var (
		expired  chan struct{}
		timedOut bool
		stop     func() bool
	)
	defer func() {
		if stop != nil {
			stop()
		}
	}()

	for {
		l.mu.Lock()
		n := len(l.waiting)
		if n >= l.config.Players || (n > 0 && timedOut) {
			take := min(n, l.config.Players)
			remotes := slices.Clone(l.waiting[:take])
			l.waiting = slices.Delete(l.waiting, 0, take)
			l.mu.Unlock()
			return remotes, nil
		}
		switch {
		case n > 0 && stop == nil && l.config.LobbyWait > 0:
			fired := make(chan struct{})
			expired = fired
			timer := l.config.Clock.AfterFunc(l.config.LobbyWait, func() { close(fired) }, "lobby", "wait")
			stop = func() bool { return timer.Stop() }
		case n == 0 && stop != nil:
			stop()
			stop, expired, timedOut = nil, nil, false
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-l.changed:
		case <-expired:
			expired, timedOut = nil, true
		}
	}
}

func (l *Lobby) newMatchInfo(remotes []Remote) MatchInfo {
	info := MatchInfo{
		Index: l.started,
		ID:    gameid.Generate(),
		Seed:  l.config.Seed + int64(l.started),
	}
	for i := range l.config.Players {
		name := ""
		if i < len(remotes) {
			name = remotes[i].Name()
		} else {
			name = l.botName(i - len(remotes))
		}
		info.Seats = append(info.Seats, game.SeatInfo{Player: game.PlayerNumber(i + 1), Name: name})
	}
	return info
}

func (l *Lobby) botName(i int) string {
	return l.config.Bots[i%len(l.config.Bots)] + "-bot"
}

func (l *Lobby) playMatch(ctx context.Context, info MatchInfo, remotes []Remote) error {
	logger := l.logger.With("match", info.ID)
	agents := make([]game.Agent, len(info.Seats))
	for i := range agents {
		if i < len(remotes) {
			agents[i] = NewNetworkAgent(remotes[i], l.config.DecisionTimeout, l.config.Clock, l.config.Logger)
			continue
		}
		strategy := l.config.Bots[(i-len(remotes))%len(l.config.Bots)]
		agent, err := bot.New(strategy, randutil.Derive(info.Seed, uint64(i)), l.config.Logger)
		if err != nil {
			return err
		}
		agents[i] = agent
	}

	names := make([]string, len(info.Seats))
	for i, s := range info.Seats {
		names[i] = s.Name
	}
	engine := game.NewEngine(
		game.NewMatch(randutil.New(info.Seed), l.config.Players, game.WithMatchLogger(l.config.Logger)),
		agents, l.config.Logger,
		game.WithClock(l.config.Clock),
		game.WithMatchID(info.ID),
		game.WithSeatNames(names...),
		game.WithMaxFailures(l.config.MaxFailures),
	)
	for i, r := range remotes {
		seat := info.Seats[i].Player
		_ = r.Send(protocol.TypeMatchStart, protocol.MatchStart{MatchID: info.ID, Seat: seat, Seats: info.Seats})
		engine.EventBus().Subscribe(newRelay(r, seat, info.Seats))
	}
	if l.config.Observe != nil {
		if sub := l.config.Observe(info); sub != nil {
			engine.EventBus().Subscribe(sub)
		}
	}

	logger.Info("Starting match", "seats", names, "seed", info.Seed)
	result, err := engine.PlayMatch(ctx)
	if err != nil {
		logger.Warn("Match abandoned", "error", err)
		return nil
	}
	logger.Info("Match complete", "winner", result.Winner, "tied", result.Tied, "actions", result.Actions)
	if l.config.OnMatch != nil {
		l.config.OnMatch(info, result)
	}

	// Players still connected go back in the queue.
	for _, r := range remotes {
		select {
		case <-r.Done():
		default:
			l.Join(r)
		}
	}
	return nil
}

// relay forwards a match's events to one remote player, formatted from
// their seat so they only see their own private reveals.
type relay struct {
	remote    Remote
	formatter *game.EventFormatter
}

func newRelay(r Remote, seat game.PlayerNumber, seats []game.SeatInfo) *relay {
	return &relay{
		remote: r,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			Perspective: seat,
			Seats:       seats,
		}),
	}
}

func (r *relay) OnEvent(event game.GameEvent) {
	if text := r.formatter.Format(event); text != "" {
		_ = r.remote.Send(protocol.TypeEvent, protocol.Event{Type: event.EventType(), Text: text})
	}
	if end, ok := event.(game.MatchEndEvent); ok {
		_ = r.remote.Send(protocol.TypeMatchEnd, protocol.MatchEnd{
			MatchID:   end.MatchID,
			Standings: end.Standings,
			Winner:    end.Winner,
			Tied:      end.Tied,
		})
	}
}
