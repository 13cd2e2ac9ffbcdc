package server

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/protocol"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

// fakeRemote records what it is sent and, if answer is set, replies to
// action requests straight away.
type fakeRemote struct {
	name      string
	answer    func(req protocol.ActionRequest) []protocol.Decision
	decisions chan protocol.Decision
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	sent []*protocol.Message
}

func newFakeRemote(name string, answer func(req protocol.ActionRequest) []protocol.Decision) *fakeRemote {
	return &fakeRemote{
		name:      name,
		answer:    answer,
		decisions: make(chan protocol.Decision, 4),
		done:      make(chan struct{}),
	}
}

// shootFirstOpponent answers every request with a legal shot.
func shootFirstOpponent(req protocol.ActionRequest) []protocol.Decision {
	return []protocol.Decision{{
		RequestID: req.RequestID,
		Decision:  game.Shoot(req.View.Opponents()[0].Player, "test"),
	}}
}

func (f *fakeRemote) Name() string                        { return f.name }
func (f *fakeRemote) Decisions() <-chan protocol.Decision { return f.decisions }
func (f *fakeRemote) Done() <-chan struct{}               { return f.done }

func (f *fakeRemote) Send(messageType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(messageType, data, time.Time{})
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()

	if req, ok := data.(protocol.ActionRequest); ok && f.answer != nil {
		for _, d := range f.answer(req) {
			f.decisions <- d
		}
	}
	return nil
}

func (f *fakeRemote) disconnect() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *fakeRemote) count(messageType protocol.MessageType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.Type == messageType {
			n++
		}
	}
	return n
}

func (f *fakeRemote) last(messageType protocol.MessageType) *protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Type == messageType {
			return f.sent[i]
		}
	}
	return nil
}

func twoSeatView() game.TurnView {
	return game.TurnView{
		Round:  game.RoundOne,
		Player: game.PlayerOne,
		Health: 3,
		Seats: []game.SeatView{
			{Player: game.PlayerOne, Occupied: true, Health: 3},
			{Player: game.PlayerTwo, Occupied: true, Health: 3},
		},
		ShellsRemaining: 4,
	}
}
