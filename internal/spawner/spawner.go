// Package spawner runs bot client processes against a shell roulette
// server.
package spawner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
)

// Environment variables passed to every spawned bot.
const (
	EnvServer = "SHELLROULETTE_SERVER"
	EnvName   = "SHELLROULETTE_BOT_NAME"
	EnvSeed   = "SHELLROULETTE_SEED"
)

// BotSpawner manages the lifecycle of bot processes.
type BotSpawner struct {
	serverURL string
	processes map[string]*Process
	mu        sync.Mutex
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	seed      int64
	botSeq    int
}

// BotSpec describes a group of identical bots.
type BotSpec struct {
	// Name prefixes each bot's name; the sequence number is appended.
	Name    string
	Command string
	Args    []string
	Count   int
	Env     map[string]string
}

// New creates a BotSpawner. A non-zero seed gives bot n the seed seed+n.
func New(serverURL string, seed int64, logger *log.Logger) *BotSpawner {
	ctx, cancel := context.WithCancel(context.Background())
	return &BotSpawner{
		serverURL: serverURL,
		processes: make(map[string]*Process),
		logger:    logger.WithPrefix("spawner"),
		ctx:       ctx,
		cancel:    cancel,
		seed:      seed,
	}
}

// Spawn starts spec.Count processes. If any fails to start, every bot
// started so far is stopped.
func (s *BotSpawner) Spawn(spec BotSpec) error {
	if spec.Count <= 0 {
		spec.Count = 1
	}
	if spec.Name == "" {
		spec.Name = "bot"
	}

	s.logger.Info("Spawning bots", "command", spec.Command, "args", spec.Args, "count", spec.Count)

	for i := range spec.Count {
		proc, err := s.spawnOne(spec)
		if err != nil {
			s.logger.Error("Failed to spawn bot", "error", err, "index", i)
			_ = s.StopAll()
			return fmt.Errorf("failed to spawn bot %d: %w", i, err)
		}

		s.mu.Lock()
		s.processes[proc.ID] = proc
		s.mu.Unlock()
	}
	return nil
}

// SpawnMany spawns each spec in turn.
func (s *BotSpawner) SpawnMany(specs []BotSpec) error {
	for _, spec := range specs {
		if err := s.Spawn(spec); err != nil {
			return err
		}
	}
	return nil
}

// StopAll stops every bot and forgets them.
func (s *BotSpawner) StopAll() error {
	s.logger.Info("Stopping all bots")

	s.mu.Lock()
	procs := s.processes
	s.processes = make(map[string]*Process)
	s.mu.Unlock()

	var errs []error
	for id, proc := range procs {
		if err := proc.Stop(); err != nil {
			s.logger.Error("Failed to stop bot", "error", err, "bot_id", id)
			errs = append(errs, err)
		}
	}
	s.cancel()
	return errors.Join(errs...)
}

// Wait blocks until every bot has exited.
func (s *BotSpawner) Wait() {
	for _, proc := range s.snapshot() {
		_ = proc.Wait()
	}
}

// Done returns a channel that is closed once every spawned bot has exited.
func (s *BotSpawner) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	return done
}

// ActiveCount returns the number of bots still running.
func (s *BotSpawner) ActiveCount() int {
	count := 0
	for _, proc := range s.snapshot() {
		if proc.IsAlive() {
			count++
		}
	}
	return count
}

func (s *BotSpawner) snapshot() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	procs := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		procs = append(procs, p)
	}
	return procs
}

func (s *BotSpawner) spawnOne(spec BotSpec) (*Process, error) {
	s.mu.Lock()
	s.botSeq++
	seq := s.botSeq
	s.mu.Unlock()

	name := fmt.Sprintf("%s-%d", spec.Name, seq)
	proc := NewProcess(s.ctx, name, spec.Command, spec.Args, s.buildEnv(name, seq, spec), s.logger)
	if err := proc.Start(); err != nil {
		return nil, err
	}
	return proc, nil
}

func (s *BotSpawner) buildEnv(name string, seq int, spec BotSpec) map[string]string {
	env := map[string]string{
		EnvServer: s.serverURL,
		EnvName:   name,
	}
	if s.seed != 0 {
		env[EnvSeed] = strconv.FormatInt(s.seed+int64(seq), 10)
	}
	for k, v := range spec.Env {
		env[k] = v
	}
	return env
}
