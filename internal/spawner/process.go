package spawner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// stopGrace is how long a process has to exit after an interrupt.
const stopGrace = time.Second

// Process is one managed bot process.
type Process struct {
	ID      string
	Name    string
	Command string
	Args    []string
	Env     map[string]string

	cmd       *exec.Cmd
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *log.Logger
	startTime time.Time
	mu        sync.Mutex
	done      chan struct{}
	exitErr   error
}

// NewProcess creates a process that is killed when ctx is cancelled.
func NewProcess(ctx context.Context, name, command string, args []string, env map[string]string, logger *log.Logger) *Process {
	procCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()[:8]

	return &Process{
		ID:      id,
		Name:    name,
		Command: command,
		Args:    args,
		Env:     env,
		ctx:     procCtx,
		cancel:  cancel,
		logger:  logger.With("bot", name),
		done:    make(chan struct{}),
	}
}

// Start starts the process and relays its output to the logger.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return errors.New("process already started")
	}

	p.cmd = exec.CommandContext(p.ctx, p.Command, p.Args...)
	p.cmd.Env = os.Environ()
	for k, v := range p.Env {
		p.cmd.Env = append(p.cmd.Env, k+"="+v)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		p.cancel()
		return fmt.Errorf("failed to start process: %w", err)
	}

	p.startTime = time.Now()
	p.logger.Info("Process started", "command", p.Command, "args", p.Args)

	var readers sync.WaitGroup
	readers.Add(2)
	go p.readOutput(&readers, stdout, p.logger.Info)
	go p.readOutput(&readers, stderr, p.logger.Debug)
	go p.monitor(&readers)

	return nil
}

// Stop interrupts the process and kills it if it has not exited within
// stopGrace.
func (p *Process) Stop() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if !p.IsAlive() {
		return nil
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Debug("Interrupt failed, killing", "error", err)
		p.cancel()
	}

	select {
	case <-p.done:
	case <-time.After(stopGrace):
		p.logger.Debug("Force killing process")
		p.cancel()
		<-p.done
	}
	return nil
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// IsAlive reports whether the process is still running.
func (p *Process) IsAlive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Process) monitor(readers *sync.WaitGroup) {
	defer close(p.done)
	defer p.cancel()

	// Pipes must be drained before Wait closes them.
	readers.Wait()
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	duration := time.Since(p.startTime).Round(time.Millisecond)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		p.logger.Info("Process exited", "duration", duration)
	case errors.As(err, &exitErr) && !exitErr.Exited():
		p.logger.Info("Process terminated by signal", "duration", duration, "signal", exitErr.String())
	default:
		p.logger.Error("Process exited with error", "error", err, "duration", duration)
	}
}

func (p *Process) readOutput(readers *sync.WaitGroup, pipe io.Reader, logf func(any, ...any)) {
	defer readers.Done()
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			logf(line)
		}
	}
}
