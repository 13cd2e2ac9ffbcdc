package main

import (
	"fmt"
	"os"

	"github.com/lox/shellroulette/internal/history"
)

// HistoryCmd works with saved match histories.
type HistoryCmd struct {
	List HistoryListCmd `cmd:"" help:"List saved matches"`
	Show HistoryShowCmd `cmd:"" help:"Print a saved match"`
}

// HistoryListCmd lists the histories in a directory.
type HistoryListCmd struct {
	Dir string `type:"path" help:"History directory (default: simulation.history_dir or ./histories)"`
}

func (c *HistoryListCmd) Run(g *Globals) error {
	dir, err := historyDir(g, c.Dir)
	if err != nil {
		return err
	}
	ids, err := history.List(dir)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Printf("No match histories in %s\n", dir)
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// HistoryShowCmd renders one saved match.
type HistoryShowCmd struct {
	Match string `arg:"" help:"Match id or path to a history file"`
	Dir   string `type:"path" help:"History directory (default: simulation.history_dir or ./histories)"`
}

func (c *HistoryShowCmd) Run(g *Globals) error {
	dir, err := historyDir(g, c.Dir)
	if err != nil {
		return err
	}
	path, err := history.Find(dir, c.Match)
	if err != nil {
		return err
	}
	h, err := history.Load(path)
	if err != nil {
		return err
	}
	return history.Render(os.Stdout, h)
}

func historyDir(g *Globals, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := g.load()
	if err != nil {
		return "", err
	}
	if cfg.Simulation.HistoryDir != "" {
		return cfg.Simulation.HistoryDir, nil
	}
	return "histories", nil
}
