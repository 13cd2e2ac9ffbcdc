package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Play many bot-only matches and report statistics"`
	Play     PlayCmd          `cmd:"" help:"Play a match against bots in the terminal"`
	Server   ServerCmd        `cmd:"" help:"Run the websocket lobby for remote players"`
	Bot      BotCmd           `cmd:"" help:"Connect a built-in strategy to a server"`
	Spawn    SpawnCmd         `cmd:"" help:"Run several bot processes against a server"`
	History  HistoryCmd       `cmd:"" help:"List and print saved match histories"`
	Stats    StatsCmd         `cmd:"" help:"Summarise matches stored in the database"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shellroulette"),
		kong.Description("Rules engine, bots and lobby for 2-4 player shell roulette"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
