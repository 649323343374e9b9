package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Decode   DecodeCmd        `cmd:"" help:"Decode a hex hand history to JSON"`
	Replay   ReplayCmd        `cmd:"" help:"Reconstruct a hand history and print its frames"`
	Simulate SimulateCmd      `cmd:"" help:"Play bots-only hands and print their encoded histories"`
	Serve    ServeCmd         `cmd:"" help:"Play bots-only hands continuously with a websocket spectator feed"`
	View     ViewCmd          `cmd:"" help:"Step through a hand in the terminal viewer"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handreplay"),
		kong.Description("Poker hand history codec, replayer, and local bot table"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
