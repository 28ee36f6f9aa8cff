package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/supplymatch/orderassign/pkg/interfaces/cli/commands"
)

func main() {
	app := &cli.App{
		Name:  "orderassign",
		Usage: "Assign order lines to suppliers with an exact assignment solver",
		Commands: []*cli.Command{
			processCmd,
			validateCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var processCmd = &cli.Command{
	Name:    "process",
	Usage:   "Process a matched-order payload through the assignment pipeline",
	Aliases: []string{"p"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "path to the matched-order payload JSON",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "path to the SQLite run database (in-memory history if omitted)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "json",
			Usage:   "output format: json, text or pretty",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "override the configured log level (debug, info, warn, error)",
		},
	},
	Action: func(ctx *cli.Context) error {
		cmd := commands.NewProcessCommand(commands.Config{
			InputFile:        ctx.String("input"),
			ConfigFile:       ctx.String("config"),
			DatabasePath:     ctx.String("db"),
			Format:           ctx.String("format"),
			LogLevelOverride: ctx.String("log-level"),
		})
		return cmd.Execute(ctx.Context)
	},
}

var validateCmd = &cli.Command{
	Name:    "validate",
	Usage:   "Validate a payload and configuration without solving",
	Aliases: []string{"v"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "path to the matched-order payload JSON",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML configuration file",
		},
	},
	Action: func(ctx *cli.Context) error {
		cmd := commands.NewValidateCommand(commands.Config{
			InputFile:  ctx.String("input"),
			ConfigFile: ctx.String("config"),
		})
		return cmd.Execute(ctx.Context)
	},
}
