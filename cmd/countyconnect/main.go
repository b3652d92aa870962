package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "countyconnect",
		Usage: "County directory API: listings, moderation and ownership claims",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Dotenv file to load before reading the environment",
				Value:   ".env",
			},
		},
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			showCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
