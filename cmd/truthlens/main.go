package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "truthlens",
		Usage: "Corroborate news text against independent sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yml",
				EnvVars: []string{"TRUTHLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Search for references corroborating a piece of news",
				ArgsUsage: "[text]",
				Action:    checkCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of references to return (0 uses the configured default)",
					},
					&cli.StringFlag{
						Name:  "label",
						Usage: "Classifier verdict for the text (real or fake)",
					},
					&cli.Float64Flag{
						Name:  "confidence",
						Usage: "Classifier confidence in [0, 1]",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write a .docx report to this path",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall deadline for the search",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:   "providers",
				Usage:  "List configured news providers and whether they can be used",
				Action: providersCommand,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "address",
						Aliases: []string{"a"},
						Usage:   "Listen address (overrides server.address)",
					},
				},
			},
		},
	}
}
