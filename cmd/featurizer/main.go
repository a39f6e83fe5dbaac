package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "featurizer",
		Usage: "Extract wallet transfer feature vectors",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract features for one address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "address",
						Aliases:  []string{"a"},
						Usage:    "The address to extract features for",
						Required: true,
					},
				},
				Action: runExtract,
			},
			{
				Name:  "batch",
				Usage: "Extract features for every address in a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "addresses-file",
						Aliases:  []string{"f"},
						Usage:    "File with one address per line",
						Required: true,
					},
				},
				Action: runBatch,
			},
			{
				Name:  "verify",
				Usage: "Re-extract an address and compare with stored vectors",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "address",
						Aliases:  []string{"a"},
						Usage:    "The address to verify",
						Required: true,
					},
				},
				Action: runVerify,
			},
			{
				Name:  "export",
				Usage: "Export stored vectors of one kind as a CSV table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Vector kind (native or token)",
						Value: "native",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file (stdout when empty)",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
