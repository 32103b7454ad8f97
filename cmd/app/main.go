package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal/app"
)

func runBuild(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one spec file argument")
	}
	out, err := app.BuildFile(cmd.Args().First(), cmd.String("output"))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Println(out)
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := app.NewDefaultConfig()
	if err := app.LoadConfig(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := app.Run(ctx, app.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Build importable flashcard packages from declarative deck specs",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build one deck-spec file into an .apkg package",
				ArgsUsage: "<deck.yaml>",
				Action:    runBuild,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the package is written to",
						Value:   ".",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Watch a spec directory, rebuild on change, and serve built packages over HTTP",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "config",
						Aliases:     []string{"c"},
						Usage:       "Path to config file",
						DefaultText: "config/config.yaml",
						Value:       "config/config.yaml",
						Sources:     cli.EnvVars("APP_CONFIG_FILE"),
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
