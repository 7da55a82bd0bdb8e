package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/almanac/internal"
	pkgconfig "github.com/starford/almanac/pkg/config"
)

var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func partition(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	input := cmd.String("input")
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input %s: %w", input, err)
	}
	defer f.Close()

	return internal.RunPartition(ctx, internal.PartitionOptions{
		Input:   f,
		Workers: int(cmd.Int("workers")),
		Prune:   cmd.Bool("prune"),
	}, opts...)
}

func reindex(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	n, err := internal.Reindex(ctx, opts...)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "indexed %d authors\n", n)
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, version, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "almanac",
		Usage:   "Writer's Almanac archive: daily poems, authors, navigation and search",
		Version: version,
		Action:  serve,
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
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "partition",
				Usage:  "Split an author mapping JSON file into per-author and per-letter objects",
				Action: partition,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the author mapping JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent object writes (0 uses the config value)",
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Remove author and letter objects not present in the input",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Reconcile the SQLite catalogue with the object store and exit",
				Action: reindex,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the archive as MCP tools on stdin/stdout",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
