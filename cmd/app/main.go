package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/histmap/internal"
	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/cliui"
	pkgconfig "github.com/starford/histmap/pkg/config"
)

var version = "dev"

// systemConfig is used when the --config file does not exist.
const systemConfig = "/etc/histmap/config.yaml"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), systemConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func categorizeURLs(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("rules") {
		cliui.RenderTaxonomy(os.Stdout)
		return nil
	}
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("at least one URL is required")
	}
	failed := 0
	for _, u := range urls {
		c, err := categorize.Categorize(u)
		if err != nil {
			failed++
		}
		cliui.RenderCategorized(os.Stdout, u, c, err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs could not be categorized", failed, len(urls))
	}
	return nil
}

func graph(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := internal.CurrentGraph(ctx, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	cliui.RenderGraph(os.Stdout, g)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "histmap",
		Usage:   "Browsing history mind map: categorise visits, relate them and lay them out on a circle",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and watchers",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "categorize",
				Usage:     "Print the category of each URL",
				ArgsUsage: "URL...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rules", Usage: "Print the categorisation rules instead"},
				},
				Action: categorizeURLs,
			},
			{
				Name:   "graph",
				Usage:  "Print the current history graph",
				Action: graph,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
