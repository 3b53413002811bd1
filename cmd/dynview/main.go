package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	dynview "github.com/goliatone/go-dynview"
	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/component"
	"github.com/goliatone/go-dynview/pkg/config"
	"github.com/goliatone/go-dynview/pkg/navigation"
	"github.com/goliatone/go-dynview/pkg/navigation/rodnav"
	"github.com/goliatone/go-dynview/pkg/render"
	"github.com/goliatone/go-dynview/pkg/renderers/tui"
)

var (
	configFile     string
	baseURL        string
	configEndpoint string
	dataEndpoint   string
	maxRetries     int
	retryDelay     time.Duration
	format         string
	output         string
	standalone     bool
	verbose        bool
	browser        bool
	headless       bool
	profile        string
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "dynview",
		Short: "Render server-configured views from remote data",
		Long: `dynview fetches a view configuration and a list of records, then renders
one item per record by substituting record fields into the configured elements.

Example:
  dynview render --base-url http://localhost:3000 --format text`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "JSON or YAML settings file")
	flags.StringVar(&baseURL, "base-url", config.DefaultBaseURL, "Base URL relative endpoints resolve against")
	flags.StringVar(&configEndpoint, "config-endpoint", config.DefaultConfigEndpoint, "Configuration endpoint or file")
	flags.StringVar(&dataEndpoint, "data-endpoint", config.DefaultDataEndpoint, "Data endpoint or file")
	flags.IntVar(&maxRetries, "max-retries", config.DefaultMaxRetries, "Retries after a transient server response")
	flags.DurationVar(&retryDelay, "retry-delay", config.DefaultRetryDelay, "Delay between retries")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	flags.BoolVar(&browser, "browser", false, "Perform navigations in a Chromium browser")
	flags.BoolVar(&headless, "headless", true, "Run the browser headless")
	flags.StringVar(&profile, "profile", "", "Chrome/Chromium profile directory for authenticated sessions")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Load once and print the rendered view",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, text")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	renderCmd.Flags().BoolVar(&standalone, "standalone", false, "Wrap HTML output in a full document")

	interactCmd := &cobra.Command{
		Use:   "interact",
		Short: "Render in the terminal and activate buttons and links",
		Args:  cobra.NoArgs,
		RunE:  runInteract,
	}

	rootCmd.AddCommand(renderCmd, interactCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg, err := cfg.FromEnv(nil)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("config-endpoint") {
		cfg.ConfigEndpoint = configEndpoint
	}
	if flags.Changed("data-endpoint") {
		cfg.DataEndpoint = dataEndpoint
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = maxRetries
	}
	if flags.Changed("retry-delay") {
		cfg.RetryDelay = config.Duration(retryDelay)
	}
	return cfg, cfg.Validate()
}

func newNavigator() (action.Navigator, func(), error) {
	if !browser {
		history := navigation.NewHistory(navigation.WithListener(func(url string) {
			fmt.Fprintf(os.Stderr, "→ navigate %s\n", url)
		}))
		return history, func() {}, nil
	}
	nav, err := rodnav.Launch(rodnav.Options{Headless: headless, ProfileDir: profile}, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("browser launch failed: %w", err)
	}
	return nav, func() { _ = nav.Close() }, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rendererName := "vanilla"
	switch format {
	case "html":
	case "text":
		rendererName = "tui"
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := component.New(component.WithConfig(cfg))
	defer c.Close()
	state := c.Activate(ctx)
	slog.Debug("activation finished", "state", state.String())

	registry, err := dynview.NewRegistry(nil, []tui.Option{tui.WithOutput(outputWriter())})
	if err != nil {
		return err
	}
	out, _, err := registry.Render(ctx, rendererName, c.Render(), render.RenderOptions{
		ComponentName: c.Schema().Name(),
		Standalone:    standalone,
	})
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if output != "" {
		if err := os.WriteFile(output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("View written to %s\n", output)
	} else {
		fmt.Println(string(out))
	}
	if state.IsError() {
		return errors.New(state.Message)
	}
	return nil
}

func outputWriter() io.Writer {
	if output != "" {
		return io.Discard
	}
	return os.Stdout
}

func runInteract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	nav, closeNav, err := newNavigator()
	if err != nil {
		return err
	}
	defer closeNav()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	c := component.New(
		component.WithConfig(cfg),
		component.WithNavigator(nav),
		component.WithSink(action.SinkFunc(func(_ context.Context, event action.Event) {
			if err := encoder.Encode(event); err != nil {
				slog.Error("encode event", "error", err)
			}
		})),
	)
	defer c.Close()

	fmt.Print("→ Loading... ")
	state := c.Activate(ctx)
	fmt.Println(state.String())

	term, err := tui.New()
	if err != nil {
		return err
	}
	opts := render.RenderOptions{ComponentName: c.Schema().Name()}
	err = term.Interact(ctx, c.Render(), opts, c.Render)
	if errors.Is(err, tui.ErrNothingToActivate) {
		return nil
	}
	return err
}
