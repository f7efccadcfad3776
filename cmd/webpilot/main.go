// Package main provides the webpilot browsing agent application: natural
// language commands in, LLM-driven browser actions, extracted data out.
// Runs as an interactive terminal UI by default, or as a non-interactive
// batch runner with -headless.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/agent/tools"
	appconfig "github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/executor/cli"
	"github.com/entrhq/webpilot/pkg/executor/tui"
	"github.com/entrhq/webpilot/pkg/llm/tokenizer"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/page"
	"github.com/entrhq/webpilot/pkg/queue"
	"github.com/entrhq/webpilot/pkg/security/navigation"
	"github.com/entrhq/webpilot/pkg/tools/browser"
	"github.com/entrhq/webpilot/pkg/types"
)

const (
	version      = "0.1.0"
	defaultModel = "gpt-4o"
)

// Config holds the application configuration
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	ConfigPath   string
	Instructions string
	ScriptPath   string
	AllowHosts   string
	DenyHosts    string
	MaxToolCalls int
	MaxTokens    int
	Headless     bool
	Headful      bool
	ShowVersion  bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("webpilot v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&config.Model, "model", defaultModel, "LLM model to use")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to config file (default: ~/.webpilot/config.json)")
	flag.StringVar(&config.Instructions, "instructions", "", "Custom instructions appended to the system prompt")
	flag.StringVar(&config.ScriptPath, "script", "", "Path to a YAML command script")
	flag.StringVar(&config.AllowHosts, "allow", "", "Comma-separated host globs navigation is restricted to")
	flag.StringVar(&config.DenyHosts, "deny", "", "Comma-separated host globs navigation is blocked from")
	flag.IntVar(&config.MaxToolCalls, "max-tool-calls", 0, "Round-trip cap per command (0 = configured default)")
	flag.IntVar(&config.MaxTokens, "max-tokens", 0, "Token budget per command (0 = configured default)")
	flag.BoolVar(&config.Headless, "headless", false, "Run non-interactively: commands in, JSON results out")
	flag.BoolVar(&config.Headful, "headful", false, "Show the browser window instead of running it headless")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "webpilot - an LLM browsing agent\n\n")
		fmt.Fprintf(os.Stderr, "Usage: webpilot [options] [command ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Interactive TUI\n")
		fmt.Fprintf(os.Stderr, "  webpilot\n")
		fmt.Fprintf(os.Stderr, "\n  # One command, results on stdout\n")
		fmt.Fprintf(os.Stderr, "  webpilot -headless \"Go to https://example.com and get the title\"\n")
		fmt.Fprintf(os.Stderr, "\n  # Scripted batch with a host allowlist\n")
		fmt.Fprintf(os.Stderr, "  webpilot -headless -script commands.yaml -allow '*.example.com'\n")
	}

	flag.Parse()
	return config
}

// run wires the full stack and hands control to the selected executor.
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	provider, err := appconfig.BuildProvider(config.Model, config.BaseURL, config.APIKey, defaultModel)
	if err != nil {
		return err
	}

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	tk, err := tokenizer.New()
	if err != nil {
		logger.Warnf("tokenizer unavailable, token budgets use API counts only: %v", err)
		tk = nil
	}

	opts := resolveAgentOptions(config)
	script, err := loadScript(config, &opts)
	if err != nil {
		return err
	}

	guard, err := buildGuard(config)
	if err != nil {
		return err
	}

	// Launch the browser surface.
	surface := browser.NewSurface(browser.SurfaceOptions{Headless: !config.Headful})
	if err := surface.Start(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer surface.Close()

	serializer := page.NewSerializer(surface)
	dispatcherOpts := []page.DispatcherOption{}
	if guard != nil {
		dispatcherOpts = append(dispatcherOpts, page.WithNavigationGuard(guard))
	}
	dispatcher := page.NewDispatcher(surface, serializer, dispatcherOpts...)

	registry := tools.NewRegistry()
	browser.RegisterAll(registry, dispatcher, logger)

	// Each attempt gets its own loop so record snapshots flow to the
	// queue's observer for that attempt.
	executeFn := func(ctx context.Context, command string, state *agent.ExecutionState, observe func(*types.CommandRecord)) (*types.CommandRecord, error) {
		loopOpts := []agent.LoopOption{agent.WithLogger(logger), agent.WithRecordObserver(observe)}
		if tk != nil {
			loopOpts = append(loopOpts, agent.WithTokenizer(tk))
		}
		loop := agent.NewLoop(provider, registry, loopOpts...)
		return loop.Run(ctx, command, opts, state), nil
	}

	session := queue.NewSession(executeFn, queue.WithSessionLogger(logger))

	if config.Headless {
		rawText := strings.Join(flag.Args(), "\n")
		if script != nil {
			rawText = script.RawText()
		}
		executor := cli.NewExecutor(session)
		return executor.Run(ctx, rawText)
	}

	program := tui.New(ctx, session)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}
	return nil
}

// resolveAgentOptions layers flags over the configured agent settings.
func resolveAgentOptions(config *Config) agent.Options {
	opts := agent.Options{
		MaxToolCalls: appconfig.DefaultMaxToolCalls,
		MaxTokens:    appconfig.DefaultMaxTokens,
	}
	if section := appconfig.GetAgent(); section != nil {
		opts.MaxToolCalls = section.GetMaxToolCalls()
		opts.MaxTokens = section.GetMaxTokens()
		opts.CustomInstructions = section.GetCustomInstructions()
	}
	if config.MaxToolCalls > 0 {
		opts.MaxToolCalls = config.MaxToolCalls
	}
	if config.MaxTokens > 0 {
		opts.MaxTokens = config.MaxTokens
	}
	if config.Instructions != "" {
		opts.CustomInstructions = config.Instructions
	}
	return opts
}

// loadScript reads the -script file, if any, applying its budget overrides.
func loadScript(config *Config, opts *agent.Options) (*queue.Script, error) {
	if config.ScriptPath == "" {
		return nil, nil
	}
	script, err := queue.LoadScript(config.ScriptPath)
	if err != nil {
		return nil, err
	}
	if script.MaxToolCalls > 0 {
		opts.MaxToolCalls = script.MaxToolCalls
	}
	if script.MaxTokens > 0 {
		opts.MaxTokens = script.MaxTokens
	}
	if script.CustomInstructions != "" {
		opts.CustomInstructions = script.CustomInstructions
	}
	return script, nil
}

// buildGuard layers flag patterns over the configured navigation policy.
// Returns nil when no patterns are configured anywhere.
func buildGuard(config *Config) (*navigation.Guard, error) {
	var allowed, denied []string
	if section := appconfig.GetNavigation(); section != nil {
		allowed = section.GetAllowedHosts()
		denied = section.GetDeniedHosts()
	}
	if config.AllowHosts != "" {
		allowed = splitPatterns(config.AllowHosts)
	}
	if config.DenyHosts != "" {
		denied = splitPatterns(config.DenyHosts)
	}
	if len(allowed) == 0 && len(denied) == 0 {
		return nil, nil
	}
	return navigation.NewGuard(allowed, denied)
}

func splitPatterns(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
