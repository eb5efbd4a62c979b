package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fpt/go-promptlab/internal/app"
	"github.com/fpt/go-promptlab/internal/config"
	"github.com/fpt/go-promptlab/internal/infra"
	"github.com/fpt/go-promptlab/pkg/client"
	"github.com/fpt/go-promptlab/pkg/client/handles"
	"github.com/fpt/go-promptlab/pkg/dispatch"
	"github.com/fpt/go-promptlab/pkg/domain"
	pkgLogger "github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
	"github.com/fpt/go-promptlab/pkg/store"
)

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("promptlab - compare prompt scenarios across OpenAI, Claude and Gemini")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  promptlab                                   # Interactive mode")
	fmt.Println("  promptlab -f scenarios.json                 # Interactive mode with imported scenarios")
	fmt.Println("  promptlab -f scenarios.yaml -run            # Run every scenario and print a summary")
	fmt.Println("  promptlab -f scenarios.toml -run -o out.json # ...and write a JSON results report")
	fmt.Println("  promptlab -m gemini-2.5-flash               # Default model for new scenarios")
	fmt.Println("  promptlab -schema                           # Print the scenario file JSON Schema")
	fmt.Println()
	fmt.Println("API keys are read from OPENAI_API_KEY, ANTHROPIC_API_KEY and GEMINI_API_KEY (or a .env file).")
	fmt.Println()
}

func main() {
	// Define command line flags
	var settingsPath = flag.String("settings", "", "Path to settings file")
	var envFile = flag.String("env", "", "Path to a .env file with provider API keys (default: ./.env if present)")
	var file = flag.String("f", "", "Scenario file to import (.json, .yaml, .yml or .toml)")
	var fileLong = flag.String("file", "", "Scenario file to import (.json, .yaml, .yml or .toml)")
	var model = flag.String("m", "", "Default model for new scenarios")
	var modelLong = flag.String("model", "", "Default model for new scenarios")
	var run = flag.Bool("run", false, "Run every imported scenario, wait, print a summary and exit")
	var output = flag.String("o", "", "Write a JSON results report after -run")
	var outputLong = flag.String("output", "", "Write a JSON results report after -run")
	var schema = flag.Bool("schema", false, "Print the JSON Schema of the scenario file format and exit")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	// Custom usage function
	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}

	// Parse flags
	flag.Parse()

	// Handle help flag
	if *help || *helpLong {
		flag.Usage()
		return
	}

	if *schema {
		data, err := infra.ScenarioFileSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	// Resolve long/short flag conflicts (prefer the one that was set)
	resolvedFile := resolveStringFlag(*file, *fileLong)
	resolvedModel := resolveStringFlag(*model, *modelLong)
	resolvedOutput := resolveStringFlag(*output, *outputLong)
	resolvedVerbose := *verbose || *verboseLong

	// Load settings
	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Printf("⚠️  Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}

	// Override log level to debug if verbose flag is set
	logLevel := pkgLogger.ParseLogLevel(settings.App.LogLevel)
	if resolvedVerbose {
		logLevel = pkgLogger.LogLevelDebug
	}
	// Update global logger level so all component loggers use the new level
	pkgLogger.SetGlobalLogLevel(logLevel)
	logger := pkgLogger.NewComponentLogger("main")
	logger.DebugWithIcon("📊", "Verbose logging enabled", "log_level", logLevel)

	if resolvedModel != "" {
		settings.Defaults.Model = resolvedModel
	}

	registry := provider.Default()
	if err := config.ValidateSettings(settings, registry); err != nil {
		logger.ErrorWithIcon("❌", "Settings validation failed", "error", err)
		os.Exit(1)
	}

	credentials, err := config.LoadCredentials(registry, *envFile)
	if err != nil {
		logger.ErrorWithIcon("❌", "Failed to load credentials", "error", err)
		os.Exit(1)
	}

	cache := handles.NewCache()
	clients := client.NewClientSet(registry, cache, settings.ClientConfigs())
	calculator := pricing.NewCalculatorWithTable(registry, nil, settings.Pricing.FallbackModel)
	defaults := store.Defaults{Model: settings.Defaults.Model, Temperature: settings.DefaultTemperature()}
	st := store.NewStore(defaults)
	coordinator := dispatch.NewCoordinator(registry, clients, calculator, st, credentials)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if *run {
		if resolvedFile == "" {
			logger.ErrorWithIcon("❌", "-run requires a scenario file (-f)")
			os.Exit(1)
		}
		os.Exit(runBatch(ctx, registry, st, coordinator, credentials, defaults, resolvedFile, resolvedOutput))
	}

	session := app.NewSession(app.SessionOptions{
		Registry:    registry,
		Store:       st,
		Coordinator: coordinator,
		Credentials: credentials,
		Defaults:    defaults,
		ExportDir:   settings.App.ExportDir,
		Out:         os.Stdout,
		Interactive: true,
		Color:       true,
	})

	if resolvedFile != "" {
		n, err := session.Import(resolvedFile)
		if err != nil {
			logger.ErrorWithIcon("❌", "Failed to import scenarios", "path", resolvedFile, "error", err)
			os.Exit(1)
		}
		logger.InfoWithIcon("📥", "Loaded scenarios", "count", n)
	} else {
		session.AddScenario("")
	}

	app.StartInteractiveMode(ctx, session)
}

// runBatch imports a scenario file, runs everything and returns the process exit code
func runBatch(
	ctx context.Context,
	registry *provider.Registry,
	st *store.Store,
	coordinator *dispatch.Coordinator,
	credentials *domain.Credentials,
	defaults store.Defaults,
	path, output string,
) int {
	logger := pkgLogger.NewComponentLogger("batch")

	session := app.NewSession(app.SessionOptions{
		Registry:    registry,
		Store:       st,
		Coordinator: coordinator,
		Credentials: credentials,
		Defaults:    defaults,
		Out:         os.Stdout,
	})
	if _, err := session.Import(path); err != nil {
		logger.ErrorWithIcon("❌", "Failed to import scenarios", "path", path, "error", err)
		return 1
	}

	// Ctrl+C cancels every in-flight run; the summary is still printed
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := coordinator.RunAll(ctx); err != nil {
		logger.ErrorWithIcon("🔑", "Cannot run scenarios", "error", err)
		return 1
	}
	coordinator.Wait()

	out := session.OutWriter()
	fmt.Fprintln(out)
	app.WriteScenarioTable(out, st.List(), "")
	app.WriteStats(out, app.ComputeStats(st.List(), registry), st.SessionTotal())

	if output != "" {
		if err := session.WriteResults(output); err != nil {
			logger.ErrorWithIcon("❌", "Failed to write results", "path", output, "error", err)
			return 1
		}
		logger.InfoWithIcon("💾", "Results written", "path", output)
	}

	for _, sc := range st.List() {
		if sc.State == domain.StateFailed {
			return 1
		}
	}
	return 0
}
