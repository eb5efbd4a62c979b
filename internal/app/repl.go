package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/internal/infra"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// SlashCommand represents a command that starts with /
type SlashCommand struct {
	Name        string
	Usage       string
	Description string
	Handler     func(ctx context.Context, s *Session, args string) bool // Returns true if should exit
}

// getSlashCommands returns all available slash commands
func getSlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:        "help",
			Description: "Show available commands and usage information",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				showInteractiveHelp(s.out)
				return false
			},
		},
		{
			Name:        "list",
			Usage:       "[expr]",
			Description: "List scenarios, optionally filtered (e.g. provider == \"claude\")",
			Handler: func(_ context.Context, s *Session, args string) bool {
				list, err := s.Filter(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				WriteScenarioTable(s.out, list, s.currentID())
				return false
			},
		},
		{
			Name:        "add",
			Usage:       "[description]",
			Description: "Create a scenario and select it",
			Handler: func(_ context.Context, s *Session, args string) bool {
				sc := s.AddScenario(args)
				fmt.Fprintf(s.out, "➕ Added %s (%s, %s)\n", sc.Description, label(sc), sc.Model)
				return false
			},
		},
		{
			Name:        "select",
			Usage:       "<#|id>",
			Description: "Select the scenario that edits and plain input apply to",
			Handler: func(_ context.Context, s *Session, args string) bool {
				if strings.TrimSpace(args) == "" && s.interactive {
					args = showScenarioSelector(s)
					if args == "" {
						return false
					}
				}
				sc, err := s.Select(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				fmt.Fprintf(s.out, "▸ Selected %s\n", sc.Description)
				return false
			},
		},
		{
			Name:        "show",
			Usage:       "[#|id]",
			Description: "Show a scenario with its messages and last response",
			Handler: func(_ context.Context, s *Session, args string) bool {
				sc, err := s.Resolve(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				WriteScenarioDetail(s.out, sc, s.registry)
				return false
			},
		},
		{
			Name:        "desc",
			Usage:       "<text>",
			Description: "Rename the selected scenario",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					if strings.TrimSpace(args) == "" {
						return fmt.Errorf("usage: /desc <text>")
					}
					_, err := s.store.SetDescription(sc.ID, strings.TrimSpace(args))
					if err == nil {
						fmt.Fprintf(s.out, "✏️  Renamed to %s\n", strings.TrimSpace(args))
					}
					return err
				})
			},
		},
		{
			Name:        "models",
			Description: "List available models grouped by provider",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				writeModelList(s.out, s.registry)
				return false
			},
		},
		{
			Name:        "model",
			Usage:       "[model]",
			Description: "Change the selected scenario's model (resets roles to user)",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					model := strings.TrimSpace(args)
					if model == "" && s.interactive {
						model = showModelSelector(s.registry)
					}
					if model == "" {
						writeModelList(s.out, s.registry)
						return nil
					}
					updated, err := s.SetModel(sc.ID, model)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "🧠 %s now uses %s\n", updated.Description, updated.Model)
					if !s.registry.ModelSupportsTemperature(model) {
						fmt.Fprintln(s.out, "💡 This model ignores temperature.")
					}
					return nil
				})
			},
		},
		{
			Name:        "temp",
			Usage:       "<0-2>",
			Description: "Set the selected scenario's temperature",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
					if err != nil {
						return fmt.Errorf("usage: /temp <0-2>")
					}
					updated, err := s.store.SetTemperature(sc.ID, v)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "🌡️  Temperature set to %.1f\n", updated.Temperature)
					return nil
				})
			},
		},
		{
			Name:        "msg",
			Usage:       "<role> <content>",
			Description: "Append a message to the selected scenario",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					roleArg, content, _ := strings.Cut(strings.TrimSpace(args), " ")
					role, err := ParseRole(roleArg)
					if err != nil {
						return err
					}
					updated, err := s.store.AddMessage(sc.ID, role, strings.TrimSpace(content))
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "💬 Added %s message #%d\n", role, len(updated.Messages))
					writeRoleHint(s, role, updated.Model)
					return nil
				})
			},
		},
		{
			Name:        "edit",
			Usage:       "<n> <role> <content>",
			Description: "Replace message n of the selected scenario",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					fields := strings.SplitN(strings.TrimSpace(args), " ", 3)
					if len(fields) < 2 {
						return fmt.Errorf("usage: /edit <n> <role> <content>")
					}
					n, err := strconv.Atoi(fields[0])
					if err != nil {
						return fmt.Errorf("invalid message number: %s", fields[0])
					}
					role, err := ParseRole(fields[1])
					if err != nil {
						return err
					}
					content := ""
					if len(fields) == 3 {
						content = strings.TrimSpace(fields[2])
					}
					if _, err := s.store.UpdateMessage(sc.ID, n-1, role, content); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✏️  Message #%d updated\n", n)
					writeRoleHint(s, role, sc.Model)
					return nil
				})
			},
		},
		{
			Name:        "rmmsg",
			Usage:       "<n>",
			Description: "Remove message n from the selected scenario",
			Handler: func(_ context.Context, s *Session, args string) bool {
				return withCurrent(s, func(sc domain.Scenario) error {
					n, err := strconv.Atoi(strings.TrimSpace(args))
					if err != nil {
						return fmt.Errorf("usage: /rmmsg <n>")
					}
					if _, err := s.store.RemoveMessage(sc.ID, n-1); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "🗑️  Message #%d removed\n", n)
					return nil
				})
			},
		},
		{
			Name:        "dup",
			Usage:       "[#|id]",
			Description: "Duplicate a scenario without its results",
			Handler: func(_ context.Context, s *Session, args string) bool {
				sc, err := s.Resolve(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				dup, err := s.store.Duplicate(sc.ID)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				s.selectID(dup.ID)
				fmt.Fprintf(s.out, "📋 Created %s\n", dup.Description)
				return false
			},
		},
		{
			Name:        "delete",
			Usage:       "[#|id]",
			Description: "Delete a scenario, cancelling its run",
			Handler: func(_ context.Context, s *Session, args string) bool {
				sc, err := s.Resolve(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				if s.DeleteScenario(sc.ID) {
					fmt.Fprintf(s.out, "🗑️  Deleted %s\n", sc.Description)
				}
				return false
			},
		},
		{
			Name:        "run",
			Usage:       "[#|id]",
			Description: "Send a scenario to its provider",
			Handler: func(ctx context.Context, s *Session, args string) bool {
				sc, err := s.Resolve(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				if err := s.coordinator.RunOne(ctx, sc.ID); err != nil {
					writeRunError(s.out, err)
				}
				return false
			},
		},
		{
			Name:        "run-all",
			Description: "Send every scenario concurrently",
			Handler: func(ctx context.Context, s *Session, _ string) bool {
				if err := s.coordinator.RunAll(ctx); err != nil {
					writeRunError(s.out, err)
				}
				return false
			},
		},
		{
			Name:        "run-where",
			Usage:       "<expr>",
			Description: "Send the scenarios matching a filter expression",
			Handler: func(ctx context.Context, s *Session, args string) bool {
				started, errs, err := s.RunWhere(ctx, args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				for _, e := range errs {
					writeRunError(s.out, e)
				}
				fmt.Fprintf(s.out, "🚀 Started %d run(s)\n", started)
				return false
			},
		},
		{
			Name:        "cancel",
			Usage:       "[#|id]",
			Description: "Cancel a scenario's in-flight run",
			Handler: func(_ context.Context, s *Session, args string) bool {
				sc, err := s.Resolve(args)
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				if !s.coordinator.CancelOne(sc.ID) {
					fmt.Fprintf(s.out, "💡 %s is not running\n", sc.Description)
				}
				return false
			},
		},
		{
			Name:        "cancel-all",
			Description: "Cancel every in-flight run",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				n := s.coordinator.CancelAll()
				fmt.Fprintf(s.out, "🛑 Cancelled %d run(s)\n", n)
				return false
			},
		},
		{
			Name:        "compare",
			Usage:       "<#|id> <#|id>",
			Description: "Diff the responses of two scenarios",
			Handler: func(_ context.Context, s *Session, args string) bool {
				refs := strings.Fields(args)
				if len(refs) != 2 {
					fmt.Fprintln(s.out, "❌ usage: /compare <#|id> <#|id>")
					return false
				}
				a, err := s.Resolve(refs[0])
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				b, err := s.Resolve(refs[1])
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				io.WriteString(s.out, CompareScenarios(a, b, s.registry))
				return false
			},
		},
		{
			Name:        "stats",
			Description: "Show latency and cost statistics per provider",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				WriteStats(s.out, ComputeStats(s.store.List(), s.registry), s.store.SessionTotal())
				return false
			},
		},
		{
			Name:        "cost",
			Description: "Show the session's accumulated cost",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				fmt.Fprintf(s.out, "💰 Session total: %s\n", pricing.FormatCost(s.store.SessionTotal()))
				return false
			},
		},
		{
			Name:        "clear",
			Description: "Cancel runs and clear every response and the session total",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				s.coordinator.CancelAll()
				s.store.ClearResults()
				fmt.Fprintln(s.out, "🧹 Results cleared.")
				return false
			},
		},
		{
			Name:        "keys",
			Description: "Show which providers have an API key",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				writeKeyStatus(s)
				return false
			},
		},
		{
			Name:        "key",
			Usage:       "<provider> [key]",
			Description: "Set a provider API key for this session (not saved)",
			Handler: func(_ context.Context, s *Session, args string) bool {
				providerID, secret, _ := strings.Cut(strings.TrimSpace(args), " ")
				if providerID == "" {
					fmt.Fprintln(s.out, "❌ usage: /key <provider> [key]")
					writeKeyStatus(s)
					return false
				}
				if strings.TrimSpace(secret) == "" {
					if !s.interactive {
						fmt.Fprintln(s.out, "❌ usage: /key <provider> <key>")
						return false
					}
					secret = promptSecret(s.registry, providerID)
				}
				if err := s.SetCredential(providerID, strings.TrimSpace(secret)); err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				if s.credentials.Has(providerID) {
					fmt.Fprintf(s.out, "🔑 Key set for %s\n", providerID)
				} else {
					fmt.Fprintf(s.out, "🔑 Key removed for %s\n", providerID)
				}
				return false
			},
		},
		{
			Name:        "examples",
			Description: "Add the built-in starter scenarios",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				n, err := s.LoadExamples()
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				fmt.Fprintf(s.out, "📚 Added %d starter scenario(s)\n", n)
				return false
			},
		},
		{
			Name:        "import",
			Usage:       "<path>",
			Description: "Replace all scenarios with a .json, .yaml or .toml file",
			Handler: func(_ context.Context, s *Session, args string) bool {
				if strings.TrimSpace(args) == "" {
					fmt.Fprintln(s.out, "❌ usage: /import <path>")
					return false
				}
				n, err := s.Import(strings.TrimSpace(args))
				if err != nil {
					fmt.Fprintf(s.out, "❌ Import failed: %v\n", err)
					return false
				}
				fmt.Fprintf(s.out, "📥 Imported %d scenario(s)\n", n)
				return false
			},
		},
		{
			Name:        "export",
			Usage:       "[path]",
			Description: "Save all scenarios (format from extension, default JSON)",
			Handler: func(_ context.Context, s *Session, args string) bool {
				path, err := s.Export(strings.TrimSpace(args))
				if err != nil {
					fmt.Fprintf(s.out, "❌ Export failed: %v\n", err)
					return false
				}
				fmt.Fprintf(s.out, "💾 Exported to %s\n", path)
				return false
			},
		},
		{
			Name:        "results",
			Usage:       "<path>",
			Description: "Write every scenario's run state as a JSON report",
			Handler: func(_ context.Context, s *Session, args string) bool {
				if strings.TrimSpace(args) == "" {
					fmt.Fprintln(s.out, "❌ usage: /results <path>")
					return false
				}
				if err := s.WriteResults(strings.TrimSpace(args)); err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				fmt.Fprintf(s.out, "💾 Results written to %s\n", strings.TrimSpace(args))
				return false
			},
		},
		{
			Name:        "schema",
			Description: "Print the JSON Schema of the scenario file format",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				schema, err := infra.ScenarioFileSchema()
				if err != nil {
					fmt.Fprintf(s.out, "❌ %v\n", err)
					return false
				}
				fmt.Fprintln(s.out, string(schema))
				return false
			},
		},
		{
			Name:        "quit",
			Description: "Exit the interactive session",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				fmt.Fprintln(s.out, "👋 Goodbye!")
				return true
			},
		},
		{
			Name:        "exit",
			Description: "Exit the interactive session (alias for quit)",
			Handler: func(_ context.Context, s *Session, _ string) bool {
				fmt.Fprintln(s.out, "👋 Goodbye!")
				return true
			},
		},
	}
}

// withCurrent runs fn on the selected scenario and prints its error
func withCurrent(s *Session, fn func(sc domain.Scenario) error) bool {
	sc, ok := s.Current()
	if !ok {
		fmt.Fprintln(s.out, "❌ No scenario selected. Use /add or /select first.")
		return false
	}
	if err := fn(sc); err != nil {
		fmt.Fprintf(s.out, "❌ %v\n", err)
	}
	return false
}

func writeRunError(w io.Writer, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.MissingProviders) > 0 {
		fmt.Fprintf(w, "🔑 %v\n", err)
		fmt.Fprintln(w, "💡 Set keys with /key <provider> <key> or the provider's environment variable.")
		return
	}
	fmt.Fprintf(w, "❌ %v\n", err)
}

func writeRoleHint(s *Session, role message.Role, model string) {
	if info := s.registry.DescribeRoleMapping(role, model); info.Converted {
		fmt.Fprintf(s.out, "💡 %s messages will be sent as %q to %s\n", role, info.ConvertedTo, info.ProviderName)
	}
}

func writeModelList(w io.Writer, registry *provider.Registry) {
	fmt.Fprintln(w, "🧠 Available models:")
	for _, g := range registry.GroupedModels() {
		fmt.Fprintf(w, "  %s\n", g.Label)
		for _, m := range g.Models {
			fmt.Fprintf(w, "    %-28s %s\n", m.ID, m.Label)
		}
	}
}

func writeKeyStatus(s *Session) {
	fmt.Fprintln(s.out, "🔑 API keys:")
	for _, p := range s.registry.Providers() {
		status := "missing"
		if s.credentials.Has(p.ID) {
			status = "set"
		}
		fmt.Fprintf(s.out, "  %-8s %-8s (%s)\n", p.ID, status, p.EnvVar)
	}
}

// handleSlashCommand processes commands that start with /
// Returns true if the command requests program exit, false otherwise
func handleSlashCommand(ctx context.Context, input string, s *Session) bool {
	// Check if this is just "/" - show command selector
	if strings.TrimSpace(input) == "/" {
		return showCommandSelector(ctx, s)
	}

	head, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	commandName := strings.TrimPrefix(head, "/")
	commands := getSlashCommands()

	// Find and execute the command
	for _, cmd := range commands {
		if cmd.Name == commandName {
			return cmd.Handler(ctx, s, strings.TrimSpace(args))
		}
	}

	// Command not found - show available commands
	fmt.Fprintf(s.out, "❌ Unknown command: /%s\n", commandName)
	fmt.Fprintln(s.out, "💡 Available commands:")
	for _, cmd := range commands {
		fmt.Fprintf(s.out, "  /%s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(s.out, "\n💡 Tip: Type just '/' to see an interactive command selector!")
	return false
}

// showCommandSelector shows an interactive command selector using promptui
func showCommandSelector(ctx context.Context, s *Session) bool {
	commands := getSlashCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} {{ .Usage | faint }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} {{ .Usage | faint }} - {{ .Description | faint }}",
		Selected: "{{ .Name | red | cyan }}",
		Details: `
--------- Command Details ----------
{{ "Name:" | faint }}\t{{ .Name }} {{ .Usage }}
{{ "Description:" | faint }}\t{{ .Description }}`,
	}

	searcher := func(input string, index int) bool {
		command := commands[index]
		name := strings.ReplaceAll(strings.ToLower(command.Name), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			fmt.Fprintln(s.out, "\nCancelled.")
			return false
		}
		fmt.Fprintf(s.out, "Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(ctx, s, "")
}

type modelItem struct {
	ID       string
	Label    string
	Provider string
}

// showModelSelector lets the user pick a model from the grouped registry listing
func showModelSelector(registry *provider.Registry) string {
	var items []modelItem
	for _, g := range registry.GroupedModels() {
		for _, m := range g.Models {
			items = append(items, modelItem{ID: m.ID, Label: m.Label, Provider: g.Label})
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Provider | faint }} {{ .ID | cyan }} {{ .Label | faint }}",
		Inactive: "  {{ .Provider | faint }} {{ .ID | cyan }} {{ .Label | faint }}",
		Selected: "{{ .ID | cyan }}",
	}

	searcher := func(input string, index int) bool {
		item := items[index]
		haystack := strings.ToLower(item.Provider + " " + item.ID)
		return strings.Contains(haystack, strings.ToLower(strings.TrimSpace(input)))
	}

	prompt := promptui.Select{
		Label:     "Choose a model",
		Items:     items,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return ""
	}
	return items[i].ID
}

// showScenarioSelector returns the id of the chosen scenario, or "" if cancelled
func showScenarioSelector(s *Session) string {
	list := s.store.List()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "📭 No scenarios yet.")
		return ""
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Description | cyan }} {{ .Model | faint }} {{ .State | faint }}",
		Inactive: "  {{ .Description | cyan }} {{ .Model | faint }} {{ .State | faint }}",
		Selected: "{{ .Description | cyan }}",
	}

	prompt := promptui.Select{
		Label:     "Choose a scenario",
		Items:     list,
		Templates: templates,
		Size:      10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(list[index].Description), strings.ToLower(input))
		},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return ""
	}
	return list[i].ID
}

// promptSecret reads an API key without echoing it
func promptSecret(registry *provider.Registry, providerID string) string {
	label := providerID + " API key"
	if p, ok := registry.Provider(providerID); ok && p.APIKeyLabel != "" {
		label = p.APIKeyLabel
	}
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	secret, err := prompt.Run()
	if err != nil {
		return ""
	}
	return secret
}

// StartInteractiveMode runs the readline-based REPL
func StartInteractiveMode(ctx context.Context, s *Session) {
	rlCfg := &readline.Config{
		Prompt:                 "> ",
		HistoryFile:            "",
		AutoComplete:           createAutoCompleter(),
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		HistorySearchFold:      true,
		HistoryLimit:           2000,
		FuncFilterInputRune:    filterInput,
		Stdout:                 s.out,
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Fprintf(s.out, "❌ Failed to initialize interactive mode: %v\n", err)
		fmt.Fprintln(s.out, "💡 Please use batch mode instead: promptlab -f scenarios.json -run")
		return
	}
	defer rl.Close()

	fmt.Fprintln(s.out, "🧪 promptlab: compare prompts across OpenAI, Claude and Gemini")
	fmt.Fprintln(s.out, "💬 Commands start with '/'; anything else is added as a user message to the selected scenario.")
	fmt.Fprintln(s.out, "⌨️ Tab completes commands; '/' opens the command selector; Ctrl+C cancels running requests.")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	WriteScenarioTable(s.out, s.store.List(), s.currentID())

	for {
		rl.SetPrompt(promptFor(s))
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C on an empty line cancels in-flight runs before it exits
			if len(line) == 0 {
				if n := s.coordinator.CancelAll(); n > 0 {
					continue
				}
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleSlashCommand(ctx, input, s) {
				break
			}
			continue
		}

		sc, err := s.AppendInput(input)
		if err != nil {
			fmt.Fprintf(s.out, "❌ %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "💬 %s: %d message(s). /run to send.\n", sc.Description, len(sc.DispatchableMessages()))
	}

	s.coordinator.CancelAll()
}

// promptFor shows the selected scenario in the prompt
func promptFor(s *Session) string {
	sc, ok := s.Current()
	if !ok {
		return "> "
	}
	return fmt.Sprintf("[%s] > ", sc.Description)
}

// createAutoCompleter creates an autocompletion function for readline
func createAutoCompleter() *readline.PrefixCompleter {
	commands := getSlashCommands()
	var pcItems []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		pcItems = append(pcItems, readline.PcItem("/"+cmd.Name))
	}
	pcItems = append(pcItems, readline.PcItem("/"))
	return readline.NewPrefixCompleter(pcItems...)
}

// filterInput filters input runes to handle special keys
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showInteractiveHelp(w io.Writer) {
	commands := getSlashCommands()
	fmt.Fprintln(w, "\n📚 Interactive Commands:")
	fmt.Fprintln(w, "  /                      - Show interactive command selector")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  /%-22s - %s\n", strings.TrimSpace(cmd.Name+" "+cmd.Usage), cmd.Description)
	}
	fmt.Fprintln(w, "\n🔎 Filter expressions (/list, /run-where):")
	fmt.Fprintln(w, "  fields: id description model provider temperature state messages cost tokens latency_ms error")
	fmt.Fprintln(w, "  > /list provider == \"gemini\" && state == \"failed\"")
	fmt.Fprintln(w, "  > /run-where model startsWith \"gpt-5\"")
	fmt.Fprintln(w, "\n⌨️  Enhanced Features:")
	fmt.Fprintln(w, "  Ctrl+C           - Cancel running requests (exit when nothing runs)")
	fmt.Fprintln(w, "  Ctrl+R           - Search this session's input history")
	fmt.Fprintln(w, "  Tab              - Auto-complete commands")
}
