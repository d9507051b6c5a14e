// Package main provides the modelgate CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/modelgate/agent"
	"github.com/richinex/modelgate/cli"
	"github.com/richinex/modelgate/llm"
	"github.com/richinex/modelgate/review"
)

var (
	// Global flags
	configPath string
	provider   string
	verbose    bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "modelgate",
		Short: "Multi-provider LLM gateway with a bounded tool-using agent",
		Long: `A gateway over OpenAI, DeepSeek, Anthropic and Gemini.

Commands print JSON results. "serve" exposes the same operations over HTTP
under /aichat.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Optional YAML settings file")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, deepseek, anthropic, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show info and debug logs")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(embedCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(agentCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withRunner builds a runner from the global flags and closes it afterwards.
func withRunner(fn func(r *cli.Runner) error) error {
	r, err := cli.NewRunner(cli.Options{ConfigPath: configPath, Verbose: verbose}, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

// sampling holds the optional temperature and token flags.
type sampling struct {
	temperature float32
	maxTokens   int
}

func (s *sampling) register(cmd *cobra.Command) {
	cmd.Flags().Float32VarP(&s.temperature, "temperature", "t", 0, "Sampling temperature")
	cmd.Flags().IntVar(&s.maxTokens, "max-tokens", 0, "Maximum tokens in the answer")
}

// values returns nil for flags the user did not set.
func (s *sampling) values(cmd *cobra.Command) (*float32, *int) {
	var temp *float32
	var maxTokens *int
	if cmd.Flags().Changed("temperature") {
		temp = &s.temperature
	}
	if cmd.Flags().Changed("max-tokens") {
		maxTokens = &s.maxTokens
	}
	return temp, maxTokens
}

func chatCmd() *cobra.Command {
	var modelName, system string
	var opts sampling

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a single chat completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msgs []llm.ChatMessage
			if system != "" {
				msgs = append(msgs, llm.SystemMessage(system))
			}
			msgs = append(msgs, llm.UserMessage(args[0]))

			temp, maxTokens := opts.values(cmd)
			return withRunner(func(r *cli.Runner) error {
				return r.Chat(cmd.Context(), llm.ChatRequest{
					Provider:    provider,
					Model:       modelName,
					Messages:    msgs,
					Temperature: temp,
					MaxTokens:   maxTokens,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", llm.ModelOpenAIGPT4oMini, "Model identifier")
	cmd.Flags().StringVarP(&system, "system", "s", "", "System instruction")
	opts.register(cmd)
	return cmd
}

func embedCmd() *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "embed [text...]",
		Short: "Compute one embedding vector per input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *cli.Runner) error {
				return r.Embed(cmd.Context(), llm.EmbeddingRequest{
					Provider: provider,
					Model:    modelName,
					Input:    args,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", llm.ModelOpenAIEmbedding3Small, "Embedding model identifier")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the known models of a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *cli.Runner) error {
				return r.Models(provider)
			})
		},
	}
}

func agentCmd() *cobra.Command {
	var modelName string
	var allowlist []string
	var opts sampling

	cmd := &cobra.Command{
		Use:   "agent [prompt]",
		Short: "Run the bounded tool-using agent",
		Long: `Run the agent for a prompt. The model may call the built-in tools
(now, math, random_int, echo, extract_title, http_fetch) for a small number
of steps. http_fetch only reaches hosts in the allowlist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			temp, maxTokens := opts.values(cmd)
			return withRunner(func(r *cli.Runner) error {
				return r.Agent(cmd.Context(), agent.Request{
					Provider:     provider,
					Model:        modelName,
					Prompt:       args[0],
					URLAllowlist: allowlist,
					Temperature:  temp,
					MaxTokens:    maxTokens,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", llm.ModelOpenAIGPT4oMini, "Model identifier")
	cmd.Flags().StringSliceVarP(&allowlist, "allow", "a", nil, "Allowed host suffix for http_fetch (repeatable)")
	opts.register(cmd)
	return cmd
}

func reviewCmd() *cobra.Command {
	var modelName, language, guidelines string
	var goals []string
	var opts sampling

	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Review a source file and print structured findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			temp, maxTokens := opts.values(cmd)
			return withRunner(func(r *cli.Runner) error {
				return r.Review(cmd.Context(), args[0], review.Request{
					Provider:    provider,
					Model:       modelName,
					Language:    language,
					Goals:       goals,
					Guidelines:  guidelines,
					Temperature: temp,
					MaxTokens:   maxTokens,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", llm.ModelOpenAIGPT4oMini, "Model identifier")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint (defaults to the file extension)")
	cmd.Flags().StringSliceVarP(&goals, "goal", "g", nil, "Review goal (repeatable, replaces the defaults)")
	cmd.Flags().StringVar(&guidelines, "guidelines", "", "Additional review guidelines")
	opts.register(cmd)
	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *cli.Runner) error {
				r.Tools(verboseTools)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "params", "V", false, "Show tool parameters")
	return cmd
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent audited agent runs (requires AUDIT_DB)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *cli.Runner) error {
				return r.Runs(cmd.Context(), limit)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(r *cli.Runner) error {
				return r.Serve(cmd.Context())
			})
		},
	}
}
