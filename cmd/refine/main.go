package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/credentials"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/orchestration"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/strategy"
)

var (
	flagPrompt          string
	flagIterations      int
	flagStrategy        string
	flagPrimaryModel    string
	flagRefinementModel string
	flagFinalModel      string
	flagCatalogPath     string
	flagVerbose         bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "refine",
		Short: "Run a collaborative LLM refinement session from the command line",
		Long: `Refine a prompt through iterative multi-model critique and improvement.

Provider API keys are read from the environment:
  LLMREFINE_OPENAI_API_KEY     OpenAI API key (sk-...)
  LLMREFINE_ANTHROPIC_API_KEY  Anthropic API key (sk-ant-...)`,
		RunE: runRefine,
	}

	rootCmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "prompt to refine (required)")
	rootCmd.Flags().IntVarP(&flagIterations, "iterations", "n", 2, "number of critique/improvement iterations")
	rootCmd.Flags().StringVarP(&flagStrategy, "strategy", "s", strategy.CrossProviderName, "handoff strategy (crossProvider, capabilityBased, modelSpecialization)")
	rootCmd.Flags().StringVar(&flagPrimaryModel, "primary-model", "gpt-4o", "model for the initial generation")
	rootCmd.Flags().StringVar(&flagRefinementModel, "refinement-model", "", "preferred refinement model (optional)")
	rootCmd.Flags().StringVar(&flagFinalModel, "final-model", "", "model for the final review pass (optional)")
	rootCmd.Flags().StringVar(&flagCatalogPath, "catalog", "", "path to a YAML model catalog (optional)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.MarkFlagRequired("prompt")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRefine(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	v := viper.New()
	v.SetEnvPrefix("LLMREFINE")
	v.AutomaticEnv()

	reg := registry.New()
	if flagCatalogPath != "" {
		var err error
		reg, err = registry.NewFromFile(flagCatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load model catalog: %w", err)
		}
	}

	credStore := credentials.NewStore()
	seed := make(map[registry.Provider]string)
	if key := v.GetString("openai_api_key"); key != "" {
		seed[registry.ProviderOpenAI] = key
	}
	if key := v.GetString("anthropic_api_key"); key != "" {
		seed[registry.ProviderAnthropic] = key
	}
	if len(credStore.Set(seed)) == 0 {
		return fmt.Errorf("no valid provider credentials found; set LLMREFINE_OPENAI_API_KEY or LLMREFINE_ANTHROPIC_API_KEY")
	}

	generationService := generation.NewService(reg, credStore, v.GetString("openai_base_url"), v.GetString("anthropic_base_url"))
	analyzer := analysis.NewAnalyzer(generationService)
	engine := orchestration.NewEngine(orchestration.NewInMemoryStore(), generationService, analyzer, nil)

	sink := orchestration.ProgressSinkFunc(printProgress)

	selection := orchestration.ModelSelection{
		PrimaryModel:     flagPrimaryModel,
		RefinementModel:  flagRefinementModel,
		FinalReviewModel: flagFinalModel,
		HandoffStrategy:  flagStrategy,
	}

	outcome, err := engine.Start(cmd.Context(), flagPrompt, selection, flagIterations, sink)
	if err != nil {
		return err
	}

	result := outcome.Result
	if outcome.NeedsClarification {
		answers, err := collectAnswers(outcome.Questions)
		if err != nil {
			return err
		}
		result, err = engine.SubmitClarification(cmd.Context(), outcome.SessionID, answers, sink)
		if err != nil {
			return err
		}
	}

	printResult(result)
	return nil
}

// collectAnswers prompts for clarification answers on stdin
func collectAnswers(questions []analysis.ClarificationQuestion) (map[string]string, error) {
	fmt.Fprintln(os.Stderr, "\nThe prompt needs clarification before refinement can start.")
	reader := bufio.NewReader(os.Stdin)
	answers := make(map[string]string, len(questions))

	for _, q := range questions {
		fmt.Fprintf(os.Stderr, "\n%s\n> ", q.Question)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read answer: %w", err)
		}
		answers[q.ID] = strings.TrimSpace(line)
	}

	return answers, nil
}

func printProgress(event models.ProgressEvent) {
	if event.Model != "" {
		fmt.Fprintf(os.Stderr, "[%s] %s (%s)\n", event.Phase, event.Message, event.Model)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", event.Phase, event.Message)
}

func printResult(result *orchestration.Result) {
	fmt.Fprintf(os.Stderr, "\nCompleted %d of %d iterations, %d generation calls\n",
		result.CompletedIterations, result.TargetIterations, len(result.History))
	for modelID, usage := range result.Usage {
		fmt.Fprintf(os.Stderr, "  %s: %d calls\n", modelID, usage.Total)
	}
	fmt.Println(result.FinalOutput)
}
