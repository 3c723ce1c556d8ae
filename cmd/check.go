package cmd

import (
	"context"
	"fmt"
	"strings"

	"factlens/pkg/analysis"
	"factlens/pkg/config"
	"factlens/pkg/llm"
	"factlens/pkg/locale"
	"factlens/pkg/ui/checkui"

	"github.com/spf13/cobra"
)

var (
	claimText string
	checkLang string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [claim]",
	Short: "Fact-check a claim from the terminal",
	Long:  "Loads FactLens configuration, connects to the model provider, and checks one claim or starts an interactive session.",
	Run: func(cmd *cobra.Command, args []string) {
		claim := resolveClaim(args)

		lang := strings.TrimSpace(strings.ToLower(checkLang))
		entry, ok := locale.Get(lang)
		if !ok {
			fmt.Printf("unsupported language %q (supported: %s)\n", checkLang, strings.Join(locale.Codes(), ", "))
			return
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		provider, err := llm.New(cfg)
		if err != nil {
			fmt.Printf("failed to initialize model provider: %v\n", err)
			return
		}

		ctx := context.Background()
		if err := provider.Health(ctx); err != nil {
			fmt.Printf("provider health check failed: %v\n", err)
			return
		}

		analyzer := analysis.New(provider, nil)
		analyzeFn := func(ctx context.Context, content string) analysis.Result {
			return analyzer.Analyze(ctx, analysis.Request{Language: entry.Code, Content: content})
		}
		info := checkui.RuntimeInfo{LangLabel: entry.Label, Model: cfg.OpenAI.Model}

		if claim != "" {
			if err := checkui.RunOneShot(ctx, analyzeFn, claim, info); err != nil {
				fmt.Printf("check failed: %v\n", err)
			}
			return
		}

		if err := checkui.RunInteractive(ctx, analyzeFn, info); err != nil {
			fmt.Printf("check session failed: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&claimText, "claim", "c", "", "claim text to check")
	checkCmd.Flags().StringVarP(&checkLang, "lang", "l", locale.DefaultCode, "verdict language (uz, ru, en)")
}

func resolveClaim(args []string) string {
	if value := strings.TrimSpace(claimText); value != "" {
		return value
	}

	if len(args) == 0 {
		return ""
	}

	value := strings.TrimSpace(strings.Join(args, " "))
	if value == "" {
		return ""
	}

	return value
}
