// Package checkui renders an interactive terminal front-end for running
// fact checks without a Telegram account.
package checkui

import (
	"context"
	"fmt"

	"factlens/pkg/analysis"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AnalyzeFunc runs a fact check on one claim. It follows the analyzer
// contract: failures come back inside the result, never as a panic.
type AnalyzeFunc func(ctx context.Context, content string) analysis.Result

// RuntimeInfo carries display-only metadata for the header line.
type RuntimeInfo struct {
	LangLabel string
	Model     string
}

// RunInteractive starts a REPL-style session: type a claim, get a verdict.
func RunInteractive(ctx context.Context, analyzeFn AnalyzeFunc, info RuntimeInfo) error {
	model := newModel(ctx, analyzeFn, modeInteractive, "", info)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return err
	}

	fmt.Println(renderGoodbyeBanner())
	return nil
}

// RunOneShot checks a single claim, prints the verdict card, and exits.
func RunOneShot(ctx context.Context, analyzeFn AnalyzeFunc, claim string, info RuntimeInfo) error {
	model := newModel(ctx, analyzeFn, modeOneShot, claim, info)
	program := tea.NewProgram(model)
	_, err := program.Run()
	return err
}

func renderGoodbyeBanner() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color("24")).
		Padding(1, 2)

	return style.Render("🔎 FactLens signing off")
}
