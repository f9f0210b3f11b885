package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jdevries/workbridge/pkg/match"
)

const (
	optionRefine = "\x00refine"
	optionSkip   = "\x00skip"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	crossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	splashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

const splash = `
     ___T_     workbridge
    | o o |   /
    |__-__|
    /| []|\
  ()/|___|\()
     |_|_|
     /_|_\
`

// Terminal is the interactive UI implementation.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

func (t *Terminal) Splash() {
	fmt.Fprintln(t.out, splashStyle.Render(splash))
}

func (t *Terminal) Divider() {
	fmt.Fprintln(t.out, strings.Repeat("=", 30))
}

func (t *Terminal) ShowUnit(description, date string, hours float64) {
	fmt.Fprintf(t.out, "%s %s\n", labelStyle.Render("Description:"), description)
	fmt.Fprintf(t.out, "%s %s\n", labelStyle.Render("Date:"), date)
	fmt.Fprintf(t.out, "%s %s\n", labelStyle.Render("Hours spent:"), strconv.FormatFloat(hours, 'f', -1, 64))
}

func (t *Terminal) OK(msg string) {
	fmt.Fprintln(t.out, okStyle.Render("✓ "+msg))
}

func (t *Terminal) Cross(msg string) {
	fmt.Fprintln(t.out, crossStyle.Render("✘ "+msg))
}

func (t *Terminal) Warn(msg string) {
	fmt.Fprintln(t.out, warnStyle.Render(msg))
}

func (t *Terminal) ConfirmMatch(query, candidate string) (bool, error) {
	return t.Confirm(fmt.Sprintf("Matched %q to %q. Is that correct?", query, candidate))
}

func (t *Terminal) Disambiguate(query string, results []match.Result) (Answer, error) {
	options := make([]huh.Option[string], 0, len(results)+2)
	for _, r := range results {
		label := fmt.Sprintf("%s (%d)", r.Candidate, r.Score)
		options = append(options, huh.NewOption(label, r.Candidate))
	}
	options = append(options,
		huh.NewOption("Search with a different query", optionRefine),
		huh.NewOption("Skip this entry", optionSkip),
	)

	var choice string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("No conclusive match for %q. Best candidates:", query)).
			Options(options...).
			Value(&choice),
	))
	if err := t.run(form); err != nil {
		return Answer{}, err
	}

	switch choice {
	case optionRefine:
		q, err := t.AskQuery()
		if err != nil {
			return Answer{}, err
		}
		if q == "" {
			return Answer{Skip: true}, nil
		}
		return Answer{Query: q}, nil
	case optionSkip:
		return Answer{Skip: true}, nil
	default:
		return Answer{Candidate: choice}, nil
	}
}

func (t *Terminal) AskQuery() (string, error) {
	var query string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Search for a FreshBooks project").
			Value(&query),
	))
	if err := t.run(form); err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

func (t *Terminal) Confirm(message string) (bool, error) {
	var answer bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	))
	if err := t.run(form); err != nil {
		return false, err
	}
	return answer, nil
}

func (t *Terminal) Days(defaultDays int) (int, error) {
	var raw string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("How many days to go back?").
			Placeholder(strconv.Itoa(defaultDays)).
			Value(&raw),
	))
	if err := t.run(form); err != nil {
		return 0, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		t.Warn(fmt.Sprintf("That is not a number of days, assuming %d.", defaultDays))
		return defaultDays, nil
	}
	return days, nil
}

func (t *Terminal) run(form *huh.Form) error {
	form = form.WithInput(t.in).WithOutput(t.out)
	// Accessible mode for non-TTY input keeps prompts scriptable.
	if f, ok := t.in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrInterrupted
		}
		return err
	}
	return nil
}
