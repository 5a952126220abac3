package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitelinkhq/sitelink/pkg/auth"
	"github.com/sitelinkhq/sitelink/pkg/creds"
)

type verifyOutcomeMsg struct {
	attempt int
	outcome auth.Outcome
}

// TwoFactor is the verification-code screen. It takes over ownership of the
// credential record from the login form.
type TwoFactor struct {
	deps   Deps
	record *creds.Record

	code    textinput.Model
	spinner spinner.Model
	loading bool
	errText string

	attempt   int
	completed bool
	syncErr   error
}

// NewTwoFactor creates the verification-code screen around a record whose
// sign-in reported a second-factor challenge.
func NewTwoFactor(record *creds.Record, deps Deps) *TwoFactor {
	code := newInput("Verification code", 10)
	code.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = focusedLabelStyle

	return &TwoFactor{
		deps:    deps,
		record:  record,
		code:    code,
		spinner: s,
	}
}

// Init implements tea.Model.
func (t *TwoFactor) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (t *TwoFactor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !t.loading {
			return t, nil
		}
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return t, cmd

	case tea.KeyMsg:
		return t.handleKey(msg)

	case verifyOutcomeMsg:
		return t.applyOutcome(msg)

	case syncDoneMsg:
		if msg.attempt != t.attempt {
			return t, nil
		}
		t.loading = false
		t.syncErr = msg.err
		t.completed = true
		return t, tea.Quit
	}

	return t, nil
}

func (t *TwoFactor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return t, tea.Quit
	}
	if t.loading {
		return t, nil
	}

	switch msg.String() {
	case "esc":
		return t, tea.Quit
	case "enter":
		return t, t.submit()
	}

	var cmd tea.Cmd
	t.code, cmd = t.code.Update(msg)
	return t, cmd
}

func (t *TwoFactor) submit() tea.Cmd {
	code := strings.TrimSpace(t.code.Value())
	if code == "" {
		return nil
	}

	t.errText = ""
	t.loading = true
	t.attempt++

	attempt := t.attempt
	record := t.record
	authSvc := t.deps.Auth
	return tea.Batch(
		t.spinner.Tick,
		func() tea.Msg {
			return verifyOutcomeMsg{attempt, authSvc.VerifySecondFactor(context.Background(), record, code)}
		},
	)
}

func (t *TwoFactor) applyOutcome(msg verifyOutcomeMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != t.attempt || !t.loading {
		return t, nil
	}

	out := msg.outcome
	switch out.Kind {
	case auth.OutcomeFailed:
		t.loading = false
		t.errText = out.Err.Error()
		t.code.SetValue("")
		t.code.Focus()
		return t, textinput.Blink

	case auth.OutcomeNeedsSecondFactor:
		// The code was not accepted.
		t.loading = false
		t.errText = "That verification code was not accepted."
		t.code.SetValue("")
		t.code.Focus()
		return t, textinput.Blink

	case auth.OutcomeDirect:
		if t.deps.StoreToken != nil {
			_ = t.deps.StoreToken(out.Username, out.Token)
		}
		t.loading = false
		t.completed = true
		return t, tea.Quit

	case auth.OutcomeSelfHosted:
		attempt := t.attempt
		syncSvc := t.deps.Sync
		o := out
		return t, func() tea.Msg {
			err := syncSvc.SyncSite(context.Background(), o.Username, o.Password, o.XMLRPCEndpoint, o.Options)
			return syncDoneMsg{attempt, err}
		}
	}

	return t, nil
}

// View implements tea.Model.
func (t *TwoFactor) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Two-factor verification"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Enter the verification code from your authenticator app."))
	b.WriteString("\n\n")
	b.WriteString(t.code.View())
	b.WriteString("\n")

	if t.loading {
		b.WriteString("\n" + t.spinner.View() + statusStyle.Render(" Verifying..."))
		b.WriteString("\n")
	}
	if t.errText != "" {
		b.WriteString("\n" + errStyle.Render("✗ "+t.errText) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter: verify • esc: cancel"))
	return b.String()
}
