// Package tui implements the interactive sign-in screens: the credential
// entry form and the second-factor code form.
//
// Both screens are Bubble Tea models. All service work runs as tea.Cmd
// functions that deliver exactly one typed message back onto the event loop;
// user input is disabled while a submission is in flight, and every async
// message carries the attempt generation it belongs to so results of a
// superseded attempt are dropped.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitelinkhq/sitelink/pkg/auth"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/sitesync"
)

// CredentialFetcher is the saved-credentials capability behind the autofill
// affordance. creds.Keychain satisfies it.
type CredentialFetcher interface {
	Available() bool
	Fetch(host string) (creds.SavedCredential, error)
}

// Deps are the collaborators the screens delegate to. Auth and Sync are
// required; the rest may be nil.
type Deps struct {
	Auth     auth.Authenticator
	Sync     sitesync.Syncer
	Autofill CredentialFetcher
	Track    func(event string)

	// StoreToken persists hosted-account token material on a Direct
	// outcome.
	StoreToken func(username, token string) error
}

// Alert and error copy.
const (
	msgFillAllFields       = "Please fill out all the fields."
	msgMistypedURL         = "The site address appears to be mistyped. Check it and try again."
	msgSiteAddressRequired = "Enter a site address before using a saved login."
)

// Form field indices, in return-key chaining order.
const (
	fieldUsername = iota
	fieldPassword
	fieldSite
	fieldCount
)

// Messages
type (
	signInOutcomeMsg struct {
		attempt int
		outcome auth.Outcome
	}
	syncDoneMsg struct {
		attempt int
		err     error
	}
	autofillResultMsg struct {
		attempt int
		cred    creds.SavedCredential
		err     error
	}
)

// Form is the credential entry screen.
type Form struct {
	deps   Deps
	record *creds.Record

	username textinput.Model
	password textinput.Model
	site     textinput.Model
	focus    int

	spinner spinner.Model
	loading bool

	alert         string // dismissible alert text; blocks input while set
	errText       string // standard error display (remote failures)
	statusMessage string // transient progress slot; cleared on every outcome

	// attempt is the submission generation. Async results stamped with an
	// older attempt are ignored, which covers both resubmission and
	// late callbacks against a screen the user has left.
	attempt int

	completed bool
	syncErr   error

	width  int
	height int
}

// NewForm creates the credential entry screen around a record. The record may
// arrive pre-populated; this screen only handles self-hosted accounts, so
// IsHostedAccount is forced off.
func NewForm(record *creds.Record, deps Deps) *Form {
	record.IsHostedAccount = false

	f := &Form{
		deps:   deps,
		record: record,
	}

	f.username = newInput("Username", 100)
	f.username.SetValue(record.Username)
	f.password = newInput("Password", 100)
	f.password.EchoMode = textinput.EchoPassword
	f.password.SetValue(record.Password)
	f.site = newInput("example.com", 200)
	f.site.SetValue(record.SiteAddress)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = focusedLabelStyle
	f.spinner = s

	f.username.Focus()
	return f
}

func newInput(placeholder string, charLimit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		f.height = msg.Height
		return f, nil

	case spinner.TickMsg:
		if !f.loading {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case tea.KeyMsg:
		return f.handleKey(msg)

	case signInOutcomeMsg:
		return f.applyOutcome(msg)

	case syncDoneMsg:
		if msg.attempt != f.attempt {
			return f, nil
		}
		f.loading = false
		f.syncErr = msg.err
		f.completed = true
		return f, tea.Quit

	case autofillResultMsg:
		return f.applyAutofill(msg)
	}

	return f, nil
}

func (f *Form) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return f, tea.Quit
	}

	// A pending alert swallows the next key to dismiss itself.
	if f.alert != "" {
		f.alert = ""
		return f, nil
	}

	// Inputs and back-navigation are disabled while submitting.
	if f.loading {
		return f, nil
	}

	switch msg.String() {
	case "esc":
		return f, tea.Quit

	case "tab", "down":
		f.setFocus((f.focus + 1) % fieldCount)
		return f, textinput.Blink

	case "shift+tab", "up":
		f.setFocus((f.focus - 1 + fieldCount) % fieldCount)
		return f, textinput.Blink

	case "enter":
		// Return-key chaining: username → password → site; from the
		// site field, return submits if the form is submittable.
		switch f.focus {
		case fieldUsername:
			f.setFocus(fieldPassword)
			return f, textinput.Blink
		case fieldPassword:
			f.setFocus(fieldSite)
			return f, textinput.Blink
		case fieldSite:
			if f.submittable() {
				return f, f.validateForm()
			}
			return f, nil
		}

	case "ctrl+s":
		return f, f.validateForm()

	case "ctrl+r":
		return f, f.startAutofill()
	}

	// Forward everything else to the focused input, then mirror the edit
	// into the record. Keystrokes only refresh derived state; no network
	// or validation side effects here.
	var cmd tea.Cmd
	switch f.focus {
	case fieldUsername:
		f.username, cmd = f.username.Update(msg)
	case fieldPassword:
		f.password, cmd = f.password.Update(msg)
	case fieldSite:
		f.site, cmd = f.site.Update(msg)
	}
	f.syncRecord()
	return f, cmd
}

// syncRecord mirrors the current input text into the record: username and
// password trimmed, site address normalized to a bare host.
func (f *Form) syncRecord() {
	f.record.Username = strings.TrimSpace(f.username.Value())
	f.record.Password = strings.TrimSpace(f.password.Value())
	f.record.SiteAddress = creds.NormalizeBaseSiteURL(f.site.Value())
}

// submittable is the derived form state: not loading and all fields present.
func (f *Form) submittable() bool {
	return !f.loading && creds.AllFieldsPopulated(f.record)
}

// forgotPasswordVisible derives the forgot-password affordance state.
func (f *Form) forgotPasswordVisible() bool {
	return f.record.SiteAddress != "" && !f.loading
}

func (f *Form) setFocus(i int) {
	f.blurAll()
	f.focus = i
	switch i {
	case fieldUsername:
		f.username.Focus()
	case fieldPassword:
		f.password.Focus()
	case fieldSite:
		f.site.Focus()
	}
}

func (f *Form) blurAll() {
	f.username.Blur()
	f.password.Blur()
	f.site.Blur()
}

// setStatusMessage updates the transient status line. No current flow writes
// non-empty text here; the slot exists for progress copy.
func (f *Form) setStatusMessage(s string) {
	f.statusMessage = s
}

// validateForm is the submission gate: end editing, check the record, and
// either surface an alert or enter the loading state and start the sign-in.
// First failure wins and leaves the form editable.
func (f *Form) validateForm() tea.Cmd {
	f.blurAll()

	if !creds.AllFieldsPopulated(f.record) {
		f.alert = msgFillAllFields
		return nil
	}
	if !creds.SiteAddressLooksValid(f.record) {
		f.alert = msgMistypedURL
		return nil
	}

	f.errText = ""
	f.loading = true
	f.attempt++

	attempt := f.attempt
	record := f.record
	authSvc := f.deps.Auth
	return tea.Batch(
		f.spinner.Tick,
		func() tea.Msg {
			return signInOutcomeMsg{attempt, authSvc.SignIn(context.Background(), record)}
		},
	)
}

func (f *Form) applyOutcome(msg signInOutcomeMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != f.attempt || !f.loading {
		return f, nil // stale result from a superseded attempt
	}

	// Every outcome path clears the status line.
	f.setStatusMessage("")

	out := msg.outcome
	switch out.Kind {
	case auth.OutcomeFailed:
		f.loading = false
		f.errText = out.Err.Error()
		f.setFocus(fieldUsername)
		return f, textinput.Blink

	case auth.OutcomeNeedsSecondFactor:
		f.loading = false
		if f.deps.Track != nil {
			f.deps.Track("two_factor_requested")
		}
		record := f.record
		record.AwaitingSecondFactor = true
		f.record = nil // ownership moves to the second-factor screen
		next := NewTwoFactor(record, f.deps)
		return next, next.Init()

	case auth.OutcomeDirect:
		// Hosted-account success. Not reachable from this screen in
		// practice (IsHostedAccount is forced off) but the contract is
		// honored: persist the token and dismiss.
		if f.deps.StoreToken != nil {
			_ = f.deps.StoreToken(out.Username, out.Token)
		}
		f.loading = false
		f.completed = true
		return f, tea.Quit

	case auth.OutcomeSelfHosted:
		// Stay in the loading state until the site sync completes.
		attempt := f.attempt
		syncSvc := f.deps.Sync
		o := out
		return f, func() tea.Msg {
			err := syncSvc.SyncSite(context.Background(), o.Username, o.Password, o.XMLRPCEndpoint, o.Options)
			return syncDoneMsg{attempt, err}
		}
	}

	return f, nil
}

// startAutofill fetches saved credentials for the entered site. The fetch is
// never issued without a site address.
func (f *Form) startAutofill() tea.Cmd {
	if f.deps.Autofill == nil || !f.deps.Autofill.Available() {
		return nil
	}
	if f.record.SiteAddress == "" {
		f.alert = msgSiteAddressRequired
		return nil
	}

	f.attempt++
	attempt := f.attempt
	host := f.record.SiteAddress
	fetcher := f.deps.Autofill
	return func() tea.Msg {
		cred, err := fetcher.Fetch(host)
		return autofillResultMsg{attempt, cred, err}
	}
}

func (f *Form) applyAutofill(msg autofillResultMsg) (tea.Model, tea.Cmd) {
	if msg.attempt != f.attempt || f.loading {
		return f, nil
	}
	if msg.err != nil {
		// Cancelled or nothing saved: the capability reports no result
		// and the form is left untouched.
		return f, nil
	}

	f.username.SetValue(msg.cred.Username)
	f.password.SetValue(msg.cred.Password)
	f.syncRecord()

	// A successful autofill submits immediately.
	return f, f.validateForm()
}

// View implements tea.Model.
func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sign in to your self-hosted site"))
	b.WriteString("\n\n")

	if f.statusMessage != "" {
		b.WriteString(statusStyle.Render(f.statusMessage))
		b.WriteString("\n\n")
	}

	b.WriteString(f.renderField("Username", f.username, fieldUsername))
	b.WriteString(f.renderField("Password", f.password, fieldPassword))
	b.WriteString(f.renderField("Site address", f.site, fieldSite))

	if f.loading {
		b.WriteString("\n" + f.spinner.View() + statusStyle.Render(" Signing in..."))
		b.WriteString("\n")
	}

	if f.errText != "" {
		b.WriteString("\n" + errStyle.Render("✗ "+f.errText) + "\n")
	}

	if f.forgotPasswordVisible() {
		b.WriteString("\n" + helpStyle.Render("Forgot your password? "+creds.LostPasswordURL(f.record.SiteAddress)) + "\n")
	}

	if f.alert != "" {
		b.WriteString("\n" + alertStyle.Render(f.alert) + "\n")
		b.WriteString(helpStyle.Render("press any key to dismiss"))
		b.WriteString("\n")
	}

	b.WriteString("\n" + f.helpLine())
	return b.String()
}

func (f *Form) renderField(label string, input textinput.Model, idx int) string {
	style := labelStyle
	if f.focus == idx && !f.loading {
		style = focusedLabelStyle
	}
	return style.Render(label) + "\n" + input.View() + "\n"
}

func (f *Form) helpLine() string {
	if f.loading {
		return helpStyle.Render("signing in, please wait")
	}
	parts := []string{"tab: next field", "enter: submit"}
	if f.deps.Autofill != nil && f.deps.Autofill.Available() {
		parts = append(parts, "ctrl+r: saved login")
	}
	parts = append(parts, "esc: cancel")
	return helpStyle.Render(strings.Join(parts, " • "))
}

// WasCompleted reports whether the final model of a finished program
// represents a successful sign-in.
func WasCompleted(m tea.Model) bool {
	switch v := m.(type) {
	case *Form:
		return v.completed
	case *TwoFactor:
		return v.completed
	}
	return false
}

// SyncError returns the (unobserved-by-the-form) site sync error, if any, so
// the command layer can report it.
func SyncError(m tea.Model) error {
	switch v := m.(type) {
	case *Form:
		return v.syncErr
	case *TwoFactor:
		return v.syncErr
	}
	return nil
}
