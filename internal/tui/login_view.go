package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/swiftcart/internal/catalog"
)

// loginView holds the credentials form. The password field is masked;
// tab moves between the two inputs and enter submits.
type loginView struct {
	username textinput.Model
	password textinput.Model
	focusPwd bool
	busy     bool
	errLine  string
}

func newLoginView() loginView {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Width = 32

	pwd := textinput.New()
	pwd.Placeholder = "password"
	pwd.CharLimit = 64
	pwd.Width = 32
	pwd.EchoMode = textinput.EchoPassword
	pwd.EchoCharacter = '•'

	return loginView{username: user, password: pwd}
}

func (v *loginView) focus() tea.Cmd {
	v.busy = false
	v.errLine = ""
	v.focusPwd = false
	v.password.Blur()
	return v.username.Focus()
}

func (v *loginView) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.username, cmd = v.username.Update(msg)
	cmds = append(cmds, cmd)
	v.password, cmd = v.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.login.busy {
		return a, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		a.login.focusPwd = !a.login.focusPwd
		if a.login.focusPwd {
			a.login.username.Blur()
			return a, a.login.password.Focus()
		}
		a.login.password.Blur()
		return a, a.login.username.Focus()

	case "enter":
		username := strings.TrimSpace(a.login.username.Value())
		password := a.login.password.Value()
		if username == "" || password == "" {
			a.login.errLine = "Both fields are required."
			return a, nil
		}
		a.login.busy = true
		a.login.errLine = ""
		return a, tea.Batch(a.submitLogin(username, password), a.spin.Tick)
	}

	return a, a.login.update(msg)
}

// submitLogin runs the token exchange off the UI loop. The command never
// touches session state; the result message does, inside Update.
func (a *App) submitLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := a.session.Exchange(context.Background(), catalog.Credentials{
			Username: username,
			Password: password,
		})
		return loginResultMsg{token: token, err: err}
	}
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	a.login.busy = false
	if msg.err != nil {
		a.logWarn("Login failed: %v", msg.err)
		if errors.Is(msg.err, catalog.ErrAuthFailed) {
			a.login.errLine = "Login failed. Check your username and password."
		} else {
			a.login.errLine = "Could not reach the store. Please try again."
		}
		a.login.password.SetValue("")
		return a, nil
	}
	a.session.Resolve(msg.token)
	a.logInfo("Logged in as %s", a.login.username.Value())
	return a.enterProducts()
}

func (a *App) viewLogin() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Sign in") + "\n\n")
	b.WriteString("Username\n" + a.login.username.View() + "\n\n")
	b.WriteString("Password\n" + a.login.password.View() + "\n")
	if a.login.busy {
		b.WriteString(fmt.Sprintf("\n%s Signing in…\n", a.spin.View()))
	}
	if a.login.errLine != "" {
		b.WriteString("\n" + errTextStyle.Render(a.login.errLine) + "\n")
	}
	return b.String()
}
