// internal/tui/app.go
//
// This is the main TUI for swiftcart. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Session gating lives here: protected screens render only for a
// resolved, authenticated session; the login screen only for a resolved,
// anonymous one. While the session is unresolved the app shows a neutral
// spinner and never redirects.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/swiftcart/internal/cart"
	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/checkout"
	"github.com/example/swiftcart/internal/config"
	"github.com/example/swiftcart/internal/currency"
	"github.com/example/swiftcart/internal/logbook"
	"github.com/example/swiftcart/internal/session"
)

// appState represents which "screen" we're on.
type appState int

const (
	stateBoot     appState = iota // session restore in progress
	stateLogin                    // public screen: credentials form
	stateProducts                 // protected: catalog listing
	stateDetail                   // protected: one product
	stateCart                     // protected: cart review
	stateCheckout                 // protected: simulated payment
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50"))
	errTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Messages delivered back to Update from commands.

type sessionResolvedMsg struct {
	token string
	items []cart.Item
}

type loginResultMsg struct {
	token string
	err   error
}

type productsMsg struct {
	key      string // category the request was issued for; "" = all
	products []catalog.Product
	err      error
}

type categoriesMsg struct {
	categories []string
	err        error
}

type productMsg struct {
	id      int
	product catalog.Product
	err     error
}

type checkoutEventMsg struct {
	event checkout.Event
}

type noticeExpiredMsg struct {
	seq int
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	cfg     *config.Config
	catalog *catalog.Client
	session *session.Session
	cart    *cart.Cart
	machine *checkout.Machine
	logbook *logbook.Logbook
	prices  currency.Formatter

	login    loginView
	products productsView
	detail   detailView
	cartSel  int // selected line on the cart screen

	spin spinner.Model
	bar  progress.Model

	// Transient notice: seq guards a stale dismiss tick against
	// clearing a newer notice.
	notice    string
	noticeErr bool
	noticeSeq int

	width  int
	height int
}

// NewApp wires the state containers into the application model. The
// containers are constructed once in main and injected here; the TUI
// owns no persistence of its own.
func NewApp(cfg *config.Config, client *catalog.Client, sess *session.Session, crt *cart.Cart, book *logbook.Logbook) *App {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	bar := progress.New(progress.WithDefaultGradient())

	app := &App{
		state:   stateBoot,
		cfg:     cfg,
		catalog: client,
		session: sess,
		cart:    crt,
		machine: checkout.NewMachine(),
		logbook: book,
		prices:  currency.NewFormatter(cfg.CurrencyStyle()),
		spin:    spin,
		bar:     bar,
	}
	app.login = newLoginView()
	app.products = newProductsView()
	return app
}

// Init is called once when the program starts: restore the cart and
// resolve the session before any gated screen renders.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.resolveSession(), a.spin.Tick)
}

// resolveSession restores persisted state off the UI loop. The command
// only reads; the message carries what it found and Update, which
// bubbletea serializes against View, applies it to the containers.
func (a *App) resolveSession() tea.Cmd {
	return func() tea.Msg {
		return sessionResolvedMsg{
			token: a.session.ReadToken(),
			items: a.cart.ReadSnapshot(),
		}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.products.setSize(max(20, msg.Width-6), max(8, msg.Height-12))
		a.bar.Width = max(20, min(60, msg.Width-10))
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case sessionResolvedMsg:
		a.cart.Restore(msg.items)
		a.session.Resolve(msg.token)
		a.logInfo("Session resolved: %s", a.session.Status())
		return a.route()

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case categoriesMsg:
		if msg.err != nil {
			a.logError("Categories fetch failed: %v", msg.err)
			return a, a.showError("Failed to load categories.")
		}
		a.products.setCategories(msg.categories)
		return a, nil

	case productsMsg:
		return a.handleProducts(msg)

	case productMsg:
		return a.handleProductDetail(msg)

	case checkoutEventMsg:
		return a.handleCheckoutEvent(msg)

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
			a.noticeErr = false
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.updateActiveView(msg)
}

// route sends a resolved session to the screen its status allows. The
// gate is re-checked on every navigation, so a logout from any protected
// screen lands back on login.
func (a *App) route() (tea.Model, tea.Cmd) {
	if !a.session.Resolved() {
		a.state = stateBoot
		return a, nil
	}
	if !a.session.Authenticated() {
		a.state = stateLogin
		return a, a.login.focus()
	}
	return a.enterProducts()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ctrl+c always quits; a running checkout is torn down first so no
	// timer callback outlives the screen.
	if key == "ctrl+c" {
		a.machine.Cancel()
		return a, tea.Quit
	}

	switch a.state {
	case stateBoot:
		return a, nil
	case stateLogin:
		return a.handleLoginKey(msg)
	case stateProducts:
		return a.handleProductsKey(msg)
	case stateDetail:
		return a.handleDetailKey(msg)
	case stateCart:
		return a.handleCartKey(msg)
	case stateCheckout:
		return a.handleCheckoutKey(msg)
	}
	return a, nil
}

func (a *App) updateActiveView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case stateLogin:
		return a.login.update(msg)
	case stateProducts:
		return a.products.update(msg)
	}
	return nil
}

// logout clears the session from any protected screen.
func (a *App) logout() (tea.Model, tea.Cmd) {
	a.machine.Cancel()
	a.session.Logout()
	a.logInfo("Logged out")
	a.state = stateLogin
	return a, tea.Batch(a.login.focus(), a.showNotice("Logged out"))
}

// --- transient notices ------------------------------------------------

// showNotice displays a short-lived status message and schedules its
// dismissal. An error notice only differs in styling.
func (a *App) showNotice(message string) tea.Cmd {
	return a.setNotice(message, false)
}

func (a *App) showError(message string) tea.Cmd {
	return a.setNotice(message, true)
}

func (a *App) setNotice(message string, isErr bool) tea.Cmd {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	a.notice = message
	a.noticeErr = isErr
	a.noticeSeq++
	seq := a.noticeSeq
	return tea.Tick(a.cfg.NoticeDuration(), func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// --- rendering --------------------------------------------------------

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	var content string
	switch a.state {
	case stateBoot:
		content = fmt.Sprintf("%s Restoring session…", a.spin.View())
	case stateLogin:
		content = a.viewLogin()
	case stateProducts:
		content = a.viewProducts()
	case stateDetail:
		content = a.viewDetail()
	case stateCart:
		content = a.viewCart()
	case stateCheckout:
		content = a.viewCheckout()
	}

	box := boxStyle.Width(max(40, width-2)).Render(content)
	sections := []string{a.renderHeader(), box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	brand := headerStyle.Render("⛁ SWIFT CART")
	parts := []string{brand}
	if a.session.Authenticated() {
		parts = append(parts, badgeStyle.Render(fmt.Sprintf("Cart (%d)", a.cart.ItemCount())))
	}
	parts = append(parts, hintStyle.Render(a.session.Status().String()))
	return strings.Join(parts, "  ")
}

func (a *App) renderFooter() string {
	if a.notice != "" {
		if a.noticeErr {
			return errTextStyle.Render("✗ " + a.notice)
		}
		return noticeStyle.Render("✓ " + a.notice)
	}
	return hintStyle.Render(a.keyHints())
}

func (a *App) keyHints() string {
	switch a.state {
	case stateLogin:
		return "tab → switch field    enter → sign in    ctrl+c → quit"
	case stateProducts:
		return "enter → details    a → add to cart    c → cart    tab → category    / → search    L → logout    q → quit"
	case stateDetail:
		return "a → add to cart    esc → back    c → cart"
	case stateCart:
		return "+/- → quantity    x → remove    C → clear    enter → checkout    esc → back"
	case stateCheckout:
		return "esc → cancel"
	}
	return ""
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	head := badgeStyle.Render("LOG")
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

// --- logbook shims ----------------------------------------------------

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}
