package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/swiftcart/internal/checkout"
)

// The checkout screen is driven entirely by the machine: Start and Apply
// hand back Schedule entries, each of which becomes a tea.Tick that
// redelivers the event. Leaving the screen cancels the run, so any tick
// still in flight carries a dead run token and is dropped on arrival.

func (a *App) enterCheckout() (tea.Model, tea.Cmd) {
	if a.cart.Empty() {
		return a, a.showError("Your cart is empty.")
	}
	a.state = stateCheckout
	a.logInfo("Checkout started: %d item(s), %s", a.cart.ItemCount(), a.prices.Format(a.cart.Total()))
	return a, a.scheduleCheckout(a.machine.Start())
}

func (a *App) scheduleCheckout(schedules []checkout.Schedule) tea.Cmd {
	if len(schedules) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(schedules))
	for i, s := range schedules {
		event := s.Event
		cmds[i] = tea.Tick(s.After, func(time.Time) tea.Msg {
			return checkoutEventMsg{event: event}
		})
	}
	return tea.Batch(cmds...)
}

func (a *App) handleCheckoutEvent(msg checkoutEventMsg) (tea.Model, tea.Cmd) {
	result := a.machine.Apply(msg.event)
	if result.Done {
		a.logInfo("Order %s placed", result.OrderRef)
		// The cart clear would normally announce itself; the order
		// confirmation is the only notice a completed checkout shows.
		a.cart.Clear()
		a.cartSel = 0
		a.state = stateCart
		return a, a.showNotice(fmt.Sprintf("Order %s placed successfully!", shortRef(result.OrderRef)))
	}
	return a, a.scheduleCheckout(result.Schedule)
}

func (a *App) handleCheckoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.machine.Cancel()
		a.logInfo("Checkout cancelled")
		a.state = stateCart
		return a, a.showNotice("Checkout cancelled")
	}
	return a, nil
}

func (a *App) viewCheckout() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Checkout") + "\n\n")

	switch a.machine.Phase() {
	case checkout.PhaseComplete:
		b.WriteString(noticeStyle.Render("✓ Payment accepted") + "\n\n")
	default:
		b.WriteString(fmt.Sprintf("%s Processing payment…\n\n", a.spin.View()))
	}

	b.WriteString(a.bar.ViewAs(a.machine.Percent()) + "\n\n")
	b.WriteString(fmt.Sprintf("Charging %s for %d item(s)\n",
		badgeStyle.Render(a.prices.Format(a.cart.Total())), a.cart.ItemCount()))
	return b.String()
}

// shortRef trims an order reference to the first uuid group for display.
func shortRef(ref string) string {
	if i := strings.IndexByte(ref, '-'); i > 0 {
		return strings.ToUpper(ref[:i])
	}
	return ref
}
