package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/swiftcart/internal/catalog"
)

// detailView shows a single product fetched by id. The fetch is fresh
// even when the listing already had the product, so the screen reflects
// the remote record.
type detailView struct {
	id      int
	loading bool
	product catalog.Product
}

// enterDetail navigates to the detail screen and starts the fetch. A
// response for a different id than the one on screen is ignored.
func (a *App) enterDetail(id int) (tea.Model, tea.Cmd) {
	a.state = stateDetail
	a.detail = detailView{id: id, loading: true}
	return a, tea.Batch(a.fetchProduct(id), a.spin.Tick)
}

func (a *App) fetchProduct(id int) tea.Cmd {
	return func() tea.Msg {
		product, err := a.catalog.Product(context.Background(), id)
		return productMsg{id: id, product: product, err: err}
	}
}

func (a *App) handleProductDetail(msg productMsg) (tea.Model, tea.Cmd) {
	if a.state != stateDetail || msg.id != a.detail.id {
		return a, nil
	}
	if msg.err != nil {
		// A missing or unreachable product sends the user back to the
		// listing with a notice rather than a dead screen.
		a.logWarn("Product %d unavailable: %v", msg.id, msg.err)
		notice := "Could not load that product."
		if errors.Is(msg.err, catalog.ErrNotFound) {
			notice = "Product not found."
		}
		a.state = stateProducts
		return a, a.showError(notice)
	}
	a.detail.loading = false
	a.detail.product = msg.product
	return a, nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		a.state = stateProducts
		return a, nil
	case "c":
		a.state = stateCart
		a.cartSel = 0
		return a, nil
	case "a":
		if a.detail.loading {
			return a, nil
		}
		outcome := a.cart.Add(a.detail.product)
		return a, a.showNotice(outcome.Message)
	}
	return a, nil
}

func (a *App) viewDetail() string {
	if a.detail.loading {
		return fmt.Sprintf("%s Loading product…", a.spin.View())
	}
	p := a.detail.product

	var b strings.Builder
	b.WriteString(headerStyle.Render(p.Title) + "\n\n")
	b.WriteString(fmt.Sprintf("%s    %s    %.1f★ (%d ratings)\n\n",
		badgeStyle.Render(a.prices.Format(p.Price)),
		hintStyle.Render(p.Category),
		p.Rating.Rate, p.Rating.Count))
	desc := lipgloss.NewStyle().Width(max(40, a.width-10)).Render(p.Description)
	b.WriteString(desc + "\n")
	return b.String()
}
