package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// The cart screen renders straight from the cart container, so there is
// no separate view state beyond the selected row kept on App.

func (a *App) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.cart.Items()
	if a.cartSel >= len(items) {
		a.cartSel = max(0, len(items)-1)
	}

	switch msg.String() {
	case "esc", "b":
		a.state = stateProducts
		return a, nil
	case "L":
		return a.logout()
	case "up", "k":
		if a.cartSel > 0 {
			a.cartSel--
		}
		return a, nil
	case "down", "j":
		if a.cartSel < len(items)-1 {
			a.cartSel++
		}
		return a, nil
	case "+", "=":
		if len(items) == 0 {
			return a, nil
		}
		outcome := a.cart.SetQuantity(items[a.cartSel].Product.ID, items[a.cartSel].Quantity+1)
		return a, a.showNotice(outcome.Message)
	case "-", "_":
		if len(items) == 0 {
			return a, nil
		}
		outcome := a.cart.SetQuantity(items[a.cartSel].Product.ID, items[a.cartSel].Quantity-1)
		return a, a.showNotice(outcome.Message)
	case "x", "delete":
		if len(items) == 0 {
			return a, nil
		}
		outcome := a.cart.Remove(items[a.cartSel].Product.ID)
		return a, a.showNotice(outcome.Message)
	case "C":
		if a.cart.Empty() {
			return a, nil
		}
		outcome := a.cart.Clear()
		a.cartSel = 0
		return a, a.showNotice(outcome.Message)
	case "enter":
		return a.enterCheckout()
	}
	return a, nil
}

func (a *App) viewCart() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Your Cart") + "\n\n")

	items := a.cart.Items()
	if len(items) == 0 {
		b.WriteString(hintStyle.Render("Your cart is empty. Press esc to browse products.") + "\n")
		return b.String()
	}

	for i, item := range items {
		cursor := "  "
		if i == a.cartSel {
			cursor = badgeStyle.Render("▸ ")
		}
		line := fmt.Sprintf("%s%-48s ×%-3d %s", cursor,
			truncate(item.Product.Title, 48), item.Quantity,
			a.prices.Format(item.LineTotal()))
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d item(s)    Total: %s\n",
		a.cart.ItemCount(), badgeStyle.Render(a.prices.Format(a.cart.Total()))))
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
