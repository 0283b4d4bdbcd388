package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/currency"
)

const allCategories = "All"

// productItem adapts a catalog product to the bubbles list.
type productItem struct {
	product catalog.Product
	price   string
}

func (i productItem) Title() string { return i.product.Title }

func (i productItem) Description() string {
	return fmt.Sprintf("%s · %s · %.1f★ (%d)",
		i.price, i.product.Category, i.product.Rating.Rate, i.product.Rating.Count)
}

func (i productItem) FilterValue() string { return i.product.Title }

// productsView is the catalog listing: a list widget fed by the remote
// catalog, a category cycle, and a title search.
//
// activeKey is the category of the most recent request ("" means all
// products). Responses carry the key they were issued for; anything
// else is a leftover from an abandoned switch and is dropped.
type productsView struct {
	list       list.Model
	search     textinput.Model
	searching  bool
	loading    bool
	categories []string // without the synthetic "All" entry
	catIdx     int      // 0 = All, 1.. indexes categories
	activeKey  string
	all        []catalog.Product // unfiltered result for activeKey
}

func newProductsView() productsView {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 60, 14)
	l.Title = "Products"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	search := textinput.New()
	search.Placeholder = "search products"
	search.CharLimit = 64
	search.Width = 32

	return productsView{list: l, search: search}
}

func (v *productsView) setSize(width, height int) {
	v.list.SetSize(width, height)
}

func (v *productsView) setCategories(categories []string) {
	v.categories = categories
}

// categoryLabel names the active category for display.
func (v *productsView) categoryLabel() string {
	if v.catIdx == 0 {
		return allCategories
	}
	return v.categories[v.catIdx-1]
}

// cycleCategory advances the category selection and returns the new
// request key ("" for all products).
func (v *productsView) cycleCategory(step int) string {
	count := len(v.categories) + 1
	v.catIdx = (v.catIdx + step + count) % count
	if v.catIdx == 0 {
		return ""
	}
	return v.categories[v.catIdx-1]
}

// apply installs a fetched product set and re-runs the search filter.
func (v *productsView) apply(products []catalog.Product, format currency.Formatter) {
	v.all = products
	v.refilter(format)
}

func (v *productsView) refilter(format currency.Formatter) {
	needle := strings.ToLower(strings.TrimSpace(v.search.Value()))
	items := make([]list.Item, 0, len(v.all))
	for _, p := range v.all {
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		items = append(items, productItem{product: p, price: format.Format(p.Price)})
	}
	v.list.SetItems(items)
}

func (v *productsView) selected() (catalog.Product, bool) {
	item, ok := v.list.SelectedItem().(productItem)
	if !ok {
		return catalog.Product{}, false
	}
	return item.product, true
}

func (v *productsView) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	cmds = append(cmds, cmd)
	v.search, cmd = v.search.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// enterProducts switches to the listing and refreshes it. Categories are
// fetched once; product fetches are keyed so late arrivals for other
// categories are ignored.
func (a *App) enterProducts() (tea.Model, tea.Cmd) {
	a.state = stateProducts
	a.products.loading = true
	cmds := []tea.Cmd{a.fetchProducts(a.products.activeKey), a.spin.Tick}
	if len(a.products.categories) == 0 {
		cmds = append(cmds, a.fetchCategories())
	}
	return a, tea.Batch(cmds...)
}

func (a *App) fetchProducts(key string) tea.Cmd {
	a.products.activeKey = key
	return func() tea.Msg {
		ctx := context.Background()
		var (
			products []catalog.Product
			err      error
		)
		if key == "" {
			products, err = a.catalog.Products(ctx)
		} else {
			products, err = a.catalog.ProductsByCategory(ctx, key)
		}
		return productsMsg{key: key, products: products, err: err}
	}
}

func (a *App) fetchCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := a.catalog.Categories(context.Background())
		return categoriesMsg{categories: categories, err: err}
	}
}

func (a *App) handleProducts(msg productsMsg) (tea.Model, tea.Cmd) {
	if msg.key != a.products.activeKey {
		// Stale response from a category abandoned mid-flight.
		return a, nil
	}
	a.products.loading = false
	if msg.err != nil {
		// The list may still hold the previous category's items; empty it
		// so it cannot disagree with the category label.
		a.products.apply(nil, a.prices)
		a.logError("Product fetch failed: %v", msg.err)
		return a, a.showError("Failed to load products. Press r to retry.")
	}
	a.products.apply(msg.products, a.prices)
	return a, nil
}

func (a *App) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.products.searching {
		switch key {
		case "enter", "esc":
			a.products.searching = false
			a.products.search.Blur()
			if key == "esc" {
				a.products.search.SetValue("")
			}
			a.products.refilter(a.prices)
			return a, nil
		}
		var cmd tea.Cmd
		a.products.search, cmd = a.products.search.Update(msg)
		a.products.refilter(a.prices)
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "L":
		return a.logout()
	case "/":
		a.products.searching = true
		return a, a.products.search.Focus()
	case "tab", "]":
		return a, a.switchCategory(1)
	case "shift+tab", "[":
		return a, a.switchCategory(-1)
	case "r":
		a.products.loading = true
		return a, tea.Batch(a.fetchProducts(a.products.activeKey), a.spin.Tick)
	case "a":
		if product, ok := a.products.selected(); ok {
			outcome := a.cart.Add(product)
			return a, a.showNotice(outcome.Message)
		}
		return a, nil
	case "c":
		a.state = stateCart
		a.cartSel = 0
		return a, nil
	case "enter":
		if product, ok := a.products.selected(); ok {
			return a.enterDetail(product.ID)
		}
		return a, nil
	}

	return a, a.products.update(msg)
}

func (a *App) switchCategory(step int) tea.Cmd {
	key := a.products.cycleCategory(step)
	a.products.loading = true
	return tea.Batch(a.fetchProducts(key), a.spin.Tick)
}

func (a *App) viewProducts() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Category: %s", badgeStyle.Render(a.products.categoryLabel())))
	if a.products.searching || a.products.search.Value() != "" {
		b.WriteString("    Search: " + a.products.search.View())
	}
	b.WriteString("\n")
	if a.products.loading {
		b.WriteString(fmt.Sprintf("\n%s Loading products…\n", a.spin.View()))
		return b.String()
	}
	if len(a.products.list.Items()) == 0 {
		b.WriteString("\n" + hintStyle.Render("No products match.") + "\n")
		return b.String()
	}
	b.WriteString(a.products.list.View())
	return b.String()
}
