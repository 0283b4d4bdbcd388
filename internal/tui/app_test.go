package tui

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/swiftcart/internal/cart"
	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/checkout"
	"github.com/example/swiftcart/internal/config"
	"github.com/example/swiftcart/internal/logbook"
	"github.com/example/swiftcart/internal/session"
	"github.com/example/swiftcart/internal/storage"
)

const productsPayload = `[
	{"id":1,"title":"Backpack","price":109.95,"description":"A backpack.","category":"men's clothing","image":"","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"T-Shirt","price":22.30,"description":"A shirt.","category":"men's clothing","image":"","rating":{"rate":4.1,"count":259}}
]`

const electronicsPayload = `[
	{"id":9,"title":"Hard Drive","price":64.00,"description":"Storage.","category":"electronics","image":"","rating":{"rate":3.3,"count":203}}
]`

func newStoreServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsPayload))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["electronics","men's clothing"]`))
	})
	mux.HandleFunc("/products/category/electronics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(electronicsPayload))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"test-token"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestApp(t *testing.T, serverURL string) *App {
	t.Helper()
	home := t.TempDir()
	if err := config.InitDataDir(home); err != nil {
		t.Fatalf("init data dir: %v", err)
	}
	t.Setenv(config.EnvAPIURL, serverURL)
	cfg, err := config.NewConfig(home)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		t.Fatalf("open logbook: %v", err)
	}
	client := catalog.NewClient(cfg.BaseURL(), cfg.Timeout())
	crt := cart.New(storage.NewCartStore(cfg.CartPath()), book)
	sess := session.New(storage.NewTokenStore(cfg.TokenPath()), client.Login, book)
	return NewApp(cfg, client, sess, crt, book)
}

// runCommands pumps messages until the command chain settles.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		// Spinner ticks reschedule themselves forever; the pump only
		// cares about messages that settle.
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func TestUnresolvedSessionStaysOnBoot(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	if app.state != stateBoot {
		t.Fatalf("expected boot state before session resolves, got %d", app.state)
	}
	view := app.View()
	if !strings.Contains(view, "Restoring session") {
		t.Fatalf("boot view should show the restore spinner, got:\n%s", view)
	}
}

func TestAnonymousSessionRoutesToLogin(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	model, _ := app.Update(sessionResolvedMsg{})
	app = model.(*App)
	if app.state != stateLogin {
		t.Fatalf("expected login state for anonymous session, got %d", app.state)
	}
	if !app.session.Resolved() || app.session.Authenticated() {
		t.Fatalf("empty marker should resolve anonymous, got %s", app.session.Status())
	}
}

func TestRestoreCommandLeavesStateToUpdate(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	if err := storage.NewTokenStore(app.cfg.TokenPath()).Put("restored"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	saved := []storage.CartRecord{{Product: catalog.Product{ID: 1, Title: "Backpack"}, Quantity: 2}}
	if err := storage.NewCartStore(app.cfg.CartPath()).Save(saved); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	// The restore command runs on its own goroutine while View renders,
	// so it must only read: every container mutation happens in Update.
	msg := app.resolveSession()()
	if app.session.Resolved() {
		t.Fatal("restore command must not mutate the session")
	}
	if !app.cart.Empty() {
		t.Fatal("restore command must not mutate the cart")
	}

	model, _ := app.Update(msg)
	app = model.(*App)
	if !app.session.Authenticated() {
		t.Fatalf("expected authenticated after update applies the marker, got %s", app.session.Status())
	}
	if got := app.cart.ItemCount(); got != 2 {
		t.Fatalf("expected restored cart quantity 2, got %d", got)
	}
}

func TestAuthenticatedSessionRoutesToProducts(t *testing.T) {
	server := newStoreServer(t)
	app := newTestApp(t, server.URL)
	if err := storage.NewTokenStore(app.cfg.TokenPath()).Put("restored"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app = runCommands(t, app, app.Init())
	if app.state != stateProducts {
		t.Fatalf("expected products state for authenticated session, got %d", app.state)
	}
	if got := len(app.products.list.Items()); got != 2 {
		t.Fatalf("expected 2 products in the list, got %d", got)
	}
	if len(app.products.categories) != 2 {
		t.Fatalf("expected categories to load, got %v", app.products.categories)
	}
}

func TestStaleCategoryResponseIsDropped(t *testing.T) {
	server := newStoreServer(t)
	app := newTestApp(t, server.URL)
	if err := storage.NewTokenStore(app.cfg.TokenPath()).Put("restored"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app = runCommands(t, app, app.Init())

	// Switch to electronics, then deliver a leftover response for the
	// all-products request that was abandoned by the switch.
	cmd := app.fetchProducts("electronics")
	stale := productsMsg{key: "", products: nil, err: nil}
	model, _ := app.Update(stale)
	app = model.(*App)
	if got := len(app.products.list.Items()); got != 2 {
		t.Fatalf("stale response must not touch the list, got %d items", got)
	}

	app = runCommands(t, app, cmd)
	items := app.products.list.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 electronics product, got %d", len(items))
	}
	if got := items[0].(productItem).product.Title; got != "Hard Drive" {
		t.Fatalf("unexpected product after category switch: %s", got)
	}
}

func TestNoticeDismissIgnoresStaleTick(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	app.setNotice("first", false)
	firstSeq := app.noticeSeq
	app.setNotice("second", false)

	model, _ := app.Update(noticeExpiredMsg{seq: firstSeq})
	app = model.(*App)
	if app.notice != "second" {
		t.Fatalf("stale dismiss cleared the wrong notice, have %q", app.notice)
	}

	model, _ = app.Update(noticeExpiredMsg{seq: app.noticeSeq})
	app = model.(*App)
	if app.notice != "" {
		t.Fatalf("current dismiss should clear the notice, have %q", app.notice)
	}
}

func TestCheckoutCompletionClearsCartOnce(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	app.cart.Add(catalog.Product{ID: 1, Title: "Backpack"})
	app.state = stateCart

	model, _ := app.enterCheckout()
	app = model.(*App)
	if app.state != stateCheckout {
		t.Fatalf("expected checkout state, got %d", app.state)
	}
	if !app.machine.Active() {
		t.Fatal("machine should be processing after checkout starts")
	}

	// The first run always carries token 1, so the hard transitions can
	// be delivered directly instead of waiting out the timers.
	model, _ = app.Update(checkoutEventMsg{event: checkout.Event{Run: 1, Kind: checkout.EventComplete}})
	app = model.(*App)
	if app.machine.Progress() != 100 {
		t.Fatalf("completion must force progress to 100, got %d", app.machine.Progress())
	}

	model, _ = app.Update(checkoutEventMsg{event: checkout.Event{Run: 1, Kind: checkout.EventSettle}})
	app = model.(*App)
	if app.state != stateCart {
		t.Fatalf("settle should return to the cart screen, got %d", app.state)
	}
	if !app.cart.Empty() {
		t.Fatal("settle should clear the cart")
	}
	if !strings.Contains(app.notice, "placed successfully") {
		t.Fatalf("expected an order confirmation notice, got %q", app.notice)
	}

	// A duplicate settle is stale and must not announce a second order.
	app.notice = ""
	model, _ = app.Update(checkoutEventMsg{event: checkout.Event{Run: 1, Kind: checkout.EventSettle}})
	app = model.(*App)
	if app.notice != "" {
		t.Fatalf("duplicate settle produced a notice: %q", app.notice)
	}
}

func TestLeavingCheckoutSilencesPendingEvents(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	app.cart.Add(catalog.Product{ID: 1, Title: "Backpack"})
	app.state = stateCart

	model, _ := app.enterCheckout()
	app = model.(*App)

	model, _ = app.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	if app.state != stateCart {
		t.Fatalf("esc should return to the cart, got %d", app.state)
	}
	if app.machine.Active() {
		t.Fatal("cancel should idle the machine")
	}

	// Events from the cancelled run arrive late and must change nothing.
	app.notice = ""
	model, _ = app.Update(checkoutEventMsg{event: checkout.Event{Run: 1, Kind: checkout.EventComplete}})
	app = model.(*App)
	model, _ = app.Update(checkoutEventMsg{event: checkout.Event{Run: 1, Kind: checkout.EventSettle}})
	app = model.(*App)
	if app.machine.Active() || app.cart.Empty() || app.notice != "" {
		t.Fatal("cancelled run leaked a transition into the UI")
	}
}

func TestDetailNotFoundRedirectsToProducts(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	app.state = stateDetail
	app.detail = detailView{id: 7, loading: true}

	notFound := fmt.Errorf("%w: get product 7", catalog.ErrNotFound)
	model, _ := app.Update(productMsg{id: 7, err: notFound})
	app = model.(*App)
	if app.state != stateProducts {
		t.Fatalf("missing product should route back to the listing, got %d", app.state)
	}
	if app.notice != "Product not found." {
		t.Fatalf("expected not-found notice, got %q", app.notice)
	}
}

func TestDetailTransportFailureRedirectsToProducts(t *testing.T) {
	app := newTestApp(t, newStoreServer(t).URL)
	app.state = stateDetail
	app.detail = detailView{id: 7, loading: true}

	transport := &catalog.TransportError{Op: "get product 7", Err: errors.New("connection refused")}
	model, _ := app.Update(productMsg{id: 7, err: transport})
	app = model.(*App)
	if app.state != stateProducts {
		t.Fatalf("unreachable product should route back to the listing, got %d", app.state)
	}
	if app.notice != "Could not load that product." {
		t.Fatalf("expected load-failure notice, got %q", app.notice)
	}
}

func TestFailedCategoryFetchEmptiesList(t *testing.T) {
	server := newStoreServer(t)
	app := newTestApp(t, server.URL)
	if err := storage.NewTokenStore(app.cfg.TokenPath()).Put("restored"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app = runCommands(t, app, app.Init())
	if got := len(app.products.list.Items()); got != 2 {
		t.Fatalf("expected 2 products before the switch, got %d", got)
	}

	// Switch categories, then fail the fetch: the stale items from the
	// previous category must not remain under the new label.
	app.fetchProducts("electronics")
	failed := productsMsg{key: "electronics", err: errors.New("boom")}
	model, _ := app.Update(failed)
	app = model.(*App)
	if got := len(app.products.list.Items()); got != 0 {
		t.Fatalf("failed fetch should empty the list, got %d items", got)
	}
	if app.notice == "" {
		t.Fatal("failed fetch should surface a notice")
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	server := newStoreServer(t)
	app := newTestApp(t, server.URL)
	if err := storage.NewTokenStore(app.cfg.TokenPath()).Put("restored"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app = runCommands(t, app, app.Init())

	model, _ := app.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}})
	app = model.(*App)
	if app.state != stateLogin {
		t.Fatalf("logout should land on login, got %d", app.state)
	}
	if app.session.Authenticated() {
		t.Fatal("session should be anonymous after logout")
	}
}
