package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/news"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	keys        config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{
		app:         app,
		config:      cfg,
		keys:        withDefaultBindings(cfg.Keys.Bindings),
		modifierKey: modifierKey,
	}
}

// withDefaultBindings fills unset bindings so a partial [keys.bindings]
// table cannot leave an action unreachable.
func withDefaultBindings(b config.KeyBindings) config.KeyBindings {
	def := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	def(&b.Quit, "q")
	def(&b.EditQuery, "/")
	def(&b.NextCategory, "tab")
	def(&b.PrevCategory, "shift+tab")
	def(&b.Reload, "r")
	def(&b.Open, "o")
	def(&b.OpenImage, "i")
	def(&b.Star, "s")
	def(&b.History, "h")
	def(&b.Back, "esc")
	return b
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	key := msg.String()
	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewQuery:
		return kh.app.queryInput.Focused()
	case ViewHistory:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); {
	case key == "ctrl+c":
		return kh.app, tea.Quit
	case key == "esc" || key == kh.keys.Back:
		return kh.navigateBack()
	case key == "enter":
		return kh.handleTextInputEnter()
	case kh.app.view == ViewHistory && (key == "tab" || key == "down"):
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.searchList.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewQuery:
		text := sanitizeQueryInput(kh.app.queryInput.Value())
		kh.app.queryInput.Blur()
		kh.app.view = ViewNews
		q := news.Query{Text: text, Category: news.Categories[kh.app.category].ID}
		return kh.app, kh.app.startQuery(q)

	case ViewHistory:
		if item := kh.app.searchList.SelectedItem(); item != nil {
			return kh.selectHistoryItem(item)
		}
		if items := kh.app.searchList.Items(); len(items) > 0 {
			return kh.selectHistoryItem(items[0])
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused text input. Typing in
// the history box schedules a debounced search.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewQuery:
		newInput, cmd := kh.app.queryInput.Update(msg)
		kh.app.queryInput = newInput
		return kh.app, cmd

	case ViewHistory:
		prev := kh.app.searchInput.Value()
		newInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newInput

		newVal := sanitizeQueryInput(kh.app.searchInput.Value())
		if newVal == sanitizeQueryInput(prev) {
			return kh.app, cmd
		}
		kh.app.searchSeq++
		if newVal == "" {
			return kh.app, tea.Batch(cmd, kh.app.loadRecentQueries())
		}
		seq := kh.app.searchSeq
		wait := kh.app.searchDebounce
		return kh.app, tea.Batch(cmd, tea.Tick(wait, func(time.Time) tea.Msg { return searchDebounceFireMsg{seq: seq} }))

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.keys.Quit:
		return kh.app, tea.Quit, true
	case "esc", kh.keys.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + "s":
		model, cmd := kh.enterHistoryMode()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewNews:
		return kh.handleNewsCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleNewsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.keys.EditQuery:
		model, cmd := kh.enterQueryMode()
		return model, cmd, true
	case kh.keys.NextCategory:
		return a, kh.cycleCategory(1), true
	case kh.keys.PrevCategory:
		return a, kh.cycleCategory(-1), true
	case kh.keys.Reload:
		return a, a.retry(), true
	case kh.keys.History:
		model, cmd := kh.enterHistoryMode()
		return model, cmd, true
	case "j", "down":
		a.moveCursor(1)
		return a, nil, true
	case "k", "up":
		a.moveCursor(-1)
		return a, nil, true
	case "g", "home":
		a.cursor = 0
		return a, nil, true
	case "G", "end":
		a.moveCursor(len(a.displayed()))
		return a, nil, true
	case "enter":
		if art, ok := a.selectedArticle(); ok {
			model, cmd := kh.openReader(art, ViewNews)
			return model, cmd, true
		}
		return a, nil, true
	case kh.keys.Open:
		if art, ok := a.selectedArticle(); ok {
			return a, a.openPage(art), true
		}
		return a, nil, true
	case kh.keys.OpenImage:
		if art, ok := a.selectedArticle(); ok {
			return a, a.openImage(art), true
		}
		return a, nil, true
	case kh.keys.Star:
		if art, ok := a.selectedArticle(); ok {
			return a, a.toggleStar(art), true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if a.current == nil {
		return a, nil, false
	}
	switch key {
	case kh.keys.Open:
		return a, a.openPage(*a.current), true
	case kh.keys.OpenImage:
		return a, a.openImage(*a.current), true
	case kh.keys.Star:
		return a, a.toggleStar(*a.current), true
	}
	return a, nil, false
}

// delegateToCharm lets the bubbles components handle keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewHistory:
		switch msg.String() {
		case "tab", "shift+tab", "/":
			kh.app.searchInput.Focus()
			return kh.app, nil
		case "up", "k":
			if kh.app.searchList.Index() == 0 {
				kh.app.searchInput.Focus()
				return kh.app, nil
			}
		case "enter":
			if item := kh.app.searchList.SelectedItem(); item != nil {
				return kh.selectHistoryItem(item)
			}
			return kh.app, nil
		}
		kh.app.searchList, cmd = kh.app.searchList.Update(msg)
		return kh.app, cmd
	}

	return kh.app, nil
}

func (kh *KeyHandler) cycleCategory(delta int) tea.Cmd {
	n := len(news.Categories)
	next := ((kh.app.category+delta)%n + n) % n
	q := news.Query{
		Text:     kh.app.controller.Query().Text,
		Category: news.Categories[next].ID,
	}
	return kh.app.startQuery(q)
}

func (kh *KeyHandler) enterQueryMode() (tea.Model, tea.Cmd) {
	a := kh.app
	a.previousView = a.view
	a.view = ViewQuery
	a.queryInput.SetValue(a.controller.Query().Text)
	a.queryInput.CursorEnd()
	return a, a.queryInput.Focus()
}

func (kh *KeyHandler) enterHistoryMode() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.history == nil && a.searcher == nil {
		return a, a.setStatus(MsgNoHistory, StatusWarn, statusTTL)
	}
	if a.view != ViewHistory {
		a.previousView = a.view
	}
	a.view = ViewHistory
	a.searchInput.Reset()
	a.searchList.SetItems(nil)
	a.searchSeq++
	return a, tea.Batch(
		a.searchInput.Focus(),
		a.loadRecentQueries(),
		a.setStatus(MsgSearchHistory, StatusInfo, statusTTL),
	)
}

func (kh *KeyHandler) openReader(art news.Article, from View) (tea.Model, tea.Cmd) {
	a := kh.app
	a.current = &art
	a.previousView = from
	a.view = ViewReader
	a.loadingArticle = true

	var r articleRenderer
	if tr, err := a.getRenderer(); err == nil {
		r = tr
	}
	return a, tea.Batch(a.markRead(art), renderArticle(r, art))
}

func (kh *KeyHandler) selectHistoryItem(item any) (tea.Model, tea.Cmd) {
	switch it := item.(type) {
	case resultItem:
		return kh.openReader(it.result.Article.News(), ViewHistory)
	case queryItem:
		kh.app.searchInput.Blur()
		kh.app.view = ViewNews
		kh.app.previousView = ViewNews
		return kh.app, kh.app.startQuery(it.record.Query())
	}
	return kh.app, nil
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewQuery:
		a.queryInput.Blur()
		a.view = ViewNews
	case ViewReader:
		a.current = nil
		a.loadingArticle = false
		a.view = a.previousView
		if a.view == ViewReader {
			a.view = ViewNews
		}
		if a.view == ViewHistory {
			a.previousView = ViewNews
			return a, a.searchInput.Focus()
		}
	case ViewHistory:
		if !a.searchInput.Focused() && len(a.searchList.Items()) > 0 {
			return a, a.searchInput.Focus()
		}
		a.searchInput.Blur()
		a.view = ViewNews
		a.previousView = ViewNews
	}
	return a, nil
}

// sanitizeQueryInput trims the input and drops control characters.
func sanitizeQueryInput(input string) string {
	input = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns short key hints for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	switch kh.app.view {
	case ViewNews:
		sel := kh.app.selection()
		switch sel.Kind {
		case news.ViewError:
			return []string{k.Reload + ": retry", k.EditQuery + ": search", k.NextCategory + ": category", k.Quit + ": quit"}
		case news.ViewArticles:
			return []string{
				"j/k: move",
				"enter: read",
				k.Open + ": open",
				k.OpenImage + ": image",
				k.Star + ": star",
				k.EditQuery + ": search",
				k.NextCategory + "/" + k.PrevCategory + ": category",
				k.Reload + ": reload",
				k.History + ": history",
				k.Quit + ": quit",
			}
		default:
			return []string{k.EditQuery + ": search", k.NextCategory + ": category", k.Reload + ": reload", k.Quit + ": quit"}
		}
	case ViewReader:
		return []string{"↑↓: scroll", k.Open + ": open", k.OpenImage + ": image", k.Star + ": star", k.Back + ": back"}
	case ViewQuery:
		return []string{"enter: search", "tab: complete", "esc: cancel"}
	case ViewHistory:
		return []string{"enter: select", "tab: switch focus", "esc: back"}
	}
	return nil
}
