package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/media"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/storage"
)

// History is the local record of seen articles and recent queries.
type History interface {
	search.ArticleSource
	SaveArticles(articles []news.Article) ([]*storage.Article, error)
	MarkArticleRead(id string, read bool) error
	ToggleStarred(id string) (bool, error)
	RecordQuery(q news.Query) error
	RecentQueries() ([]storage.QueryRecord, error)
}

// Opener hands URLs to external programs.
type Opener interface {
	OpenPage(rawURL string) error
	OpenImage(rawURL string) error
}

// Options wires the App to its collaborators. Only Fetcher is required;
// without History the app runs with history, stars and search disabled.
type Options struct {
	Fetcher  news.Fetcher
	History  History
	Searcher search.Searcher
	Opener   Opener
	Query    news.Query
}

const defaultSearchDebounce = 200 * time.Millisecond

type App struct {
	config     *config.Config
	controller *news.Controller
	history    History
	searcher   search.Searcher
	opener     Opener
	keyHandler *KeyHandler

	spinner     spinner.Model
	queryInput  textinput.Model
	searchInput textinput.Model
	searchList  list.Model
	viewport    viewport.Model

	view         View
	previousView View
	initial      news.Query
	category     int
	cursor       int
	current      *news.Article
	starred      map[string]bool
	read         map[string]bool

	searchSeq      int
	searchDebounce time.Duration

	status     string
	statusKind StatusKind
	statusSeq  int

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	loadingArticle  bool
}

func NewApp(cfg *config.Config, opts Options) *App {
	ApplyTheme(cfg.UI.Colors)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(SpinnerStyle),
	)

	qi := textinput.New()
	qi.Placeholder = "Search news (empty for top stories)…"
	qi.Prompt = "› "
	qi.CharLimit = 200
	qi.ShowSuggestions = true

	si := textinput.New()
	si.Placeholder = "Search saved articles…"
	si.Prompt = "› "

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› history"
	searchList.SetShowStatusBar(false)
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)

	app := &App{
		config:         cfg,
		controller:     news.NewController(opts.Fetcher, cfg.API.Timeout),
		history:        opts.History,
		searcher:       opts.Searcher,
		opener:         opts.Opener,
		spinner:        sp,
		queryInput:     qi,
		searchInput:    si,
		searchList:     searchList,
		viewport:       viewport.New(0, 0),
		view:           ViewNews,
		previousView:   ViewNews,
		initial:        opts.Query,
		category:       news.CategoryIndex(opts.Query.Category),
		starred:        make(map[string]bool),
		read:           make(map[string]bool),
		searchDebounce: defaultSearchDebounce,
	}
	if app.opener == nil {
		app.opener = media.NewLauncher(cfg)
	}
	if app.searcher == nil && app.history != nil {
		app.searcher = search.NewEngine(app.history)
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Init starts the first fetch with the query the app was opened with.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startQuery(a.initial),
		a.loadRecentQueries(),
	)
}

// startQuery begins a new fetch cycle. Any fetch still in flight becomes
// stale and its result is dropped on arrival.
func (a *App) startQuery(q news.Query) tea.Cmd {
	req := a.controller.Begin(q)
	return a.track(req)
}

// retry re-runs the last query, or the initial one when nothing ran yet.
func (a *App) retry() tea.Cmd {
	if !a.controller.Started() {
		return a.startQuery(a.initial)
	}
	req := a.controller.Retry()
	return a.track(req)
}

func (a *App) track(req news.Request) tea.Cmd {
	a.cursor = 0
	a.category = news.CategoryIndex(req.Query.Category)
	return tea.Batch(a.fetchCmd(req), a.spinner.Tick)
}

// selection is the view chosen for the current fetch state.
func (a *App) selection() news.Selection {
	return news.Select(a.controller.State())
}

// displayed returns the articles on screen in cursor order.
func (a *App) displayed() []news.Article {
	sel := a.selection()
	if sel.Kind != news.ViewArticles {
		return nil
	}
	return sel.Tiers.All()
}

func (a *App) selectedArticle() (news.Article, bool) {
	arts := a.displayed()
	if a.cursor < 0 || a.cursor >= len(arts) {
		return news.Article{}, false
	}
	return arts[a.cursor], true
}

func (a *App) moveCursor(delta int) {
	n := len(a.displayed())
	if n == 0 {
		a.cursor = 0
		return
	}
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= n {
		a.cursor = n - 1
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3

		listHeight := msg.Height - 8
		if listHeight < 5 {
			listHeight = 5
		}
		a.searchList.SetSize(msg.Width, listHeight)

		inputWidth := msg.Width - 8
		if inputWidth < 20 {
			inputWidth = msg.Width
		}
		a.queryInput.Width = inputWidth
		a.searchInput.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.controller.State().Loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case fetchDoneMsg:
		if !a.controller.Commit(msg.outcome) {
			return a, nil
		}
		a.cursor = 0
		st := a.controller.State()
		if st.Phase == news.PhaseLoaded {
			return a, a.persistCmd(st.Query, st.Articles)
		}
		return a, nil

	case historySavedMsg:
		if msg.err != nil {
			return a, a.setStatus(msg.err.Error(), StatusWarn, statusTTL)
		}
		for _, rec := range msg.records {
			a.starred[rec.ID] = rec.Starred
			a.read[rec.ID] = rec.Read
		}
		a.applySuggestions(msg.recent)
		if len(msg.records) > 0 {
			return a, a.setStatus(MsgHistorySummary(len(msg.records), msg.docCount), StatusInfo, statusTTL)
		}
		return a, nil

	case recentQueriesMsg:
		a.applySuggestions(msg.recent)
		if a.view == ViewHistory && a.searchInput.Value() == "" {
			a.setHistoryItems(queryItems(msg.recent))
		}
		return a, nil

	case articleRenderedMsg:
		if a.view == ViewReader {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
		}
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq != a.searchSeq || a.view != ViewHistory {
			return a, nil
		}
		return a, a.performSearch(a.searchInput.Value(), msg.seq)

	case searchResultsMsg:
		if a.view != ViewHistory || msg.seq != a.searchSeq {
			return a, nil
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = resultItem{result: r}
		}
		a.setHistoryItems(items)
		if len(items) == 0 {
			return a, a.setStatus(MsgNoResults, StatusInfo, statusTTL)
		}
		return a, a.setStatus(MsgResultsCount(len(items)), StatusInfo, statusTTL)

	case starToggledMsg:
		if msg.err != nil {
			return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)
		}
		a.starred[msg.id] = msg.starred
		if msg.starred {
			return a, a.setStatus(MsgStarred, StatusSuccess, statusTTL)
		}
		return a, a.setStatus(MsgUnstarred, StatusInfo, statusTTL)

	case openedMsg:
		if msg.err != nil {
			return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)
		}
		return a, a.setStatus(msg.status, StatusSuccess, statusTTL)

	case statusClearMsg:
		a.clearStatus(msg.seq)
		return a, nil

	case errorMsg:
		return a, a.setStatus(msg.err.Error(), StatusError, statusTTL)
	}

	switch a.view {
	case ViewReader:
		switch msg.(type) {
		case tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	case ViewHistory:
		newList, cmd := a.searchList.Update(msg)
		a.searchList = newList
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) applySuggestions(recent []storage.QueryRecord) {
	if recent == nil {
		return
	}
	seen := make(map[string]bool, len(recent))
	suggestions := make([]string, 0, len(recent))
	for _, r := range recent {
		if r.Text == "" || seen[r.Text] {
			continue
		}
		seen[r.Text] = true
		suggestions = append(suggestions, r.Text)
	}
	a.queryInput.SetSuggestions(suggestions)
}

func (a *App) setHistoryItems(items []list.Item) {
	a.searchList.SetItems(items)
	if len(items) > 0 {
		a.searchList.Select(0)
	}
}

func (a *App) View() string {
	var content string
	contentHeight := a.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch a.view {
	case ViewNews:
		content = a.renderNews(contentHeight)
	case ViewQuery:
		content = renderCentered(a.width, contentHeight, lipgloss.JoinVertical(
			lipgloss.Center,
			TitleStyle.Render("› search news"),
			"",
			renderInputFrame(a.queryInput.View(), a.queryInput.Focused(), a.queryInput.Width),
			"",
			renderMuted("Category: "+news.Categories[a.category].Label),
			renderHelp("Enter: search • Tab: complete • Esc: cancel"),
		))
	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, contentHeight, renderMuted("Loading article…"))
		} else {
			content = a.viewport.View()
		}
	case ViewHistory:
		content = a.renderHistory(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		ContentWrapper(a.width, contentHeight).Render(content),
		renderSeparator(a.width-1),
		a.statusBar(),
	)
}

func (a *App) renderHistory(height int) string {
	header := "› search history"
	helpText := "Type to search • Tab: results • Esc: back"
	if !a.searchInput.Focused() {
		if len(a.searchList.Items()) > 0 {
			helpText = "↑↓: navigate • Enter: select • Tab: search box • Esc: back"
		} else {
			helpText = MsgNoResults + " • Tab: search box • Esc: back"
		}
	}

	body := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render(header),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderMuted(helpText),
		"",
		a.searchList.View(),
	)
	return ContentWrapper(a.width, height).Render(body)
}

func (a *App) statusBar() string {
	if a.status != "" {
		return StatusBarStyle.Width(a.width).Render(a.statusKind.style().Render(a.status))
	}
	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return StatusBarStyle.Width(a.width).Render(truncateEnd(joinHelp(commands), a.width-2))
}

type fetchDoneMsg struct {
	outcome news.Outcome
}

type historySavedMsg struct {
	records  []*storage.Article
	recent   []storage.QueryRecord
	docCount int
	err      error
}

type recentQueriesMsg struct {
	recent []storage.QueryRecord
}

type articleRenderedMsg struct {
	content string
}

type searchDebounceFireMsg struct {
	seq int
}

type searchResultsMsg struct {
	seq     int
	results []*search.Result
}

type starToggledMsg struct {
	id      string
	starred bool
	err     error
}

type openedMsg struct {
	status string
	err    error
}

type errorMsg struct {
	err error
}
