package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/search"
	"github.com/kyleking/gh-star-scout/internal/trending"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/view"
)

// Tab selects the active view.
type Tab int

const (
	TabTrending Tab = iota
	TabStars
)

type inputMode int

const (
	inputNone inputMode = iota
	inputUsername
	inputSearch
	inputFuzzy
)

const trendingFailedMessage = "Failed to load trending data. Please try again."

// App is the root Bubble Tea model.
// View data lives in the two sessions; App copies share them.
type App struct {
	ctx     context.Context
	backend Backend

	tab      Tab
	trending *view.Session
	stars    *view.Session

	period         types.Period
	language       string
	sources        []types.Source
	trendingStatus trending.Status

	username string
	progress int
	cursor   int
	mode     inputMode
	input    textinput.Model
	spinner  spinner.Model
	insights map[string]bool

	notice string
	err    error
	width  int
	height int
	ready  bool
}

// Options configures a new App.
type Options struct {
	PageSize int
	// Username, when set, starts a star fetch on launch and opens the Stars tab
	Username string
	Period   types.Period
	Language string
}

// NewApp creates a new App talking to backend. ctx bounds every request.
func NewApp(ctx context.Context, backend Backend, opts Options) App {
	input := textinput.New()
	input.CharLimit = 256
	input.Width = 40

	period := opts.Period
	if period == "" {
		period = types.PeriodDaily
	}

	trendingSession := view.NewSession(opts.PageSize)
	trendingSession.Update(func(s view.State) view.State { return s.WithSort(types.SortRecent) })

	app := App{
		ctx:      ctx,
		backend:  backend,
		trending: trendingSession,
		stars:    view.NewSession(opts.PageSize),
		period:   period,
		language: types.NormalizeLanguage(opts.Language),
		username: strings.TrimSpace(opts.Username),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		insights: make(map[string]bool),
	}

	if app.username != "" {
		app.tab = TabStars
	}

	return app
}

// Init starts the spinner and the initial fetches.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.fetchTrending()}
	if a.username != "" {
		cmds = append(cmds, a.fetchStars(a.username))
	}

	return tea.Batch(cmds...)
}

func (a App) session() *view.Session {
	if a.tab == TabStars {
		return a.stars
	}

	return a.trending
}

func (a App) fetchTrending() tea.Cmd {
	ticket := a.trending.Begin(view.KindTrending)
	ctx, backend, period, language := a.ctx, a.backend, a.period, a.language

	return func() tea.Msg {
		return TrendingLoaded{Ticket: ticket, Result: backend.FetchTrending(ctx, period, language)}
	}
}

// fetchStars streams StarsProgress messages followed by one StarsLoaded
func (a App) fetchStars(username string) tea.Cmd {
	ticket := a.stars.Begin(view.KindStars)
	ctx, backend := a.ctx, a.backend
	ch := make(chan tea.Msg)

	return func() tea.Msg {
		go func() {
			defer close(ch)

			send := func(msg tea.Msg) {
				select {
				case ch <- msg:
				case <-ctx.Done():
				}
			}

			repos, err := backend.FetchStars(ctx, username, func(total int) {
				send(StarsProgress{Ticket: ticket, Total: total, next: ch})
			})
			send(StarsLoaded{Ticket: ticket, Username: username, Repos: repos, Err: err})
		}()

		return waitFor(ch)()
	}
}

func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}

		return msg
	}
}

func (a App) runSearch(query string) tea.Cmd {
	ticket := a.stars.Begin(view.KindSearch)
	records := a.stars.State().FullList
	ctx, backend := a.ctx, a.backend

	return func() tea.Msg {
		return SearchDone{Ticket: ticket, Query: query, Outcome: backend.Search(ctx, query, records)}
	}
}

func (a App) generateInsight(repo types.Repo) tea.Cmd {
	ctx, backend := a.ctx, a.backend

	return func() tea.Msg {
		return InsightDone{ID: repo.ID, Text: backend.Insight(ctx, repo.FullName, repo.Description)}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.mode != inputNone {
			return a.handleInputKey(msg)
		}

		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true

		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)

		return a, cmd

	case TrendingLoaded:
		applied := a.trending.Apply(msg.Ticket, func(s view.State) view.State {
			return s.WithFullList(msg.Result.Repos)
		})
		if applied {
			a.sources = msg.Result.Sources
			a.trendingStatus = msg.Result.Status

			if a.tab == TabTrending {
				a.cursor = 0
			}
		}

		return a, nil

	case StarsProgress:
		if a.stars.Accept(msg.Ticket) {
			a.progress = msg.Total
		}

		return a, waitFor(msg.next)

	case StarsLoaded:
		applied := a.stars.Apply(msg.Ticket, func(s view.State) view.State {
			return s.WithFullList(msg.Repos)
		})
		if applied {
			a.progress = 0
			a.err = msg.Err

			if msg.Err != nil {
				logging.Warn("Star fetch failed", "user", msg.Username, "error", msg.Err)
			}

			if a.tab == TabStars {
				a.cursor = 0
			}
		}

		return a, nil

	case SearchDone:
		applied := a.stars.Apply(msg.Ticket, func(s view.State) view.State {
			if msg.Outcome.Status == search.StatusSkipped {
				return s.ClearSearch()
			}

			return s.WithDisplayList(msg.Query, search.Resolve(msg.Outcome.IDs, s.FullList))
		})
		if !applied {
			return a, nil
		}

		switch {
		case msg.Outcome.Status == search.StatusUnavailable:
			a.notice = "Search is unavailable right now."
		case msg.Outcome.Status != search.StatusSkipped && len(a.stars.State().DisplayList) == 0:
			a.notice = "No repositories matched."
		default:
			a.notice = ""
		}

		a.cursor = 0

		return a, nil

	case InsightDone:
		delete(a.insights, msg.ID)

		withInsight := func(s view.State) view.State { return s.WithInsight(msg.ID, msg.Text) }
		a.trending.Update(withInsight)
		a.stars.Update(withInsight)

		return a, nil
	}

	if a.mode != inputNone {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)

		return a, cmd
	}

	return a, nil
}

func (a App) openInput(mode inputMode, placeholder, value string) (tea.Model, tea.Cmd) {
	a.mode = mode
	a.input.Placeholder = placeholder
	a.input.SetValue(value)
	a.input.CursorEnd()

	return a, a.input.Focus()
}

func (a App) closeInput() App {
	a.mode = inputNone
	a.input.Blur()
	a.input.Reset()

	return a
}

// handleInputKey processes keyboard input while the text field is focused.
func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		return a.closeInput(), nil

	case "enter":
		value := strings.TrimSpace(a.input.Value())
		mode := a.mode
		a = a.closeInput()

		return a.submit(mode, value)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	return a, cmd
}

func (a App) submit(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case inputUsername:
		if value == "" || a.stars.Pending(view.KindStars) {
			return a, nil
		}

		a.username = value
		a.err = nil
		a.notice = ""
		a.cursor = 0
		a.progress = 0
		a.stars.Update(func(s view.State) view.State { return s.WithFullList(nil) })

		return a, a.fetchStars(value)

	case inputSearch:
		if value == "" {
			a.stars.Update(view.State.ClearSearch)
			a.cursor = 0

			return a, nil
		}

		if a.stars.Pending(view.KindSearch) {
			return a, nil
		}

		if !a.backend.SemanticSearchAvailable() {
			a.notice = "No LLM provider configured; using fuzzy filter."
			return a.applyFuzzy(value), nil
		}

		a.notice = ""

		return a, a.runSearch(value)

	case inputFuzzy:
		return a.applyFuzzy(value), nil
	}

	return a, nil
}

func (a App) applyFuzzy(query string) App {
	a.stars.Update(func(s view.State) view.State {
		if query == "" {
			return s.ClearSearch()
		}

		return s.WithDisplayList(query, search.Fuzzy(query, s.FullList))
	})
	a.cursor = 0

	return a
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab", "shift+tab":
		if a.tab == TabTrending {
			a.tab = TabStars
		} else {
			a.tab = TabTrending
		}

		a.cursor = 0

		return a, nil

	case "j", "down":
		if a.cursor < len(a.session().State().Visible())-1 {
			a.cursor++
		}

		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}

		return a, nil

	case "right", "pgdown":
		a.session().Update(view.State.NextPage)
		a.cursor = 0

		return a, nil

	case "left", "pgup":
		a.session().Update(view.State.PrevPage)
		a.cursor = 0

		return a, nil

	case "i":
		return a.requestInsight()
	}

	if a.tab == TabTrending {
		return a.handleTrendingKey(key)
	}

	return a.handleStarsKey(key)
}

func (a App) handleTrendingKey(key string) (tea.Model, tea.Cmd) {
	if a.trending.Pending(view.KindTrending) {
		return a, nil
	}

	switch key {
	case "p":
		a.period = a.period.Next()
	case "l":
		a.language = types.NextLanguage(a.language)
	case "r":
	default:
		return a, nil
	}

	a.cursor = 0

	return a, a.fetchTrending()
}

func (a App) handleStarsKey(key string) (tea.Model, tea.Cmd) {
	state := a.stars.State()

	switch key {
	case "u", "enter":
		return a.openInput(inputUsername, "GitHub username", a.username)

	case "/":
		if len(state.FullList) == 0 {
			return a, nil
		}

		return a.openInput(inputSearch, "Describe what you are looking for", state.Query)

	case "f":
		if len(state.FullList) == 0 {
			return a, nil
		}

		return a.openInput(inputFuzzy, "Filter by name or description", "")

	case "esc":
		a.stars.Update(view.State.ClearSearch)
		a.notice = ""
		a.cursor = 0

	case "s":
		a.stars.Update(func(s view.State) view.State { return s.WithSort(s.Sort.Next()) })
	}

	return a, nil
}

func (a App) requestInsight() (tea.Model, tea.Cmd) {
	visible := a.session().State().Visible()
	if a.cursor >= len(visible) {
		return a, nil
	}

	repo := visible[a.cursor]
	if repo.HasInsight() || a.insights[repo.ID] {
		return a, nil
	}

	a.insights[repo.ID] = true

	return a, a.generateInsight(repo)
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// ActiveTab returns the selected tab (for testing).
func (a App) ActiveTab() Tab {
	return a.tab
}

// StarsState returns the Stars view state (for testing).
func (a App) StarsState() view.State {
	return a.stars.State()
}

// TrendingState returns the Trending view state (for testing).
func (a App) TrendingState() view.State {
	return a.trending.State()
}

func (a App) errorText() string {
	if a.err != nil {
		return errors.UserMessage(a.err)
	}

	if a.tab == TabTrending && a.trendingStatus == trending.StatusUnavailable {
		return trendingFailedMessage
	}

	return ""
}
