package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/gh-star-scout/internal/formatter"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/view"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	sections := []string{a.renderTabs(), a.renderHeader()}

	if a.mode != inputNone {
		sections = append(sections, a.input.View())
	}

	if text := a.errorText(); text != "" {
		sections = append(sections, ErrorStyle.Width(a.width).Render("Error: "+text))
	}

	if a.notice != "" {
		sections = append(sections, Muted.Render(a.notice))
	}

	sections = append(sections, a.renderList())

	if a.tab == TabTrending && len(a.sources) > 0 {
		sections = append(sections, renderSources(a.sources))
	}

	sections = append(sections, a.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderTabs() string {
	labels := []struct {
		tab   Tab
		label string
	}{
		{TabTrending, "Trending"},
		{TabStars, "My Stars"},
	}

	rendered := make([]string, 0, len(labels))
	for _, l := range labels {
		style := InactiveTab
		if l.tab == a.tab {
			style = ActiveTab
		}

		rendered = append(rendered, style.Render(l.label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (a App) renderHeader() string {
	if a.tab == TabTrending {
		header := fmt.Sprintf("%s · %s", a.period, a.language)
		if a.trending.Pending(view.KindTrending) {
			header += " " + a.spinner.View() + " searching the web for trending repositories..."
		}

		return StatusBarText.Render(header)
	}

	if a.username == "" {
		return StatusBarText.Render("Press u to enter a GitHub username")
	}

	summary := a.stars.State().Summary()
	header := fmt.Sprintf("@%s · %d total stars · %s", a.username, summary.Total, summary.Sort.Label())

	if summary.Query != "" {
		header += fmt.Sprintf(" · %d matching %q", summary.Shown, summary.Query)
	}

	switch {
	case a.stars.Pending(view.KindStars):
		header += fmt.Sprintf(" %s fetched %d...", a.spinner.View(), a.progress)
	case a.stars.Pending(view.KindSearch):
		header += " " + a.spinner.View() + " searching..."
	}

	return StatusBarText.Render(header)
}

func (a App) renderList() string {
	state := a.session().State()
	visible := state.Visible()

	if len(visible) == 0 {
		if a.session().Pending(view.KindStars) || a.session().Pending(view.KindTrending) {
			return ""
		}

		return Muted.Render("No repositories to show.")
	}

	offset := (state.Page - 1) * state.PageSize()

	var b strings.Builder
	for i, repo := range visible {
		b.WriteString(a.renderRepo(offset+i+1, repo, i == a.cursor))
		b.WriteString("\n")
	}

	b.WriteString(Muted.Render(fmt.Sprintf("Page %d of %d", state.Page, state.PageCount())))

	return b.String()
}

func (a App) renderRepo(rank int, repo types.Repo, selected bool) string {
	nameStyle := NormalItem
	if selected {
		nameStyle = SelectedItem
	}

	line := fmt.Sprintf("%3d.", rank) + nameStyle.Render(repo.FullName) + " " + StarCount.Render(fmt.Sprintf("★ %s", formatter.CompactCount(repo.Stars)))
	if repo.Language != "" {
		line += LanguageBadge.Render(repo.Language)
	}

	lines := []string{line}

	if repo.Description != "" {
		lines = append(lines, Description.Render(formatter.Truncate(repo.Description, a.width-4)))
	}

	switch {
	case repo.HasInsight():
		lines = append(lines, InsightText.Render("✦ "+repo.AIInsight))
	case a.insights[repo.ID]:
		lines = append(lines, InsightText.Render(a.spinner.View()+" thinking..."))
	}

	return strings.Join(lines, "\n")
}

func renderSources(sources []types.Source) string {
	var b strings.Builder

	b.WriteString(Muted.Render("Sources:"))

	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}

		b.WriteString("\n")
		b.WriteString(Muted.Render(fmt.Sprintf("  %s (%s)", title, s.URI)))
	}

	return b.String()
}

func (a App) renderStatusBar() string {
	hints := [][2]string{{"tab", "switch"}, {"←/→", "page"}, {"i", "insight"}}

	if a.tab == TabTrending {
		hints = append(hints, [2]string{"p", "period"}, [2]string{"l", "language"}, [2]string{"r", "refresh"})
	} else {
		hints = append(hints, [2]string{"u", "user"}, [2]string{"/", "search"}, [2]string{"f", "filter"},
			[2]string{"esc", "clear"}, [2]string{"s", "sort"})
	}

	hints = append(hints, [2]string{"q", "quit"})

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, StatusBarKey.Render(h[0])+" "+StatusBarText.Render(h[1]))
	}

	return StatusBar.Width(a.width).Render(strings.Join(parts, "  "))
}
