package formatter

import (
	"fmt"
	"strings"

	"github.com/kyleking/gh-star-scout/internal/types"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatLong  OutputFormat = "long"
	FormatShort OutputFormat = "short"
)

const maxShortDescription = 80

// ParseFormat maps the --long flag onto an OutputFormat
func ParseFormat(long bool) OutputFormat {
	if long {
		return FormatLong
	}

	return FormatShort
}

// Formatter handles repository output formatting
type Formatter struct{}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatRepository formats one repository at its 1-based rank
func (f *Formatter) FormatRepository(repo types.Repo, rank int, format OutputFormat) string {
	switch format {
	case FormatLong:
		return f.formatLong(repo, rank)
	default:
		return f.formatShort(repo, rank)
	}
}

// FormatList formats repos numbered from offset+1, separated by blank lines in long form
func (f *Formatter) FormatList(repos []types.Repo, offset int, format OutputFormat) string {
	blocks := make([]string, len(repos))
	for i, r := range repos {
		blocks[i] = f.FormatRepository(r, offset+i+1, format)
	}

	sep := "\n"
	if format == FormatLong {
		sep = "\n\n"
	}

	return strings.Join(blocks, sep)
}

// formatShort is the rank line plus an indented, truncated description and insight
func (f *Formatter) formatShort(repo types.Repo, rank int) string {
	header := fmt.Sprintf("%3d. %s ★ %d", rank, repo.FullName, repo.Stars)
	if repo.Language != "" {
		header += fmt.Sprintf(" [%s]", repo.Language)
	}

	lines := []string{header}

	if repo.Description != "" {
		lines = append(lines, "     "+Truncate(repo.Description, maxShortDescription))
	}

	if repo.AIInsight != "" {
		lines = append(lines, "     ✦ "+repo.AIInsight)
	}

	if repo.URL != "" {
		lines = append(lines, "     "+repo.URL)
	}

	return strings.Join(lines, "\n")
}

func (f *Formatter) formatLong(repo types.Repo, rank int) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%d. %s  (link: %s)", rank, repo.FullName, orDash(repo.URL)))
	lines = append(lines, "Description: "+orDash(repo.Description))
	lines = append(lines, fmt.Sprintf("Stars: %d (%s)", repo.Stars, CompactCount(repo.Stars)))
	lines = append(lines, "Language: "+orDash(repo.Language))
	lines = append(lines, "Owner: "+orDash(repo.Owner.Login))
	lines = append(lines, "Topics: "+orDash(strings.Join(repo.Topics, ", ")))

	if repo.AIInsight != "" {
		lines = append(lines, "Insight: "+repo.AIInsight)
	}

	return strings.Join(lines, "\n")
}

// FormatSources lists grounding citations, one per line
func (f *Formatter) FormatSources(sources []types.Source) string {
	if len(sources) == 0 {
		return ""
	}

	lines := []string{"Sources:"}

	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}

		lines = append(lines, fmt.Sprintf("  - %s (%s)", title, s.URI))
	}

	return strings.Join(lines, "\n")
}

// CompactCount abbreviates counts of a thousand or more, e.g. 12345 becomes
// "12.3k" and 1500000 becomes "1.5M"
func CompactCount(n int) string {
	switch {
	case n >= 999_950:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Truncate shortens s to width runes, ending in "..." when cut.
// Widths of 3 or less leave s unchanged.
func Truncate(s string, width int) string {
	if width <= 3 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	return string(runes[:width-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
