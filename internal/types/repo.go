package types

import "strings"

// Owner identifies the account that owns a repository
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repo is one repository as used throughout the application.
// ID is the only key used to cross-reference records between lists.
type Repo struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"html_url"`
	Language    string   `json:"language,omitempty"`
	Stars       int      `json:"stargazers_count"`
	Owner       Owner    `json:"owner"`
	Topics      []string `json:"topics,omitempty"`
	AIInsight   string   `json:"ai_insight,omitempty"`
}

// HasInsight reports whether an insight was already attached to the record
func (r *Repo) HasInsight() bool {
	return r.AIInsight != ""
}

// SetInsight attaches text as the record's insight. An insight is written at
// most once; later calls leave the record unchanged and return false.
func (r *Repo) SetInsight(text string) bool {
	if r.HasInsight() || strings.TrimSpace(text) == "" {
		return false
	}

	r.AIInsight = text

	return true
}

// Name returns the repository name without the owner prefix
func (r *Repo) Name() string {
	if i := strings.Index(r.FullName, "/"); i >= 0 {
		return r.FullName[i+1:]
	}

	return r.FullName
}

// Source is a citation returned alongside a grounded LLM answer
type Source struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}
