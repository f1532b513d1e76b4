// Package skills holds the in-memory skill library the sandbox exposes
// to vetted code. The bound call names (create, save, search, CodeSkill)
// match the stock call allow-list, so restricted code can build and
// query skills while everything else stays shut.
package skills

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLanguage is assumed when a skill does not name one.
const DefaultLanguage = "javascript"

// Skill is one reusable code unit in the library. Field names follow
// the json tags inside the sandbox namespace.
type Skill struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Code        string    `json:"code,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Show renders a readable summary. It is exposed to sandboxed code as
// skill.show().
func (s Skill) Show() string {
	var b strings.Builder

	lang := s.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	fmt.Fprintf(&b, "%s (%s)\n", s.Name, lang)

	if s.Description != "" {
		fmt.Fprintf(&b, "  %s\n", s.Description)
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "  tags: %s\n", strings.Join(s.Tags, ", "))
	}
	if s.Code != "" {
		b.WriteString(s.Code)
		if !strings.HasSuffix(s.Code, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}
