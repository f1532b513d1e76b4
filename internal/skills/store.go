package skills

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store is a thread-safe in-memory skill table. Save overwrites by
// name and preserves the original creation time.
type Store struct {
	mu     sync.RWMutex
	skills map[string]Skill
}

// NewStore creates an empty skill store.
func NewStore() *Store {
	return &Store{
		skills: make(map[string]Skill),
	}
}

// Save stores a skill under its name, overwriting any previous
// version. The stored copy, with timestamps applied, is returned.
func (s *Store) Save(skill Skill) (Skill, error) {
	if strings.TrimSpace(skill.Name) == "" {
		return Skill{}, ErrNameMissing
	}
	if skill.Language == "" {
		skill.Language = DefaultLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if prev, ok := s.skills[skill.Name]; ok {
		skill.CreatedAt = prev.CreatedAt
	} else {
		skill.CreatedAt = now
	}
	skill.UpdatedAt = now

	s.skills[skill.Name] = skill
	return skill, nil
}

// Get returns the skill stored under name.
func (s *Store) Get(name string) (Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skill, ok := s.skills[name]
	if !ok {
		return Skill{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return skill, nil
}

// Search returns skills whose name, description or tags contain the
// query, case-insensitively. An empty query returns everything. The
// result is sorted by name and never nil.
func (s *Store) Search(query string) []Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))

	matches := make([]Skill, 0, len(s.skills))
	for _, skill := range s.skills {
		if query == "" || matchesQuery(skill, query) {
			matches = append(matches, skill)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

func matchesQuery(skill Skill, query string) bool {
	if strings.Contains(strings.ToLower(skill.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(skill.Description), query) {
		return true
	}
	for _, tag := range skill.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// List returns all skills sorted by name.
func (s *Store) List() []Skill {
	return s.Search("")
}

// Remove deletes the skill stored under name.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skills[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.skills, name)
	return nil
}

// Len returns the number of stored skills.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.skills)
}
