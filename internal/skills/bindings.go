package skills

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bitsnaps/open-creator/internal/interpreter"
)

// Binder exposes a Store to sandboxed code as host callables. Bound
// functions run outside the policy check, so they are the one place
// restricted code touches host state.
type Binder struct {
	store  *Store
	logger zerolog.Logger
}

// NewBinder creates a Binder over store.
func NewBinder(store *Store, logger zerolog.Logger) *Binder {
	return &Binder{store: store, logger: logger}
}

// Install binds create, save, search and CodeSkill on interp. Install
// before the restriction latch engages, typically as a session Prepare
// hook.
func (b *Binder) Install(interp *interpreter.Interpreter) error {
	bindings := map[string]any{
		"create":    b.create,
		"CodeSkill": b.create,
		"save":      b.save,
		"search":    b.search,
	}
	for name, fn := range bindings {
		if err := interp.Bind(name, fn); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

// create drafts a skill from the given fields without storing it.
// CodeSkill is an alias so constructor-style code works unchanged.
func (b *Binder) create(draft Skill) Skill {
	if draft.Language == "" {
		draft.Language = DefaultLanguage
	}
	b.logger.Debug().Str("skill", draft.Name).Msg("skill drafted")
	return draft
}

// save persists a skill into the store. A non-nil error surfaces in
// the sandbox as a thrown exception.
func (b *Binder) save(skill Skill) (Skill, error) {
	saved, err := b.store.Save(skill)
	if err != nil {
		return Skill{}, err
	}
	b.logger.Info().Str("skill", saved.Name).Msg("skill saved")
	return saved, nil
}

// search queries the store.
func (b *Binder) search(query string) []Skill {
	return b.store.Search(query)
}
