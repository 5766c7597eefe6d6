package roster

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/charsheet-go/internal/model"
)

// Source is the subset of storage the assembler reads from
type Source interface {
	ListCharactersControlledBy(ctx context.Context, userID model.ID) ([]model.Character, error)
	ListCharactersWithoutController(ctx context.Context) ([]model.Character, error)
	ListCharactersPrivatelyControlledByOthers(ctx context.Context, userID model.ID) ([]model.Character, error)
}

// Assembler computes the ordered list of characters a principal may see
type Assembler struct {
	source Source
	logger *slog.Logger
}

// New creates a new Assembler
func New(source Source, logger *slog.Logger) *Assembler {
	return &Assembler{
		source: source,
		logger: logger,
	}
}

// tier fetches one bucket of the roster
type tier func(ctx context.Context, p model.Principal) ([]model.Character, error)

// ListVisible returns the characters visible to p, tier by tier.
// Each tier is sorted by name; a character appearing in several tiers is kept
// only at its first position.
//
//	MASTER: others' private characters, then every uncontrolled character.
//	PLAYER: own characters, then others' private characters, then known uncontrolled characters.
func (a *Assembler) ListVisible(ctx context.Context, p model.Principal) ([]model.Character, error) {
	var tiers []tier
	switch p.Role {
	case model.RoleMaster:
		tiers = []tier{a.privateToOthers, a.uncontrolled}
	case model.RolePlayer:
		tiers = []tier{a.controlled, a.privateToOthers, a.knownUncontrolled}
	}

	seen := make(map[model.ID]struct{})
	var result []model.Character
	for _, t := range tiers {
		characters, err := t(ctx, p)
		if err != nil {
			return nil, err
		}
		sortByName(characters)
		for _, c := range characters {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			result = append(result, c)
		}
	}

	a.logger.Debug("roster assembled",
		slog.String("user_id", p.ID.String()),
		slog.String("role", p.Role.String()),
		slog.Int("count", len(result)),
	)
	return result, nil
}

func (a *Assembler) controlled(ctx context.Context, p model.Principal) ([]model.Character, error) {
	return a.source.ListCharactersControlledBy(ctx, p.ID)
}

func (a *Assembler) privateToOthers(ctx context.Context, p model.Principal) ([]model.Character, error) {
	return a.source.ListCharactersPrivatelyControlledByOthers(ctx, p.ID)
}

func (a *Assembler) uncontrolled(ctx context.Context, _ model.Principal) ([]model.Character, error) {
	return a.source.ListCharactersWithoutController(ctx)
}

func (a *Assembler) knownUncontrolled(ctx context.Context, p model.Principal) ([]model.Character, error) {
	all, err := a.uncontrolled(ctx, p)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(c model.Character) bool {
		return !c.IsKnown
	}), nil
}

// sortByName orders by name, falling back to id so the order is total
func sortByName(characters []model.Character) {
	slices.SortStableFunc(characters, func(a, b model.Character) int {
		if c := strings.Compare(a.Name.String(), b.Name.String()); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
