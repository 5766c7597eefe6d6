package character

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/charsheet-go/internal/dependencies/clock"
	"github.com/mcoot/charsheet-go/internal/dependencies/random"
	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/services/access"
	"github.com/mcoot/charsheet-go/internal/services/roster"
	"github.com/mcoot/charsheet-go/internal/storage"
)

// Draft holds the validated input for a new character
type Draft struct {
	Name    model.CharacterName
	IsKnown bool
	Sheet   model.Sheet
}

// Changes is a partial update of a character. Nil fields are left unchanged.
type Changes struct {
	Name       *model.CharacterName
	Height     *model.Height
	Weight     *model.Weight
	Attributes []model.AttributeScore
	Vitality   *model.PointPair
	Essence    *model.PointPair
	PathFocus  *model.Focus
	FormFocus  *model.Focus
	Skills     []model.Skill
}

// Assignment sets who controls a character and whether it is publicly known.
// A nil ControlUser releases the character.
type Assignment struct {
	ControlUser *model.ID
	IsKnown     bool
}

// Controller manages characters on behalf of an authenticated principal
type Controller struct {
	storage storage.Storage
	roster  *roster.Assembler
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new character controller
func NewController(
	storage storage.Storage,
	roster *roster.Assembler,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		roster:  roster,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Create stores a new character. Players always control what they create;
// masters create uncontrolled characters and hand them out with Assign.
func (c *Controller) Create(ctx context.Context, p model.Principal, draft Draft) (*model.Character, error) {
	now := c.clock.Now()
	character := &model.Character{
		ID:        c.random.NewID(),
		Name:      draft.Name,
		IsKnown:   draft.IsKnown,
		Sheet:     draft.Sheet,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !p.IsMaster() {
		ref := p.Ref()
		character.ControlUser = &ref
	}

	if err := c.storage.SaveCharacter(ctx, character); err != nil {
		return nil, err
	}

	c.logger.Info("character created",
		"character_id", character.ID.String(),
		"user_id", p.ID.String(),
	)
	return character, nil
}

// Get returns a character by id. Any authenticated principal may read a character it can reference.
func (c *Controller) Get(ctx context.Context, id model.ID) (*model.Character, error) {
	return c.storage.GetCharacter(ctx, id)
}

// List returns the roster visible to the principal
func (c *Controller) List(ctx context.Context, p model.Principal) ([]model.Character, error) {
	return c.roster.ListVisible(ctx, p)
}

// Update applies changes to a character the principal may control
func (c *Controller) Update(ctx context.Context, p model.Principal, id model.ID, changes Changes) (*model.Character, error) {
	character, err := c.loadControlled(ctx, p, id)
	if err != nil {
		return nil, err
	}

	applyChanges(character, changes)
	character.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveCharacter(ctx, character); err != nil {
		return nil, err
	}
	return character, nil
}

// Delete removes a character the principal may control
func (c *Controller) Delete(ctx context.Context, p model.Principal, id model.ID) error {
	if _, err := c.loadControlled(ctx, p, id); err != nil {
		return err
	}
	if err := c.storage.DeleteCharacter(ctx, id); err != nil {
		return err
	}
	c.logger.Info("character deleted",
		"character_id", id.String(),
		"user_id", p.ID.String(),
	)
	return nil
}

// Assign changes the controller and known flag of a character. Only masters may assign.
func (c *Controller) Assign(ctx context.Context, p model.Principal, id model.ID, a Assignment) (*model.Character, error) {
	if !p.IsMaster() {
		return nil, fmt.Errorf("%w: only masters may assign characters", model.ErrForbidden)
	}

	character, err := c.storage.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}

	character.ControlUser = nil
	if a.ControlUser != nil {
		user, err := c.storage.GetUser(ctx, *a.ControlUser)
		if err != nil {
			return nil, err
		}
		character.ControlUser = &model.UserRef{ID: user.ID, Name: user.Name}
	}
	character.IsKnown = a.IsKnown
	character.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveCharacter(ctx, character); err != nil {
		return nil, err
	}

	c.logger.Info("character assigned",
		"character_id", id.String(),
		"controlled", character.HasController(),
		"known", character.IsKnown,
	)
	return character, nil
}

// loadControlled fetches a character and checks the principal may modify it
func (c *Controller) loadControlled(ctx context.Context, p model.Principal, id model.ID) (*model.Character, error) {
	character, err := c.storage.GetCharacter(ctx, id)
	if err != nil && !errors.Is(err, model.ErrCharacterNotFound) {
		return nil, err
	}
	if err := access.ValidateControlAccess(character, &p); err != nil {
		return nil, err
	}
	return character, nil
}

func applyChanges(character *model.Character, changes Changes) {
	if changes.Name != nil {
		character.Name = *changes.Name
	}
	if changes.Height != nil {
		character.Height = changes.Height
	}
	if changes.Weight != nil {
		character.Weight = changes.Weight
	}
	if changes.Attributes != nil {
		character.Attributes = changes.Attributes
	}
	if changes.Vitality != nil {
		character.Vitality = *changes.Vitality
	}
	if changes.Essence != nil {
		character.Essence = *changes.Essence
	}
	if changes.PathFocus != nil {
		character.PathFocus = changes.PathFocus
	}
	if changes.FormFocus != nil {
		character.FormFocus = changes.FormFocus
	}
	if changes.Skills != nil {
		character.Skills = changes.Skills
	}
}
