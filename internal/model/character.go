package model

import (
	"slices"
	"time"
)

// UserRef is a weak reference to a user by id; it does not imply ownership of the user record
type UserRef struct {
	ID   ID   `json:"id"`
	Name Name `json:"name"`
}

// AttributeScore is one labelled attribute line on the sheet
type AttributeScore struct {
	Label    AttributeLabel `json:"label"`
	Value    Attribute      `json:"value"`
	Modifier *Modifier      `json:"modifier,omitempty"`
}

// Skill is a purchased skill and what it cost
type Skill struct {
	Name Name `json:"name"`
	Cost Cost `json:"cost"`
}

// Sheet is the editable game data of a character
type Sheet struct {
	Height     *Height          `json:"height,omitempty"`
	Weight     *Weight          `json:"weight,omitempty"`
	Attributes []AttributeScore `json:"attributes,omitempty"`
	Vitality   PointPair        `json:"vitality"`
	Essence    PointPair        `json:"essence"`
	PathFocus  *Focus           `json:"path_focus,omitempty"`
	FormFocus  *Focus           `json:"form_focus,omitempty"`
	Skills     []Skill          `json:"skills,omitempty"`
}

// Character is a roster entry together with its sheet
type Character struct {
	ID          ID            `json:"id"`
	Name        CharacterName `json:"name"`
	ControlUser *UserRef      `json:"control_user,omitempty"`
	// IsKnown makes an uncontrolled character visible to every player
	IsKnown bool `json:"is_known"`

	Sheet

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsControlledBy reports whether the given user controls the character
func (c *Character) IsControlledBy(userID ID) bool {
	return c.ControlUser != nil && c.ControlUser.ID == userID
}

// HasController reports whether any user controls the character
func (c *Character) HasController() bool {
	return c.ControlUser != nil
}

// IsPrivate reports whether the character is controlled and not known
func (c *Character) IsPrivate() bool {
	return c.ControlUser != nil && !c.IsKnown
}

// IsDraft reports whether the character is uncontrolled and unknown.
// Drafts are never listed to players.
func (c *Character) IsDraft() bool {
	return c.ControlUser == nil && !c.IsKnown
}

// Clone returns a deep copy of the character
func (c *Character) Clone() *Character {
	out := *c
	if c.ControlUser != nil {
		ref := *c.ControlUser
		out.ControlUser = &ref
	}
	out.Height = clonePtr(c.Height)
	out.Weight = clonePtr(c.Weight)
	out.PathFocus = clonePtr(c.PathFocus)
	out.FormFocus = clonePtr(c.FormFocus)
	out.Attributes = slices.Clone(c.Attributes)
	for i, a := range out.Attributes {
		out.Attributes[i].Modifier = clonePtr(a.Modifier)
	}
	out.Skills = slices.Clone(c.Skills)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
