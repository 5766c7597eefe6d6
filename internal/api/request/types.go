package request

import (
	"fmt"

	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/services/character"
)

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Attribute is one attribute line of a sheet
type Attribute struct {
	Label    string `json:"label"`
	Value    int    `json:"value"`
	Modifier *int   `json:"modifier,omitempty"`
}

// PointPair is a current/base pool
type PointPair struct {
	Current *int `json:"current"`
	Base    *int `json:"base"`
}

// Skill is a purchased skill
type Skill struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// SheetFields are the sheet values shared by create and update requests.
// Absent fields are left unset on create and unchanged on update.
type SheetFields struct {
	Height     *int        `json:"height,omitempty"`
	Weight     *int        `json:"weight,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Vitality   *PointPair  `json:"vitality,omitempty"`
	Essence    *PointPair  `json:"essence,omitempty"`
	PathFocus  *int        `json:"path_focus,omitempty"`
	FormFocus  *int        `json:"form_focus,omitempty"`
	Skills     []Skill     `json:"skills,omitempty"`
}

// CreateCharacterRequest is the request body for creating a character
type CreateCharacterRequest struct {
	Name    string `json:"name"`
	IsKnown bool   `json:"is_known"`
	SheetFields
}

// UpdateCharacterRequest is the request body for patching a character
type UpdateCharacterRequest struct {
	Name *string `json:"name,omitempty"`
	SheetFields
}

// ControlRequest is the request body for assigning a character
type ControlRequest struct {
	ControlUserID *string `json:"control_user_id"`
	IsKnown       bool    `json:"is_known"`
}

// ToDraft validates the request into a character draft
func (r CreateCharacterRequest) ToDraft() (character.Draft, error) {
	name, err := model.NewCharacterName(r.Name)
	if err != nil {
		return character.Draft{}, err
	}
	changes, err := r.SheetFields.toChanges()
	if err != nil {
		return character.Draft{}, err
	}

	sheet := model.Sheet{
		Height:     changes.Height,
		Weight:     changes.Weight,
		Attributes: changes.Attributes,
		PathFocus:  changes.PathFocus,
		FormFocus:  changes.FormFocus,
		Skills:     changes.Skills,
	}
	if changes.Vitality != nil {
		sheet.Vitality = *changes.Vitality
	}
	if changes.Essence != nil {
		sheet.Essence = *changes.Essence
	}

	return character.Draft{Name: name, IsKnown: r.IsKnown, Sheet: sheet}, nil
}

// ToChanges validates the request into a partial update
func (r UpdateCharacterRequest) ToChanges() (character.Changes, error) {
	changes, err := r.SheetFields.toChanges()
	if err != nil {
		return character.Changes{}, err
	}
	if r.Name != nil {
		name, err := model.NewCharacterName(*r.Name)
		if err != nil {
			return character.Changes{}, err
		}
		changes.Name = &name
	}
	return changes, nil
}

// ToAssignment validates the request into an assignment
func (r ControlRequest) ToAssignment() (character.Assignment, error) {
	a := character.Assignment{IsKnown: r.IsKnown}
	if r.ControlUserID != nil {
		id, err := model.NewID(*r.ControlUserID)
		if err != nil {
			return character.Assignment{}, err
		}
		a.ControlUser = &id
	}
	return a, nil
}

func (f SheetFields) toChanges() (character.Changes, error) {
	var c character.Changes

	if f.Height != nil {
		h, err := model.NewHeight(*f.Height)
		if err != nil {
			return c, err
		}
		c.Height = &h
	}
	if f.Weight != nil {
		w, err := model.NewWeight(*f.Weight)
		if err != nil {
			return c, err
		}
		c.Weight = &w
	}
	if f.Attributes != nil {
		attrs, err := toAttributes(f.Attributes)
		if err != nil {
			return c, err
		}
		c.Attributes = attrs
	}
	if f.Vitality != nil {
		p := f.Vitality.toModel()
		c.Vitality = &p
	}
	if f.Essence != nil {
		p := f.Essence.toModel()
		c.Essence = &p
	}
	if f.PathFocus != nil {
		focus, err := model.NewPathFocus(*f.PathFocus)
		if err != nil {
			return c, err
		}
		c.PathFocus = &focus
	}
	if f.FormFocus != nil {
		focus, err := model.NewFormFocus(*f.FormFocus)
		if err != nil {
			return c, err
		}
		c.FormFocus = &focus
	}
	if f.Skills != nil {
		skills := make([]model.Skill, 0, len(f.Skills))
		for _, s := range f.Skills {
			name, err := model.NewName(s.Name)
			if err != nil {
				return c, err
			}
			cost, err := model.NewCost(s.Cost)
			if err != nil {
				return c, err
			}
			skills = append(skills, model.Skill{Name: name, Cost: cost})
		}
		c.Skills = skills
	}
	return c, nil
}

func toAttributes(in []Attribute) ([]model.AttributeScore, error) {
	seen := make(map[model.AttributeLabel]bool, len(in))
	out := make([]model.AttributeScore, 0, len(in))
	for _, a := range in {
		label, err := model.ParseAttributeLabel(a.Label)
		if err != nil {
			return nil, err
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate attribute %s", model.ErrInvalidValue, label)
		}
		seen[label] = true

		value, err := model.NewAttribute(a.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, model.AttributeScore{
			Label:    label,
			Value:    value,
			Modifier: model.NewModifier(a.Modifier),
		})
	}
	return out, nil
}

func (p PointPair) toModel() model.PointPair {
	return model.PointPair{
		Current: model.NewPoint(p.Current),
		Base:    model.NewPoint(p.Base),
	}
}
