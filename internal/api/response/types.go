package response

import (
	"time"

	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/services/auth"
)

// User represents an account in API responses
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserFromPrincipal converts a principal to a response User
func UserFromPrincipal(p model.Principal) User {
	return User{
		ID:    p.ID.String(),
		Name:  p.Name.String(),
		Email: p.Email,
		Role:  p.Role.String(),
	}
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:      UserFromPrincipal(s.Principal),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// UserRef names the controlling user of a character
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attribute is one attribute line
type Attribute struct {
	Label    string `json:"label"`
	Value    int    `json:"value"`
	Modifier *int   `json:"modifier,omitempty"`
}

// PointPair is a current/base pool; unset values are null
type PointPair struct {
	Current *int `json:"current"`
	Base    *int `json:"base"`
}

// Skill is a purchased skill
type Skill struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// Character represents a character in API responses
type Character struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ControlUser *UserRef    `json:"control_user"`
	IsKnown     bool        `json:"is_known"`
	Height      *int        `json:"height,omitempty"`
	Weight      *int        `json:"weight,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	Vitality    PointPair   `json:"vitality"`
	Essence     PointPair   `json:"essence"`
	PathFocus   *int        `json:"path_focus,omitempty"`
	FormFocus   *int        `json:"form_focus,omitempty"`
	Skills      []Skill     `json:"skills"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CharacterFromModel converts a model.Character to a response Character
func CharacterFromModel(c *model.Character) Character {
	out := Character{
		ID:         c.ID.String(),
		Name:       c.Name.String(),
		IsKnown:    c.IsKnown,
		Attributes: make([]Attribute, 0, len(c.Attributes)),
		Vitality:   pointPair(c.Vitality),
		Essence:    pointPair(c.Essence),
		Skills:     make([]Skill, 0, len(c.Skills)),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.ControlUser != nil {
		out.ControlUser = &UserRef{ID: c.ControlUser.ID.String(), Name: c.ControlUser.Name.String()}
	}
	if c.Height != nil {
		out.Height = intPtr(c.Height.Centimetres())
	}
	if c.Weight != nil {
		out.Weight = intPtr(c.Weight.Kilograms())
	}
	if c.PathFocus != nil {
		out.PathFocus = intPtr(c.PathFocus.Value())
	}
	if c.FormFocus != nil {
		out.FormFocus = intPtr(c.FormFocus.Value())
	}
	for _, a := range c.Attributes {
		attr := Attribute{Label: a.Label.String(), Value: a.Value.Value()}
		if a.Modifier != nil {
			attr.Modifier = intPtr(a.Modifier.Value())
		}
		out.Attributes = append(out.Attributes, attr)
	}
	for _, s := range c.Skills {
		out.Skills = append(out.Skills, Skill{Name: s.Name.String(), Cost: s.Cost.Value()})
	}
	return out
}

// CharacterList is the response for the roster endpoint
type CharacterList struct {
	Characters []Character `json:"characters"`
}

// CharacterListFromModel converts a roster in order
func CharacterListFromModel(characters []model.Character) CharacterList {
	out := CharacterList{Characters: make([]Character, 0, len(characters))}
	for i := range characters {
		out.Characters = append(out.Characters, CharacterFromModel(&characters[i]))
	}
	return out
}

func pointPair(p model.PointPair) PointPair {
	var out PointPair
	if v, ok := p.Current.Value(); ok {
		out.Current = intPtr(v)
	}
	if v, ok := p.Base.Value(); ok {
		out.Base = intPtr(v)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
