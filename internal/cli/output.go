package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Character:
		o.printCharacter(v)
	case CharacterList:
		o.printCharacterList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResult combines user and token
type AuthResult struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// UserRef response type
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attribute response type
type Attribute struct {
	Label    string `json:"label"`
	Value    int    `json:"value"`
	Modifier *int   `json:"modifier,omitempty"`
}

// PointPair response type
type PointPair struct {
	Current *int `json:"current"`
	Base    *int `json:"base"`
}

// Skill response type
type Skill struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// Character response type
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
}

// CharacterList response type
type CharacterList struct {
	Characters []Character `json:"characters"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Name, u.ID)
	fmt.Printf("Email: %s\n", u.Email)
	fmt.Printf("Role: %s\n", u.Role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
	fmt.Printf("Expires: %s\n", a.ExpiresAt)
}

func controller(c Character) string {
	if c.ControlUser == nil {
		return "-"
	}
	return c.ControlUser.Name
}

func visibility(c Character) string {
	if c.IsKnown {
		return "known"
	}
	return "private"
}

func (o *Output) printCharacter(c Character) {
	fmt.Printf("Character: %s (%s)\n", c.Name, c.ID)
	fmt.Printf("Controlled by: %s\n", controller(c))
	fmt.Printf("Visibility: %s\n", visibility(c))

	if c.Height != nil {
		fmt.Printf("Height: %d cm\n", *c.Height)
	}
	if c.Weight != nil {
		fmt.Printf("Weight: %d kg\n", *c.Weight)
	}
	fmt.Printf("Vitality: %s\n", formatPair(c.Vitality))
	fmt.Printf("Essence: %s\n", formatPair(c.Essence))
	if c.PathFocus != nil {
		fmt.Printf("Path focus: %d\n", *c.PathFocus)
	}
	if c.FormFocus != nil {
		fmt.Printf("Form focus: %d\n", *c.FormFocus)
	}

	if len(c.Attributes) > 0 {
		fmt.Println("\nAttributes:")
		for _, a := range c.Attributes {
			mod := ""
			if a.Modifier != nil {
				mod = fmt.Sprintf(" (%+d)", *a.Modifier)
			}
			fmt.Printf("  %s %d%s\n", a.Label, a.Value, mod)
		}
	}

	if len(c.Skills) > 0 {
		fmt.Println("\nSkills:")
		for _, s := range c.Skills {
			fmt.Printf("  %s (cost %d)\n", s.Name, s.Cost)
		}
	}
}

func (o *Output) printCharacterList(l CharacterList) {
	if len(l.Characters) == 0 {
		fmt.Println("No characters")
		return
	}

	width := len("NAME")
	for _, c := range l.Characters {
		width = max(width, len(c.Name))
	}

	fmt.Printf("%-*s  %-10s  %-8s  %s\n", width, "NAME", "CONTROL", "VISIBLE", "ID")
	for _, c := range l.Characters {
		fmt.Printf("%-*s  %-10s  %-8s  %s\n", width, c.Name, controller(c), visibility(c), c.ID)
	}
}

func formatPair(p PointPair) string {
	part := func(v *int) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprint(*v)
	}
	return strings.Join([]string{part(p.Current), part(p.Base)}, "/")
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
