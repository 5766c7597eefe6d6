package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength is the longest accepted name, counted in runes after trimming
const MaxNameLength = 100

// Focus bounds
const (
	MaxPathFocus = 4
	MaxFormFocus = 10
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

// ID identifies users and characters
type ID struct {
	value string
}

// NewID wraps an existing identifier, rejecting blank input
func NewID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return ID{}, invalid("id must not be blank")
	}
	return ID{value: s}, nil
}

// MustID is like NewID but panics on blank input
func MustID(s string) ID {
	id, err := NewID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// GenerateID returns a fresh random identifier
func GenerateID() ID {
	return ID{value: uuid.NewString()}
}

func (id ID) String() string { return id.value }

// IsZero reports whether the ID was never set
func (id ID) IsZero() bool { return id.value == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func normalizeName(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", invalid("%s must not be blank", field)
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", invalid("%s must be at most %d characters", field, MaxNameLength)
	}
	return trimmed, nil
}

// Name is a display name for users and skills
type Name struct {
	value string
}

// NewName trims and validates a name
func NewName(s string) (Name, error) {
	v, err := normalizeName("name", s)
	if err != nil {
		return Name{}, err
	}
	return Name{value: v}, nil
}

// MustName is like NewName but panics on invalid input
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Name) String() string { return n.value }

func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

func (n *Name) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// CharacterName is the name shown on a character sheet and used for roster ordering
type CharacterName struct {
	value string
}

// NewCharacterName trims and validates a character name
func NewCharacterName(s string) (CharacterName, error) {
	v, err := normalizeName("character name", s)
	if err != nil {
		return CharacterName{}, err
	}
	return CharacterName{value: v}, nil
}

// MustCharacterName is like NewCharacterName but panics on invalid input
func MustCharacterName(s string) CharacterName {
	n, err := NewCharacterName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n CharacterName) String() string { return n.value }

func (n CharacterName) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

func (n *CharacterName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewCharacterName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// unmarshalInt decodes a JSON number and runs it through a constructor
func unmarshalInt[T any](data []byte, build func(int) (T, error), dst *T) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := build(v)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// Height in centimetres
type Height struct {
	cm int
}

func NewHeight(cm int) (Height, error) {
	if cm <= 0 {
		return Height{}, invalid("height must be positive, got %d", cm)
	}
	return Height{cm: cm}, nil
}

func (h Height) Centimetres() int { return h.cm }

func (h Height) MarshalJSON() ([]byte, error) { return json.Marshal(h.cm) }

func (h *Height) UnmarshalJSON(data []byte) error { return unmarshalInt(data, NewHeight, h) }

// Weight in kilograms
type Weight struct {
	kg int
}

func NewWeight(kg int) (Weight, error) {
	if kg <= 0 {
		return Weight{}, invalid("weight must be positive, got %d", kg)
	}
	return Weight{kg: kg}, nil
}

func (w Weight) Kilograms() int { return w.kg }

// Grams converts the weight to grams
func (w Weight) Grams() int { return w.kg * 1000 }

func (w Weight) MarshalJSON() ([]byte, error) { return json.Marshal(w.kg) }

func (w *Weight) UnmarshalJSON(data []byte) error { return unmarshalInt(data, NewWeight, w) }

// Attribute is a non-negative attribute score
type Attribute struct {
	value int
}

func NewAttribute(v int) (Attribute, error) {
	if v < 0 {
		return Attribute{}, invalid("attribute must not be negative, got %d", v)
	}
	return Attribute{value: v}, nil
}

func (a Attribute) Value() int { return a.value }

func (a Attribute) MarshalJSON() ([]byte, error) { return json.Marshal(a.value) }

func (a *Attribute) UnmarshalJSON(data []byte) error { return unmarshalInt(data, NewAttribute, a) }

// Modifier adjusts an attribute; any integer is accepted
type Modifier struct {
	value int
}

// NewModifier returns nil when v is nil
func NewModifier(v *int) *Modifier {
	if v == nil {
		return nil
	}
	return &Modifier{value: *v}
}

func (m Modifier) Value() int { return m.value }

func (m Modifier) MarshalJSON() ([]byte, error) { return json.Marshal(m.value) }

func (m *Modifier) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.value)
}

// Cost is the strictly positive price of a skill
type Cost struct {
	value int
}

func NewCost(v int) (Cost, error) {
	if v <= 0 {
		return Cost{}, invalid("cost must be positive, got %d", v)
	}
	return Cost{value: v}, nil
}

func (c Cost) Value() int { return c.value }

func (c Cost) MarshalJSON() ([]byte, error) { return json.Marshal(c.value) }

func (c *Cost) UnmarshalJSON(data []byte) error { return unmarshalInt(data, NewCost, c) }

// FocusKind distinguishes the two focus scales
type FocusKind string

const (
	FocusPath FocusKind = "path"
	FocusForm FocusKind = "form"
)

// Focus is a bounded focus score, either on the path scale [0,4] or the form scale [0,10]
type Focus struct {
	kind  FocusKind
	value int
}

func NewPathFocus(v int) (Focus, error) {
	if v < 0 || v > MaxPathFocus {
		return Focus{}, invalid("path focus must be between 0 and %d, got %d", MaxPathFocus, v)
	}
	return Focus{kind: FocusPath, value: v}, nil
}

func NewFormFocus(v int) (Focus, error) {
	if v < 0 || v > MaxFormFocus {
		return Focus{}, invalid("form focus must be between 0 and %d, got %d", MaxFormFocus, v)
	}
	return Focus{kind: FocusForm, value: v}, nil
}

func (f Focus) Kind() FocusKind { return f.kind }
func (f Focus) Value() int      { return f.value }

type focusJSON struct {
	Kind  FocusKind `json:"kind"`
	Value int       `json:"value"`
}

func (f Focus) MarshalJSON() ([]byte, error) {
	return json.Marshal(focusJSON{Kind: f.kind, Value: f.value})
}

func (f *Focus) UnmarshalJSON(data []byte) error {
	var raw focusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		parsed Focus
		err    error
	)
	switch raw.Kind {
	case FocusPath:
		parsed, err = NewPathFocus(raw.Value)
	case FocusForm:
		parsed, err = NewFormFocus(raw.Value)
	default:
		err = invalid("unknown focus kind %q", raw.Kind)
	}
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Point is a nullable score used for current/base pairs
type Point struct {
	value int
	set   bool
}

func NewPoint(v *int) Point {
	if v == nil {
		return Point{}
	}
	return Point{value: *v, set: true}
}

// Value returns the score and whether it is set
func (p Point) Value() (int, bool) {
	return p.value, p.set
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = NewPoint(v)
	return nil
}

// PointPair holds the current and base value of a pool such as vitality
type PointPair struct {
	Current Point `json:"current"`
	Base    Point `json:"base"`
}

// AttributeLabel is one of the fixed attribute codes
type AttributeLabel struct {
	code string
}

var (
	LabelStrength     = AttributeLabel{code: "STR"}
	LabelDexterity    = AttributeLabel{code: "DEX"}
	LabelConstitution = AttributeLabel{code: "CON"}
	LabelIntelligence = AttributeLabel{code: "INT"}
	LabelWisdom       = AttributeLabel{code: "WIS"}
	LabelCharisma     = AttributeLabel{code: "CHA"}
)

// AttributeLabels lists every valid label in sheet order
func AttributeLabels() []AttributeLabel {
	return []AttributeLabel{
		LabelStrength, LabelDexterity, LabelConstitution,
		LabelIntelligence, LabelWisdom, LabelCharisma,
	}
}

// ParseAttributeLabel accepts a label code, case-insensitively
func ParseAttributeLabel(s string) (AttributeLabel, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for _, l := range AttributeLabels() {
		if l.code == code {
			return l, nil
		}
	}
	return AttributeLabel{}, invalid("unknown attribute label %q", s)
}

func (l AttributeLabel) String() string { return l.code }

func (l AttributeLabel) MarshalJSON() ([]byte, error) { return json.Marshal(l.code) }

func (l *AttributeLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAttributeLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
