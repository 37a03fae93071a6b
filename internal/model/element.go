package model

// ElementKind is the type of canvas node an ElementDescriptor creates.
type ElementKind string

const (
	KindRectangle ElementKind = "rectangle"
	KindFrame     ElementKind = "frame"
	KindText      ElementKind = "text"
)

// ElementKinds lists every kind accepted by batch_create_elements.
var ElementKinds = []ElementKind{KindRectangle, KindFrame, KindText}

// Valid reports whether k is one of the supported element kinds.
func (k ElementKind) Valid() bool {
	switch k {
	case KindRectangle, KindFrame, KindText:
		return true
	}
	return false
}

// Sized reports whether width/height mean anything for this kind.
func (k ElementKind) Sized() bool {
	return k == KindRectangle || k == KindFrame
}

// ElementDescriptor describes one canvas element to create.
type ElementDescriptor struct {
	Kind     ElementKind `json:"type"               yaml:"type"`
	X        float64     `json:"x"                  yaml:"x"`
	Y        float64     `json:"y"                  yaml:"y"`
	Width    *float64    `json:"width,omitempty"    yaml:"width,omitempty"`
	Height   *float64    `json:"height,omitempty"   yaml:"height,omitempty"`
	Text     string      `json:"text,omitempty"     yaml:"text,omitempty"`
	Name     string      `json:"name,omitempty"     yaml:"name,omitempty"`
	ParentID string      `json:"parentId,omitempty" yaml:"parentId,omitempty"` // may name a node created earlier in the same batch
	Styles   *Style      `json:"styles,omitempty"   yaml:"styles,omitempty"`
}

// Label is the short name used for this element in reports.
func (e ElementDescriptor) Label() string {
	return string(e.Kind)
}

// Style holds optional styling for a created element.
type Style struct {
	FillColor    *Color   `json:"fillColor,omitempty"    yaml:"fillColor,omitempty"`
	StrokeColor  *Color   `json:"strokeColor,omitempty"  yaml:"strokeColor,omitempty"`
	StrokeWeight *float64 `json:"strokeWeight,omitempty" yaml:"strokeWeight,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty" yaml:"cornerRadius,omitempty"`
	FontSize     *float64 `json:"fontSize,omitempty"     yaml:"fontSize,omitempty"`
	FontWeight   *float64 `json:"fontWeight,omitempty"   yaml:"fontWeight,omitempty"`
}
