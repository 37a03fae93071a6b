package model

import (
	"encoding/json"
	"testing"
)

func TestElementDescriptor_JSONKeys(t *testing.T) {
	w, h := 200.0, 100.0
	el := ElementDescriptor{
		Kind:     KindRectangle,
		X:        100,
		Y:        1500,
		Width:    &w,
		Height:   &h,
		ParentID: "1:2",
		Styles:   &Style{FillColor: &Color{R: 1}},
	}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "x", "y", "width", "height", "parentId", "styles"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in JSON output", key)
		}
	}
	if m["type"] != "rectangle" {
		t.Errorf("type: got %v, want rectangle", m["type"])
	}
}

func TestElementDescriptor_OmitEmpty(t *testing.T) {
	el := ElementDescriptor{Kind: KindText, X: 0, Y: 0}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"width", "height", "text", "name", "parentId", "styles"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty %s should be omitted", key)
		}
	}
	// Zero coordinates are real positions and must be kept
	for _, key := range []string{"x", "y"} {
		if _, ok := m[key]; !ok {
			t.Errorf("%s should always be present", key)
		}
	}
}

func TestElementKind_Valid(t *testing.T) {
	for _, k := range ElementKinds {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	for _, k := range []ElementKind{"", "ellipse", "Rectangle", "line"} {
		if k.Valid() {
			t.Errorf("%q should not be valid", k)
		}
	}
}

func TestElementKind_Sized(t *testing.T) {
	if !KindRectangle.Sized() || !KindFrame.Sized() {
		t.Error("rectangle and frame should be sized")
	}
	if KindText.Sized() {
		t.Error("text should not be sized")
	}
}
