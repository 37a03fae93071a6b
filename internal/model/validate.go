package model

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError reports every field-level problem found in a batch.
// Nothing is sent to the executor when validation fails.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid batch: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid batch (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// ValidateElements checks each element descriptor on its own. Parent
// references are not resolved here.
func ValidateElements(elements []ElementDescriptor) error {
	verr := &ValidationError{}
	for i, el := range elements {
		validateElement(verr, fmt.Sprintf("elements[%d]", i), el)
	}
	return verr.orNil()
}

func validateElement(verr *ValidationError, path string, el ElementDescriptor) {
	if !el.Kind.Valid() {
		verr.add("%s.type: %q is not one of rectangle, frame, text", path, el.Kind)
	}
	if !finite(el.X) {
		verr.add("%s.x: must be a finite number", path)
	}
	if !finite(el.Y) {
		verr.add("%s.y: must be a finite number", path)
	}
	if el.Width != nil && !finite(*el.Width) {
		verr.add("%s.width: must be a finite number", path)
	}
	if el.Height != nil && !finite(*el.Height) {
		verr.add("%s.height: must be a finite number", path)
	}
	if el.Styles == nil {
		return
	}

	s := el.Styles
	validateColor(verr, path+".styles.fillColor", s.FillColor)
	validateColor(verr, path+".styles.strokeColor", s.StrokeColor)
	if s.StrokeWeight != nil && !(*s.StrokeWeight > 0) {
		verr.add("%s.styles.strokeWeight: must be positive, got %v", path, *s.StrokeWeight)
	}
	if s.CornerRadius != nil && !(*s.CornerRadius >= 0) {
		verr.add("%s.styles.cornerRadius: must not be negative, got %v", path, *s.CornerRadius)
	}
	if s.FontSize != nil && !(*s.FontSize > 0) {
		verr.add("%s.styles.fontSize: must be positive, got %v", path, *s.FontSize)
	}
	if s.FontWeight != nil && !finite(*s.FontWeight) {
		verr.add("%s.styles.fontWeight: must be a finite number", path)
	}
}

func validateColor(verr *ValidationError, path string, c *Color) {
	if c == nil {
		return
	}
	channels := []struct {
		name string
		v    float64
	}{{"r", c.R}, {"g", c.G}, {"b", c.B}}
	if c.A != nil {
		channels = append(channels, struct {
			name string
			v    float64
		}{"a", *c.A})
	}
	for _, ch := range channels {
		if !(ch.v >= 0 && ch.v <= 1) {
			verr.add("%s.%s: must be between 0 and 1, got %v", path, ch.name, ch.v)
		}
	}
}

// ValidateCommands checks each bundled command on its own. Params are
// passed through untouched.
func ValidateCommands(commands []CommandDescriptor) error {
	verr := &ValidationError{}
	for i, c := range commands {
		if strings.TrimSpace(c.Command) == "" {
			verr.add("commands[%d].command: must not be empty", i)
		}
		if !c.Priority.Valid() {
			verr.add("commands[%d].priority: %q is not one of high, normal, low", i, c.Priority)
		}
	}
	return verr.orNil()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
