package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeElements converts loosely typed input (MCP tool arguments or parsed
// YAML) into element descriptors. Numbers may be any numeric kind; strings,
// booleans and empty values are not coerced into numbers. A nil input decodes to an empty batch.
// Field constraints are checked separately by ValidateElements.
func DecodeElements(raw any) ([]ElementDescriptor, error) {
	items, err := asList("elements", raw)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	out := make([]ElementDescriptor, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("elements[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			verr.add("%s: must be an object", path)
			continue
		}
		missing := false
		for _, key := range []string{"type", "x", "y"} {
			if v, ok := m[key]; !ok || v == nil {
				verr.add("%s.%s: is required", path, key)
				missing = true
			}
		}
		if missing {
			continue
		}

		var el ElementDescriptor
		if err := decode(m, &el); err != nil {
			addDecodeError(verr, path, err)
			continue
		}
		out = append(out, el)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeCommands converts loosely typed input into bundled command
// descriptors. A nil input decodes to an empty bundle.
func DecodeCommands(raw any) ([]CommandDescriptor, error) {
	items, err := asList("commands", raw)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	out := make([]CommandDescriptor, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("commands[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			verr.add("%s: must be an object", path)
			continue
		}
		if v, ok := m["command"]; !ok || v == nil {
			verr.add("%s.command: is required", path)
			continue
		}

		var c CommandDescriptor
		if err := decode(m, &c); err != nil {
			addDecodeError(verr, path, err)
			continue
		}
		out = append(out, c)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func asList(name string, raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, nil
	default:
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("%s: must be an array, got %T", name, raw)}}
	}
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: colorHook,
		TagName:    "json",
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func addDecodeError(verr *ValidationError, path string, err error) {
	var merr *mapstructure.Error
	if errors.As(err, &merr) {
		for _, msg := range merr.Errors {
			if field, reason, ok := splitDecodeMessage(msg); ok {
				verr.add("%s.%s: %s", path, field, reason)
				continue
			}
			verr.add("%s: %s", path, msg)
		}
		return
	}
	verr.add("%s: %v", path, err)
}

// splitDecodeMessage pulls the quoted field path out of a mapstructure
// message such as "'styles.fillColor.g' expected type 'float64', got ...".
func splitDecodeMessage(msg string) (field, reason string, ok bool) {
	msg = strings.TrimPrefix(msg, "error decoding ")
	if !strings.HasPrefix(msg, "'") {
		return "", "", false
	}
	end := strings.Index(msg[1:], "'")
	if end <= 0 {
		return "", "", false
	}
	field = msg[1 : end+1]
	reason = strings.TrimLeft(msg[end+2:], ": ")
	return field, reason, true
}

var colorType = reflect.TypeOf(Color{})

// colorHook lets colors be written as names or hex strings.
func colorHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != colorType {
		return data, nil
	}
	c, err := ParseColor(reflect.ValueOf(data).String())
	if err != nil {
		return nil, err
	}
	return c.toMap(), nil
}
