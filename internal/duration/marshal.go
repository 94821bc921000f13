package duration

import (
	"strings"

	"gopkg.in/yaml.v3"

	"calspan/internal/chrono"
)

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Blank text means no
// explicit value and yields the zero duration; any other text must parse.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = Zero
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Only scalar nodes are accepted.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return chrono.Malformed(node.Value, "duration must be a scalar, got YAML node kind %d", node.Kind)
	}
	return d.UnmarshalText([]byte(node.Value))
}
