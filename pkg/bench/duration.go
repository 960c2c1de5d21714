package bench

import (
	"encoding"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that can be read from text, such as YAML or
// JSON configuration ("10s", "1m30s") and command line flags.
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
	_ yaml.Unmarshaler         = (*Duration)(nil)
)

// UnmarshalText allows us a convenient way to unmarshal durations.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err == nil {
		*d = Duration(dur)
	}
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Duration is a convenience method for converting this parseable duration into
// a standard time.Duration instance.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Set and Type make Duration usable as a command line flag value.
func (d *Duration) Set(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d *Duration) Type() string {
	return "duration"
}
