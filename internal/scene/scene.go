package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the scene file schema understood by this build.
const SchemaVersion = 1

type StepKind string

const (
	StepCommand StepKind = "command"
	StepComment StepKind = "comment"
	StepPause   StepKind = "pause"
	StepMarker  StepKind = "marker"
)

// Duration wraps time.Duration so scene files can use "250ms" style values.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// TimingProfile governs simulated typing speed for a scene or a single step.
type TimingProfile struct {
	BaseDelay   Duration `yaml:"base_delay"`
	JitterMin   float64  `yaml:"jitter_min"`
	JitterMax   float64  `yaml:"jitter_max"`
	DelayBefore Duration `yaml:"delay_before,omitempty"`
	DelayAfter  Duration `yaml:"delay_after,omitempty"`
}

// DefaultTiming is used when a scene omits its timing block.
func DefaultTiming() TimingProfile {
	return TimingProfile{
		BaseDelay: Duration(60 * time.Millisecond),
		JitterMin: 0.5,
		JitterMax: 1.5,
	}
}

func (p TimingProfile) validate() error {
	if p.BaseDelay < 0 {
		return fmt.Errorf("base_delay must be non-negative")
	}
	if p.DelayBefore < 0 || p.DelayAfter < 0 {
		return fmt.Errorf("step delays must be non-negative")
	}
	if p.JitterMin < 0 {
		return fmt.Errorf("jitter_min must be non-negative")
	}
	if p.JitterMin > p.JitterMax {
		return fmt.Errorf("jitter_min %g exceeds jitter_max %g", p.JitterMin, p.JitterMax)
	}
	return nil
}

// Step is one unit of a scene. Text carries the payload for command, comment,
// and marker steps. Wait is the pause length; a pause with zero Wait blocks
// until the operator continues.
type Step struct {
	Kind   StepKind       `yaml:"kind"`
	Text   string         `yaml:"text,omitempty"`
	Wait   Duration       `yaml:"wait,omitempty"`
	Timing *TimingProfile `yaml:"timing,omitempty"`
}

// Indefinite reports whether a pause step has no fixed duration.
func (s Step) Indefinite() bool {
	return s.Kind == StepPause && s.Wait == 0
}

// Scene is an ordered, named script of steps.
type Scene struct {
	Version int           `yaml:"version"`
	Name    string        `yaml:"name"`
	Timing  TimingProfile `yaml:"timing"`
	Steps   []Step        `yaml:"steps"`
}

// New returns a scene with the current schema version and default timing.
func New(name string) *Scene {
	return &Scene{
		Version: SchemaVersion,
		Name:    name,
		Timing:  DefaultTiming(),
	}
}

// EffectiveTiming returns the profile for a step, honoring its override.
func (sc *Scene) EffectiveTiming(step Step) TimingProfile {
	if step.Timing != nil {
		return *step.Timing
	}
	return sc.Timing
}

// Validate checks schema version, timing bounds, and command payloads.
// Command text must not contain control characters; the playback engine
// appends the final newline itself, and embedded control bytes would distort
// the keystroke schedule.
func (sc *Scene) Validate() error {
	if sc.Version != SchemaVersion {
		return fmt.Errorf("unsupported scene version %d (want %d)", sc.Version, SchemaVersion)
	}
	if sc.Name == "" {
		return fmt.Errorf("scene has no name")
	}
	if err := sc.Timing.validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	for i, step := range sc.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Kind {
	case StepCommand:
		if step.Text == "" {
			return fmt.Errorf("command step has no text")
		}
		for _, r := range step.Text {
			if r < 0x20 || r == 0x7f {
				return fmt.Errorf("command contains control character %q", r)
			}
		}
	case StepComment, StepMarker:
		if step.Text == "" {
			return fmt.Errorf("%s step has no text", step.Kind)
		}
	case StepPause:
		if step.Wait < 0 {
			return fmt.Errorf("pause has negative duration")
		}
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	if step.Timing != nil {
		if err := step.Timing.validate(); err != nil {
			return fmt.Errorf("timing override: %w", err)
		}
	}
	return nil
}

// Checksum returns a hex digest of the scene's canonical encoding. Snapshots
// record it so a resumed session can detect that the scene was edited.
func (sc *Scene) Checksum() (string, error) {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("could not encode scene: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
