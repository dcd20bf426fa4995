package scene

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func demoScene() *Scene {
	fast := TimingProfile{
		BaseDelay: Duration(10 * time.Millisecond),
		JitterMin: 0.9,
		JitterMax: 1.1,
	}
	return &Scene{
		Version: SchemaVersion,
		Name:    "demo",
		Timing:  DefaultTiming(),
		Steps: []Step{
			{Kind: StepComment, Text: "warm up"},
			{Kind: StepCommand, Text: "echo hi"},
			{Kind: StepPause, Wait: Duration(time.Second)},
			{Kind: StepCommand, Text: "ls -la", Timing: &fast},
			{Kind: StepMarker, Text: "finale"},
			{Kind: StepPause},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		ok     bool
	}{
		{
			name:   "valid scene",
			mutate: func(*Scene) {},
			ok:     true,
		},
		{
			name:   "unsupported version",
			mutate: func(sc *Scene) { sc.Version = 99 },
			ok:     false,
		},
		{
			name:   "missing name",
			mutate: func(sc *Scene) { sc.Name = "" },
			ok:     false,
		},
		{
			name:   "command with embedded newline",
			mutate: func(sc *Scene) { sc.Steps[1].Text = "echo hi\nrm -rf /" },
			ok:     false,
		},
		{
			name:   "command with tab",
			mutate: func(sc *Scene) { sc.Steps[1].Text = "echo\thi" },
			ok:     false,
		},
		{
			name:   "empty command",
			mutate: func(sc *Scene) { sc.Steps[1].Text = "" },
			ok:     false,
		},
		{
			name:   "negative base delay",
			mutate: func(sc *Scene) { sc.Timing.BaseDelay = -1 },
			ok:     false,
		},
		{
			name:   "jitter bounds inverted",
			mutate: func(sc *Scene) { sc.Timing.JitterMin = 2; sc.Timing.JitterMax = 1 },
			ok:     false,
		},
		{
			name:   "negative jitter",
			mutate: func(sc *Scene) { sc.Timing.JitterMin = -0.5 },
			ok:     false,
		},
		{
			name:   "bad step timing override",
			mutate: func(sc *Scene) { sc.Steps[3].Timing.JitterMax = 0 },
			ok:     false,
		},
		{
			name:   "negative pause",
			mutate: func(sc *Scene) { sc.Steps[2].Wait = Duration(-time.Second) },
			ok:     false,
		},
		{
			name:   "unknown step kind",
			mutate: func(sc *Scene) { sc.Steps[0].Kind = "dance" },
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := demoScene()
			tt.mutate(sc)
			err := sc.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestIndefinitePause(t *testing.T) {
	if (Step{Kind: StepPause}).Indefinite() != true {
		t.Error("zero-wait pause should be indefinite")
	}
	if (Step{Kind: StepPause, Wait: Duration(time.Second)}).Indefinite() {
		t.Error("timed pause should not be indefinite")
	}
	if (Step{Kind: StepCommand, Text: "ls"}).Indefinite() {
		t.Error("command is never an indefinite pause")
	}
}

func TestEffectiveTiming(t *testing.T) {
	sc := demoScene()
	if got := sc.EffectiveTiming(sc.Steps[1]); got != sc.Timing {
		t.Errorf("step without override should use scene timing, got %+v", got)
	}
	if got := sc.EffectiveTiming(sc.Steps[3]); got != *sc.Steps[3].Timing {
		t.Errorf("step override not honored, got %+v", got)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	sc := demoScene()

	if err := store.Save(sc); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	loaded, err := store.Load("demo")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if !reflect.DeepEqual(sc, loaded) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", sc, loaded)
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) = %v, want ErrNotFound", err)
	}
}

func TestStoreLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	writeScene := func(t *testing.T, name, content string) {
		t.Helper()
		if err := writeFile(store.Path(name), content); err != nil {
			t.Fatal(err)
		}
	}

	writeScene(t, "garbage", "{{{not yaml")
	if _, err := store.Load("garbage"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Load(garbage) = %v, want ErrInvalidFormat", err)
	}

	writeScene(t, "oldver", "version: 0\nname: oldver\ntiming:\n  base_delay: 10ms\n  jitter_min: 1\n  jitter_max: 1\nsteps: []\n")
	if _, err := store.Load("oldver"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Load(oldver) = %v, want ErrInvalidFormat", err)
	}
}

func TestStoreList(t *testing.T) {
	store := NewStore(t.TempDir())

	names, err := store.List()
	if err != nil || names != nil {
		t.Fatalf("List() on empty dir = %v, %v", names, err)
	}

	for _, name := range []string{"zulu", "alpha"} {
		sc := demoScene()
		sc.Name = name
		if err := store.Save(sc); err != nil {
			t.Fatalf("Save(%s) = %v", name, err)
		}
	}

	names, err = store.List()
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	want := []string{"alpha", "zulu"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestStoreRemove(t *testing.T) {
	store := NewStore(t.TempDir())
	sc := demoScene()
	if err := store.Save(sc); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("demo"); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if err := store.Remove("demo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() twice = %v, want ErrNotFound", err)
	}
}

func TestChecksumStability(t *testing.T) {
	a, err := demoScene().Checksum()
	if err != nil {
		t.Fatal(err)
	}
	b, err := demoScene().Checksum()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("checksum not stable across identical scenes")
	}

	edited := demoScene()
	edited.Steps[1].Text = "echo bye"
	c, err := edited.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Error("checksum unchanged after editing a step")
	}
}

func TestDurationYAML(t *testing.T) {
	store := NewStore(t.TempDir())
	content := "version: 1\nname: durs\ntiming:\n  base_delay: 25ms\n  jitter_min: 0.5\n  jitter_max: 1.5\n  delay_after: 2s\nsteps:\n  - kind: command\n    text: echo hi\n  - kind: pause\n    wait: 1.5s\n"
	if err := writeFile(store.Path("durs"), content); err != nil {
		t.Fatal(err)
	}

	sc, err := store.Load("durs")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if got := time.Duration(sc.Timing.BaseDelay); got != 25*time.Millisecond {
		t.Errorf("base_delay = %v, want 25ms", got)
	}
	if got := time.Duration(sc.Timing.DelayAfter); got != 2*time.Second {
		t.Errorf("delay_after = %v, want 2s", got)
	}
	if got := time.Duration(sc.Steps[1].Wait); got != 1500*time.Millisecond {
		t.Errorf("pause wait = %v, want 1.5s", got)
	}
}
