package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedSyncMatchesDefaults(t *testing.T) {
	cfg, err := LoadSync("")
	if err != nil {
		t.Fatalf("LoadSync() error: %v", err)
	}
	def := DefaultSyncConfig()

	if cfg.TimeScale != def.TimeScale {
		t.Errorf("TimeScale = %+v, expected %+v", cfg.TimeScale, def.TimeScale)
	}
	if cfg.Beat != def.Beat {
		t.Errorf("Beat = %+v, expected %+v", cfg.Beat, def.Beat)
	}
	if cfg.Audio != def.Audio {
		t.Errorf("Audio = %+v, expected %+v", cfg.Audio, def.Audio)
	}
}

func TestLoadSyncCustomPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sync.yaml")
	data := []byte("time_scale:\n  max: 2.0\naudio:\n  crossfade_ms: 250\n")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSync(p)
	if err != nil {
		t.Fatalf("LoadSync() error: %v", err)
	}
	if cfg.TimeScale.Max != 2.0 {
		t.Errorf("TimeScale.Max = %v, expected 2.0", cfg.TimeScale.Max)
	}
	// Keys absent from the file keep their defaults
	if cfg.TimeScale.Min != 0.1 {
		t.Errorf("TimeScale.Min = %v, expected 0.1", cfg.TimeScale.Min)
	}
	if cfg.Audio.CrossfadeDuration() != 250*time.Millisecond {
		t.Errorf("CrossfadeDuration() = %v, expected 250ms", cfg.Audio.CrossfadeDuration())
	}
}

func TestLoadSyncMissingCustomPath(t *testing.T) {
	_, err := LoadSync(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadSync() with missing custom path should fail")
	}
}

func TestNormalize(t *testing.T) {
	cfg := SyncConfig{
		TimeScale: TimeScaleConfig{Min: 3, Max: 0.5, Step: -1, Initial: 10},
		Beat:      BeatConfig{FallbackBPM: -5, OnBeatTolerance: 0.9, ChordMergeMS: -1},
		Audio:     AudioConfig{BaseVolume: 150, MinRate: 4, MaxRate: 1, CrossfadeMS: 0},
	}
	cfg.Normalize()

	if cfg.TimeScale.Min != 0.5 || cfg.TimeScale.Max != 3 {
		t.Errorf("time scale bounds = [%v, %v], expected [0.5, 3]", cfg.TimeScale.Min, cfg.TimeScale.Max)
	}
	if cfg.TimeScale.Initial != 3 {
		t.Errorf("Initial = %v, expected 3", cfg.TimeScale.Initial)
	}
	if cfg.TimeScale.Step != 0.1 {
		t.Errorf("Step = %v, expected 0.1", cfg.TimeScale.Step)
	}
	if cfg.Beat.FallbackBPM != 120 {
		t.Errorf("FallbackBPM = %v, expected 120", cfg.Beat.FallbackBPM)
	}
	if cfg.Beat.OnBeatTolerance != 0.5 {
		t.Errorf("OnBeatTolerance = %v, expected 0.5", cfg.Beat.OnBeatTolerance)
	}
	if cfg.Beat.ChordMergeMS != 0 {
		t.Errorf("ChordMergeMS = %v, expected 0", cfg.Beat.ChordMergeMS)
	}
	if cfg.Audio.BaseVolume != 100 {
		t.Errorf("BaseVolume = %v, expected 100", cfg.Audio.BaseVolume)
	}
	if cfg.Audio.MinRate != 1 || cfg.Audio.MaxRate != 4 {
		t.Errorf("rate bounds = [%v, %v], expected [1, 4]", cfg.Audio.MinRate, cfg.Audio.MaxRate)
	}
	if cfg.Audio.CrossfadeMS != 400 {
		t.Errorf("CrossfadeMS = %v, expected 400", cfg.Audio.CrossfadeMS)
	}
}

func TestEmbeddedLevels(t *testing.T) {
	levels, err := EmbeddedLevels()
	if err != nil {
		t.Fatalf("EmbeddedLevels() error: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("len(levels) = %d, expected 3", len(levels))
	}

	expected := []string{"level1", "level2", "level3"}
	for i, id := range expected {
		if levels[i].ID != id {
			t.Errorf("levels[%d].ID = %q, expected %q", i, levels[i].ID, id)
		}
	}

	kinds := map[string]bool{}
	for _, e := range levels[2].Enemies {
		kinds[e.Kind] = true
	}
	for _, k := range []string{"ranged", "melee", "kamikaze"} {
		if !kinds[k] {
			t.Errorf("level3 missing enemy kind %q", k)
		}
	}
}

func TestLoadLevel(t *testing.T) {
	cfg, err := LoadLevel("level2", "")
	if err != nil {
		t.Fatalf("LoadLevel() error: %v", err)
	}
	if cfg.Waves.Count != 6 {
		t.Errorf("Waves.Count = %d, expected 6", cfg.Waves.Count)
	}

	if _, err := LoadLevel("does-not-exist", ""); err == nil {
		t.Error("LoadLevel() for unknown id should fail")
	}
}

func TestLoadLevelFileValidation(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.yaml")
	data := []byte("id: bad\nwaves:\n  count: 2\nenemies:\n  - kind: dragon\n")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLevelFile(p); err == nil {
		t.Error("LoadLevelFile() should reject unknown enemy kind")
	}
}

func TestApplyDifficulty(t *testing.T) {
	tests := []struct {
		preset         DifficultyPreset
		health, damage int
	}{
		{DifficultyEasy, 45, 3},
		{DifficultyNormal, 60, 5},
		{DifficultyHard, 90, 8},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultLevelConfig()
			ApplyDifficulty(&cfg, tc.preset)
			e := cfg.Enemies[0]
			if e.Health != tc.health {
				t.Errorf("Health = %d, expected %d", e.Health, tc.health)
			}
			if e.Damage != tc.damage {
				t.Errorf("Damage = %d, expected %d", e.Damage, tc.damage)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	if p, ok := ParseDifficulty("hard"); !ok || p != DifficultyHard {
		t.Errorf("ParseDifficulty(hard) = %v, %v", p, ok)
	}
	if p, ok := ParseDifficulty(""); !ok || p != DifficultyNormal {
		t.Errorf("ParseDifficulty(\"\") = %v, %v", p, ok)
	}
	if _, ok := ParseDifficulty("nightmare"); ok {
		t.Error("ParseDifficulty(nightmare) should not be ok")
	}
}
