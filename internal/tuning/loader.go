package tuning

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/suika/tuning
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files this loader reads for profile, for watching.
func (l *Loader) Paths(profile string) []string {
	out := []string{l.paths.DefaultPath()}
	if profile != "" {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[""] = defCfg
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	return Parse(b)
}

// Parse checks a YAML document against the schema and decodes it.
func Parse(b []byte) (RawConfig, error) {
	if err := ValidateSchema(b); err != nil {
		return RawConfig{}, err
	}
	var cfg RawConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b on a: any field set in b wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	out.Board.Width = pick(a.Board.Width, b.Board.Width)
	out.Board.Height = pick(a.Board.Height, b.Board.Height)
	out.Board.WallMargin = pick(a.Board.WallMargin, b.Board.WallMargin)
	out.Board.CeilingY = pick(a.Board.CeilingY, b.Board.CeilingY)
	out.Board.AimY = pick(a.Board.AimY, b.Board.AimY)

	out.Spawn.PowerUpProb = pick(a.Spawn.PowerUpProb, b.Spawn.PowerUpProb)
	out.Spawn.PowerUpRanks = pick(a.Spawn.PowerUpRanks, b.Spawn.PowerUpRanks)
	out.Spawn.NormalRanks = pick(a.Spawn.NormalRanks, b.Spawn.NormalRanks)
	out.Spawn.DropCooldownMs = pick(a.Spawn.DropCooldownMs, b.Spawn.DropCooldownMs)
	out.Spawn.PowerUpPity = pick(a.Spawn.PowerUpPity, b.Spawn.PowerUpPity)

	out.Combo.WindowMs = pick(a.Combo.WindowMs, b.Combo.WindowMs)
	out.Combo.Step = pick(a.Combo.Step, b.Combo.Step)
	out.Combo.MaxMultiplier = pick(a.Combo.MaxMultiplier, b.Combo.MaxMultiplier)

	out.PowerUp.BombRadius = pick(a.PowerUp.BombRadius, b.PowerUp.BombRadius)
	out.PowerUp.RainbowMs = pick(a.PowerUp.RainbowMs, b.PowerUp.RainbowMs)

	out.Sentinel.VelocityEpsilon = pick(a.Sentinel.VelocityEpsilon, b.Sentinel.VelocityEpsilon)
	out.Sentinel.AngularEpsilon = pick(a.Sentinel.AngularEpsilon, b.Sentinel.AngularEpsilon)

	out.Modes.TimeAttackSeconds = pick(a.Modes.TimeAttackSeconds, b.Modes.TimeAttackSeconds)
	out.Modes.SurvivorSeconds = pick(a.Modes.SurvivorSeconds, b.Modes.SurvivorSeconds)

	out.Physics.TickHz = pick(a.Physics.TickHz, b.Physics.TickHz)
	out.Physics.Gravity = pick(a.Physics.Gravity, b.Physics.Gravity)
	out.Physics.Restitution = pick(a.Physics.Restitution, b.Physics.Restitution)
	out.Physics.Friction = pick(a.Physics.Friction, b.Physics.Friction)
	out.Physics.Iterations = pick(a.Physics.Iterations, b.Physics.Iterations)

	return out
}

func pick[T any](base, over *T) *T {
	if over != nil {
		v := *over
		return &v
	}
	return base
}
