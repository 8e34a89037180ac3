// resolve.go
package tuning

// Overrides carries per-request or command-line adjustments applied on top of
// the file layers, e.g. a harder power-up rate for one session.
type Overrides struct {
	PowerUpProb    *float64
	PowerUpPity    *int
	DropCooldownMs *int
	ComboWindowMs  *int
	BombRadius     *float64
	TimeAttackSecs *int
	TickHz         *int
}

type Resolver interface {
	// Returns merged RawConfig and normalized Params
	Resolve(profile string, o Overrides) (RawConfig, Params, error)
}

// Apply layers o over raw.
func (o Overrides) Apply(raw RawConfig) RawConfig {
	out := raw
	out.Spawn.PowerUpProb = pick(out.Spawn.PowerUpProb, o.PowerUpProb)
	out.Spawn.PowerUpPity = pick(out.Spawn.PowerUpPity, o.PowerUpPity)
	out.Spawn.DropCooldownMs = pick(out.Spawn.DropCooldownMs, o.DropCooldownMs)
	out.Combo.WindowMs = pick(out.Combo.WindowMs, o.ComboWindowMs)
	out.PowerUp.BombRadius = pick(out.PowerUp.BombRadius, o.BombRadius)
	out.Modes.TimeAttackSeconds = pick(out.Modes.TimeAttackSeconds, o.TimeAttackSecs)
	out.Physics.TickHz = pick(out.Physics.TickHz, o.TickHz)
	return out
}

// Resolve loads default ← profile, applies o, validates and normalizes.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = o.Apply(raw)
	if err := ValidateRaw(raw); err != nil {
		return RawConfig{}, Params{}, err
	}
	return raw, Normalize(raw), nil
}

var _ Resolver = (*Loader)(nil)
