// types.go
package tuning

import "time"

// Raw config loaded from YAML. Every tunable is a pointer so layers can tell
// "unset" from zero.
type RawConfig struct {
	Version  string         `yaml:"version"`
	Board    BoardConfig    `yaml:"board"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Combo    ComboConfig    `yaml:"combo"`
	PowerUp  PowerUpConfig  `yaml:"power_up"`
	Sentinel SentinelConfig `yaml:"sentinel"`
	Modes    ModesConfig    `yaml:"modes"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Notes    string         `yaml:"notes,omitempty"`
}

type BoardConfig struct {
	Width      *float64 `yaml:"width,omitempty"`
	Height     *float64 `yaml:"height,omitempty"`
	WallMargin *float64 `yaml:"wall_margin,omitempty"` // inner face of the side walls
	CeilingY   *float64 `yaml:"ceiling_y,omitempty"`
	AimY       *float64 `yaml:"aim_y,omitempty"`
}

type SpawnConfig struct {
	PowerUpProb    *float64 `yaml:"power_up_prob,omitempty"`
	PowerUpRanks   *int     `yaml:"power_up_ranks,omitempty"` // drawn from the N smallest ranks
	NormalRanks    *int     `yaml:"normal_ranks,omitempty"`
	DropCooldownMs *int     `yaml:"drop_cooldown_ms,omitempty"`
	PowerUpPity    *int     `yaml:"power_up_pity,omitempty"` // 0 = off
}

type ComboConfig struct {
	WindowMs      *int     `yaml:"window_ms,omitempty"`
	Step          *float64 `yaml:"step,omitempty"`
	MaxMultiplier *float64 `yaml:"max_multiplier,omitempty"`
}

type PowerUpConfig struct {
	BombRadius *float64 `yaml:"bomb_radius,omitempty"`
	RainbowMs  *int     `yaml:"rainbow_ms,omitempty"`
}

type SentinelConfig struct {
	VelocityEpsilon *float64 `yaml:"velocity_epsilon,omitempty"`
	AngularEpsilon  *float64 `yaml:"angular_epsilon,omitempty"`
}

type ModesConfig struct {
	TimeAttackSeconds *int `yaml:"time_attack_seconds,omitempty"`
	SurvivorSeconds   *int `yaml:"survivor_seconds,omitempty"`
}

type PhysicsConfig struct {
	TickHz      *int     `yaml:"tick_hz,omitempty"`
	Gravity     *float64 `yaml:"gravity,omitempty"`
	Restitution *float64 `yaml:"restitution,omitempty"`
	Friction    *float64 `yaml:"friction,omitempty"`
	Iterations  *int     `yaml:"iterations,omitempty"`
}

// Params are the normalized values the game layer runs on.
type Params struct {
	Version string // effective config version for tracing

	Width, Height float64
	WallMargin    float64
	CeilingY      float64
	AimY          float64

	PowerUpProb  float64
	PowerUpRanks int
	NormalRanks  int
	DropCooldown time.Duration
	PowerUpPity  int

	ComboWindow   time.Duration
	ComboStep     float64
	MaxMultiplier float64

	BombRadius float64
	Rainbow    time.Duration

	VelocityEpsilon float64
	AngularEpsilon  float64

	TimeAttack    time.Duration
	SurvivorAfter time.Duration

	TickHz      int
	Gravity     float64
	Restitution float64
	Friction    float64
	Iterations  int
}

// Default returns the stock rules.
func Default() Params {
	return Params{
		Version:         "builtin",
		Width:           400,
		Height:          600,
		WallMargin:      20,
		CeilingY:        100,
		AimY:            50,
		PowerUpProb:     0.10,
		PowerUpRanks:    3,
		NormalRanks:     5,
		DropCooldown:    1000 * time.Millisecond,
		PowerUpPity:     0,
		ComboWindow:     2000 * time.Millisecond,
		ComboStep:       0.5,
		MaxMultiplier:   5.0,
		BombRadius:      100,
		Rainbow:         10000 * time.Millisecond,
		VelocityEpsilon: 0.01,
		AngularEpsilon:  0.01,
		TimeAttack:      120 * time.Second,
		SurvivorAfter:   300 * time.Second,
		TickHz:          60,
		Gravity:         0.25,
		Restitution:     0.3,
		Friction:        0.5,
		Iterations:      8,
	}
}

// TickDuration is the virtual time one physics step represents.
func (p Params) TickDuration() time.Duration {
	if p.TickHz <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(p.TickHz)
}

// Normalize fills unset raw fields from Default.
func Normalize(raw RawConfig) Params {
	p := Default()
	if raw.Version != "" {
		p.Version = raw.Version
	}
	setF(&p.Width, raw.Board.Width)
	setF(&p.Height, raw.Board.Height)
	setF(&p.WallMargin, raw.Board.WallMargin)
	setF(&p.CeilingY, raw.Board.CeilingY)
	setF(&p.AimY, raw.Board.AimY)

	setF(&p.PowerUpProb, raw.Spawn.PowerUpProb)
	setI(&p.PowerUpRanks, raw.Spawn.PowerUpRanks)
	setI(&p.NormalRanks, raw.Spawn.NormalRanks)
	setMs(&p.DropCooldown, raw.Spawn.DropCooldownMs)
	setI(&p.PowerUpPity, raw.Spawn.PowerUpPity)

	setMs(&p.ComboWindow, raw.Combo.WindowMs)
	setF(&p.ComboStep, raw.Combo.Step)
	setF(&p.MaxMultiplier, raw.Combo.MaxMultiplier)

	setF(&p.BombRadius, raw.PowerUp.BombRadius)
	setMs(&p.Rainbow, raw.PowerUp.RainbowMs)

	setF(&p.VelocityEpsilon, raw.Sentinel.VelocityEpsilon)
	setF(&p.AngularEpsilon, raw.Sentinel.AngularEpsilon)

	if raw.Modes.TimeAttackSeconds != nil {
		p.TimeAttack = time.Duration(*raw.Modes.TimeAttackSeconds) * time.Second
	}
	if raw.Modes.SurvivorSeconds != nil {
		p.SurvivorAfter = time.Duration(*raw.Modes.SurvivorSeconds) * time.Second
	}

	setI(&p.TickHz, raw.Physics.TickHz)
	setF(&p.Gravity, raw.Physics.Gravity)
	setF(&p.Restitution, raw.Physics.Restitution)
	setF(&p.Friction, raw.Physics.Friction)
	setI(&p.Iterations, raw.Physics.Iterations)
	return p
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setI(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setMs(dst *time.Duration, v *int) {
	if v != nil {
		*dst = time.Duration(*v) * time.Millisecond
	}
}
