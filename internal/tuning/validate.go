package tuning

import (
	"fmt"
	"strings"

	"github.com/xtding233/suika-backend/internal/rank"
)

// ValidateRaw checks semantic constraints of a RawConfig. Per-field ranges are
// checked on what is set; cross-field rules run on the normalized values.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// spawn
	if v := cfg.Spawn.PowerUpProb; v != nil && (*v < 0 || *v > 1) {
		bad("spawn.power_up_prob must be in [0,1]")
	}
	if v := cfg.Spawn.PowerUpRanks; v != nil && (*v < 1 || *v > rank.Count) {
		bad("spawn.power_up_ranks must be in [1,%d]", rank.Count)
	}
	if v := cfg.Spawn.NormalRanks; v != nil && (*v < 1 || *v > rank.Count) {
		bad("spawn.normal_ranks must be in [1,%d]", rank.Count)
	}
	if v := cfg.Spawn.DropCooldownMs; v != nil && *v < 0 {
		bad("spawn.drop_cooldown_ms must be >= 0")
	}
	if v := cfg.Spawn.PowerUpPity; v != nil && *v < 0 {
		bad("spawn.power_up_pity must be >= 0 (0 disables)")
	}

	// combo
	if v := cfg.Combo.WindowMs; v != nil && *v <= 0 {
		bad("combo.window_ms must be > 0")
	}
	if v := cfg.Combo.Step; v != nil && *v < 0 {
		bad("combo.step must be >= 0")
	}
	if v := cfg.Combo.MaxMultiplier; v != nil && *v < 1 {
		bad("combo.max_multiplier must be >= 1")
	}

	// power-ups
	if v := cfg.PowerUp.BombRadius; v != nil && *v <= 0 {
		bad("power_up.bomb_radius must be > 0")
	}
	if v := cfg.PowerUp.RainbowMs; v != nil && *v <= 0 {
		bad("power_up.rainbow_ms must be > 0")
	}

	// sentinel
	if v := cfg.Sentinel.VelocityEpsilon; v != nil && *v <= 0 {
		bad("sentinel.velocity_epsilon must be > 0")
	}
	if v := cfg.Sentinel.AngularEpsilon; v != nil && *v <= 0 {
		bad("sentinel.angular_epsilon must be > 0")
	}

	// modes
	if v := cfg.Modes.TimeAttackSeconds; v != nil && *v <= 0 {
		bad("modes.time_attack_seconds must be > 0")
	}
	if v := cfg.Modes.SurvivorSeconds; v != nil && *v <= 0 {
		bad("modes.survivor_seconds must be > 0")
	}

	// physics
	if v := cfg.Physics.TickHz; v != nil && (*v < 1 || *v > 1000) {
		bad("physics.tick_hz must be in [1,1000]")
	}
	if v := cfg.Physics.Gravity; v != nil && *v <= 0 {
		bad("physics.gravity must be > 0")
	}
	if v := cfg.Physics.Restitution; v != nil && (*v < 0 || *v > 1) {
		bad("physics.restitution must be in [0,1]")
	}
	if v := cfg.Physics.Friction; v != nil && *v < 0 {
		bad("physics.friction must be >= 0")
	}
	if v := cfg.Physics.Iterations; v != nil && *v < 1 {
		bad("physics.iterations must be >= 1")
	}

	// board, cross-field on effective values
	p := Normalize(cfg)
	if p.Width <= 0 || p.Height <= 0 {
		bad("board.width and board.height must be > 0")
	}
	if p.WallMargin < 0 {
		bad("board.wall_margin must be >= 0")
	}
	if p.CeilingY <= 0 || p.CeilingY >= p.Height {
		bad("board.ceiling_y must satisfy 0 < ceiling_y < height")
	}
	if p.AimY <= 0 || p.AimY >= p.CeilingY {
		bad("board.aim_y must satisfy 0 < aim_y < ceiling_y")
	}
	if 2*(p.WallMargin+rank.Max.Radius()) > p.Width {
		bad("board.width too narrow for the largest piece")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
