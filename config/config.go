// Package config provides configuration loading and access for the controller,
// the training arena and the tuning tools.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Controller ControllerConfig `yaml:"controller"`
	Collision  CollisionConfig  `yaml:"collision"`
	Arena      ArenaConfig      `yaml:"arena"`
	Tuner      TunerConfig      `yaml:"tuner"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Archive    ArchiveConfig    `yaml:"archive"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ControllerConfig holds the fixed (non-genome) parameters of the fuzzy controller.
type ControllerConfig struct {
	ProjectileSpeed       float64 `yaml:"projectile_speed"`        // 0 = use arena.bullets.speed
	MaxThrust             float64 `yaml:"max_thrust"`              // Scales the [-1,1] thrust output
	FireThreshold         float64 `yaml:"fire_threshold"`          // Fire when the fire output is at or above this
	InterceptFallbackTime float64 `yaml:"intercept_fallback_time"` // Bullet time assumed when no intercept exists
	HeadOnBand            float64 `yaml:"head_on_band"`            // Degrees either side of the heading that count as dead ahead
	HeadOnTurn            float64 `yaml:"head_on_turn"`            // Minimum turn rate for a dead-ahead threat, degrees per second
}

// CollisionConfig holds collision forecast parameters.
type CollisionConfig struct {
	Step         float64 `yaml:"step"`          // Seconds between forecast samples
	Horizon      float64 `yaml:"horizon"`       // Seconds to look ahead
	SafetyBuffer float64 `yaml:"safety_buffer"` // Extra clearance added to the sum of radii
}

// ArenaConfig holds the training arena's world rules.
type ArenaConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	DT        float64 `yaml:"dt"`
	TimeLimit float64 `yaml:"time_limit"` // Seconds; 0 = no limit

	Asteroids AsteroidConfig `yaml:"asteroids"`
	Ship      ShipConfig     `yaml:"ship"`
	Bullets   BulletConfig   `yaml:"bullets"`
	Layout    LayoutConfig   `yaml:"layout"`
}

// AsteroidConfig holds asteroid spawning and splitting parameters.
type AsteroidConfig struct {
	Count       int     `yaml:"count"`
	Size        int     `yaml:"size"`         // Initial size, 1-4; a hit splits a size n asteroid into two of size n-1
	RadiusScale float64 `yaml:"radius_scale"` // Radius = size * radius_scale
	MinSpeed    float64 `yaml:"min_speed"`
	MaxSpeed    float64 `yaml:"max_speed"`
	SplitAngle  float64 `yaml:"split_angle"` // Degrees each fragment deviates from the parent heading
	SafeRadius  float64 `yaml:"safe_radius"` // No asteroid spawns this close to the ship
}

// ShipConfig holds ship kinematics and lives.
type ShipConfig struct {
	StartX       float64 `yaml:"start_x"`
	StartY       float64 `yaml:"start_y"`
	StartHeading float64 `yaml:"start_heading"` // Degrees
	Radius       float64 `yaml:"radius"`
	Lives        int     `yaml:"lives"`
	MaxSpeed     float64 `yaml:"max_speed"`
	Drag         float64 `yaml:"drag"` // Speed lost per second when not thrusting
	MaxTurnRate  float64 `yaml:"max_turn_rate"`
	Respawn      float64 `yaml:"respawn_invulnerability"` // Seconds of invulnerability after a death
}

// BulletConfig holds projectile parameters.
type BulletConfig struct {
	Speed    float64 `yaml:"speed"`
	Lifetime float64 `yaml:"lifetime"`
	Cooldown float64 `yaml:"cooldown"` // Minimum seconds between shots
}

// LayoutConfig holds the noise parameters of the asteroid field layout.
type LayoutConfig struct {
	Scale      float64 `yaml:"scale"`      // Base noise frequency
	Octaves    int     `yaml:"octaves"`    // FBM octaves
	Lacunarity float64 `yaml:"lacunarity"` // Frequency multiplier per octave
	Gain       float64 `yaml:"gain"`       // Amplitude multiplier per octave
	Candidates int     `yaml:"candidates"` // Positions sampled per asteroid; the densest wins
}

// TunerConfig holds CMA-ES search parameters.
type TunerConfig struct {
	Seeds        int     `yaml:"seeds"`          // Episodes per evaluation
	MaxEvals     int     `yaml:"max_evals"`      // Function evaluation budget
	Population   int     `yaml:"population"`     // 0 = auto
	InitStepSize float64 `yaml:"init_step_size"` // Initial CMA-ES sigma in genome units
	DeathPenalty float64 `yaml:"death_penalty"`  // Hits one death is worth
	Workers      int     `yaml:"workers"`        // Concurrent evaluations; 0 = GOMAXPROCS
	BaseSeed     int64   `yaml:"base_seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	SampleInterval      float64 `yaml:"sample_interval"` // Seconds between episode CSV rows
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ArchiveConfig selects the genome archive backend.
type ArchiveConfig struct {
	Kind string `yaml:"kind"` // memory or sqlite
	Path string `yaml:"path"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32       float32 // Screen.Width as float32
	ScreenH32       float32 // Screen.Height as float32
	ArenaW32        float32 // Arena.Width as float32
	ArenaH32        float32 // Arena.Height as float32
	Diagonal        float64 // Arena diagonal
	ProjectileSpeed float64 // Effective projectile speed seen by the controller
	TicksPerSample  int     // Telemetry.SampleInterval in arena ticks
	MaxTicks        int     // Arena.TimeLimit in ticks; 0 = unlimited
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Refresh validates c and recomputes its derived values. Call it after
// changing fields of a loaded config.
func (c *Config) Refresh() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("arena size must be positive, got %vx%v", c.Arena.Width, c.Arena.Height)
	case c.Arena.DT <= 0:
		return fmt.Errorf("arena dt must be positive, got %v", c.Arena.DT)
	case c.Arena.Asteroids.Size < 1 || c.Arena.Asteroids.Size > 4:
		return fmt.Errorf("asteroid size must be 1-4, got %d", c.Arena.Asteroids.Size)
	case c.Collision.Step <= 0:
		return fmt.Errorf("collision step must be positive, got %v", c.Collision.Step)
	case c.Archive.Kind != "memory" && c.Archive.Kind != "sqlite":
		return fmt.Errorf("unknown archive kind %q", c.Archive.Kind)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.ArenaW32 = float32(c.Arena.Width)
	c.Derived.ArenaH32 = float32(c.Arena.Height)
	c.Derived.Diagonal = math.Hypot(c.Arena.Width, c.Arena.Height)

	// The controller leads targets with the arena's bullet speed unless told otherwise
	c.Derived.ProjectileSpeed = c.Controller.ProjectileSpeed
	if c.Derived.ProjectileSpeed == 0 {
		c.Derived.ProjectileSpeed = c.Arena.Bullets.Speed
	}

	c.Derived.TicksPerSample = int(math.Round(c.Telemetry.SampleInterval / c.Arena.DT))
	if c.Derived.TicksPerSample < 1 {
		c.Derived.TicksPerSample = 1
	}
	if c.Arena.TimeLimit > 0 {
		c.Derived.MaxTicks = int(math.Round(c.Arena.TimeLimit / c.Arena.DT))
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
