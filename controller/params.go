package controller

import (
	"fmt"
	"math"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/geometry"
)

// Params are the fixed, non-genome settings of a controller.
type Params struct {
	ProjectileSpeed       float64
	MaxThrust             float64 // Thrust output is [-1,1] times this
	FireThreshold         float64
	InterceptFallbackTime float64 // Bullet time fed to the rules when no intercept exists
	Collision             geometry.Predictor

	// A forecast collision within HeadOnBand radians of the heading turns
	// positive at no less than HeadOnTurn degrees per second.
	HeadOnBand float64
	HeadOnTurn float64
}

// DefaultParams returns the settings of the embedded default config.
func DefaultParams() Params {
	return Params{
		ProjectileSpeed:       800,
		MaxThrust:             480,
		FireThreshold:         0,
		InterceptFallbackTime: 1,
		Collision:             geometry.Predictor{Step: 0.1, Horizon: 7.5, SafetyBuffer: 5},
		HeadOnBand:            radians(5),
		HeadOnTurn:            30,
	}
}

// ParamsFromConfig maps the controller and collision sections of cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		ProjectileSpeed:       cfg.Derived.ProjectileSpeed,
		MaxThrust:             cfg.Controller.MaxThrust,
		FireThreshold:         cfg.Controller.FireThreshold,
		InterceptFallbackTime: cfg.Controller.InterceptFallbackTime,
		Collision: geometry.Predictor{
			Step:         cfg.Collision.Step,
			Horizon:      cfg.Collision.Horizon,
			SafetyBuffer: cfg.Collision.SafetyBuffer,
		},
		HeadOnBand: radians(cfg.Controller.HeadOnBand),
		HeadOnTurn: cfg.Controller.HeadOnTurn,
	}
}

// Validate checks that every setting is usable.
func (p Params) Validate() error {
	if !(p.ProjectileSpeed > 0) {
		return fmt.Errorf("projectile speed must be positive, got %v", p.ProjectileSpeed)
	}
	if p.MaxThrust < 0 {
		return fmt.Errorf("max thrust must be non-negative, got %v", p.MaxThrust)
	}
	if p.InterceptFallbackTime < 0 {
		return fmt.Errorf("intercept fallback time must be non-negative, got %v", p.InterceptFallbackTime)
	}
	if p.HeadOnBand < 0 || p.HeadOnBand > math.Pi {
		return fmt.Errorf("head-on band must be in [0, pi], got %v", p.HeadOnBand)
	}
	if maxTurn := SchemaV1.Entries[ShipTurn].Universe.Max; !(p.HeadOnTurn > 0) || p.HeadOnTurn > maxTurn {
		return fmt.Errorf("head-on turn must be in (0, %v], got %v", maxTurn, p.HeadOnTurn)
	}
	return p.Collision.Validate()
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
