// Package controller is the per-tick flight controller: it turns a snapshot
// of the ship and nearby asteroids into thrust, turn rate and fire commands
// through genome-tuned fuzzy inference.
package controller

import (
	"math"

	"github.com/pthm-cable/fuzzship/fuzzy"
	"github.com/pthm-cable/fuzzship/genome"
)

// Linguistic variables, in registry order.
const (
	BulletTime     fuzzy.VarID = iota // Projectile travel time to the intercept, seconds
	ThetaDelta                        // Heading correction to the intercept, radians
	ShipSpeed                         // Signed speed along the heading
	CollisionTime                     // Seconds until the predicted collision
	CollisionTheta                    // Direction of the incoming collision relative to heading, radians
	ShipTurn                          // Turn rate, degrees per second
	ShipThrust                        // Thrust as a fraction of the maximum
	ShipFire                          // Fire when at or above the fire threshold
)

// Labels of a 3-way partition.
const (
	S fuzzy.Label = iota
	M
	L
)

// Labels of a 5-way partition.
const (
	NL5 fuzzy.Label = iota
	NS5
	Z5
	PS5
	PL5
)

// Labels of a 7-way partition.
const (
	NL fuzzy.Label = iota
	NM
	NS
	Z
	PS
	PM
	PL
)

// Fire labels.
const (
	FireNo fuzzy.Label = iota
	FireMaybe
	FireYes
)

// SchemaV1 is the genome layout of the controller: 22 genes.
var SchemaV1 = genome.MustSchema(1,
	genome.Entry{Var: BulletTime, Name: "bullet_time", Role: fuzzy.Antecedent, Arity: 3,
		Universe: fuzzy.Universe{Min: 0, Max: 1, Resolution: 0.002}},
	genome.Entry{Var: ThetaDelta, Name: "theta_delta", Role: fuzzy.Antecedent, Arity: 7,
		Universe: fuzzy.Universe{Min: -math.Pi, Max: math.Pi, Resolution: 0.01}},
	genome.Entry{Var: ShipSpeed, Name: "ship_speed", Role: fuzzy.Antecedent, Arity: 5,
		Universe: fuzzy.Universe{Min: -240, Max: 240, Resolution: 1}},
	genome.Entry{Var: CollisionTime, Name: "collision_time", Role: fuzzy.Antecedent, Arity: 3,
		Universe: fuzzy.Universe{Min: 0, Max: 7.5, Resolution: 0.02}},
	genome.Entry{Var: CollisionTheta, Name: "collision_theta", Role: fuzzy.Antecedent, Arity: 5,
		Universe: fuzzy.Universe{Min: -math.Pi, Max: math.Pi, Resolution: 0.01}},
	genome.Entry{Var: ShipTurn, Name: "ship_turn", Role: fuzzy.Consequent, Arity: 7,
		Universe: fuzzy.Universe{Min: -180, Max: 180, Resolution: 1}, Neutral: 0},
	genome.Entry{Var: ShipThrust, Name: "ship_thrust", Role: fuzzy.Consequent, Arity: 5,
		Universe: fuzzy.Universe{Min: -1, Max: 1, Resolution: 0.01}, Neutral: 0},
	genome.Entry{Var: ShipFire, Name: "ship_fire", Role: fuzzy.Consequent, Arity: 3,
		Universe: fuzzy.Universe{Min: -1, Max: 1, Resolution: 0.01}, Neutral: -1,
		Labels: []string{"N", "Z", "Y"}},
)
