package arena

import "gonum.org/v1/gonum/spatial/r2"

// Kinematics is the position and velocity of a moving entity.
type Kinematics struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Asteroid marks an asteroid entity.
type Asteroid struct {
	Size   int // 1-4; a hit splits size n into two of size n-1
	Radius float64
}

// Bullet marks a projectile entity.
type Bullet struct {
	Age float64 // Seconds since firing
}

// Ship is the controlled ship. There is exactly one per arena, so it lives
// outside the ECS world.
type Ship struct {
	Pos          r2.Vec
	Vel          r2.Vec
	Heading      float64 // Radians
	Speed        float64 // Signed, along Heading
	Radius       float64
	Lives        int
	Invulnerable float64 // Seconds left
	Cooldown     float64 // Seconds until the next shot is allowed
}
