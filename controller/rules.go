package controller

import (
	"fmt"

	"github.com/pthm-cable/fuzzship/fuzzy"
)

var (
	threeWay = []string{"S", "M", "L"}
	fiveWay  = []string{"NL", "NS", "Z", "PS", "PL"}
	sevenWay = []string{"NL", "NM", "NS", "Z", "PS", "PM", "PL"}
)

// Rules returns the controller's rule catalog: targeting rules first, then
// speed bleed, then avoidance.
func Rules() []fuzzy.Rule {
	var rules []fuzzy.Rule
	rules = append(rules, targetingRules()...)
	rules = append(rules, bleedRules()...)
	rules = append(rules, avoidanceRules()...)
	return rules
}

// avoidanceOffset is the index of the first avoidance rule in Rules().
func avoidanceOffset() int {
	return len(targetingRules()) + len(bleedRules())
}

// targetingRules turn towards the intercept by the correction's own label.
// They fire when the correction is small or the intercept is imminent.
func targetingRules() []fuzzy.Rule {
	var rules []fuzzy.Rule
	for bt := S; bt <= L; bt++ {
		for theta := NL; theta <= PL; theta++ {
			fire := FireNo
			if bt == S || theta == NS || theta == Z || theta == PS {
				fire = FireYes
			}
			rules = append(rules, fuzzy.Rule{
				Name: fmt.Sprintf("aim_%s_%s", threeWay[bt], sevenWay[theta]),
				If:   fuzzy.And(fuzzy.Is(BulletTime, bt), fuzzy.Is(ThetaDelta, theta)),
				Then: []fuzzy.Assignment{fuzzy.Set(ShipTurn, theta), fuzzy.Set(ShipFire, fire)},
			})
		}
	}
	return rules
}

// bleedRules thrust against the current speed while no collision is near.
func bleedRules() []fuzzy.Rule {
	opposite := map[fuzzy.Label]fuzzy.Label{PL5: NL5, PS5: NS5, Z5: Z5, NS5: PS5, NL5: PL5}
	var rules []fuzzy.Rule
	for speed := NL5; speed <= PL5; speed++ {
		rules = append(rules, fuzzy.Rule{
			Name: "bleed_" + fiveWay[speed],
			If:   fuzzy.And(fuzzy.Is(CollisionTime, L), fuzzy.Is(ShipSpeed, speed)),
			Then: []fuzzy.Assignment{fuzzy.Set(ShipThrust, opposite[speed])},
		})
	}
	return rules
}

// avoidanceRules back away from frontal collisions, run from rear ones and
// turn the ship side-on to the threat. Short times use the large labels,
// medium times the small and medium ones.
//
// A dead-ahead threat always turns positive (counter-clockwise). Z5 and PS5
// turn opposite ways, so a genome can overlap them at zero and cancel the
// centroid; Decide settles that case after inference.
func avoidanceRules() []fuzzy.Rule {
	type response struct {
		thrust fuzzy.Label
		turn   fuzzy.Label
		turns  bool
	}
	table := map[fuzzy.Label][2]response{ // indexed by urgency: 0 = S, 1 = M
		NL5: {{thrust: PL5}, {thrust: PS5}},
		NS5: {{thrust: NL5, turn: PL, turns: true}, {thrust: NS5, turn: PM, turns: true}},
		Z5:  {{thrust: NL5, turn: PL, turns: true}, {thrust: NS5, turn: PM, turns: true}},
		PS5: {{thrust: NL5, turn: NL, turns: true}, {thrust: NS5, turn: NM, turns: true}},
		PL5: {{thrust: PL5}, {thrust: PS5}},
	}

	var rules []fuzzy.Rule
	for urgency, ct := range []fuzzy.Label{S, M} {
		for theta := NL5; theta <= PL5; theta++ {
			r := table[theta][urgency]
			then := []fuzzy.Assignment{fuzzy.Set(ShipThrust, r.thrust)}
			if r.turns {
				then = append(then, fuzzy.Set(ShipTurn, r.turn))
			}
			rules = append(rules, fuzzy.Rule{
				Name: fmt.Sprintf("avoid_%s_%s", threeWay[ct], fiveWay[theta]),
				If:   fuzzy.And(fuzzy.Is(CollisionTime, ct), fuzzy.Is(CollisionTheta, theta)),
				Then: then,
			})
		}
	}
	return rules
}
