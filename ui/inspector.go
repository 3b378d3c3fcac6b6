package ui

import (
	"fmt"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/fuzzy"
)

// ControllerPanel shows the controller's view of the last tick: targeting,
// collision prediction, fuzzy inputs and outputs, and optionally the
// strongest rules.
type ControllerPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32

	rules   *fuzzy.RuleBase
	inputs  []Gauge
	outputs []Gauge
}

// NewControllerPanel creates a panel for the controller's rule base.
func NewControllerPanel(x, y, width int32, rules *fuzzy.RuleBase) *ControllerPanel {
	return &ControllerPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		rules:    rules,
		inputs:   GaugesFor(rules.Registry(), fuzzy.Antecedent),
		outputs:  GaugesFor(rules.Registry(), fuzzy.Consequent),
	}
}

// SetPosition updates the panel position.
func (c *ControllerPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel. topRules is how many of the strongest rules to
// list; zero hides the rule section.
func (c *ControllerPanel) Draw(diag controller.Diagnostics, topRules int) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	contentWidth := c.width - padding*2
	x := c.x + padding

	lines := 4 + 2 + len(c.inputs) + len(c.outputs)
	if topRules > 0 {
		lines += 1 + topRules
	}
	panelHeight := padding*2 + int32(lines)*(r.Theme.LineHeight+2) + 18
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText(fmt.Sprintf("Controller  tick %d", diag.Tick), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	y = c.drawTargeting(x, y, diag)

	y = r.DrawSectionHeader(x, y, "Inputs")
	for _, g := range c.inputs {
		v, ok := diag.Inputs[g.ID]
		if !ok {
			y = r.DrawLabelValue(x, y, g.Label, "-")
			continue
		}
		y = r.DrawGauge(x, y, g, v, contentWidth)
	}

	y = r.DrawSectionHeader(x, y, "Outputs")
	for _, g := range c.outputs {
		out := diag.Outputs.Get(g.ID)
		label := g.Label
		if !out.Fired {
			label += " (idle)"
		}
		g.Label = label
		y = r.DrawGauge(x, y, g, out.Value, contentWidth)
	}

	if topRules > 0 {
		y = r.DrawSectionHeader(x, y, "Rules")
		for _, i := range TopRules(diag.Outputs.Strengths, topRules) {
			text := fmt.Sprintf("%.2f %s", diag.Outputs.Strengths[i], c.rules.Describe(i))
			rl.DrawText(text, x, y, 10, r.Theme.LabelColor)
			y += r.Theme.LineHeight
		}
	}

	if diag.Err != nil {
		rl.DrawText(diag.Err.Error(), x, y, r.Theme.FontSize, rl.Red)
		y += r.Theme.LineHeight
	}

	return y
}

func (c *ControllerPanel) drawTargeting(x, y int32, diag controller.Diagnostics) int32 {
	r := c.renderer
	y = r.DrawSectionHeader(x, y, "Targeting")

	if diag.Target < 0 {
		y = r.DrawLabelValue(x, y, "Target", "none")
	} else {
		conf := "ok"
		if diag.LowConfidence() {
			conf = "low"
		}
		y = r.DrawLabelValue(x, y, "Target", fmt.Sprintf("#%d (%s)", diag.Target, conf))
		y = r.DrawLabelValue(x, y, "Intercept", fmt.Sprintf("%.2fs @ %+.2f rad", diag.Intercept.Time, diag.Intercept.Correction))
	}

	if diag.Collision.Hit {
		y = r.DrawLabelValue(x, y, "Collision", fmt.Sprintf("#%d in %.2fs", diag.Collision.Index, diag.Collision.Time))
		if diag.HeadOn {
			y = r.DrawLabelValue(x, y, "Head-on", "turning positive")
		}
	} else {
		y = r.DrawLabelValue(x, y, "Collision", "none")
	}
	return y + 4
}

// TopRules returns the indices of the n strongest rules that fired, strongest
// first. Ties keep rule-base order.
func TopRules(strengths []float64, n int) []int {
	var idx []int
	for i, s := range strengths {
		if s > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return strengths[idx[a]] > strengths[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
