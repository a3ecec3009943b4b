package opt

import "fmt"

// Projection maps between a full parameter vector and the sub-vector of its
// free components, restoring fixed components from a reference point.
type Projection struct {
	reference []float64
	fixed     []bool
	free      int
}

// NewProjection builds a projection that pins reference[i] wherever fixed[i]
// is true.
func NewProjection(reference []float64, fixed []bool) (*Projection, error) {
	if len(reference) != len(fixed) {
		return nil, fmt.Errorf("reference and fixed sizes differ: %d vs %d", len(reference), len(fixed))
	}
	p := &Projection{
		reference: make([]float64, len(reference)),
		fixed:     make([]bool, len(fixed)),
	}
	copy(p.reference, reference)
	copy(p.fixed, fixed)
	for _, f := range fixed {
		if !f {
			p.free++
		}
	}
	return p, nil
}

// FreeCount returns the number of free components.
func (p *Projection) FreeCount() int { return p.free }

// Project drops the fixed components of full, which must have the reference
// length.
func (p *Projection) Project(full []float64) []float64 {
	free := make([]float64, 0, p.free)
	for i, f := range p.fixed {
		if !f {
			free = append(free, full[i])
		}
	}
	return free
}

// Include rebuilds a full vector from the free components, filling fixed
// slots from the reference point. free must have length FreeCount.
func (p *Projection) Include(free []float64) []float64 {
	full := make([]float64, len(p.reference))
	j := 0
	for i, f := range p.fixed {
		if f {
			full[i] = p.reference[i]
		} else {
			full[i] = free[j]
			j++
		}
	}
	return full
}

// ProjectedCost evaluates a cost function of the full space on the free
// components only.
type ProjectedCost struct {
	cost CostFunction
	proj *Projection
}

// NewProjectedCost wraps cost so that methods search the projected space.
func NewProjectedCost(cost CostFunction, proj *Projection) *ProjectedCost {
	return &ProjectedCost{cost: cost, proj: proj}
}

// Value evaluates the wrapped cost at the completed point.
func (c *ProjectedCost) Value(free []float64) float64 {
	return c.cost.Value(c.proj.Include(free))
}

// Values evaluates the wrapped residuals at the completed point.
func (c *ProjectedCost) Values(free []float64) []float64 {
	return c.cost.Values(c.proj.Include(free))
}
