package sabr

// smileCost is the calibration objective. Evaluating it maps the
// unconstrained point into the parameter domain and writes the parameters
// into the owning smile, so the smile always carries the last point the
// minimizer visited.
type smileCost struct {
	smile   *Smile
	forward float64
}

// Value returns the weighted sum of squared vol errors at u.
func (c *smileCost) Value(u []float64) float64 {
	c.store(u)
	return c.smile.squaredError(c.forward)
}

// Values returns the weighted vol residuals at u.
func (c *smileCost) Values(u []float64) []float64 {
	c.store(u)
	return c.smile.residuals(c.forward)
}

func (c *smileCost) store(u []float64) {
	x := c.smile.transform.Direct(u)
	c.smile.alpha, c.smile.beta, c.smile.nu, c.smile.rho = x[0], x[1], x[2], x[3]
}
