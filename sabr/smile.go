package sabr

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/lyase/quantlib/black"
	"github.com/lyase/quantlib/interp"
	"github.com/lyase/quantlib/opt"
	"github.com/lyase/quantlib/quote"
)

// Default initial guesses for parameters the caller leaves unspecified.
var (
	defaultAlpha = math.Sqrt(0.2)
	defaultNu    = math.Sqrt(0.4)
)

const (
	defaultBeta = 0.5
	defaultRho  = 0.0
)

// Smile calibrates the SABR parameters to one expiry's market quotes and
// interpolates Black vols across strikes. It implements interp.Interpolation.
// A Smile is not safe for concurrent use, and the owner of the forward quote
// must not move it while Calibrate runs.
type Smile struct {
	strikes []float64
	vols    []float64
	t       float64
	forward quote.Handle

	alpha, beta, nu, rho                     float64
	alphaFixed, betaFixed, nuFixed, rhoFixed bool

	vegaWeighted bool
	weights      []float64

	method    opt.Method
	criteria  opt.EndCriteria
	transform opt.Transform

	rmsError float64
	maxError float64
	reason   opt.Reason
}

var _ interp.Interpolation = (*Smile)(nil)

// Option configures a Smile at construction.
type Option func(*Smile)

// WithAlpha sets the initial guess for alpha.
func WithAlpha(alpha float64) Option {
	return func(s *Smile) { s.alpha = alpha }
}

// WithFixedAlpha pins alpha to the given value; calibration will not move it.
func WithFixedAlpha(alpha float64) Option {
	return func(s *Smile) { s.alpha, s.alphaFixed = alpha, true }
}

// WithBeta sets the initial guess for beta.
func WithBeta(beta float64) Option {
	return func(s *Smile) { s.beta = beta }
}

// WithFixedBeta pins beta to the given value; calibration will not move it.
func WithFixedBeta(beta float64) Option {
	return func(s *Smile) { s.beta, s.betaFixed = beta, true }
}

// WithNu sets the initial guess for nu.
func WithNu(nu float64) Option {
	return func(s *Smile) { s.nu = nu }
}

// WithFixedNu pins nu to the given value; calibration will not move it.
func WithFixedNu(nu float64) Option {
	return func(s *Smile) { s.nu, s.nuFixed = nu, true }
}

// WithRho sets the initial guess for rho.
func WithRho(rho float64) Option {
	return func(s *Smile) { s.rho = rho }
}

// WithFixedRho pins rho to the given value; calibration will not move it.
func WithFixedRho(rho float64) Option {
	return func(s *Smile) { s.rho, s.rhoFixed = rho, true }
}

// VegaWeighted makes Calibrate weight each quote by its Black vega instead of
// uniformly.
func VegaWeighted() Option {
	return func(s *Smile) { s.vegaWeighted = true }
}

// WithMethod selects the minimization method. The default is Nelder-Mead.
func WithMethod(m opt.Method) Option {
	return func(s *Smile) { s.method = m }
}

// WithEndCriteria overrides the default termination criteria.
func WithEndCriteria(criteria opt.EndCriteria) Option {
	return func(s *Smile) { s.criteria = criteria }
}

// NewSmile sets up a smile over the quoted strikes and Black vols of a single
// expiry. strikes must be positive and strictly increasing with at least two
// entries, vols the matching market quotes, t the expiry time in years and
// forward a non-empty handle to the live forward. Calibration does not run
// here; call Calibrate.
func NewSmile(strikes, vols []float64, t float64, forward quote.Handle, opts ...Option) (*Smile, error) {
	if t <= 0 {
		return nil, fmt.Errorf("expiry time must be positive: %v not allowed", t)
	}
	if forward.Empty() {
		return nil, errors.New("forward handle is empty")
	}
	if err := interp.ValidateXY(strikes, vols, 2); err != nil {
		return nil, err
	}
	if strikes[0] <= 0 {
		return nil, fmt.Errorf("strikes must be positive: %v not allowed", strikes[0])
	}

	s := &Smile{
		strikes:   make([]float64, len(strikes)),
		vols:      make([]float64, len(vols)),
		t:         t,
		forward:   forward,
		alpha:     defaultAlpha,
		beta:      defaultBeta,
		nu:        defaultNu,
		rho:       defaultRho,
		weights:   make([]float64, len(strikes)),
		method:    opt.NelderMead{},
		criteria:  opt.DefaultEndCriteria(),
		transform: transformation{},
		reason:    opt.None,
	}
	copy(s.strikes, strikes)
	copy(s.vols, vols)
	for i := range s.weights {
		s.weights[i] = 1.0 / float64(len(s.weights))
	}

	for _, apply := range opts {
		apply(s)
	}
	if s.method == nil {
		return nil, errors.New("method must not be nil")
	}
	if err := ValidateParameters(s.alpha, s.beta, s.nu, s.rho); err != nil {
		return nil, err
	}
	return s, nil
}

// Calibrate fits the free parameters to the market quotes. It re-reads the
// forward, recomputes the vega weights when enabled, warm-starts from the
// currently stored parameters and leaves the fitted parameters, the weighted
// RMS error, the max error and the termination reason on the smile. Calling
// it again refines the previous fit.
func (s *Smile) Calibrate() error {
	forward := s.forward.Value()
	if forward <= 0 {
		return fmt.Errorf("forward must be positive: %v not allowed", forward)
	}

	if s.vegaWeighted {
		if err := s.reweight(forward); err != nil {
			return err
		}
	}

	if s.alphaFixed && s.betaFixed && s.nuFixed && s.rhoFixed {
		s.reason = opt.None
		s.refreshErrors(forward)
		return nil
	}

	guess, err := s.transform.Inverse([]float64{s.alpha, s.beta, s.nu, s.rho})
	if err != nil {
		return fmt.Errorf("initial guess: %w", err)
	}
	proj, err := opt.NewProjection(guess,
		[]bool{s.alphaFixed, s.betaFixed, s.nuFixed, s.rhoFixed})
	if err != nil {
		return err
	}
	cost := &smileCost{smile: s, forward: forward}
	problem := opt.NewProblem(opt.NewProjectedCost(cost, proj), opt.NoConstraint{}, proj.Project(guess))

	reason, err := s.method.Minimize(problem, s.criteria)
	if err != nil {
		return fmt.Errorf("minimization: %w", err)
	}
	s.reason = reason

	fitted := s.transform.Direct(proj.Include(problem.CurrentValue()))
	s.alpha, s.beta, s.nu, s.rho = fitted[0], fitted[1], fitted[2], fitted[3]
	if err := ValidateParameters(s.alpha, s.beta, s.nu, s.rho); err != nil {
		return err
	}
	s.refreshErrors(forward)
	return nil
}

// reweight recomputes the quote weights from the Black vegas at the current
// forward and normalizes them to sum one.
func (s *Smile) reweight(forward float64) error {
	sqrtT := math.Sqrt(s.t)
	sum := 0.0
	for i, strike := range s.strikes {
		s.weights[i] = black.StdDevDerivative(strike, forward, s.vols[i]*sqrtT)
		sum += s.weights[i]
	}
	if sum <= 0 {
		return fmt.Errorf("vega weights must have a positive sum: %v", sum)
	}
	floats.Scale(1/sum, s.weights)
	return nil
}

func (s *Smile) refreshErrors(forward float64) {
	s.rmsError = s.weightedRMS(forward)
	s.maxError = s.worstFit(forward)
}

// squaredError is the weighted sum of squared differences between model and
// market vols at the stored parameters.
func (s *Smile) squaredError(forward float64) float64 {
	total := 0.0
	for i, strike := range s.strikes {
		diff := Volatility(strike, forward, s.t, s.alpha, s.beta, s.nu, s.rho) - s.vols[i]
		total += diff * diff * s.weights[i]
	}
	return total
}

// residuals are the per-quote differences scaled by the square roots of the
// weights, so their squares sum to squaredError.
func (s *Smile) residuals(forward float64) []float64 {
	r := make([]float64, len(s.strikes))
	for i, strike := range s.strikes {
		diff := Volatility(strike, forward, s.t, s.alpha, s.beta, s.nu, s.rho) - s.vols[i]
		r[i] = diff * math.Sqrt(s.weights[i])
	}
	return r
}

// weightedRMS is the weighted root mean squared vol error over the quotes.
func (s *Smile) weightedRMS(forward float64) float64 {
	n := float64(len(s.strikes))
	return math.Sqrt(n * s.squaredError(forward) / (n - 1))
}

// worstFit is the largest absolute vol error, unweighted.
func (s *Smile) worstFit(forward float64) float64 {
	worst := 0.0
	for i, strike := range s.strikes {
		diff := math.Abs(Volatility(strike, forward, s.t, s.alpha, s.beta, s.nu, s.rho) - s.vols[i])
		if diff > worst {
			worst = diff
		}
	}
	return worst
}

// Value returns the model Black vol at the given strike from the currently
// stored parameters, against a fresh read of the forward.
func (s *Smile) Value(strike float64) (float64, error) {
	if strike <= 0 {
		return 0, fmt.Errorf("strike must be positive: %v not allowed", strike)
	}
	forward := s.forward.Value()
	if forward <= 0 {
		return 0, fmt.Errorf("forward must be positive: %v not allowed", forward)
	}
	return Volatility(strike, forward, s.t, s.alpha, s.beta, s.nu, s.rho), nil
}

// Primitive is not defined for a SABR smile.
func (s *Smile) Primitive(float64) (float64, error) {
	return 0, fmt.Errorf("sabr smile primitive: %w", interp.ErrUnsupported)
}

// Derivative is not defined for a SABR smile.
func (s *Smile) Derivative(float64) (float64, error) {
	return 0, fmt.Errorf("sabr smile derivative: %w", interp.ErrUnsupported)
}

// SecondDerivative is not defined for a SABR smile.
func (s *Smile) SecondDerivative(float64) (float64, error) {
	return 0, fmt.Errorf("sabr smile second derivative: %w", interp.ErrUnsupported)
}

// Update re-runs the calibration. It is Calibrate under the name the
// interp.Interpolation interface uses.
func (s *Smile) Update() error { return s.Calibrate() }

// Expiry returns the expiry time in years.
func (s *Smile) Expiry() float64 { return s.t }

// Forward reads the current forward through the handle.
func (s *Smile) Forward() float64 { return s.forward.Value() }

// Alpha returns the stored alpha.
func (s *Smile) Alpha() float64 { return s.alpha }

// Beta returns the stored beta.
func (s *Smile) Beta() float64 { return s.beta }

// Nu returns the stored nu.
func (s *Smile) Nu() float64 { return s.nu }

// Rho returns the stored rho.
func (s *Smile) Rho() float64 { return s.rho }

// RMSError returns the weighted root mean squared vol error of the last
// calibration.
func (s *Smile) RMSError() float64 { return s.rmsError }

// MaxError returns the largest absolute vol error of the last calibration.
func (s *Smile) MaxError() float64 { return s.maxError }

// Weights returns a copy of the quote weights the last calibration used.
func (s *Smile) Weights() []float64 {
	w := make([]float64, len(s.weights))
	copy(w, s.weights)
	return w
}

// EndCriteriaReason reports which termination rule ended the last
// calibration; opt.None when none has run or all parameters were fixed.
func (s *Smile) EndCriteriaReason() opt.Reason { return s.reason }
