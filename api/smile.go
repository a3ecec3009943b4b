package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyase/quantlib/opt"
	"github.com/lyase/quantlib/quote"
	"github.com/lyase/quantlib/sabr"
)

type smileSpec struct {
	Strikes      []float64 `json:"strikes" binding:"required,min=2,dive,gt=0"`
	Vols         []float64 `json:"vols" binding:"required,min=2,dive,gt=0"`
	Expiry       float64   `json:"expiry" binding:"required,gt=0"`
	Forward      float64   `json:"forward" binding:"required,gt=0"`
	Alpha        *float64  `json:"alpha"`
	Beta         *float64  `json:"beta"`
	Nu           *float64  `json:"nu"`
	Rho          *float64  `json:"rho"`
	FixAlpha     bool      `json:"fix_alpha"`
	FixBeta      bool      `json:"fix_beta"`
	FixNu        bool      `json:"fix_nu"`
	FixRho       bool      `json:"fix_rho"`
	VegaWeighted bool      `json:"vega_weighted"`
	Method       string    `json:"method" binding:"omitempty,oneof=simplex lm"`

	// Optional end-criteria overrides; zero keeps the server default.
	MaxIterations   int     `json:"max_iterations" binding:"omitempty,gt=0"`
	FunctionEpsilon float64 `json:"function_epsilon" binding:"omitempty,gt=0"`
}

type volRequest struct {
	smileSpec
	Query []float64 `json:"query" binding:"required,min=1,dive,gt=0"`
}

type calibrateResponse struct {
	Alpha    float64   `json:"alpha"`
	Beta     float64   `json:"beta"`
	Nu       float64   `json:"nu"`
	Rho      float64   `json:"rho"`
	RMSError float64   `json:"rms_error"`
	MaxError float64   `json:"max_error"`
	Reason   string    `json:"reason"`
	Weights  []float64 `json:"weights"`
}

type volResponse struct {
	calibrateResponse
	Query []float64 `json:"query"`
	Vols  []float64 `json:"vols"`
}

// options translates the optional parameter fields into smile options. A fix
// flag without a starting value leaves the parameter free at its default.
func (req *smileSpec) options(criteria opt.EndCriteria) []sabr.Option {
	if req.MaxIterations > 0 {
		criteria.MaxIterations = req.MaxIterations
	}
	if req.FunctionEpsilon > 0 {
		criteria.FunctionEpsilon = req.FunctionEpsilon
	}
	opts := []sabr.Option{sabr.WithEndCriteria(criteria)}

	if req.Method == "lm" {
		opts = append(opts, sabr.WithMethod(opt.LevenbergMarquardt{}))
	}
	if req.Alpha != nil {
		if req.FixAlpha {
			opts = append(opts, sabr.WithFixedAlpha(*req.Alpha))
		} else {
			opts = append(opts, sabr.WithAlpha(*req.Alpha))
		}
	}
	if req.Beta != nil {
		if req.FixBeta {
			opts = append(opts, sabr.WithFixedBeta(*req.Beta))
		} else {
			opts = append(opts, sabr.WithBeta(*req.Beta))
		}
	}
	if req.Nu != nil {
		if req.FixNu {
			opts = append(opts, sabr.WithFixedNu(*req.Nu))
		} else {
			opts = append(opts, sabr.WithNu(*req.Nu))
		}
	}
	if req.Rho != nil {
		if req.FixRho {
			opts = append(opts, sabr.WithFixedRho(*req.Rho))
		} else {
			opts = append(opts, sabr.WithRho(*req.Rho))
		}
	}
	if req.VegaWeighted {
		opts = append(opts, sabr.VegaWeighted())
	}
	return opts
}

func (req *smileSpec) build(criteria opt.EndCriteria) (*sabr.Smile, error) {
	forward := quote.NewHandle(quote.NewSimpleQuote(req.Forward))
	return sabr.NewSmile(req.Strikes, req.Vols, req.Expiry, forward, req.options(criteria)...)
}

func newCalibrateResponse(smile *sabr.Smile) calibrateResponse {
	return calibrateResponse{
		Alpha:    smile.Alpha(),
		Beta:     smile.Beta(),
		Nu:       smile.Nu(),
		Rho:      smile.Rho(),
		RMSError: smile.RMSError(),
		MaxError: smile.MaxError(),
		Reason:   smile.EndCriteriaReason().String(),
		Weights:  smile.Weights(),
	}
}

func (server *Server) calibrate(c *gin.Context) {
	var req smileSpec
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	smile, err := req.build(server.criteria)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	start := time.Now()
	if err := smile.Calibrate(); err != nil {
		server.metrics.ObserveCalibration("error", time.Since(start))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse(err))
		return
	}
	server.metrics.ObserveCalibration(smile.EndCriteriaReason().String(), time.Since(start))

	c.JSON(http.StatusOK, newCalibrateResponse(smile))
}

func (server *Server) vol(c *gin.Context) {
	var req volRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	smile, err := req.build(server.criteria)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	start := time.Now()
	if err := smile.Calibrate(); err != nil {
		server.metrics.ObserveCalibration("error", time.Since(start))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse(err))
		return
	}
	server.metrics.ObserveCalibration(smile.EndCriteriaReason().String(), time.Since(start))

	vols := make([]float64, len(req.Query))
	for i, strike := range req.Query {
		v, err := smile.Value(strike)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse(err))
			return
		}
		vols[i] = v
	}

	c.JSON(http.StatusOK, volResponse{
		calibrateResponse: newCalibrateResponse(smile),
		Query:             req.Query,
		Vols:              vols,
	})
}
