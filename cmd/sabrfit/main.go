// Command sabrfit calibrates a batch of smile slices from a JSON file and
// writes a fit report.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/lyase/quantlib/logger"
	"github.com/lyase/quantlib/opt"
	"github.com/lyase/quantlib/quote"
	"github.com/lyase/quantlib/sabr"
)

// Slice is one expiry's market smile in the input file.
type Slice struct {
	Label    string    `json:"label,omitempty"`
	Expiry   float64   `json:"expiry"`
	Forward  float64   `json:"forward"`
	Strikes  []float64 `json:"strikes"`
	Vols     []float64 `json:"vols"`
	Alpha    *float64  `json:"alpha,omitempty"`
	Beta     *float64  `json:"beta,omitempty"`
	Nu       *float64  `json:"nu,omitempty"`
	Rho      *float64  `json:"rho,omitempty"`
	FixAlpha bool      `json:"fix_alpha,omitempty"`
	FixBeta  bool      `json:"fix_beta,omitempty"`
	FixNu    bool      `json:"fix_nu,omitempty"`
	FixRho   bool      `json:"fix_rho,omitempty"`
}

// Result is the fitted smile for one slice. Err is set when the fit failed
// and the parameter fields are zero.
type Result struct {
	Label    string  `json:"label,omitempty"`
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Nu       float64 `json:"nu"`
	Rho      float64 `json:"rho"`
	RMSError float64 `json:"rms_error"`
	MaxError float64 `json:"max_error"`
	Reason   string  `json:"reason,omitempty"`
	Err      string  `json:"error,omitempty"`
}

func main() {
	input := flag.String("input", "", "path to the smile slices JSON file")
	output := flag.String("output", "", "path for the fit report, stdout when empty")
	method := flag.String("method", "simplex", "minimizer: simplex or lm")
	vega := flag.Bool("vega", false, "weight fit errors by black vega")
	beta := flag.Float64("beta", -1, "fix beta at this value for every slice")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(level, "console")
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	minimizer, err := newMethod(*method)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	slices, err := readSlices(*input)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	bar := progressBar(len(slices))
	results := make([]Result, len(slices))
	failed := 0
	for i := range slices {
		label := slices[i].Label
		if label == "" {
			label = fmt.Sprintf("slice %d", i)
		}
		bar.Describe(fmt.Sprintf("Fitting %v\t", label))

		result, err := fit(slices[i], minimizer, *vega, *beta)
		result.Label = label
		if err != nil {
			failed++
			result.Err = err.Error()
			log.Error().Err(err).Str("slice", label).Msg("fit failed")
		} else {
			log.Debug().
				Str("slice", label).
				Float64("rms_error", result.RMSError).
				Str("reason", result.Reason).
				Msg("fitted")
		}
		results[i] = result
		bar.Add(1)
	}

	if err := writeResults(*output, results); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
	log.Info().Int("slices", len(slices)).Int("failed", failed).Msg("fit complete")
}

func newMethod(name string) (opt.Method, error) {
	switch name {
	case "simplex":
		return opt.NelderMead{}, nil
	case "lm":
		return opt.LevenbergMarquardt{}, nil
	}
	return nil, fmt.Errorf("unknown method %q, want simplex or lm", name)
}

// fit calibrates one slice. A non-negative betaOverride fixes beta for the
// slice regardless of its own fields.
func fit(slice Slice, method opt.Method, vegaWeighted bool, betaOverride float64) (Result, error) {
	opts := []sabr.Option{sabr.WithMethod(method)}

	if slice.Alpha != nil {
		if slice.FixAlpha {
			opts = append(opts, sabr.WithFixedAlpha(*slice.Alpha))
		} else {
			opts = append(opts, sabr.WithAlpha(*slice.Alpha))
		}
	}
	if slice.Beta != nil {
		if slice.FixBeta {
			opts = append(opts, sabr.WithFixedBeta(*slice.Beta))
		} else {
			opts = append(opts, sabr.WithBeta(*slice.Beta))
		}
	}
	if slice.Nu != nil {
		if slice.FixNu {
			opts = append(opts, sabr.WithFixedNu(*slice.Nu))
		} else {
			opts = append(opts, sabr.WithNu(*slice.Nu))
		}
	}
	if slice.Rho != nil {
		if slice.FixRho {
			opts = append(opts, sabr.WithFixedRho(*slice.Rho))
		} else {
			opts = append(opts, sabr.WithRho(*slice.Rho))
		}
	}
	if betaOverride >= 0 {
		opts = append(opts, sabr.WithFixedBeta(betaOverride))
	}
	if vegaWeighted {
		opts = append(opts, sabr.VegaWeighted())
	}

	forward := quote.NewHandle(quote.NewSimpleQuote(slice.Forward))
	smile, err := sabr.NewSmile(slice.Strikes, slice.Vols, slice.Expiry, forward, opts...)
	if err != nil {
		return Result{}, err
	}
	if err := smile.Calibrate(); err != nil {
		return Result{}, err
	}

	return Result{
		Alpha:    smile.Alpha(),
		Beta:     smile.Beta(),
		Nu:       smile.Nu(),
		Rho:      smile.Rho(),
		RMSError: smile.RMSError(),
		MaxError: smile.MaxError(),
		Reason:   smile.EndCriteriaReason().String(),
	}, nil
}

func readSlices(path string) ([]Slice, error) {
	if path == "" {
		return nil, errors.New("-input is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var slices []Slice
	if err := json.Unmarshal(b, &slices); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("%s holds no slices", path)
	}
	return slices, nil
}

func writeResults(path string, results []Result) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, b, 0o644)
}

// progress bar initialization
func progressBar(length int) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(
		length,
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetVisibility(true),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return bar
}
