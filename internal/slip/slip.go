// Package slip converts earthquake magnitude into seismic moment and,
// via one of three published laws, into fault slip
// magnitude-derived fields.
package slip

import (
	"math"

	"github.com/requake-go/requake/internal/rqerr"
)

// MomentUnit selects the unit a seismic moment is expressed in.
type MomentUnit int

const (
	NewtonMeter MomentUnit = iota
	DyneCM
)

// MagToMoment converts magnitude to seismic moment in the requested unit.
// A nil-equivalent "no magnitude" case is represented by the caller
// skipping the call; MagToMoment itself always returns a computed value.
func MagToMoment(magnitude float64, unit MomentUnit) float64 {
	switch unit {
	case NewtonMeter:
		return math.Pow(10, 3.0/2.0*(magnitude+6.07))
	case DyneCM:
		return math.Pow(10, 3.0/2.0*(magnitude+10.7))
	default:
		return 0
	}
}

// Model names one of the three magnitude-to-slip laws.
type Model string

const (
	// NadeauJohnson1998 is an empirical regression against measured
	// repeater slip, requiring no rheological parameters.
	NadeauJohnson1998 Model = "NJ1998"
	// Beeler2001 is a circular-crack model parameterized by static
	// stress drop, rigidity, and strain hardening.
	Beeler2001 Model = "B2001"
	// Eshelby1957 is the classic circular-crack model parameterized by
	// static stress drop and rigidity only.
	Eshelby1957 Model = "E1957"
)

// Params carries the rheological parameters the B2001 and E1957 models
// need; NJ1998 ignores all of them.
type Params struct {
	// StaticStressDrop is in MPa.
	StaticStressDrop float64
	// Rigidity is in GPa.
	Rigidity float64
	// StrainHardening is in MPa/cm, used only by B2001.
	StrainHardening float64
}

// MagToSlipCM converts magnitude to slip in centimeters using model,
// parameterized by params. Returns a ConfigError if model is unknown.
func MagToSlipCM(model Model, magnitude float64, params Params) (float64, error) {
	switch model {
	case NadeauJohnson1998:
		moment := MagToMoment(magnitude, DyneCM)
		return nadeauJohnson1998(moment), nil
	case Beeler2001:
		moment := MagToMoment(magnitude, NewtonMeter)
		return beeler2001(moment, params.StaticStressDrop, params.Rigidity, params.StrainHardening), nil
	case Eshelby1957:
		moment := MagToMoment(magnitude, NewtonMeter)
		return eshelby1957(moment, params.StaticStressDrop, params.Rigidity), nil
	default:
		return 0, rqerr.New(rqerr.KindConfigError, "unknown magnitude-to-slip model: "+string(model))
	}
}

// nadeauJohnson1998 expects moment in dyne.cm and returns slip in cm.
func nadeauJohnson1998(moment float64) float64 {
	return math.Pow(10, -2.36) * math.Pow(moment, 0.17)
}

// beeler2001 expects moment in N.m, stressDrop in MPa, rigidity in GPa,
// strainHardening in MPa/cm, and returns slip in cm.
func beeler2001(moment, stressDrop, rigidity, strainHardening float64) float64 {
	rigidity *= 1e3 // GPa -> MPa
	return stressDrop * (1/(1.81*rigidity)*math.Pow(moment/stressDrop, 1.0/3.0) + 1/strainHardening)
}

// eshelby1957 expects moment in N.m, stressDrop in MPa, rigidity in GPa,
// and returns slip in cm.
func eshelby1957(moment, stressDrop, rigidity float64) float64 {
	rigidity *= 1e3 // GPa -> MPa
	radius := math.Pow(7.0/16.0*moment/stressDrop, 1.0/3.0)
	return moment / (math.Pi * rigidity * radius * radius)
}
