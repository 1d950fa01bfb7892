package tracking

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
)

// confidenceSaturation is the seen count at which the observation-count
// component of the confidence score saturates to 1.
const confidenceSaturation = 12

// confidenceVarianceScale controls how quickly RSSI variance erodes
// confidence: variance equal to the scale halves the score.
const confidenceVarianceScale = 25.0

// Estimator smooths raw RSSI samples and estimates distance per device.
//
// All methods are deterministic: the same prior state and sample always
// produce the same output. The estimator itself holds no per-device
// state; callers pass the device's SignalState on each update.
type Estimator struct {
	alpha      float64
	window     int
	txPowerRef float64
	pathLoss   float64
}

// NewEstimator creates an estimator from tracking configuration.
func NewEstimator(cfg config.TrackingConfig) *Estimator {
	return &Estimator{
		alpha:      cfg.EMAAlpha,
		window:     cfg.RSSIWindow,
		txPowerRef: float64(cfg.TxPowerRef),
		pathLoss:   cfg.PathLossExponent,
	}
}

// SignalState is the per-device mutable state the estimator operates on.
// It lives inside the registry's internal device entry, never in the
// exported Record.
type SignalState struct {
	initialized bool
	ema         float64
	samples     []float64
}

// SignalStats is the derived signal picture after one update.
type SignalStats struct {
	EMA       float64
	Min       int
	Max       int
	Median    float64
	Variance  float64
	DistanceM float64
}

// Update folds one RSSI sample into the device's signal state and returns
// the refreshed statistics.
//
// The EMA is initialized to the first sample. A bounded window of recent
// samples is retained for min/max/median/variance. Distance uses the
// log-distance path-loss model with the configured reference transmit
// power, or the sighting's own advertised TX power when present.
func (e *Estimator) Update(st *SignalState, rssi int, txPower *int) SignalStats {
	sample := float64(rssi)

	if !st.initialized {
		st.ema = sample
		st.initialized = true
	} else {
		st.ema = e.alpha*sample + (1-e.alpha)*st.ema
	}

	st.samples = append(st.samples, sample)
	if len(st.samples) > e.window {
		st.samples = st.samples[len(st.samples)-e.window:]
	}

	sorted := make([]float64, len(st.samples))
	copy(sorted, st.samples)
	sort.Float64s(sorted)

	variance := 0.0
	if len(st.samples) > 1 {
		variance = stat.Variance(st.samples, nil)
	}

	ref := e.txPowerRef
	if txPower != nil {
		ref = float64(*txPower)
	}

	return SignalStats{
		EMA:       st.ema,
		Min:       int(sorted[0]),
		Max:       int(sorted[len(sorted)-1]),
		Median:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Variance:  variance,
		DistanceM: e.distance(st.ema, ref),
	}
}

// distance applies the log-distance path-loss model:
//
//	d = 10^((txPowerRef - ema) / (10 * n))
//
// The result is clamped to be non-negative.
func (e *Estimator) distance(ema, txPowerRef float64) float64 {
	d := math.Pow(10, (txPowerRef-ema)/(10*e.pathLoss))
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// Confidence scores the distance estimate in [0,1]. The score rises
// monotonically with observation count, saturating at a fixed count, and
// falls monotonically as RSSI variance in the window grows.
func (e *Estimator) Confidence(seenCount int, variance float64) float64 {
	countTerm := float64(seenCount) / confidenceSaturation
	if countTerm > 1 {
		countTerm = 1
	}

	if variance < 0 {
		variance = 0
	}
	stabilityTerm := 1 / (1 + variance/confidenceVarianceScale)

	c := countTerm * stabilityTerm
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Band thresholds in metres and dBm.
const (
	bandImmediateMaxM = 1.0
	bandNearMaxM      = 3.0
	bandFarMaxM       = 10.0

	bandImmediateMinRSSI = -50.0
	bandNearMinRSSI      = -65.0
	bandFarMinRSSI       = -80.0
)

// Band derives the proximity band from the current signal picture.
// It is a pure function of its inputs. When the distance estimate is
// unavailable (zero), the smoothed RSSI thresholds decide instead.
func Band(distanceM, ema float64) ProximityBand {
	if distanceM > 0 {
		switch {
		case distanceM <= bandImmediateMaxM:
			return BandImmediate
		case distanceM <= bandNearMaxM:
			return BandNear
		case distanceM <= bandFarMaxM:
			return BandFar
		default:
			return BandUnknown
		}
	}

	switch {
	case ema >= bandImmediateMinRSSI:
		return BandImmediate
	case ema >= bandNearMinRSSI:
		return BandNear
	case ema >= bandFarMinRSSI:
		return BandFar
	default:
		return BandUnknown
	}
}
