package detector

import (
	"fmt"
	"image"
	"math"

	"github.com/ayusman/handmade/internal/geometry"
)

// Pairing strategy names accepted by Config.Pairing.
const (
	PairingFirst   = "first"
	PairingNearest = "nearest"
)

// depthScale converts OpenCV fixed-point defect depths to pixels.
const depthScale = 256

// Defect is a convexity defect of a curve: the concavity between the hull
// points Start and End whose deepest point is Far. Indices refer to the curve.
// Depth is in OpenCV fixed-point units (pixels × 256).
type Defect struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Far   int `json:"far"`
	Depth int `json:"depth"`
}

// DepthPixels returns the defect depth in pixels. The fixed-point depth is
// divided exactly rather than truncated, so a depth just under the next
// whole pixel (for example 5375, 20.99px) clears a 20px threshold that an
// integer division would reject.
func (d Defect) DepthPixels() float64 {
	return float64(d.Depth) / depthScale
}

// FilterDefects keeps the defects deeper than minDepth pixels. Valleys
// between fingers are deep; noise along the wrist and arm is shallow.
func FilterDefects(defects []Defect, minDepth float64) []Defect {
	var kept []Defect
	for _, d := range defects {
		if d.DepthPixels() > minDepth {
			kept = append(kept, d)
		}
	}
	return kept
}

// DefectEndpoints collects the start and end points of every defect whose
// far point lies further than one palm radius from its start point.
func DefectEndpoints(curve []image.Point, defects []Defect, palm geometry.Circle) []image.Point {
	var ends []image.Point
	for _, d := range defects {
		start, end, far := curve[d.Start], curve[d.End], curve[d.Far]
		if geometry.Distance(far, start) > palm.Radius {
			ends = append(ends, start, end)
		}
	}
	return ends
}

// PairLimits are the thresholds applied when pairing defect endpoints.
type PairLimits struct {
	// PairRatio is the fraction of the palm radius two endpoints must be
	// closer than to be paired.
	PairRatio float64

	// PalmScale is the distance in palm radii a paired midpoint must exceed
	// from the palm center to count as a fingertip.
	PalmScale float64
}

// PairFn pairs defect endpoints into fingertips.
type PairFn func(ends []image.Point, palm geometry.Circle, limits PairLimits) []image.Point

// FirstMatch pairs each endpoint with the first other endpoint closer than
// the pair limit whose midpoint clears the palm. Both endpoints of a pair
// match independently, so a finger is usually reported twice.
func FirstMatch(ends []image.Point, palm geometry.Circle, limits PairLimits) []image.Point {
	var tips []image.Point

	for k := range ends {
		for l := range ends {
			if k == l {
				continue
			}

			if geometry.Distance(ends[k], ends[l]) >= palm.Radius*limits.PairRatio {
				continue
			}

			tip := geometry.Midpoint(ends[k], ends[l])
			if geometry.Distance(tip, palm.Center) > limits.PalmScale*palm.Radius {
				tips = append(tips, tip)
				break
			}
		}
	}

	return tips
}

// NearestMatch pairs each endpoint with its nearest other endpoint and keeps
// the midpoint when the pair is close enough and clears the palm.
func NearestMatch(ends []image.Point, palm geometry.Circle, limits PairLimits) []image.Point {
	var tips []image.Point

	for k := range ends {
		nearest := -1
		best := math.Inf(1)
		for l := range ends {
			if k == l {
				continue
			}
			if d := geometry.Distance(ends[k], ends[l]); d < best {
				best = d
				nearest = l
			}
		}

		if nearest < 0 || best >= palm.Radius*limits.PairRatio {
			continue
		}

		tip := geometry.Midpoint(ends[k], ends[nearest])
		if geometry.Distance(tip, palm.Center) > limits.PalmScale*palm.Radius {
			tips = append(tips, tip)
		}
	}

	return tips
}

// PairingByName returns the pairing strategy with the given name.
// An empty name selects FirstMatch.
func PairingByName(name string) (PairFn, error) {
	switch name {
	case "", PairingFirst:
		return FirstMatch, nil
	case PairingNearest:
		return NearestMatch, nil
	default:
		return nil, fmt.Errorf("unknown pairing strategy %q", name)
	}
}

// FindFingertips runs defect filtering and endpoint pairing on one shape.
func FindFingertips(shape Shape, palm geometry.Circle, cfg Config, pair PairFn) []image.Point {
	defects := FilterDefects(shape.Defects(), cfg.MinDefectDepth)
	if len(defects) == 0 {
		return nil
	}

	ends := DefectEndpoints(shape.Curve, defects, palm)
	if len(ends) == 0 {
		return nil
	}

	return pair(ends, palm, cfg.limits())
}
