package rng

import (
	"errors"
	"fmt"
	"math"
)

// ErrSobolDimensions reports a model with more distinct noise symbols
// than the embedded direction-number table supports.
var ErrSobolDimensions = errors.New("rng: too many noise dimensions for sobol source")

// sobolSkip drops the leading points of the sequence; the first point
// is all zeros, which maps to -Inf under the inverse normal CDF.
const sobolSkip = 5

// sobolBits is the precision of the direction vectors.
const sobolBits = 32

// sobolPoly carries the primitive polynomial (degree s, interior
// coefficients a) and initial direction numbers m for one dimension of
// the Joe–Kuo D6 initialization.
type sobolPoly struct {
	s int
	a uint32
	m []uint32
}

// Dimensions 2..21 of the Joe–Kuo D6 table; dimension 1 needs no
// polynomial (its direction numbers are all ones).
var sobolPolys = []sobolPoly{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
	{6, 19, []uint32{1, 1, 1, 15, 7, 5}},
	{6, 22, []uint32{1, 3, 1, 15, 13, 25}},
	{6, 25, []uint32{1, 1, 5, 5, 19, 61}},
	{7, 1, []uint32{1, 3, 7, 11, 23, 15, 103}},
	{7, 4, []uint32{1, 3, 7, 13, 13, 15, 69}},
}

// MaxSobolDims is the number of noise dimensions the source supports:
// dimension 1 plus the tabulated polynomials.
var MaxSobolDims = len(sobolPolys) + 1

// Sobol is the quasi-random source. One sequence dimension is assigned
// per distinct noise index (Wiener dimensions first, then jump
// dimensions); the point index for (scenario, step) is
// sobolSkip + scenario*steps + step — a pure function, so no state
// advances between calls and partitioning cannot reorder draws.
// Coordinates feeding Wiener dimensions pass through the inverse
// standard-normal CDF. There is no seed; reproducibility is absolute.
type Sobol struct {
	steps      int
	wienerDims int
	vectors    [][sobolBits]uint32 // direction vectors per dimension
}

// NewSobol builds a source for a grid with the given number of
// intervals and noise dimensions.
func NewSobol(steps, wienerDims, jumpDims int) (*Sobol, error) {
	dims := wienerDims + jumpDims
	if dims > MaxSobolDims {
		return nil, fmt.Errorf("%w: model uses %d, table covers %d", ErrSobolDimensions, dims, MaxSobolDims)
	}
	s := &Sobol{
		steps:      steps,
		wienerDims: wienerDims,
		vectors:    make([][sobolBits]uint32, dims),
	}
	for d := range s.vectors {
		s.vectors[d] = directionVectors(d)
	}
	return s, nil
}

// directionVectors expands the initialization values of one dimension
// into 32 direction vectors via the standard recurrence.
func directionVectors(dim int) [sobolBits]uint32 {
	var v [sobolBits]uint32
	if dim == 0 {
		for j := 0; j < sobolBits; j++ {
			v[j] = 1 << (31 - j)
		}
		return v
	}
	p := sobolPolys[dim-1]
	for j := 0; j < p.s; j++ {
		v[j] = p.m[j] << (31 - j)
	}
	for j := p.s; j < sobolBits; j++ {
		v[j] = v[j-p.s] ^ (v[j-p.s] >> p.s)
		for k := 1; k < p.s; k++ {
			if (p.a>>(p.s-1-k))&1 == 1 {
				v[j] ^= v[j-k]
			}
		}
	}
	return v
}

// coordinate evaluates coordinate dim of point index by direct binary
// expansion: the XOR of direction vectors for every set bit. Random
// access by construction — no Gray-code cursor.
func (s *Sobol) coordinate(index, dim int) float64 {
	var x uint32
	v := &s.vectors[dim]
	for j := 0; index > 0; index >>= 1 {
		if index&1 == 1 {
			x ^= v[j]
		}
		j++
	}
	return float64(x) / (1 << sobolBits)
}

func (s *Sobol) point(scenario, step int) int {
	return sobolSkip + scenario*s.steps + step
}

// Normal fills out with quasi-random standard normals for
// (scenario, step), one per Wiener dimension.
func (s *Sobol) Normal(scenario, step int, out []float64) {
	idx := s.point(scenario, step)
	for d := range out {
		out[d] = invNorm(s.coordinate(idx, d))
	}
}

// Uniform fills out with quasi-random draws in [0, 1) for
// (scenario, step), one per jump dimension; these occupy the sequence
// dimensions after the Wiener block.
func (s *Sobol) Uniform(scenario, step int, out []float64) {
	idx := s.point(scenario, step)
	for d := range out {
		out[d] = s.coordinate(idx, s.wienerDims+d)
	}
}

// invNorm is the inverse standard-normal CDF. Inputs are clamped away
// from 0 and 1 to keep the transform finite.
func invNorm(u float64) float64 {
	const eps = 1e-12
	if u < eps {
		u = eps
	} else if u > 1-eps {
		u = 1 - eps
	}
	return math.Sqrt2 * math.Erfinv(2*u-1)
}
