package scene

import (
	m "math"

	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

// EnvironmentPreset describes an analytic HDR sky: a vertical gradient, a
// ground color and a sun disc much brighter than the rest.
type EnvironmentPreset struct {
	Name      string
	Zenith    mgl32.Vec3
	Horizon   mgl32.Vec3
	Ground    mgl32.Vec3
	SunDir    mgl32.Vec3
	SunColor  mgl32.Vec3
	SunRadius float32
}

var (
	EnvironmentBeach = EnvironmentPreset{
		Name:      "beach",
		Zenith:    mgl32.Vec3{0.25, 0.45, 1.2},
		Horizon:   mgl32.Vec3{1.4, 1.5, 1.6},
		Ground:    mgl32.Vec3{0.9, 0.8, 0.55},
		SunDir:    mgl32.Vec3{0.3, 0.8, -0.5},
		SunColor:  mgl32.Vec3{60, 55, 45},
		SunRadius: 0.05,
	}
	EnvironmentKitchen = EnvironmentPreset{
		Name:      "kitchen",
		Zenith:    mgl32.Vec3{0.6, 0.55, 0.5},
		Horizon:   mgl32.Vec3{0.35, 0.3, 0.25},
		Ground:    mgl32.Vec3{0.12, 0.1, 0.08},
		SunDir:    mgl32.Vec3{-0.6, 0.5, 0.6},
		SunColor:  mgl32.Vec3{18, 16, 12},
		SunRadius: 0.15,
	}
	EnvironmentBuilding = EnvironmentPreset{
		Name:      "building",
		Zenith:    mgl32.Vec3{0.05, 0.05, 0.12},
		Horizon:   mgl32.Vec3{0.4, 0.2, 0.15},
		Ground:    mgl32.Vec3{0.03, 0.03, 0.03},
		SunDir:    mgl32.Vec3{0.8, 0.1, 0.3},
		SunColor:  mgl32.Vec3{40, 20, 8},
		SunRadius: 0.08,
	}
)

// Radiance returns the sky color seen along the unit direction d.
func (p EnvironmentPreset) Radiance(d mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	if y := d.Y(); y >= 0 {
		t := float32(m.Pow(float64(y), 0.5))
		c = p.Horizon.Mul(1 - t).Add(p.Zenith.Mul(t))
	} else {
		t := float32(m.Min(1, float64(-y)*8))
		c = p.Horizon.Mul(1 - t).Add(p.Ground.Mul(t))
	}
	if d.Dot(p.SunDir.Normalize()) > 1-p.SunRadius*p.SunRadius {
		c = c.Add(p.SunColor)
	}
	return c
}

// CubeFaceDirection returns the unit direction through the texel center
// (x, y) of a size x size cube map face, rows counted from the first
// uploaded one.
func CubeFaceDirection(face metadata.CubeFace, x, y, size int) mgl32.Vec3 {
	s := 2*(float32(x)+0.5)/float32(size) - 1
	t := 2*(float32(y)+0.5)/float32(size) - 1
	var d mgl32.Vec3
	switch face {
	case metadata.CubeFacePositiveX:
		d = mgl32.Vec3{1, -t, -s}
	case metadata.CubeFaceNegativeX:
		d = mgl32.Vec3{-1, -t, s}
	case metadata.CubeFacePositiveY:
		d = mgl32.Vec3{s, 1, t}
	case metadata.CubeFaceNegativeY:
		d = mgl32.Vec3{s, -1, -t}
	case metadata.CubeFacePositiveZ:
		d = mgl32.Vec3{s, -t, 1}
	default:
		d = mgl32.Vec3{-s, -t, -1}
	}
	return d.Normalize()
}

// RenderCube evaluates fn for every texel of a cube map and returns the six
// RGBA faces in upload order.
func RenderCube(size int, fn func(d mgl32.Vec3) mgl32.Vec3) [][]float32 {
	faces := make([][]float32, metadata.CubeFaceCount)
	for f := range faces {
		pixels := make([]float32, 0, size*size*4)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				c := fn(CubeFaceDirection(metadata.CubeFace(f), x, y, size))
				pixels = append(pixels, c[0], c[1], c[2], 1)
			}
		}
		faces[f] = pixels
	}
	return faces
}

// sphereSamples spreads n directions evenly over the unit sphere.
func sphereSamples(n int) []mgl32.Vec3 {
	golden := m.Pi * (3 - m.Sqrt(5))
	samples := make([]mgl32.Vec3, n)
	for i := range samples {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := m.Sqrt(1 - y*y)
		phi := golden * float64(i)
		samples[i] = mgl32.Vec3{float32(r * m.Cos(phi)), float32(y), float32(r * m.Sin(phi))}
	}
	return samples
}

// Convolve returns the radiance of p integrated over a cosine power lobe
// around each direction. exponent 1 gives the diffuse irradiance, larger
// values glossier reflections.
func (p EnvironmentPreset) Convolve(exponent float64, sampleCount int) func(d mgl32.Vec3) mgl32.Vec3 {
	samples := sphereSamples(sampleCount)
	radiance := make([]mgl32.Vec3, len(samples))
	for i, s := range samples {
		radiance[i] = p.blurredRadiance(s)
	}
	return func(d mgl32.Vec3) mgl32.Vec3 {
		var sum mgl32.Vec3
		var weight float32
		for i, s := range samples {
			c := d.Dot(s)
			if c <= 0 {
				continue
			}
			w := float32(m.Pow(float64(c), exponent))
			sum = sum.Add(radiance[i].Mul(w))
			weight += w
		}
		if weight == 0 {
			return p.Radiance(d)
		}
		return sum.Mul(1 / weight)
	}
}

// blurredRadiance spreads the sun energy over a wide cap so that a sparse
// sample set still picks it up.
func (p EnvironmentPreset) blurredRadiance(d mgl32.Vec3) mgl32.Vec3 {
	c := p.Radiance(d)
	sun := p.SunDir.Normalize()
	if d.Dot(sun) > 1-p.SunRadius*p.SunRadius {
		c = c.Sub(p.SunColor)
	}
	// energy of the disc, solid angle ~ pi*r^2, spread on a cos^8 lobe (integral 2pi/9)
	lobe := float32(m.Pow(m.Max(0, float64(d.Dot(sun))), 8))
	return c.Add(p.SunColor.Mul(lobe * p.SunRadius * p.SunRadius * 9))
}
