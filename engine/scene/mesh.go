package scene

import (
	m "math"

	"github.com/dletozeun/3D/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

type MeshKind int

const (
	MeshSphere MeshKind = iota
	MeshTorus
	MeshBlob
)

func (k MeshKind) String() string {
	switch k {
	case MeshSphere:
		return "sphere"
	case MeshTorus:
		return "torus"
	case MeshBlob:
		return "blob"
	}
	return "unknown"
}

// Mesh is an indexed triangle list with per vertex normals, fitted in a unit
// bounding sphere centered at the origin.
type Mesh struct {
	Name      string
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

func NewMesh(kind MeshKind) *Mesh {
	switch kind {
	case MeshTorus:
		return torus(0.7, 0.3, 64, 32)
	case MeshBlob:
		return blob(64, 48)
	}
	return sphere(1, 64, 32)
}

func (mesh *Mesh) VertexCount() int {
	return len(mesh.Positions) / 3
}

func (mesh *Mesh) Draw(backend renderer.RendererBackend) {
	backend.DrawTriangles(mesh.Positions, mesh.Normals, mesh.Indices)
}

// grid builds a (slices+1) x (stacks+1) vertex grid from a parametric surface
// and triangulates it. u and v run over [0,1].
func grid(name string, slices, stacks int, surface func(u, v float64) (position, normal mgl32.Vec3)) *Mesh {
	mesh := &Mesh{Name: name}
	for j := 0; j <= stacks; j++ {
		v := float64(j) / float64(stacks)
		for i := 0; i <= slices; i++ {
			u := float64(i) / float64(slices)
			p, n := surface(u, v)
			mesh.Positions = append(mesh.Positions, p[:]...)
			mesh.Normals = append(mesh.Normals, n[:]...)
		}
	}
	row := uint32(slices + 1)
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a := uint32(j)*row + uint32(i)
			b := a + row
			mesh.Indices = append(mesh.Indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return mesh
}

func sphere(radius float32, slices, stacks int) *Mesh {
	return grid(MeshSphere.String(), slices, stacks, func(u, v float64) (mgl32.Vec3, mgl32.Vec3) {
		n := spherical(u, v)
		return n.Mul(radius), n
	})
}

// spherical maps u to the azimuth and v from the south to the north pole.
func spherical(u, v float64) mgl32.Vec3 {
	theta := u * 2 * m.Pi
	phi := (v - 0.5) * m.Pi
	return mgl32.Vec3{
		float32(m.Cos(phi) * m.Sin(theta)),
		float32(m.Sin(phi)),
		float32(m.Cos(phi) * m.Cos(theta)),
	}
}

func torus(major, minor float32, slices, stacks int) *Mesh {
	return grid(MeshTorus.String(), slices, stacks, func(u, v float64) (mgl32.Vec3, mgl32.Vec3) {
		theta := u * 2 * m.Pi
		phi := v * 2 * m.Pi
		center := mgl32.Vec3{float32(m.Sin(theta)), 0, float32(m.Cos(theta))}
		n := center.Mul(float32(m.Cos(phi))).Add(mgl32.Vec3{0, float32(m.Sin(phi)), 0})
		return center.Mul(major).Add(n.Mul(minor)), n
	})
}

// blob is a sphere with a smooth radial displacement. Normals come from the
// finite differences of the surface.
func blob(slices, stacks int) *Mesh {
	const amplitude = 0.12
	radius := func(d mgl32.Vec3) float32 {
		x, y, z := float64(d.X()), float64(d.Y()), float64(d.Z())
		return float32(1 - amplitude + amplitude*m.Sin(4*x)*m.Sin(3*y)*m.Sin(5*z))
	}
	point := func(u, v float64) mgl32.Vec3 {
		d := spherical(u, v)
		return d.Mul(radius(d))
	}
	mesh := grid(MeshBlob.String(), slices, stacks, func(u, v float64) (mgl32.Vec3, mgl32.Vec3) {
		const h = 1e-3
		p := point(u, v)
		du := point(u+h, v).Sub(point(u-h, v))
		dv := point(u, m.Min(v+h, 1)).Sub(point(u, m.Max(v-h, 0)))
		n := du.Cross(dv)
		if n.Len() < 1e-6 {
			// poles
			n = spherical(u, v)
		}
		return p, n.Normalize()
	})
	return mesh
}
