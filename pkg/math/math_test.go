package math

import (
	gomath "math"
	"testing"
)

const epsilon = 1e-5

func approxEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < epsilon
}

func vecApproxEqual(a, b Vec3) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y) && approxEqual(a.Z, b.Z)
}

func TestVec3_Basics(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); !vecApproxEqual(got, Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Sub(a); !vecApproxEqual(got, Vec3{3, 3, 3}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); !vecApproxEqual(got, Vec3{2, 4, 6}) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Dot(b); !approxEqual(got, 32) {
		t.Errorf("Dot: got %v", got)
	}
}

func TestVec3_Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); !vecApproxEqual(got, Vec3{0, 0, 1}) {
		t.Errorf("X cross Y: got %v, want Z", got)
	}
	if got := y.Cross(x); !vecApproxEqual(got, Vec3{0, 0, -1}) {
		t.Errorf("Y cross X: got %v, want -Z", got)
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	n := v.Normalize()
	if !approxEqual(n.Length(), 1) {
		t.Errorf("normalized length: got %v", n.Length())
	}
	// Zero vector must not NaN out.
	if got := (Vec3{}).Normalize(); !vecApproxEqual(got, Vec3{}) {
		t.Errorf("zero normalize: got %v", got)
	}
}

func TestVec3_MinMax(t *testing.T) {
	a := Vec3{1, 5, -3}
	b := Vec3{2, -4, 0}

	if got := a.Min(b); !vecApproxEqual(got, Vec3{1, -4, -3}) {
		t.Errorf("Min: got %v", got)
	}
	if got := a.Max(b); !vecApproxEqual(got, Vec3{2, 5, 0}) {
		t.Errorf("Max: got %v", got)
	}
	if got := a.MaxComponent(); !approxEqual(got, 5) {
		t.Errorf("MaxComponent: got %v", got)
	}
}

func TestMat4_IdentityMul(t *testing.T) {
	id := Identity()
	m := RotateX(0.5).Mul(RotateZ(1.2))

	if got := id.Mul(m); got != m {
		t.Errorf("I*M != M: got %v", got)
	}
	if got := m.Mul(id); got != m {
		t.Errorf("M*I != M: got %v", got)
	}
}

func TestMat4_TransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    [3]float32
		want [3]float32
	}{
		{"identity", Identity(), [3]float32{1, 2, 3}, [3]float32{1, 2, 3}},
		{"rotate X 90", RotateX(gomath.Pi / 2), [3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
		{"rotate Z 90", RotateZ(gomath.Pi / 2), [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			for i := 0; i < 3; i++ {
				if !approxEqual(got[i], tt.want[i]) {
					t.Errorf("component %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMat4_Rotate270(t *testing.T) {
	// Three quarter-turns about X: +Y ends up at +X axis rotated... check
	// composition against a single 270 degree rotation.
	deg270 := float32(3 * gomath.Pi / 2)
	single := RotateX(deg270)
	composed := RotateX(gomath.Pi / 2).Mul(RotateX(gomath.Pi / 2)).Mul(RotateX(gomath.Pi / 2))

	p := [3]float32{0, 1, 0}
	a := single.TransformPoint(p)
	b := composed.TransformPoint(p)
	for i := 0; i < 3; i++ {
		if !approxEqual(a[i], b[i]) {
			t.Errorf("component %d: single %v vs composed %v", i, a[i], b[i])
		}
	}
}

func TestMat4_LookAt(t *testing.T) {
	eye := Vec3{0, 0, 10}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	view := LookAt(eye, center, up)

	// The eye maps to the origin in view space.
	got := view.TransformVec3(eye)
	if !vecApproxEqual(got, Vec3{}) {
		t.Errorf("eye in view space: got %v, want origin", got)
	}

	// The center lies ahead of the camera (negative Z in view space).
	got = view.TransformVec3(center)
	if !approxEqual(got.Z, -10) {
		t.Errorf("center depth: got %v, want -10", got.Z)
	}
}

func TestMat4_Perspective(t *testing.T) {
	proj := Perspective(gomath.Pi/4, 16.0/9.0, 0.1, 100)

	// A point on the near plane straight ahead maps to NDC z = -1.
	p := proj.TransformPoint([3]float32{0, 0, -0.1})
	if !approxEqual(p[2], -1) {
		t.Errorf("near plane NDC z: got %v, want -1", p[2])
	}

	p = proj.TransformPoint([3]float32{0, 0, -100})
	if !approxEqual(p[2], 1) {
		t.Errorf("far plane NDC z: got %v, want 1", p[2])
	}
}
