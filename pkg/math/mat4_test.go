package math

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// transform applies m to the point p with w=1.
func transform(m Mat4, p [3]float64) [3]float64 {
	return [3]float64{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() || m.IsZero() {
		t.Error("Identity predicates wrong")
	}
	if !(Mat4{}).IsZero() {
		t.Error("zero matrix should report IsZero")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	p := transform(m, [3]float64{1, 1, 1})
	if p != [3]float64{6, 11, 16} {
		t.Errorf("translated point = %v", p)
	}
}

func TestFromQuatRotatesAroundY(t *testing.T) {
	angle := math.Pi / 2
	// Quaternion for 90 degrees around Y.
	a := FromQuat([4]float64{0, math.Sin(angle / 2), 0, math.Cos(angle / 2)})

	if !approxEqual(a[5], 1) || !approxEqual(a[15], 1) {
		t.Errorf("Y axis and w should be untouched, got %v", a)
	}

	p := transform(a, [3]float64{1, 0, 0})
	if !approxEqual(p[0], 0) || !approxEqual(p[2], -1) {
		t.Errorf("rotating +X by 90 around Y gave %v, want (0, 0, -1)", p)
	}
}

func TestFromQuatNormalizes(t *testing.T) {
	m := FromQuat([4]float64{0, 0, 0, 2})
	if !m.IsIdentity() {
		t.Errorf("non-unit identity quaternion should give identity, got %v", m)
	}
}

func TestFromTRS(t *testing.T) {
	m := FromTRS([3]float64{1, 2, 3}, [4]float64{0, 0, 0, 1}, [3]float64{2, 2, 2})
	p := transform(m, [3]float64{1, 1, 1})
	want := [3]float64{3, 4, 5}
	for i := range p {
		if !approxEqual(p[i], want[i]) {
			t.Errorf("FromTRS point = %v, want %v", p, want)
			break
		}
	}
}

func TestMulOrder(t *testing.T) {
	// Parent translate, child scale: child scale applies first.
	parent := Translate(10, 0, 0)
	child := Scale(2, 2, 2)
	p := transform(parent.Mul(child), [3]float64{1, 0, 0})
	if !approxEqual(p[0], 12) {
		t.Errorf("expected x=12, got %f", p[0])
	}
}
