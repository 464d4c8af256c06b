package natnet

import "testing"

func TestIdentityPreMultIsNoOp(t *testing.T) {
	p := Vec3{X: 1, Y: 2, Z: 3}
	got := Identity().PreMult(p)
	if got != p {
		t.Errorf("Identity().PreMult(%v) = %v", p, got)
	}
}

func TestScalePreMult(t *testing.T) {
	got := Scale(2).PreMult(Vec3{X: 1, Y: 2, Z: 3})
	want := Vec3{X: 2, Y: 4, Z: 6}
	if got != want {
		t.Errorf("Scale(2).PreMult = %v, want %v", got, want)
	}
}

func TestIdentityRotateQuatIsNoOp(t *testing.T) {
	q := Quat{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9}
	got := Identity().RotateQuat(q)
	if approxQuat(got, q, 1e-5) == false {
		t.Errorf("Identity().RotateQuat(%v) = %v", q, got)
	}
}

func TestScaleRotateQuatIsNoOp(t *testing.T) {
	// A uniform scale has no rotational component: composing its rotation
	// with q must leave q unchanged (§4.2 "typically a uniform scale").
	q := Quat{X: 0, Y: 0, Z: 0.7071, W: 0.7071}
	got := Scale(0.001).RotateQuat(q)
	if !approxQuat(got, q, 1e-3) {
		t.Errorf("Scale(k).RotateQuat(%v) = %v, want unchanged", q, got)
	}
}

func approxQuat(a, b Quat, eps float32) bool {
	return approx(a.X, b.X, eps) && approx(a.Y, b.Y, eps) && approx(a.Z, b.Z, eps) && approx(a.W, b.W, eps)
}

func approx(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
