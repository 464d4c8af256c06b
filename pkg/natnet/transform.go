package natnet

import "math"

// Transform is a 4x4 affine transform applied to every decoded position,
// and its rotation part applied to every decoded orientation, before a
// Frame is handed to the consumer (§4.2). Row r / column c is at M[r][c];
// positions are treated as column vectors, so the translation lives in
// M[0..2][3].
type Transform struct {
	M [4][4]float32
}

// Identity returns the identity transform.
func Identity() Transform {
	var t Transform
	for i := 0; i < 4; i++ {
		t.M[i][i] = 1
	}
	return t
}

// Scale returns a uniform-scale transform, the common case called out in
// §4.2 ("typically a uniform scale").
func Scale(k float32) Transform {
	t := Identity()
	t.M[0][0] = k
	t.M[1][1] = k
	t.M[2][2] = k
	return t
}

// PreMult applies the transform to a position: M * p.
func (t Transform) PreMult(p Vec3) Vec3 {
	return Vec3{
		X: t.M[0][0]*p.X + t.M[0][1]*p.Y + t.M[0][2]*p.Z + t.M[0][3],
		Y: t.M[1][0]*p.X + t.M[1][1]*p.Y + t.M[1][2]*p.Z + t.M[1][3],
		Z: t.M[2][0]*p.X + t.M[2][1]*p.Y + t.M[2][2]*p.Z + t.M[2][3],
	}
}

// rotationMatrix returns the upper-left 3x3 block with each column scaled
// to unit length, used to rotate orientations without translating or
// scaling them.
func (t Transform) rotationMatrix() [3][3]float32 {
	m := [3][3]float32{
		{t.M[0][0], t.M[0][1], t.M[0][2]},
		{t.M[1][0], t.M[1][1], t.M[1][2]},
		{t.M[2][0], t.M[2][1], t.M[2][2]},
	}
	for c := 0; c < 3; c++ {
		n := sqrt32(m[0][c]*m[0][c] + m[1][c]*m[1][c] + m[2][c]*m[2][c])
		if n > 0 {
			for r := 0; r < 3; r++ {
				m[r][c] /= n
			}
		}
	}
	return m
}

// RotateQuat applies the transform's rotation part to a quaternion, as
// rotation(transform) * q (§4.2). The rotation matrix is converted to a
// quaternion and composed with q via quaternion multiplication, so a
// uniform-scale transform (the common case) leaves q unchanged.
func (t Transform) RotateQuat(q Quat) Quat {
	r := matrixToQuat(t.rotationMatrix())
	return mulQuat(r, q)
}

func matrixToQuat(m [3][3]float32) Quat {
	trace := m[0][0] + m[1][1] + m[2][2]
	switch {
	case trace > 0:
		s := sqrt32(trace+1) * 2
		return Quat{
			W: s / 4,
			X: (m[2][1] - m[1][2]) / s,
			Y: (m[0][2] - m[2][0]) / s,
			Z: (m[1][0] - m[0][1]) / s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := sqrt32(1+m[0][0]-m[1][1]-m[2][2]) * 2
		return Quat{
			W: (m[2][1] - m[1][2]) / s,
			X: s / 4,
			Y: (m[0][1] + m[1][0]) / s,
			Z: (m[0][2] + m[2][0]) / s,
		}
	case m[1][1] > m[2][2]:
		s := sqrt32(1+m[1][1]-m[0][0]-m[2][2]) * 2
		return Quat{
			W: (m[0][2] - m[2][0]) / s,
			X: (m[0][1] + m[1][0]) / s,
			Y: s / 4,
			Z: (m[1][2] + m[2][1]) / s,
		}
	default:
		s := sqrt32(1+m[2][2]-m[0][0]-m[1][1]) * 2
		return Quat{
			W: (m[1][0] - m[0][1]) / s,
			X: (m[0][2] + m[2][0]) / s,
			Y: (m[1][2] + m[2][1]) / s,
			Z: s / 4,
		}
	}
}

func mulQuat(a, b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
