// Package geom holds the math substrate shared by every other package:
// vectors, rotation matrices, and the oriented/axis-aligned bounding box
// kernel used by the collision engine.
package geom

import mgl "github.com/Jragonmiris/mathgl"

// Vector3, Matrix3, Matrix4, and Quaternion are the shapes every loader and
// integrator passes around. They are aliases onto mathgl's double-precision
// types rather than bespoke structs, so composition (Mul3, Mul4, Mul3x1...)
// is exactly the library's, matching how the rest of the corpus uses it.
type Vector3 = mgl.Vec3d
type Vector4 = mgl.Vec4d
type Matrix3 = mgl.Mat3d
type Matrix4 = mgl.Mat4d
type Quaternion = mgl.Quatd

// Epsilon is added to every entry of the absolute rotation-correlation
// matrix during SAT testing so that axis-aligned OBBs do not fall through
// the cracks between "parallel" and "nearly parallel" axes.
const Epsilon = 1e-6

// Identity3 and Identity4 mirror the teacher's Ident3d()/Ident4d() calls.
func Identity3() Matrix3 { return mgl.Ident3d() }
func Identity4() Matrix4 { return mgl.Ident4d() }

// Matrix3FromRows builds a rotation matrix from nine row-major floats, the
// storage order used throughout assembly documents and robot definitions
// (`1 <color> <xyz> <9 rotation floats> <referent>`). mathgl's matrix
// literals are column-major, so the row-major literal is transposed into
// place rather than assigned directly, the same trick the teacher's
// NodeTransform uses for COLLADA's row-major `<matrix>` data.
func Matrix3FromRows(r00, r01, r02, r10, r11, r12, r20, r21, r22 float64) Matrix3 {
	return Matrix3{
		r00, r01, r02,
		r10, r11, r12,
		r20, r21, r22,
	}.Transpose()
}

// RotateVector applies v' = R*v, the row-major convention spec.md §4.1
// mandates for every rotation in this codebase.
func RotateVector(r Matrix3, v Vector3) Vector3 {
	return r.Mul3x1(v)
}

// ComposeRotation returns R_world * R_local, the only composition order
// used anywhere in this codebase (never R_local * R_world).
func ComposeRotation(world, local Matrix3) Matrix3 {
	return world.Mul3(local)
}

// AxisAngleRotation applies Rodrigues' formula about axis (unit length) for
// the given angle in radians, used for wheel spin so that an orientation
// rotated N times equals a fresh rotation by N*angle.
func AxisAngleRotation(axis Vector3, angleRad float64) Matrix3 {
	q := mgl.QuatRotated(angleRad, axis)
	return rotationComponent(q.Mat4())
}

// Col3 returns column i (0, 1, 2) of a Matrix3. mathgl's Mat3d exposes no
// Col/Row accessor (that's go-gl/mathgl, a different library); Mat3d's
// underlying [9]float64 is column-major, so column i starts at offset i*3.
func Col3(m Matrix3, i int) Vector3 {
	return Vector3{m[i*3], m[i*3+1], m[i*3+2]}
}

// rotationComponent extracts the upper-left 3x3 block of a 4x4 transform by
// transforming each basis vector and reading off its first three
// components, the same extraction the teacher's models/loader.go
// RotationComponent performs on a COLLADA node's 4x4.
func rotationComponent(m Matrix4) Matrix3 {
	var m3 Matrix3
	j := 0
	for i := 0; i < 3; i++ {
		v := Vector4{}
		v[i] = 1
		vt := m.Mul4x1(v)
		for k := 0; k < 3; k++ {
			m3[j] = vt[k]
			j++
		}
	}
	return m3
}
