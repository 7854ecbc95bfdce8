/*
 * transform.go, part of mbuild.
 *
 * Copyright 2025 The mbuild authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package mbuild

import (
	"fmt"
	"math"

	v3 "github.com/amburan/mbuild/v3"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//Transform is a rigid placement in 3D space: a 3x3 rotation R and
//a 1x3 shift t, acting on row vectors on the right, x' = x*R + t.
//Transforms compose associatively, have an identity and an exact
//inverse. The zero value is not usable, start from IdentityTransform
//or NewTransform.
type Transform struct {
	rot   *v3.Matrix //3x3
	shift *v3.Matrix //1x3
}

//IdentityTransform returns the transform that leaves everything where
//it was.
func IdentityTransform() *Transform {
	T := new(Transform)
	T.rot = v3.Zeros(3)
	for i := 0; i < 3; i++ {
		T.rot.Set(i, i, 1.0)
	}
	T.shift = v3.Zeros(1)
	return T
}

//NewTransform returns a transform with the given 3x3 rotation and 1x3
//shift, both copied. A nil shift means no translation. It does not
//verify that rot is orthonormal, only the shapes.
func NewTransform(rot, shift *v3.Matrix) (*Transform, error) {
	if rot == nil {
		panic(ErrNilMatrix)
	}
	rr, rc := rot.Dims()
	if rr != 3 || rc != 3 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("a transform needs a 3x3 rotation, got %dx%d", rr, rc)
		err.Decorate("NewTransform")
		return nil, err
	}
	T := IdentityTransform()
	T.rot.Copy(rot)
	if shift != nil {
		sr, sc := shift.Dims()
		if sr != 1 || sc != 3 {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("a transform needs a 1x3 shift, got %dx%d", sr, sc)
			err.Decorate("NewTransform")
			return nil, err
		}
		T.shift.Copy(shift)
	}
	return T, nil
}

//Transform methods

//Apply puts in dst the coordinates of src, an Nx3 set, under the
//transform, row by row. dst and src may be the same matrix.
func (T *Transform) Apply(dst, src *v3.Matrix) {
	dst.Mul(src, T.rot)
	dst.AddVec(dst, T.shift)
}

//Compose sets the receiver to the transform equivalent to applying a
//and then b. The receiver may be a or b.
func (T *Transform) Compose(a, b *Transform) {
	rot := v3.Zeros(3)
	rot.Mul(a.rot, b.rot)
	shift := v3.Zeros(1)
	shift.Mul(a.shift, b.rot)
	shift.AddVec(shift, b.shift)
	T.rot.Copy(rot)
	T.shift.Copy(shift)
}

//Invert sets the receiver to the exact inverse of a, so that applying
//a and then its inverse restores every point. The receiver may be a.
func (T *Transform) Invert(a *Transform) {
	rot := v3.Zeros(3)
	rot.Copy(a.rot.T()) //the inverse of a rotation is its transpose
	shift := v3.Zeros(1)
	shift.Mul(a.shift, rot)
	shift.Scale(-1, shift)
	T.rot.Copy(rot)
	T.shift.Copy(shift)
}

//Copy sets the receiver to a copy of a.
func (T *Transform) Copy(a *Transform) {
	T.rot.Copy(a.rot)
	T.shift.Copy(a.shift)
}

//Rotation returns a copy of the rotational part of the transform.
func (T *Transform) Rotation() *v3.Matrix {
	r := v3.Zeros(3)
	r.Copy(T.rot)
	return r
}

//Shift returns a copy of the translational part of the transform.
func (T *Transform) Shift() *v3.Matrix {
	s := v3.Zeros(1)
	s.Copy(T.shift)
	return s
}

//String returns a printable representation of the transform.
func (T *Transform) String() string {
	return fmt.Sprintf("rot: %v shift: %v", T.rot, T.shift)
}

//Rotation constructors. All the operators returned here act on row
//vectors, on the right.

//RotatorAroundZ returns an operator that will rotate a set of
//coordinates by gamma radians around the z axis.
func RotatorAroundZ(gamma float64) (*v3.Matrix, error) {
	singamma := math.Sin(gamma)
	cosgamma := math.Cos(gamma)
	operator := []float64{cosgamma, singamma, 0,
		-singamma, cosgamma, 0,
		0, 0, 1}
	r, err := v3.NewMatrix(operator)
	if err != nil {
		return nil, errDecorate(err, "RotatorAroundZ")
	}
	return r, nil
}

//RotatorToNewZ takes a 1x3 row vector (newz) and returns a linear
//operator such that, when applied to a matrix mol (with the operator on
//the right side) it will rotate mol so that newz points along the z
//axis. The inverse map, from z to newz, is the transpose.
func RotatorToNewZ(newz *v3.Matrix) *v3.Matrix {
	r, c := newz.Dims()
	if c != 3 || r != 1 {
		panic("mbuild: RotatorToNewZ needs a 1x3 vector")
	}
	normxy := math.Sqrt(math.Pow(newz.At(0, 0), 2) + math.Pow(newz.At(0, 1), 2))
	theta := math.Atan2(normxy, newz.At(0, 2))      //Around the new y
	phi := math.Atan2(newz.At(0, 1), newz.At(0, 0)) //First around z
	psi := 0.000000000000                           //second around z
	sinphi := math.Sin(phi)
	cosphi := math.Cos(phi)
	sintheta := math.Sin(theta)
	costheta := math.Cos(theta)
	sinpsi := math.Sin(psi)
	cospsi := math.Cos(psi)
	operator := []float64{cosphi*costheta*cospsi - sinphi*sinpsi, -sinphi*cospsi - cosphi*costheta*sinpsi, cosphi * sintheta,
		sinphi*costheta*cospsi + cosphi*sinpsi, -sinphi*costheta*sinpsi + cosphi*cospsi, sintheta * sinphi,
		-sintheta * cospsi, sintheta * sinpsi, costheta}
	finalop, _ := v3.NewMatrix(operator) //we are hardcoding the operator so it must have the right dimensions.
	return finalop
}

//RotatorAboutAxis returns an operator that rotates a set of coordinates
//by angle radians about the direction of axis, which goes through the
//origin. It errors if the axis has zero norm, as no direction can be
//derived from it.
func RotatorAboutAxis(axis *v3.Matrix, angle float64) (*v3.Matrix, error) {
	ar, ac := axis.Dims()
	if ar != 1 || ac != 3 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("a rotation axis must be 1x3, got %dx%d", ar, ac)
		err.Decorate("RotatorAboutAxis")
		return nil, err
	}
	if axis.Norm(2) <= appzero {
		err := new(ConfigurationError)
		err.Msg = "a rotation axis must have a non-zero norm"
		err.Decorate("RotatorAboutAxis")
		return nil, err
	}
	Zswitch := RotatorToNewZ(axis)
	Zrot, err := RotatorAroundZ(angle)
	if err != nil {
		return nil, errDecorate(err, "RotatorAboutAxis")
	}
	op := v3.Zeros(3)
	op.Mul(Zswitch, Zrot)
	op.Mul(op, Zswitch.T()) //back from the frame where axis is z
	return op, nil
}

//Angle takes 2 vectors and calculates the angle in radians between them.
//It does not check for correctness or return errors!
func Angle(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.Norm(2) * v2.Norm(2)
	dotprod := v1.Dot(v2)
	argument := dotprod / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

//Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * 0.0174533
}

//Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f / 0.0174533
}
