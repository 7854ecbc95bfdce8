/*
 * gonum.go, part of mbuild.
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

//All the *Vec functions operate on rows: within the package it is
//understood that a "vector" is a row of the matrix, i.e. the cartesian
//coordinates of one point in 3D space. The names of several functions
//in the library reflect this.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space, stored as an Nx3 matrix where
//each row is one point. It must be able to implement any gonum
//interface, so it just wraps the gonum type.
type Matrix struct {
	*mat.Dense
}

func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, &Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 columns.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//VecView returns a view of the ith vector of the matrix. Changes in
//the view are reflected in the original and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
//Notice that very little memory allocation happens, only a couple of
//ints and pointers.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//SetMatrix puts the matrix A in the receiver, starting from the ith
//row and jth col of the receiver.
func (F *Matrix) SetMatrix(i, j int, A *Matrix) {
	b := F.RawMatrix()
	ar, ac := A.Dims()
	fc := 3
	if ar+i > F.NVecs() || ac+j > fc {
		panic(ErrShape)
	}
	r := make([]float64, ac, ac)
	for k := 0; k < ar; k++ {
		mat.Row(r, k, A.Dense)
		startpoint := fc*(k+i) + j
		copy(b.Data[startpoint:startpoint+ac], r)
	}
}

//Mul wraps mat.Mul to take care of the case when one of the arguments
//is also the receiver. Since the receiver is a Matrix, the gonum
//function could check A (mat.Dense) vs F (Matrix) and it would not
//know that internally F.Dense==A, hence the need for this function.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if F == A {
		A := A.(*Matrix)
		F.Dense.Mul(A.Dense, B)
	} else if F == B {
		B := B.(*Matrix)
		F.Dense.Mul(A, B.Dense)
	} else {
		F.Dense.Mul(A, B)
	}
}

//Stack puts A stacked over B in F.
func (F *Matrix) Stack(A, B *Matrix) {
	f := F.RawMatrix()
	ar, _ := A.Dims()
	br, _ := B.Dims()
	if F.NVecs() < ar+br {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		mat.Row(f.Data[i*3:i*3+3], i, A.Dense)
	}
	for i := ar; i < ar+br; i++ {
		mat.Row(f.Data[i*3:i*3+3], i-ar, B.Dense)
	}
}

//SomeVecs puts in F a matrix consisting of the vectors of A whose
//indexes are given in clist, in that order. Panics if the shapes do
//not match.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if fr != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= ar {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//SomeVecsSafe is as SomeVecs, but returns an error instead of
//panicking. The return value must be named for the recovery to
//reach the caller.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(PanicMsg); ok {
				err = &Error{string(e), []string{"SomeVecsSafe"}, true}
			} else {
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

//SetVecs puts the vectors of A into the vectors of the receiver
//indicated by clist, in order.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= fr {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

//DelVec puts in F a copy of A minus the ith vector.
func (F *Matrix) DelVec(A *Matrix, i int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if i >= ar || fr != ar-1 {
		panic(ErrShape)
	}
	for r := 0; r < ar; r++ {
		tr := r
		if r == i {
			continue
		}
		if r > i {
			tr = r - 1
		}
		for j := 0; j < 3; j++ {
			F.Set(tr, j, A.At(r, j))
		}
	}
}

//SwapVecs swaps the ith and jth vectors of the receiver, in place.
func (F *Matrix) SwapVecs(i, j int) {
	fr, _ := F.Dims()
	if i >= fr || j >= fr {
		panic(ErrIndexOutOfRange)
	}
	for k := 0; k < 3; k++ {
		tmp := F.At(i, k)
		F.Set(i, k, F.At(j, k))
		F.Set(j, k, tmp)
	}
}

//AddVec adds the 1x3 vector vec to every vector of A, putting the
//result in the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	vr, vc := vec.Dims()
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if vc != 3 || vr != 1 || ac != 3 || fc != 3 || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

//SubVec subtracts the 1x3 vector vec from every vector of A, putting
//the result in the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	v := Zeros(1)
	v.Scale(-1, vec)
	F.AddVec(A, v)
}

//AddFloat adds the float f to every element of A, putting the result
//in the receiver.
func (F *Matrix) AddFloat(A *Matrix, f float64) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+f)
		}
	}
}

//ScaleByVec scales each column of A by the corresponding element of
//the 1x3 vector vec, putting the result in the receiver.
func (F *Matrix) ScaleByVec(A, vec *Matrix) {
	vr, vc := vec.Dims()
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if vc != 3 || vr != 1 || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)*vec.At(0, j))
		}
	}
}

//ScaleByCol scales each row of A by the corresponding element of the
//Nx1 column col, putting the result in the receiver.
func (F *Matrix) ScaleByCol(A *Matrix, col mat.Matrix) {
	cr, cc := col.Dims()
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if cc != 1 || cr != ar || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)*col.At(i, 0))
		}
	}
}

//Cross puts the cross product of the 1x3 vectors a and b in the
//receiver, which must also be 1x3.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() != 1 || b.NVecs() != 1 || F.NVecs() != 1 {
		panic(ErrNoCrossProduct)
	}
	F.Set(0, 0, a.At(0, 1)*b.At(0, 2)-a.At(0, 2)*b.At(0, 1))
	F.Set(0, 1, a.At(0, 2)*b.At(0, 0)-a.At(0, 0)*b.At(0, 2))
	F.Set(0, 2, a.At(0, 0)*b.At(0, 1)-a.At(0, 1)*b.At(0, 0))
}

//Dot returns the dot product between the receiver and B, both of
//which must be 1x3 vectors.
func (F *Matrix) Dot(B *Matrix) float64 {
	if F.NVecs() != 1 || B.NVecs() != 1 {
		panic(ErrShape)
	}
	return F.At(0, 0)*B.At(0, 0) + F.At(0, 1)*B.At(0, 1) + F.At(0, 2)*B.At(0, 2)
}

//Norm returns the v-norm of the receiver (use 2 for the Euclidean
//norm).
func (F *Matrix) Norm(v float64) float64 {
	return mat.Norm(F.Dense, v)
}

//Unit puts in the receiver the unit vector in the direction of A.
//Panics if A has norm zero.
func (F *Matrix) Unit(A *Matrix) {
	norm := A.Norm(2)
	if norm == 0 {
		panic(ErrNormZero)
	}
	F.Scale(1.0/norm, A)
}

//NVecs returns the number of vectors in the receiver.
func (F *Matrix) NVecs() int {
	r, _ := F.Dims()
	return r
}

//Len returns the number of vectors in the receiver. It is equivalent
//to NVecs and exists for compatibility with other types of the
//library.
func (F *Matrix) Len() int {
	r, _ := F.Dims()
	return r
}

//String returns a neat string representation of the matrix.
func (F *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(F.Dense, mat.Squeeze()))
}

//Errors

//errorInt is the same as mbuild.Error but defined here to avoid a
//circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

//Error is the type for the errors of the package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	return fmt.Sprintf("%s", err.message)
}

//Decorate will add the dec string to the decoration slice of strings
//of the error, and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error is critical or can be ignored.
func (err *Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy
//the error interface. For errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("mbuild/v3: A Matrix should have 3 columns")
	ErrNoCrossProduct    = PanicMsg("mbuild/v3: Invalid matrix for cross product")
	ErrNotEnoughElements = PanicMsg("mbuild/v3: not enough elements in Matrix")
	ErrNormZero          = PanicMsg("mbuild/v3: Attempted to normalize a zero-norm vector")
	ErrGonum             = PanicMsg("mbuild/v3: Error in gonum function")
	ErrShape             = PanicMsg("mbuild/v3: Dimension mismatch")
	ErrIndexOutOfRange   = PanicMsg("mbuild/v3: index out of range")
)
