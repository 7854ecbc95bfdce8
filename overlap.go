/*
 * overlap.go, part of mbuild.
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

	"gonum.org/v1/gonum/mat"

	v3 "github.com/amburan/mbuild/v3"
)

//separationTie is the margin, in A, under which the anchor separations
//produced by the two candidate placements of a port are considered
//equal, in which case the up pairing wins.
const separationTie = 1e-6

//centroid returns the geometric center of the rows of points.
func centroid(points *v3.Matrix) *v3.Matrix {
	r, _ := points.Dims()
	c := v3.Zeros(1)
	for i := 0; i < r; i++ {
		c.Add(c, points.VecView(i))
	}
	c.Scale(1/float64(r), c)
	return c
}

//RegisterSets returns the rigid transform, a proper rotation plus a
//translation, that least-squares fits the points in test onto the
//points in templa, row against row. It is the classic orthogonal
//Procrustes solution: SVD of the covariance of the centered sets. Both
//matrices must have the same number of rows, at least 3. If the sets
//are collinear or otherwise degenerate the rotation is not uniquely
//determined and a RegistrationError is returned; the same happens when
//the best orthogonal fit is a reflection, since reflections are not
//rigid motions.
func RegisterSets(test, templa *v3.Matrix) (*Transform, error) {
	tsr, tsc := test.Dims()
	tmr, tmc := templa.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("registration needs two equally-sized Nx3 point sets, got %dx%d and %dx%d", tsr, tsc, tmr, tmc)
		err.Decorate("RegisterSets")
		return nil, err
	}
	if tsr < 3 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("registration needs at least 3 points per set, got %d", tsr)
		err.Decorate("RegisterSets")
		return nil, err
	}
	ctest := v3.Zeros(tsr)
	ctempla := v3.Zeros(tmr)
	ctest.SubVec(test, centroid(test))
	ctempla.SubVec(templa, centroid(templa))
	M := v3.Zeros(3)
	M.Mul(ctest.T(), ctempla)
	var svd mat.SVD
	if ok := svd.Factorize(M.Dense, mat.SVDFull); !ok {
		err := new(RegistrationError)
		err.Msg = "the SVD of the covariance of the sets did not converge"
		err.Decorate("RegisterSets")
		return nil, err
	}
	vals := svd.Values(nil)
	if vals[1] <= appzero {
		err := new(RegistrationError)
		err.Msg = fmt.Sprintf("degenerate point sets, the rotation is not uniquely determined (singular values %v)", vals)
		err.Decorate("RegisterSets")
		return nil, err
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	rot := v3.Zeros(3)
	rot.Mul(&U, V.T())
	if mat.Det(rot.Dense) < 0 {
		err := new(RegistrationError)
		err.Msg = "the best orthogonal fit is a reflection, the sets may be specular images of each other"
		err.Decorate("RegisterSets")
		return nil, err
	}
	shift := v3.Zeros(1)
	shift.Mul(centroid(test), rot)
	shift.Sub(centroid(templa), shift)
	return NewTransform(rot, shift)
}

//RMSD returns the root of the mean square deviation between the sets
//of points in test and templa, row against row, without superimposing
//them first.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	tmr, tmc := templa.Dims()
	tsr, tsc := test.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("RMSD needs two equally-sized Nx3 point sets, got %dx%d and %dx%d", tsr, tsc, tmr, tmc)
		err.Decorate("RMSD")
		return 0, err
	}
	dev := v3.Zeros(tmr)
	dev.Sub(templa, test)
	var rmsd float64
	for i := 0; i < tmr; i++ {
		rmsd += math.Pow(dev.VecView(i).Norm(2), 2)
	}
	rmsd = rmsd / float64(tmr)
	return math.Sqrt(rmsd), nil
}

//ForceOverlap moves the whole subtree of moveThis, rigidly, so that
//the port from lands on the port to with the two pointing in opposite
//directions, then marks both ports used. The ghost sets of from are
//fitted onto the up set of to with RegisterSets; since the two sets of
//a port point opposite ways, exactly one of the two fits pulls the
//anchor particles apart instead of stacking them, and that is the one
//applied. The placement leaves the anchors separated by the sum of the
//two port separations, wherever the fragments started from.
//
//If a fragment is given as bondIn, a single bond between the two
//anchor particles is registered in it; it must contain both anchors.
//
//The ports must be unused, from must live inside moveThis along with
//its anchor, and to must not: a target port that moved along with the
//fragment could never be landed on.
func ForceOverlap(moveThis *Fragment, from, to *Port, bondIn ...*Fragment) error {
	if moveThis == nil {
		panic(ErrNilComponent)
	}
	if from == nil || to == nil {
		panic(ErrNilPort)
	}
	if from == to {
		err := new(InvalidPortError)
		err.Port = from.name
		err.Reason = "a port cannot be aligned onto itself"
		err.Decorate("ForceOverlap")
		return err
	}
	if !moveThis.Contains(from) {
		err := new(InvalidPortError)
		err.Port = from.name
		err.Reason = fmt.Sprintf("the port does not belong to the moving fragment %q", moveThis.name)
		err.Decorate("ForceOverlap")
		return err
	}
	if from.used || to.used {
		err := new(PortAlreadyUsedError)
		err.Port = from.name
		if to.used {
			err.Port = to.name
		}
		err.Decorate("ForceOverlap")
		return err
	}
	for _, p := range []*Port{from, to} {
		if err := p.wellformed(); err != nil {
			return errDecorate(err, "ForceOverlap")
		}
	}
	if !moveThis.Contains(from.anchor) {
		err := new(InvalidPortError)
		err.Port = from.name
		err.Reason = fmt.Sprintf("the anchor of the port lives outside the moving fragment %q", moveThis.name)
		err.Decorate("ForceOverlap")
		return err
	}
	//to has to stay put. If it, or its anchor, rode along with
	//moveThis, the move could never change their relative placement.
	if moveThis.Contains(to) || moveThis.Contains(to.anchor) {
		err := new(InvalidPortError)
		err.Port = to.name
		err.Reason = fmt.Sprintf("the target port would move along with the moving fragment %q", moveThis.name)
		err.Decorate("ForceOverlap")
		return err
	}
	var junction *Fragment
	if len(bondIn) > 0 && bondIn[0] != nil {
		//check the junction bond can be made before moving anything,
		//so a refused bond does not leave a moved fragment behind.
		junction = bondIn[0]
		for _, a := range []*Particle{from.anchor, to.anchor} {
			if !junction.Contains(a) {
				err := new(NotFoundError)
				err.Label = fmt.Sprintf("particle %s (id %d)", a.Name, a.id)
				err.Where = junction.name
				err.Decorate("ForceOverlap")
				return err
			}
		}
		if bonded(from.anchor, to.anchor) {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("particles %d and %d are already bonded", from.anchor.id, to.anchor.id)
			err.Decorate("ForceOverlap")
			return err
		}
	}
	ref := to.Up()
	up, err := RegisterSets(from.Up(), ref)
	if err != nil {
		return errDecorate(err, "ForceOverlap")
	}
	down, err := RegisterSets(from.Down(), ref)
	if err != nil {
		return errDecorate(err, "ForceOverlap")
	}
	upimage := v3.Zeros(1)
	downimage := v3.Zeros(1)
	up.Apply(upimage, from.anchor.coord)
	down.Apply(downimage, from.anchor.coord)
	T := up
	image := upimage
	if dist(downimage, to.anchor.coord) > dist(upimage, to.anchor.coord)+separationTie {
		T = down
		image = downimage
	}
	//Rotate about the anchor of from and then put that anchor at the
	//place the registration sends it. The net map is the registered
	//transform itself, but the intermediate coordinates stay near the
	//moving fragment instead of swinging around the origin.
	pivot := v3.Zeros(1)
	pivot.Scale(-1, from.anchor.coord)
	moveThis.Translate(pivot)
	moveThis.Rotate(T.rot)
	moveThis.Translate(image)
	from.used = true
	to.used = true
	if junction != nil {
		if _, err := junction.AddBond(from.anchor, to.anchor, 1); err != nil {
			return errDecorate(err, "ForceOverlap")
		}
	}
	return nil
}

//Clashes returns every pair of distinct non-ghost particles of the
//fragment that sit closer to each other than the minimum separation
//the bond criterion allows. A freshly aligned assembly should return
//no pairs; the placement ForceOverlap discards, which stacks the two
//anchors near the same point, is the kind of configuration this
//reports.
func Clashes(F *Fragment) [][2]*Particle {
	if F == nil {
		panic(ErrNilComponent)
	}
	parts := F.Particles()
	var ret [][2]*Particle
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			if dist(parts[i].coord, parts[j].coord) < tooclose {
				ret = append(ret, [2]*Particle{parts[i], parts[j]})
			}
		}
	}
	return ret
}
