/*
 * particle.go, part of mbuild.
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
	v3 "github.com/amburan/mbuild/v3"
)

/*Note: several functions here panic instead of returning errors. This is
 * because they are "fundamental" functions, so if something goes wrong with
 * them the program is way-most likely wrong and should crash. Most panics
 * are related to calling a method on a nil object.*/

//Particle identities are handed out from this package-level counter.
//The library is single-goroutine by contract, so a plain increment works.
var lastParticleID int64

func nextParticleID() int64 {
	lastParticleID++
	return lastParticleID
}

//Particle is one point in a fragment: a real atom, or one of the ghost
//points that trace a port's geometry. Each particle owns its 1x3
//position, in A. Ghost particles carry no bonds and are excluded from
//the default traversals.
type Particle struct {
	Name   string
	Symbol string
	Mass   float64
	Charge float64
	Ghost  bool
	Bonds  []*Bond
	id     int64
	coord  *v3.Matrix //always 1x3
}

//NewParticle returns a particle with a fresh identity at the given
//position, or at the origin if position is nil. The mass is filled from
//the internal element table when the symbol is known.
func NewParticle(name, symbol string, position *v3.Matrix) *Particle {
	P := new(Particle)
	P.Name = name
	P.Symbol = symbol
	P.Mass = symbolMass[symbol]
	P.id = nextParticleID()
	P.coord = v3.Zeros(1)
	if position != nil {
		P.coord.Copy(position)
	}
	return P
}

//newGhost returns a ghost particle at the given position. Ghosts mark
//port geometry, they are not matter.
func newGhost(position *v3.Matrix) *Particle {
	G := NewParticle("", "", position)
	G.Ghost = true
	return G
}

//Particle methods

//ID returns the identity of the particle, unique in the current process.
func (P *Particle) ID() int64 {
	return P.id
}

//Coord returns the position of the particle as a live 1x3 view, not a
//copy. Moving a particle by writing to the view bypasses the transform
//machinery, so most callers should treat it as read-only.
func (P *Particle) Coord() *v3.Matrix {
	return P.coord
}

//Copy returns a copy of the particle with a fresh identity. Bonds are
//not carried over, as they reference other particles.
func (P *Particle) Copy() *Particle {
	if P == nil {
		panic("Attempted to copy a nil particle")
	}
	New := NewParticle(P.Name, P.Symbol, P.coord)
	New.Mass = P.Mass
	New.Charge = P.Charge
	New.Ghost = P.Ghost
	return New
}

//Translate adds disp, a 1x3 vector, to the position of the particle.
func (P *Particle) Translate(disp *v3.Matrix) {
	P.coord.AddVec(P.coord, disp)
}

//Rotate right-multiplies the position of the particle by the 3x3
//rotation rot, rotating it about the coordinate origin. Callers that
//need a different pivot translate before and after.
func (P *Particle) Rotate(rot *v3.Matrix) {
	P.coord.Mul(P.coord, rot)
}
