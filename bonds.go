/*
 * bonds.go, part of mbuild.
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
	"sort"

	v3 "github.com/amburan/mbuild/v3"
)

//constants for the distance criterion, from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//Bond indexes are handed out from this package-level counter, so an
//index never repeats within a process.
var lastBondIndex int

func nextBondIndex() int {
	lastBondIndex++
	return lastBondIndex
}

//Bond is an undirected connection between two particles. Dist is the
//distance between the endpoints when the bond was created.
type Bond struct {
	Index int
	P1    *Particle
	P2    *Particle
	Dist  float64
	Order float64 //Order 0 means undetermined
}

//Cross returns the particle at the other end of the bond from origin.
//It panics if origin is not an endpoint of the bond, as that got to be
//a programming error.
func (B *Bond) Cross(origin *Particle) *Particle {
	if origin.id == B.P1.id {
		return B.P2
	}
	if origin.id == B.P2.id {
		return B.P1
	}
	panic(ErrParticleInBond)
}

//dist returns the euclidean distance between the 1x3 points a and b.
func dist(a, b *v3.Matrix) float64 {
	t := v3.Zeros(1)
	t.Sub(a, b)
	return t.Norm(2)
}

//bonded reports whether a bond between a and b already exists.
func bonded(a, b *Particle) bool {
	for _, bo := range a.Bonds {
		if bo.P1.id == b.id || bo.P2.id == b.id {
			return true
		}
	}
	return false
}

//newBond builds a bond between p1 and p2 and registers it with both
//particles and with the owner fragment. No validation here.
func newBond(owner *Fragment, p1, p2 *Particle, d, order float64) *Bond {
	b := new(Bond)
	b.Index = nextBondIndex()
	b.P1 = p1
	b.P2 = p2
	b.Dist = d
	b.Order = order
	p1.Bonds = append(p1.Bonds, b)
	p2.Bonds = append(p2.Bonds, b)
	owner.bonds = append(owner.bonds, b)
	return b
}

//takefromslice returns a new *Bond slice with the bond of the given
//index removed.
func takefromslice(bonds []*Bond, index int) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v.Index != index {
			newb = append(newb, v)
		}
	}
	return newb
}

//AddBond creates a bond between p1 and p2, both of which must be
//non-ghost particles in the subtree of the fragment (NotFoundError
//otherwise) and not bonded to each other yet. The distance between the
//endpoints is recorded in the bond. An optional bond order can be
//given; it defaults to 0, undetermined.
func (F *Fragment) AddBond(p1, p2 *Particle, order ...float64) (*Bond, error) {
	if p1 == nil || p2 == nil {
		panic(ErrNilComponent)
	}
	if p1 == p2 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("cannot bond particle %s (id %d) to itself", p1.Name, p1.id)
		err.Decorate("AddBond")
		return nil, err
	}
	if p1.Ghost || p2.Ghost {
		err := new(ConfigurationError)
		err.Msg = "ghost particles cannot be bonded"
		err.Decorate("AddBond")
		return nil, err
	}
	if bonded(p1, p2) {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("particles %d and %d are already bonded", p1.id, p2.id)
		err.Decorate("AddBond")
		return nil, err
	}
	for _, p := range []*Particle{p1, p2} {
		if !F.Contains(p) {
			err := new(NotFoundError)
			err.Label = fmt.Sprintf("particle %s (id %d)", p.Name, p.id)
			err.Where = F.name
			err.Decorate("AddBond")
			return nil, err
		}
	}
	o := 0.0
	if len(order) > 0 {
		o = order[0]
	}
	return newBond(F, p1, p2, dist(p1.coord, p2.coord), o), nil
}

//RemoveBond deletes the bond from the fragment of the subtree that
//holds it and from both its endpoints. NotFoundError if no fragment of
//the subtree holds the bond.
func (F *Fragment) RemoveBond(b *Bond) error {
	if b == nil {
		panic(ErrNilBond)
	}
	owner := F.findBondOwner(b)
	if owner == nil {
		err := new(NotFoundError)
		err.Label = fmt.Sprintf("bond %d", b.Index)
		err.Where = F.name
		err.Decorate("RemoveBond")
		return err
	}
	owner.bonds = takefromslice(owner.bonds, b.Index)
	b.P1.Bonds = takefromslice(b.P1.Bonds, b.Index)
	b.P2.Bonds = takefromslice(b.P2.Bonds, b.Index)
	return nil
}

func (F *Fragment) findBondOwner(b *Bond) *Fragment {
	for _, o := range F.bonds {
		if o == b {
			return F
		}
	}
	for _, l := range F.labels {
		switch c := F.children[l].(type) {
		case *Port:
			if o := c.Fragment.findBondOwner(b); o != nil {
				return o
			}
		case *Fragment:
			if o := c.findBondOwner(b); o != nil {
				return o
			}
		}
	}
	return nil
}

//GenerateBonds assigns bonds to the non-ghost particles of the subtree
//based on a simple distance criterion, similar to that described in
//DOI:10.1186/1758-2946-3-33: two particles are bonded when their
//distance is between tooclose and the sum of their covalent radii plus
//a tolerance. Particles already bonded to each other are left alone.
//Elements with a maximum bond count then get their longest excess
//bonds removed. The new bonds belong to the fragment GenerateBonds was
//called on. It might get slow for large systems, it's really not
//thought for proteins or macromolecules.
func (F *Fragment) GenerateBonds() error {
	parts := F.Particles()
	for i := 0; i < len(parts); i++ {
		at1 := parts[i]
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("couldn't find the covalent radius for %s %d", at1.Symbol, i)
			err.Decorate("GenerateBonds")
			return err
		}
		for j := i + 1; j < len(parts); j++ {
			at2 := parts[j]
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				err := new(ConfigurationError)
				err.Msg = fmt.Sprintf("couldn't find the covalent radius for %s %d", at2.Symbol, j)
				err.Decorate("GenerateBonds")
				return err
			}
			d := dist(at1.coord, at2.coord)
			if d < cov1+cov2+bondtol && d > tooclose && !bonded(at1, at2) {
				newBond(F, at1, at2, d, 0)
			}
		}
	}
	//Now we check that no particle has too many bonds.
	for _, at := range parts {
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //means there is not a specified number of bonds for this element.
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			err := F.RemoveBond(at.Bonds[len(at.Bonds)-1]) //we remove the longest bond
			if err != nil {
				return errDecorate(err, "GenerateBonds")
			}
		}
	}
	return nil
}
