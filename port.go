/*
 * port.go, part of mbuild.
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
	"log"

	v3 "github.com/amburan/mbuild/v3"
)

//labels of the two ghost sets inside a port, and of the four ghosts
//inside each set, in insertion order.
const (
	upLabel   = "up"
	downLabel = "down"
)

var ghostLabels = [4]string{"middle", "tip", "left", "right"}

//genericHalfBond, in A, is used as the separation of a port whose
//anchor element has no covalent radius in the internal table. Half of
//a typical single bond.
const genericHalfBond = 0.77

//the side, in A, of the ghost frame of a port, when not configured.
const defaultGhostScale = 0.2

//PortOptions contains the settings to build a port. Use the methods to
//set the fields; every method returns the value the field had when
//called, and sets it if a new value is given.
type PortOptions struct {
	separation float64
	scale      float64
	axis       *v3.Matrix
	name       string
}

//DefaultPortOptions returns a PortOptions with the default settings: a
//0.2 A ghost frame pointing along z, with the separation to be derived
//from the covalent radius of the anchor's element.
func DefaultPortOptions() *PortOptions {
	ret := new(PortOptions)
	ret.separation = 0 //0 means "derive from the anchor"
	ret.scale = defaultGhostScale
	ret.axis, _ = v3.NewMatrix([]float64{0, 0, 1})
	ret.name = "port"
	return ret
}

//Returns the anchor-to-center separation, in A, and sets it, if a
//value is given. 0 means the separation is derived from the covalent
//radius of the anchor's element when the port is built.
func (r *PortOptions) Separation(separation ...float64) float64 {
	ret := r.separation
	if len(separation) > 0 {
		r.separation = separation[0]
	}
	return ret
}

//Returns the scale of the ghost frame, in A, and sets it, if a valid
//value is given.
func (r *PortOptions) Scale(scale ...float64) float64 {
	ret := r.scale
	if len(scale) > 0 && scale[0] > 0 {
		r.scale = scale[0]
	}
	return ret
}

//Returns the direction the port points to, as a 1x3 vector, and sets
//it, if one is given. The vector does not need to be unitary.
func (r *PortOptions) Axis(axis ...*v3.Matrix) *v3.Matrix {
	ret := r.axis
	if len(axis) > 0 && axis[0] != nil {
		r.axis = axis[0]
	}
	return ret
}

//Returns the name the port will carry, and sets it, if one is given.
func (r *PortOptions) Name(name ...string) string {
	ret := r.name
	if len(name) > 0 && name[0] != "" {
		r.name = name[0]
	}
	return ret
}

//Port marks a place where a fragment can connect to another. It is a
//fragment holding two sets of four ghost points, "up" and "down",
//proper-rotation images of each other pointing in opposite directions,
//plus a reference to the anchor particle the connection will be made
//from. A port is consumed by the first alignment that uses it; once
//used it never takes part in another alignment and its ghosts drop out
//of every traversal.
type Port struct {
	Fragment
	anchor     *Particle
	used       bool
	separation float64
}

//NewPort builds a port for the given anchor particle. The ghost frame
//is built at the canonical geometry: the up set holds the center of
//the port, a tip along the port direction and two points that break
//all the symmetries of the set; the down set is the up set rotated pi
//about a perpendicular axis through the center, so it points the
//opposite way. The frame is scaled, oriented along the configured axis
//and its center placed at separation from the anchor. A nil or ghost
//anchor, or a degenerate axis, is a ConfigurationError.
func NewPort(anchor *Particle, options ...*PortOptions) (*Port, error) {
	var o *PortOptions
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	} else {
		o = DefaultPortOptions()
	}
	if anchor == nil {
		err := new(ConfigurationError)
		err.Msg = "a port needs an anchor particle"
		err.Decorate("NewPort")
		return nil, err
	}
	if anchor.Ghost {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("particle %d is a ghost, ports must anchor to matter", anchor.id)
		err.Decorate("NewPort")
		return nil, err
	}
	sep := o.separation
	if sep < 0 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("a port separation cannot be negative: %4.2f", sep)
		err.Decorate("NewPort")
		return nil, err
	}
	if sep == 0 {
		sep = symbolCovrad[anchor.Symbol]
		if sep == 0 {
			sep = genericHalfBond
			log.Printf("mbuild: no covalent radius for element %q, port %q on particle %d gets the generic %.2f A separation", anchor.Symbol, o.name, anchor.id, sep)
		}
	}
	ax := o.axis
	if ax == nil {
		ax, _ = v3.NewMatrix([]float64{0, 0, 1})
	}
	ar, ac := ax.Dims()
	if ar != 1 || ac != 3 || ax.Norm(2) <= appzero {
		err := new(ConfigurationError)
		err.Msg = "a port axis must be a 1x3 vector with non-zero norm"
		err.Decorate("NewPort")
		return nil, err
	}
	g := o.scale
	if g == 0 {
		g = defaultGhostScale
	}
	if g < 0 {
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("a port ghost frame needs a positive scale, got %4.2f", g)
		err.Decorate("NewPort")
		return nil, err
	}
	//The up set along z, and the same set rotated pi about x, which
	//shares only the center point and points the opposite way.
	frame, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		0, 0, g,
		-g, 0, -g / 2,
		0, g / 2, -g,
		0, 0, 0,
		0, 0, -g,
		-g, 0, g / 2,
		0, -g / 2, g,
	})
	axis := v3.Zeros(1)
	axis.Unit(ax)
	zswitch := RotatorToNewZ(axis)
	frame.Mul(frame, zswitch.T()) //from z to the configured axis
	place := v3.Zeros(1)
	place.Scale(sep, axis)
	place.AddVec(place, anchor.coord)
	frame.AddVec(frame, place)
	P := new(Port)
	P.Fragment = *NewFragment(o.name)
	P.anchor = anchor
	P.separation = sep
	for i, setname := range []string{upLabel, downLabel} {
		set := NewFragment(setname)
		for j, gl := range ghostLabels {
			set.put(gl, newGhost(frame.VecView(i*4+j)))
		}
		P.put(setname, set)
	}
	return P, nil
}

//MakePort builds a port from explicit parts: the 4x3 coordinate sets
//of its up and down ghosts and its used state. The separation is
//derived from the distance between the anchor and the first up point,
//the center of the port. It is meant for restoring saved ports; for
//new ones use NewPort.
func MakePort(name string, anchor *Particle, up, down *v3.Matrix, used bool) (*Port, error) {
	if anchor == nil || anchor.Ghost {
		err := new(ConfigurationError)
		err.Msg = "a port needs a non-ghost anchor particle"
		err.Decorate("MakePort")
		return nil, err
	}
	for _, set := range []*v3.Matrix{up, down} {
		if set == nil {
			panic(ErrNilMatrix)
		}
		r, c := set.Dims()
		if r != 4 || c != 3 {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("a port ghost set must be 4x3, got %dx%d", r, c)
			err.Decorate("MakePort")
			return nil, err
		}
	}
	P := new(Port)
	P.Fragment = *NewFragment(name)
	P.anchor = anchor
	P.separation = dist(anchor.coord, up.VecView(0))
	P.used = used
	for i, set := range []*v3.Matrix{up, down} {
		sub := NewFragment([]string{upLabel, downLabel}[i])
		for j, gl := range ghostLabels {
			sub.put(gl, newGhost(set.VecView(j)))
		}
		P.put(sub.name, sub)
	}
	return P, nil
}

//Port methods

//Anchor returns the particle the port is anchored to.
func (P *Port) Anchor() *Particle {
	return P.anchor
}

//Used reports whether the port has already been consumed by an
//alignment.
func (P *Port) Used() bool {
	return P.used
}

//Separation returns the distance, in A, between the anchor and the
//center of the port.
func (P *Port) Separation() float64 {
	return P.separation
}

//Up returns a 4x3 snapshot of the positions of the up ghost set.
func (P *Port) Up() *v3.Matrix {
	return P.ghostCoords(upLabel)
}

//Down returns a 4x3 snapshot of the positions of the down ghost set.
func (P *Port) Down() *v3.Matrix {
	return P.ghostCoords(downLabel)
}

//Center returns the position of the center of the port, shared by the
//up and down sets.
func (P *Port) Center() *v3.Matrix {
	up := P.ghostCoords(upLabel)
	c := v3.Zeros(1)
	c.Copy(up.VecView(0))
	return c
}

//Direction returns the unit vector the port points to, from its center
//towards the tip of the up set.
func (P *Port) Direction() *v3.Matrix {
	up := P.ghostCoords(upLabel)
	d := v3.Zeros(1)
	d.Sub(up.VecView(1), up.VecView(0))
	d.Unit(d)
	return d
}

func (P *Port) ghostCoords(which string) *v3.Matrix {
	set, err := P.ghostSet(which)
	if err != nil {
		panic(PanicMsg(err.Error()))
	}
	ret := v3.Zeros(4)
	for i, g := range set {
		ret.SetMatrix(i, 0, g.coord)
	}
	return ret
}

//ghostSet returns the 4 ghosts of the given set of the port, or a
//ConfigurationError if the port no longer has the shape NewPort gave it.
func (P *Port) ghostSet(which string) ([]*Particle, error) {
	c, ok := P.children[which]
	if !ok {
		return nil, P.malformed(fmt.Sprintf("the %s ghost set is missing", which))
	}
	sub, ok := c.(*Fragment)
	if !ok {
		return nil, P.malformed(fmt.Sprintf("the %s child is not a ghost set", which))
	}
	parts := sub.Particles(true)
	if len(parts) != 4 {
		return nil, P.malformed(fmt.Sprintf("the %s ghost set has %d points instead of 4", which, len(parts)))
	}
	for _, g := range parts {
		if !g.Ghost {
			return nil, P.malformed(fmt.Sprintf("the %s set contains non-ghost particles", which))
		}
	}
	return parts, nil
}

func (P *Port) malformed(reason string) *ConfigurationError {
	err := new(ConfigurationError)
	err.Msg = fmt.Sprintf("port %q: %s", P.name, reason)
	return err
}

//wellformed checks that the port still has the two four-point ghost
//sets and the anchor an alignment needs.
func (P *Port) wellformed() error {
	if P.anchor == nil {
		return P.malformed("the port has no anchor")
	}
	if P.anchor.Ghost {
		return P.malformed("the port is anchored to a ghost")
	}
	for _, which := range []string{upLabel, downLabel} {
		if _, err := P.ghostSet(which); err != nil {
			return err
		}
	}
	return nil
}

//clonePort copies the port. The anchor still points into the original
//tree afterwards, Fragment.Clone remaps it.
func (P *Port) clonePort(pmap map[int64]*Particle) *Port {
	New := new(Port)
	New.Fragment = *P.Fragment.cloneTree(pmap)
	New.anchor = P.anchor
	New.used = P.used
	New.separation = P.separation
	return New
}
