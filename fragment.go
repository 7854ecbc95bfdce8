/*
 * fragment.go, part of mbuild.
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

	v3 "github.com/amburan/mbuild/v3"
)

//Component is the capability shared by everything a Fragment can
//contain: particles, ports and other fragments. The concrete types
//behind it are only those three; Add rejects anything else.
type Component interface {
	Translate(disp *v3.Matrix)
	Rotate(rot *v3.Matrix)
}

//Fragment is a hierarchical container of labeled components and the
//unit of assembly of the library. Each child is owned exclusively by
//its fragment: transforms, cloning and traversal are subtree-local.
//Bonds live on the fragment where they were created.
type Fragment struct {
	name     string
	labels   []string //insertion order of the children
	children map[string]Component
	bonds    []*Bond
}

//NewFragment returns an empty fragment with the given name.
func NewFragment(name string) *Fragment {
	F := new(Fragment)
	F.name = name
	F.children = make(map[string]Component)
	return F
}

//Fragment methods

//Name returns the name of the fragment.
func (F *Fragment) Name() string {
	return F.name
}

//Add inserts child under the given label, or under an auto-generated
//"name[k]" label when none is given. The label must not be taken
//already (DuplicateLabelError). Adding a fragment into its own subtree
//is rejected, as the cycle would make every traversal endless.
func (F *Fragment) Add(child Component, label ...string) error {
	if child == nil {
		panic(ErrNilComponent)
	}
	switch c := child.(type) {
	case *Particle:
		//nothing to check
	case *Port:
		if c.Fragment.Contains(F) {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("adding port %q into fragment %q would create a cycle", c.Name(), F.name)
			err.Decorate("Add")
			return err
		}
	case *Fragment:
		if c == F || c.Contains(F) {
			err := new(ConfigurationError)
			err.Msg = fmt.Sprintf("adding fragment %q into fragment %q would create a cycle", c.name, F.name)
			err.Decorate("Add")
			return err
		}
	default:
		err := new(ConfigurationError)
		err.Msg = fmt.Sprintf("fragments cannot contain components of type %T", child)
		err.Decorate("Add")
		return err
	}
	l := ""
	if len(label) > 0 {
		l = label[0]
	}
	if l == "" {
		l = F.autoLabel(child)
	}
	if _, taken := F.children[l]; taken {
		err := new(DuplicateLabelError)
		err.Label = l
		err.Where = F.name
		err.Decorate("Add")
		return err
	}
	F.children[l] = child
	F.labels = append(F.labels, l)
	return nil
}

//put inserts child under label with no validation. For internal
//construction where the label is known to be free.
func (F *Fragment) put(label string, child Component) {
	F.children[label] = child
	F.labels = append(F.labels, label)
}

//autoLabel builds a free "name[k]" label for the given child.
func (F *Fragment) autoLabel(child Component) string {
	base := ""
	switch c := child.(type) {
	case *Particle:
		base = c.Name
	case *Port:
		base = c.Name()
	case *Fragment:
		base = c.name
	}
	if base == "" {
		base = "child"
	}
	for i := 0; ; i++ {
		l := fmt.Sprintf("%s[%d]", base, i)
		if _, taken := F.children[l]; !taken {
			return l
		}
	}
}

//Get returns the immediate child stored under the given label, or a
//NotFoundError if there is none.
func (F *Fragment) Get(label string) (Component, error) {
	c, ok := F.children[label]
	if !ok {
		err := new(NotFoundError)
		err.Label = label
		err.Where = F.name
		err.Decorate("Get")
		return nil, err
	}
	return c, nil
}

//Port returns the port stored under the given label. It returns a
//NotFoundError if the label is absent and an InvalidPortError if the
//label names something that is not a port.
func (F *Fragment) Port(label string) (*Port, error) {
	c, err := F.Get(label)
	if err != nil {
		return nil, errDecorate(err, "Port")
	}
	p, ok := c.(*Port)
	if !ok {
		err := new(InvalidPortError)
		err.Port = label
		err.Reason = fmt.Sprintf("the label names a %T, not a port", c)
		err.Decorate("Port")
		return nil, err
	}
	return p, nil
}

//Labels returns the labels of the immediate children, in insertion
//order.
func (F *Fragment) Labels() []string {
	ret := make([]string, len(F.labels))
	copy(ret, F.labels)
	return ret
}

//Translate adds the 1x3 vector disp to the position of every particle
//in the subtree, ghost points included. In place.
func (F *Fragment) Translate(disp *v3.Matrix) {
	for _, l := range F.labels {
		F.children[l].Translate(disp)
	}
}

//Rotate right-multiplies the position of every particle in the subtree
//by the 3x3 rotation rot, rotating the subtree about the coordinate
//origin. Callers that need a different pivot translate before and
//after, or use Spin.
func (F *Fragment) Rotate(rot *v3.Matrix) {
	for _, l := range F.labels {
		F.children[l].Rotate(rot)
	}
}

//Transform applies the rigid transform t to every particle position in
//the subtree, in place.
func (F *Fragment) Transform(t *Transform) {
	F.Rotate(t.rot)
	F.Translate(t.shift)
}

//Spin rotates the subtree by angle radians about the axis that goes
//through the points ax1 and ax2, in place.
func (F *Fragment) Spin(angle float64, ax1, ax2 *v3.Matrix) error {
	axis := v3.Zeros(1)
	axis.Sub(ax2, ax1)
	rot, err := RotatorAboutAxis(axis, angle)
	if err != nil {
		return errDecorate(err, "Spin")
	}
	back := v3.Zeros(1)
	back.Scale(-1, ax1)
	F.Translate(back)
	F.Rotate(rot)
	F.Translate(ax1)
	return nil
}

//Particles returns the particles of the subtree, depth-first in
//insertion order. Ports are skipped unless showPorts is given and
//true, in which case the ghost points of the ports still available are
//included. Ghosts of used ports never appear.
func (F *Fragment) Particles(showPorts ...bool) []*Particle {
	show := len(showPorts) > 0 && showPorts[0]
	return F.appendParticles(make([]*Particle, 0, 10), show)
}

func (F *Fragment) appendParticles(list []*Particle, show bool) []*Particle {
	for _, l := range F.labels {
		switch c := F.children[l].(type) {
		case *Particle:
			if !c.Ghost || show {
				list = append(list, c)
			}
		case *Port:
			if show && !c.used {
				list = c.Fragment.appendParticles(list, show)
			}
		case *Fragment:
			list = c.appendParticles(list, show)
		}
	}
	return list
}

//Bonds returns the bonds of the fragment and all its descendants,
//depth-first in insertion order, own bonds first.
func (F *Fragment) Bonds() []*Bond {
	return F.appendBonds(make([]*Bond, 0, 10))
}

func (F *Fragment) appendBonds(list []*Bond) []*Bond {
	list = append(list, F.bonds...)
	for _, l := range F.labels {
		switch c := F.children[l].(type) {
		case *Port:
			list = c.Fragment.appendBonds(list)
		case *Fragment:
			list = c.appendBonds(list)
		}
	}
	return list
}

//AvailablePorts returns the ports of the subtree that have not been
//used yet, depth-first in insertion order.
func (F *Fragment) AvailablePorts() []*Port {
	return F.appendPorts(make([]*Port, 0, 4))
}

func (F *Fragment) appendPorts(list []*Port) []*Port {
	for _, l := range F.labels {
		switch c := F.children[l].(type) {
		case *Port:
			if !c.used {
				list = append(list, c)
			}
		case *Fragment:
			list = c.appendPorts(list)
		}
	}
	return list
}

//Contains reports whether c is in the subtree of the fragment, at any
//depth, the ghost points of ports included.
func (F *Fragment) Contains(c Component) bool {
	if c == nil {
		return false
	}
	for _, l := range F.labels {
		child := F.children[l]
		if child == c {
			return true
		}
		switch v := child.(type) {
		case *Port:
			if v.Fragment.Contains(c) {
				return true
			}
		case *Fragment:
			if v.Contains(c) {
				return true
			}
		}
	}
	return false
}

//Center returns the geometric center of the non-ghost particles of the
//subtree, or the origin if there are none.
func (F *Fragment) Center() *v3.Matrix {
	parts := F.Particles()
	c := v3.Zeros(1)
	if len(parts) == 0 {
		return c
	}
	for _, p := range parts {
		c.Add(c, p.coord)
	}
	c.Scale(1.0/float64(len(parts)), c)
	return c
}

//TranslateTo moves the subtree so that its geometric center ends up at
//the given 1x3 point.
func (F *Fragment) TranslateTo(point *v3.Matrix) {
	disp := v3.Zeros(1)
	disp.Sub(point, F.Center())
	F.Translate(disp)
}

//Clone returns a deep copy of the fragment: fresh particle identities,
//same names, labels and positions, bonds and port anchors remapped
//onto the copies. Cloning a subtree that has a port anchored to a
//particle outside of it returns a NotFoundError, as the anchor cannot
//be remapped.
func (F *Fragment) Clone() (*Fragment, error) {
	pmap := make(map[int64]*Particle) //old particle id to its copy
	New := F.cloneTree(pmap)
	if err := New.remapAnchors(pmap); err != nil {
		return nil, errDecorate(err, "Clone")
	}
	return New, nil
}

//cloneTree copies the structure, particles and bonds of the subtree.
//Port anchors still point into the original tree afterwards; the
//caller fixes them with remapAnchors once the whole copy exists.
func (F *Fragment) cloneTree(pmap map[int64]*Particle) *Fragment {
	New := NewFragment(F.name)
	for _, l := range F.labels {
		var nc Component
		switch c := F.children[l].(type) {
		case *Particle:
			p := c.Copy()
			pmap[c.id] = p
			nc = p
		case *Port:
			nc = c.clonePort(pmap)
		case *Fragment:
			nc = c.cloneTree(pmap)
		}
		New.children[l] = nc
		New.labels = append(New.labels, l)
	}
	//Bond endpoints always live in the subtree of the fragment holding
	//the bond, so at this point they are all in pmap.
	for _, b := range F.bonds {
		nb := new(Bond)
		nb.Index = nextBondIndex()
		nb.P1 = pmap[b.P1.id]
		nb.P2 = pmap[b.P2.id]
		nb.Dist = b.Dist
		nb.Order = b.Order
		nb.P1.Bonds = append(nb.P1.Bonds, nb)
		nb.P2.Bonds = append(nb.P2.Bonds, nb)
		New.bonds = append(New.bonds, nb)
	}
	return New
}

//remapAnchors points every port of the (cloned) subtree to the copy of
//its original anchor.
func (F *Fragment) remapAnchors(pmap map[int64]*Particle) error {
	for _, l := range F.labels {
		switch c := F.children[l].(type) {
		case *Port:
			na, ok := pmap[c.anchor.id]
			if !ok {
				err := new(NotFoundError)
				err.Label = "anchor of port " + l
				err.Where = F.name
				err.Decorate("remapAnchors")
				return err
			}
			c.anchor = na
		case *Fragment:
			if err := c.remapAnchors(pmap); err != nil {
				return err
			}
		}
	}
	return nil
}
