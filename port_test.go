/*
 * port_test.go, part of mbuild.
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
	"testing"

	v3 "github.com/amburan/mbuild/v3"
)

func TestPortOptions(Te *testing.T) {
	o := DefaultPortOptions()
	if o.Scale() != 0.2 {
		Te.Errorf("default scale is %4.2f", o.Scale())
	}
	if old := o.Scale(0.5); old != 0.2 {
		Te.Errorf("setting the scale returned %4.2f, not the previous value", old)
	}
	if o.Scale() != 0.5 {
		Te.Error("the new scale did not stick")
	}
	o.Scale(-1) //not a valid scale, must be ignored
	if o.Scale() != 0.5 {
		Te.Error("an invalid scale overwrote a valid one")
	}
	if old := o.Separation(1.0); old != 0 {
		Te.Errorf("the default separation should be 0 (derive from the anchor), got %4.2f", old)
	}
	if o.Name() != "port" {
		Te.Errorf("default name is %q", o.Name())
	}
	o.Name("head")
	if o.Name() != "head" {
		Te.Error("the new name did not stick")
	}
	x, _ := v3.NewMatrix([]float64{1, 0, 0})
	o.Axis(x)
	if o.Axis() != x {
		Te.Error("the new axis did not stick")
	}
}

func TestNewPort(Te *testing.T) {
	cpos, _ := v3.NewMatrix([]float64{1, 1, 1})
	c := NewParticle("C", "C", cpos)
	p, err := NewPort(c)
	if err != nil {
		Te.Fatal(err)
	}
	if p.Used() {
		Te.Error("a fresh port is already used")
	}
	if p.Anchor() != c {
		Te.Error("the port is not anchored where it should")
	}
	//carbon, so the separation comes from its covalent radius
	if p.Separation() != symbolCovrad["C"] {
		Te.Errorf("the separation is %4.2f instead of the carbon radius", p.Separation())
	}
	wantcenter, _ := v3.NewMatrix([]float64{1, 1, 1 + symbolCovrad["C"]})
	if !matsEqual(p.Center(), wantcenter, 1e-9) {
		Te.Errorf("the center sits at %v", p.Center())
	}
	z, _ := v3.NewMatrix([]float64{0, 0, 1})
	if !matsEqual(p.Direction(), z, 1e-9) {
		Te.Errorf("the port points to %v", p.Direction())
	}
	up := p.Up()
	down := p.Down()
	for _, set := range []*v3.Matrix{up, down} {
		if r, c := set.Dims(); r != 4 || c != 3 {
			Te.Fatalf("a ghost set is %dx%d", r, c)
		}
	}
	//both sets share the center and point opposite ways
	if !matsEqual(up.VecView(0), down.VecView(0), 1e-9) {
		Te.Error("the up and down sets do not share their center")
	}
	dd := v3.Zeros(1)
	dd.Sub(down.VecView(1), down.VecView(0))
	dd.Unit(dd)
	dd.Scale(-1, dd)
	if !matsEqual(dd, p.Direction(), 1e-9) {
		Te.Error("the down set does not point against the up set")
	}
	if err := p.wellformed(); err != nil {
		Te.Error(err)
	}
	fmt.Println("default port built, separation", p.Separation())
}

func TestNewPortOptions(Te *testing.T) {
	cpos, _ := v3.NewMatrix([]float64{0, 0, 0})
	c := NewParticle("C", "C", cpos)
	o := DefaultPortOptions()
	o.Separation(0.5)
	o.Name("head")
	x, _ := v3.NewMatrix([]float64{2, 0, 0}) //need not be unitary
	o.Axis(x)
	p, err := NewPort(c, o)
	if err != nil {
		Te.Fatal(err)
	}
	if p.Name() != "head" {
		Te.Errorf("the port is called %q", p.Name())
	}
	if p.Separation() != 0.5 {
		Te.Errorf("the separation is %4.2f", p.Separation())
	}
	wantcenter, _ := v3.NewMatrix([]float64{0.5, 0, 0})
	if !matsEqual(p.Center(), wantcenter, 1e-9) {
		Te.Errorf("the center sits at %v", p.Center())
	}
	wantdir, _ := v3.NewMatrix([]float64{1, 0, 0})
	if !matsEqual(p.Direction(), wantdir, 1e-9) {
		Te.Errorf("the port points to %v", p.Direction())
	}
	//an element the tables do not know gets the generic separation
	upos, _ := v3.NewMatrix([]float64{0, 0, 0})
	u := NewParticle("X", "Xx", upos)
	p2, err := NewPort(u)
	if err != nil {
		Te.Fatal(err)
	}
	if p2.Separation() != genericHalfBond {
		Te.Errorf("unknown element got separation %4.2f", p2.Separation())
	}
}

func TestNewPortRejects(Te *testing.T) {
	if _, err := NewPort(nil); err == nil {
		Te.Error("a port without an anchor should not build")
	}
	gpos, _ := v3.NewMatrix([]float64{0, 0, 0})
	g := NewParticle("G", "C", gpos)
	g.Ghost = true
	if _, err := NewPort(g); err == nil {
		Te.Error("a port anchored to a ghost should not build")
	}
	c := NewParticle("C", "C", gpos)
	o := DefaultPortOptions()
	o.Separation(-1)
	_, err := NewPort(c, o)
	if _, ok := err.(*ConfigurationError); !ok {
		Te.Errorf("a negative separation should be a ConfigurationError, got %v", err)
	}
	o2 := DefaultPortOptions()
	zero := v3.Zeros(1)
	o2.Axis(zero)
	_, err = NewPort(c, o2)
	if _, ok := err.(*ConfigurationError); !ok {
		Te.Errorf("a zero axis should be a ConfigurationError, got %v", err)
	}
}

func TestPortInFragment(Te *testing.T) {
	f := NewFragment("monomer")
	cpos, _ := v3.NewMatrix([]float64{0, 0, 0})
	c := NewParticle("C", "C", cpos)
	f.Add(c, "C")
	p, err := NewPort(c)
	if err != nil {
		Te.Fatal(err)
	}
	if err := f.Add(p, "p"); err != nil {
		Te.Fatal(err)
	}
	if len(f.Particles()) != 1 {
		Te.Errorf("ghosts leaked into the default traversal: %d particles", len(f.Particles()))
	}
	if len(f.Particles(true)) != 9 {
		Te.Errorf("showing ports should yield 1+8 particles, got %d", len(f.Particles(true)))
	}
	av := f.AvailablePorts()
	if len(av) != 1 || av[0] != p {
		Te.Error("the port is not offered as available")
	}
	//the ghosts must follow the fragment around
	d, _ := v3.NewMatrix([]float64{0, 0, 10})
	f.Translate(d)
	wantcenter, _ := v3.NewMatrix([]float64{0, 0, 10 + symbolCovrad["C"]})
	if !matsEqual(p.Center(), wantcenter, 1e-9) {
		Te.Errorf("after moving the fragment the port center sits at %v", p.Center())
	}
	fmt.Println("ports ride along with their fragment")
}

func TestMakePort(Te *testing.T) {
	cpos, _ := v3.NewMatrix([]float64{3, -2, 0.5})
	c := NewParticle("C", "C", cpos)
	p, err := NewPort(c)
	if err != nil {
		Te.Fatal(err)
	}
	rebuilt, err := MakePort("p2", c, p.Up(), p.Down(), true)
	if err != nil {
		Te.Fatal(err)
	}
	if !rebuilt.Used() {
		Te.Error("the rebuilt port lost its used mark")
	}
	if d := rebuilt.Separation() - p.Separation(); d > 1e-9 || d < -1e-9 {
		Te.Errorf("the rebuilt port has separation %v instead of %v", rebuilt.Separation(), p.Separation())
	}
	if !matsEqual(rebuilt.Center(), p.Center(), 1e-9) {
		Te.Error("the rebuilt port has a different center")
	}
	if !matsEqual(rebuilt.Up(), p.Up(), 1e-9) || !matsEqual(rebuilt.Down(), p.Down(), 1e-9) {
		Te.Error("the rebuilt ghost sets do not match the originals")
	}
	bad := v3.Zeros(3)
	if _, err := MakePort("p3", c, bad, p.Down(), false); err == nil {
		Te.Error("a 3-point ghost set should not make a port")
	}
}
