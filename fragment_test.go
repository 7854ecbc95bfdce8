/*
 * fragment_test.go, part of mbuild.
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
	"testing"

	v3 "github.com/amburan/mbuild/v3"
)

//builds a water molecule with reasonable geometry, no bonds yet.
func buildWater() (*Fragment, error) {
	w := NewFragment("water")
	o, _ := v3.NewMatrix([]float64{0, 0, 0})
	h1, _ := v3.NewMatrix([]float64{0.96, 0, 0})
	h2, _ := v3.NewMatrix([]float64{-0.24, 0.93, 0})
	for _, p := range []*Particle{NewParticle("O", "O", o), NewParticle("H1", "H", h1), NewParticle("H2", "H", h2)} {
		if err := w.Add(p, p.Name); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func TestFragmentBuild(Te *testing.T) {
	w, err := buildWater()
	if err != nil {
		Te.Fatal(err)
	}
	if len(w.Labels()) != 3 {
		Te.Errorf("wrong number of labels: %d", len(w.Labels()))
	}
	//labels keep insertion order
	for i, l := range []string{"O", "H1", "H2"} {
		if w.Labels()[i] != l {
			Te.Errorf("label %d is %s, not %s", i, w.Labels()[i], l)
		}
	}
	o, err := w.Get("O")
	if err != nil {
		Te.Fatal(err)
	}
	if o.(*Particle).Symbol != "O" {
		Te.Error("the label O does not name the oxygen")
	}
	pos, _ := v3.NewMatrix([]float64{1, 1, 1})
	err = w.Add(NewParticle("X", "C", pos), "O")
	if _, ok := err.(*DuplicateLabelError); !ok {
		Te.Errorf("reusing a label should be a DuplicateLabelError, got %v", err)
	}
	_, err = w.Get("nope")
	if _, ok := err.(*NotFoundError); !ok {
		Te.Errorf("a missing label should be a NotFoundError, got %v", err)
	}
	_, err = w.Port("O")
	if _, ok := err.(*InvalidPortError); !ok {
		Te.Errorf("asking for a particle as a port should be an InvalidPortError, got %v", err)
	}
	fmt.Println("water built:", w.Labels())
}

func TestAutoLabels(Te *testing.T) {
	f := NewFragment("box")
	pos, _ := v3.NewMatrix([]float64{0, 0, 0})
	for i := 0; i < 3; i++ {
		if err := f.Add(NewParticle("C", "C", pos)); err != nil {
			Te.Fatal(err)
		}
	}
	labels := f.Labels()
	fmt.Println("automatic labels:", labels)
	for _, l := range labels {
		if _, err := f.Get(l); err != nil {
			Te.Error(err)
		}
	}
	if len(labels) != 3 {
		Te.Errorf("expected 3 children, got %d", len(labels))
	}
}

func TestTranslateRoundtrip(Te *testing.T) {
	w, err := buildWater()
	if err != nil {
		Te.Fatal(err)
	}
	orig := v3.Zeros(len(w.Particles()))
	for i, p := range w.Particles() {
		orig.SetMatrix(i, 0, p.Coord())
	}
	d, _ := v3.NewMatrix([]float64{13.3, -2.5, 0.07})
	w.Translate(d)
	back := v3.Zeros(1)
	back.Scale(-1, d)
	w.Translate(back)
	for i, p := range w.Particles() {
		if !matsEqual(orig.VecView(i), p.Coord(), 1e-12) {
			Te.Errorf("particle %d did not come back: %v vs %v", i, orig.VecView(i), p.Coord())
		}
	}
	fmt.Println("translate there and back leaves water in place")
}

func TestCenterAndTranslateTo(Te *testing.T) {
	f := NewFragment("pair")
	a, _ := v3.NewMatrix([]float64{0, 0, 0})
	b, _ := v3.NewMatrix([]float64{2, 0, 0})
	f.Add(NewParticle("A", "C", a), "A")
	f.Add(NewParticle("B", "C", b), "B")
	want, _ := v3.NewMatrix([]float64{1, 0, 0})
	if !matsEqual(f.Center(), want, 1e-12) {
		Te.Errorf("center of the pair is %v", f.Center())
	}
	target, _ := v3.NewMatrix([]float64{-3, 5, 0.5})
	f.TranslateTo(target)
	if !matsEqual(f.Center(), target, 1e-12) {
		Te.Errorf("center after TranslateTo is %v", f.Center())
	}
}

func TestSpin(Te *testing.T) {
	f := NewFragment("rotor")
	a, _ := v3.NewMatrix([]float64{2, 0, 0})
	f.Add(NewParticle("A", "C", a), "A")
	p1, _ := v3.NewMatrix([]float64{1, 0, 0})
	p2, _ := v3.NewMatrix([]float64{1, 0, 1})
	//axis through (1,0,0) along z, half a turn
	if err := f.Spin(math.Pi, p1, p2); err != nil {
		Te.Fatal(err)
	}
	got, _ := f.Get("A")
	want, _ := v3.NewMatrix([]float64{0, 0, 0})
	if !matsEqual(got.(*Particle).Coord(), want, 1e-9) {
		Te.Errorf("spun particle sits at %v", got.(*Particle).Coord())
	}
	zero := v3.Zeros(1)
	if err := f.Spin(1, zero, zero); err == nil {
		Te.Error("a zero-length axis should not spin anything")
	}
	fmt.Println("spin about an off-origin axis works")
}

func TestTraversalIdempotence(Te *testing.T) {
	w, err := buildWater()
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.GenerateBonds(); err != nil {
		Te.Fatal(err)
	}
	p1 := w.Particles()
	p2 := w.Particles()
	if len(p1) != len(p2) {
		Te.Fatal("two traversals disagree on the particle count")
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			Te.Error("two traversals yield different particles")
		}
	}
	b1 := w.Bonds()
	b2 := w.Bonds()
	if len(b1) != len(b2) {
		Te.Fatal("two traversals disagree on the bond count")
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			Te.Error("two traversals yield different bonds")
		}
	}
	fmt.Println("reading twice gives the same structure twice")
}

func TestGenerateBonds(Te *testing.T) {
	w, err := buildWater()
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.GenerateBonds(); err != nil {
		Te.Fatal(err)
	}
	if len(w.Bonds()) != 2 {
		Te.Errorf("water should get 2 bonds, got %d", len(w.Bonds()))
	}
	o, _ := w.Get("O")
	if len(o.(*Particle).Bonds) != 2 {
		Te.Error("the oxygen should be in both bonds")
	}
	//a second pass must not duplicate anything
	if err := w.GenerateBonds(); err != nil {
		Te.Fatal(err)
	}
	if len(w.Bonds()) != 2 {
		Te.Errorf("regenerating changed the bond count to %d", len(w.Bonds()))
	}
	fmt.Println("water got its 2 bonds")
}

func TestGenerateBondsTrims(Te *testing.T) {
	f := NewFragment("crowded")
	c, _ := v3.NewMatrix([]float64{0, 0, 0})
	f.Add(NewParticle("C", "C", c), "C")
	hpos := [][]float64{
		{1.00, 0, 0},
		{0, 1.02, 0},
		{-1.04, 0, 0},
		{0, -1.06, 0},
		{0, 0, 1.08},
	}
	for i, xyz := range hpos {
		h, _ := v3.NewMatrix(xyz)
		f.Add(NewParticle(fmt.Sprintf("H%d", i+1), "H", h))
	}
	if err := f.GenerateBonds(); err != nil {
		Te.Fatal(err)
	}
	if len(f.Bonds()) != 4 {
		Te.Fatalf("a carbon takes 4 bonds, got %d", len(f.Bonds()))
	}
	//the one dropped must be the longest
	for _, b := range f.Bonds() {
		if b.Dist > 1.07 {
			Te.Errorf("the longest contact survived the trim: %4.2f", b.Dist)
		}
	}
	fmt.Println("bond trimming keeps the 4 shortest contacts")
}

func TestAddRemoveBond(Te *testing.T) {
	w, err := buildWater()
	if err != nil {
		Te.Fatal(err)
	}
	o, _ := w.Get("O")
	h1, _ := w.Get("H1")
	b, err := w.AddBond(o.(*Particle), h1.(*Particle), 1)
	if err != nil {
		Te.Fatal(err)
	}
	if b.Order != 1 || b.Cross(o.(*Particle)) != h1.(*Particle) {
		Te.Error("the bond does not connect what it should")
	}
	if _, err := w.AddBond(o.(*Particle), o.(*Particle)); err == nil {
		Te.Error("bonding a particle to itself should fail")
	}
	_, err = w.AddBond(h1.(*Particle), o.(*Particle))
	if _, ok := err.(*ConfigurationError); !ok {
		Te.Errorf("doubling a bond should be a ConfigurationError, got %v", err)
	}
	stray, _ := v3.NewMatrix([]float64{9, 9, 9})
	outsider := NewParticle("X", "C", stray)
	_, err = w.AddBond(o.(*Particle), outsider)
	if _, ok := err.(*NotFoundError); !ok {
		Te.Errorf("bonding to an outsider should be a NotFoundError, got %v", err)
	}
	if err := w.RemoveBond(b); err != nil {
		Te.Fatal(err)
	}
	if len(w.Bonds()) != 0 || len(o.(*Particle).Bonds) != 0 {
		Te.Error("the removed bond is still registered somewhere")
	}
	fmt.Println("bond bookkeeping checks out")
}

func TestNestingAndCycles(Te *testing.T) {
	outer := NewFragment("outer")
	inner := NewFragment("inner")
	pos, _ := v3.NewMatrix([]float64{1, 2, 3})
	inner.Add(NewParticle("C", "C", pos), "C")
	if err := outer.Add(inner, "inner"); err != nil {
		Te.Fatal(err)
	}
	if err := inner.Add(outer, "outer"); err == nil {
		Te.Error("closing a containment cycle should fail")
	}
	if err := outer.Add(outer, "self"); err == nil {
		Te.Error("a fragment should not contain itself")
	}
	if len(outer.Particles()) != 1 {
		Te.Error("the nested particle is not reachable from the top")
	}
	c, _ := inner.Get("C")
	if !outer.Contains(c.(*Particle)) {
		Te.Error("Contains does not see into nested fragments")
	}
}

func TestClone(Te *testing.T) {
	f := NewFragment("ethane-ish")
	c1p, _ := v3.NewMatrix([]float64{0, 0, 0})
	c2p, _ := v3.NewMatrix([]float64{1.54, 0, 0})
	c1 := NewParticle("C1", "C", c1p)
	c2 := NewParticle("C2", "C", c2p)
	f.Add(c1, "C1")
	f.Add(c2, "C2")
	if _, err := f.AddBond(c1, c2, 1); err != nil {
		Te.Fatal(err)
	}
	port, err := NewPort(c2)
	if err != nil {
		Te.Fatal(err)
	}
	if err := f.Add(port, "p"); err != nil {
		Te.Fatal(err)
	}
	clone, err := f.Clone()
	if err != nil {
		Te.Fatal(err)
	}
	if len(clone.Particles()) != len(f.Particles()) {
		Te.Fatal("the clone does not have the original's particles")
	}
	cc2, _ := clone.Get("C2")
	if cc2.(*Particle) == c2 {
		Te.Error("the clone shares particles with the original")
	}
	if cc2.(*Particle).ID() == c2.ID() {
		Te.Error("cloned particles should get fresh identities")
	}
	//moving the original must not disturb the clone
	d, _ := v3.NewMatrix([]float64{100, 0, 0})
	f.Translate(d)
	want, _ := v3.NewMatrix([]float64{1.54, 0, 0})
	if !matsEqual(cc2.(*Particle).Coord(), want, 1e-12) {
		Te.Error("translating the original moved the clone")
	}
	cb := clone.Bonds()
	if len(cb) != 1 {
		Te.Fatal("the clone lost its bond")
	}
	if cb[0].P1 != clone.Particles()[0] && cb[0].P1 != clone.Particles()[1] {
		Te.Error("the cloned bond still points into the original")
	}
	cport, err := clone.Port("p")
	if err != nil {
		Te.Fatal(err)
	}
	if cport.Anchor() != cc2.(*Particle) {
		Te.Error("the cloned port is not anchored to the cloned particle")
	}
	if cport == port {
		Te.Error("the clone shares its port with the original")
	}
	fmt.Println("cloning gives an independent copy")
}
