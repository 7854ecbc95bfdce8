package molgraph

import (
	"fmt"
	"math"
	"testing"

	mbuild "github.com/amburan/mbuild"
	v3 "github.com/amburan/mbuild/v3"
)

//a 3-carbon chain and a lone oxygen, all in one fragment.
func chainAndLoner() (*mbuild.Fragment, []*mbuild.Particle, error) {
	f := mbuild.NewFragment("mix")
	var parts []*mbuild.Particle
	for i := 0; i < 3; i++ {
		pos, _ := v3.NewMatrix([]float64{1.54 * float64(i), 0, 0})
		c := mbuild.NewParticle(fmt.Sprintf("C%d", i+1), "C", pos)
		if err := f.Add(c, c.Name); err != nil {
			return nil, nil, err
		}
		parts = append(parts, c)
	}
	opos, _ := v3.NewMatrix([]float64{20, 0, 0})
	o := mbuild.NewParticle("O", "O", opos)
	if err := f.Add(o, "O"); err != nil {
		return nil, nil, err
	}
	parts = append(parts, o)
	if _, err := f.AddBond(parts[0], parts[1], 1); err != nil {
		return nil, nil, err
	}
	if _, err := f.AddBond(parts[1], parts[2], 1); err != nil {
		return nil, nil, err
	}
	return f, parts, nil
}

func TestMolecules(Te *testing.T) {
	f, parts, err := chainAndLoner()
	if err != nil {
		Te.Fatal(err)
	}
	g := FromFragment(f, nil)
	mols := g.Molecules()
	if len(mols) != 2 {
		Te.Fatalf("expected the chain and the loner, got %d molecules", len(mols))
	}
	sizes := map[int]bool{len(mols[0]): true, len(mols[1]): true}
	if !sizes[3] || !sizes[1] {
		Te.Errorf("molecule sizes are %d and %d", len(mols[0]), len(mols[1]))
	}
	if !g.Connected(parts[0], parts[2]) {
		Te.Error("the ends of the chain should be connected")
	}
	if g.Connected(parts[0], parts[3]) {
		Te.Error("the loner should not reach the chain")
	}
	fmt.Println("the fragment splits into", len(mols), "molecules")
}

func TestBondPath(Te *testing.T) {
	f, parts, err := chainAndLoner()
	if err != nil {
		Te.Fatal(err)
	}
	g := FromFragment(f, nil)
	p, err := g.BondPath(parts[0], parts[2])
	if err != nil {
		Te.Fatal(err)
	}
	if len(p) != 3 {
		Te.Fatalf("the path across the chain has %d particles", len(p))
	}
	if p[0].Particle != parts[0] || p[1].Particle != parts[1] || p[2].Particle != parts[2] {
		Te.Error("the path does not walk the chain in order")
	}
	p, err = g.BondPath(parts[0], parts[3])
	if err != nil {
		Te.Fatal(err)
	}
	if p != nil {
		Te.Error("there should be no path to the loner")
	}
	stray, _ := v3.NewMatrix([]float64{0, 0, 9})
	outsider := mbuild.NewParticle("X", "C", stray)
	_, err = g.BondPath(parts[0], outsider)
	if _, ok := err.(*mbuild.NotFoundError); !ok {
		Te.Errorf("an outsider should be a NotFoundError, got %v", err)
	}
}

func TestGraphInterfaces(Te *testing.T) {
	f, parts, err := chainAndLoner()
	if err != nil {
		Te.Fatal(err)
	}
	g := FromFragment(f, nil)
	if g.Node(parts[0].ID()) == nil {
		Te.Error("a particle of the fragment is not a node of the graph")
	}
	if g.Node(-1) != nil {
		Te.Error("a made-up id should not be a node")
	}
	if !g.HasEdgeBetween(parts[0].ID(), parts[1].ID()) {
		Te.Error("a bond of the fragment is not an edge of the graph")
	}
	if g.HasEdgeBetween(parts[0].ID(), parts[2].ID()) {
		Te.Error("the ends of the chain are not directly bonded")
	}
	if w, ok := g.Weight(parts[0].ID(), parts[1].ID()); !ok || w != 1 {
		Te.Errorf("default bond weight should be 1, got %v", w)
	}
	it := g.Nodes()
	n := 0
	for it.Next() {
		if it.Node() == nil {
			Te.Error("the node iterator yielded nothing")
		}
		n++
	}
	if n != 4 {
		Te.Errorf("the iterator walked %d nodes instead of 4", n)
	}
	//custom weights take over
	heavy := FromFragment(f, func(b *Bond) float64 { return b.Dist })
	if w, ok := heavy.Weight(parts[0].ID(), parts[1].ID()); !ok || math.Abs(w-1.54) > 1e-9 {
		Te.Errorf("custom bond weight should be the bond length, got %v", w)
	}
}

//two isolated carbons become one molecule once a bonded overlap snaps
//their ports together.
func TestOverlapMergesMolecules(Te *testing.T) {
	world := mbuild.NewFragment("world")
	build := func(name string, x float64, axis []float64) (*mbuild.Fragment, *mbuild.Particle, *mbuild.Port) {
		f := mbuild.NewFragment(name)
		pos, _ := v3.NewMatrix([]float64{x, 0, 0})
		c := mbuild.NewParticle("C", "C", pos)
		if err := f.Add(c, "C"); err != nil {
			Te.Fatal(err)
		}
		ax, _ := v3.NewMatrix(axis)
		o := mbuild.DefaultPortOptions()
		o.Axis(ax)
		p, err := mbuild.NewPort(c, o)
		if err != nil {
			Te.Fatal(err)
		}
		if err := f.Add(p, "p"); err != nil {
			Te.Fatal(err)
		}
		if err := world.Add(f, name); err != nil {
			Te.Fatal(err)
		}
		return f, c, p
	}
	_, ca, pa := build("a", 0, []float64{0, 0, 1})
	fb, cb, pb := build("b", 10, []float64{1, 1, 0})
	g := FromFragment(world, nil)
	if mols := g.Molecules(); len(mols) != 2 {
		Te.Fatalf("expected two isolated carbons before assembly, got %d molecules", len(mols))
	}
	if g.Connected(ca, cb) {
		Te.Error("the carbons are joined before any bond exists")
	}
	if err := mbuild.ForceOverlap(fb, pb, pa, world); err != nil {
		Te.Fatal(err)
	}
	g = FromFragment(world, nil) //the graph is a snapshot, it has to be rebuilt
	mols := g.Molecules()
	if len(mols) != 1 {
		Te.Fatalf("the bonded overlap left %d molecules instead of one", len(mols))
	}
	if len(mols[0]) != 2 {
		Te.Errorf("the merged molecule has %d particles instead of 2", len(mols[0]))
	}
	if !g.Connected(ca, cb) {
		Te.Error("the junction bond does not join the carbons")
	}
	chain, err := g.BondPath(ca, cb)
	if err != nil {
		Te.Fatal(err)
	}
	if len(chain) != 2 {
		Te.Errorf("the chain between directly bonded carbons has %d particles", len(chain))
	}
	fmt.Println("after assembly the world holds", len(mols), "molecule of", len(mols[0]), "particles")
}
