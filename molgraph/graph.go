//Package molgraph exposes the bond structure of a fragment tree as a
//gonum graph, for connectivity queries.
package molgraph

import (
	"fmt"

	mbuild "github.com/amburan/mbuild"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/topo"
)

type Particle struct {
	*mbuild.Particle
	Bonds []*Bond
}

type Bond struct {
	*mbuild.Bond
	P1, P2     *Particle
	Weightfunc func(*Bond) float64
}

func (B *Bond) From() graph.Node {
	return B.P1
}

func (B *Bond) To() graph.Node {
	return B.P2
}

func (B *Bond) ReversedEdge() graph.Edge {
	return &Bond{Bond: B.Bond, P1: B.P2, P2: B.P1, Weightfunc: B.Weightfunc}
}

func (B *Bond) Weight() float64 {
	if B.Weightfunc == nil {
		return 1 //every bond counts the same unless told otherwise
	}
	return B.Weightfunc(B)
}

type Bonds []*Bond

func (B Bonds) Len() int {
	return len(B)
}

func (B Bonds) Contains(index int) bool {
	for _, b := range B {
		if b.Index == index {
			return true
		}
	}
	return false
}

//Implements gonum's graph.Nodes
type Particles struct {
	list []*Particle
	curr int
}

func (P *Particles) Len() int {
	return len(P.list) - P.curr
}

func (P *Particles) Reset() {
	P.curr = 0
}

func (P *Particles) Next() bool {
	if P.curr >= len(P.list) {
		return false
	}
	P.curr++
	return true
}

func (P *Particles) Node() graph.Node {
	return P.list[P.curr-1] //Next moves first, so the current item sits one behind
}

//Graph is the bond graph of a fragment. It implements gonum's
//graph.Undirected and graph.Weighted interfaces.
type Graph struct {
	Bonds
	parts []*Particle
	index map[int64]*Particle
}

func (G *Graph) Node(id int64) graph.Node {
	if p, ok := G.index[id]; ok {
		return p
	}
	return nil
}

func (G *Graph) Nodes() graph.Nodes {
	if len(G.parts) == 0 {
		return graph.Empty
	}
	return &Particles{list: G.parts}
}

func (G *Graph) From(id int64) graph.Nodes {
	p, ok := G.index[id]
	if !ok {
		return graph.Empty
	}
	ret := make([]*Particle, 0, len(p.Bonds))
	for _, b := range p.Bonds {
		//undirected, so the neighbor is whichever endpoint id is not
		if b.P1.ID() == id {
			ret = append(ret, b.P2)
		} else {
			ret = append(ret, b.P1)
		}
	}
	if len(ret) == 0 {
		return graph.Empty
	}
	return &Particles{list: ret}
}

func (G *Graph) HasEdgeBetween(id1, id2 int64) bool {
	return G.Edge(id1, id2) != nil
}

func (G *Graph) Edge(id1, id2 int64) graph.Edge {
	for _, b := range G.Bonds {
		if (b.P1.ID() == id1 && b.P2.ID() == id2) || (b.P1.ID() == id2 && b.P2.ID() == id1) {
			return b
		}
	}
	return nil
}

func (G *Graph) EdgeBetween(id1, id2 int64) graph.Edge {
	return G.Edge(id1, id2)
}

func (G *Graph) WeightedEdge(id1, id2 int64) graph.WeightedEdge {
	if b := G.Edge(id1, id2); b != nil {
		return b.(*Bond)
	}
	return nil
}

func (G *Graph) Weight(id1, id2 int64) (w float64, ok bool) {
	if id1 == id2 {
		return 0.0, true
	}
	b := G.Edge(id1, id2)
	if b == nil {
		return -1, false
	}
	return b.(*Bond).Weight(), true
}

//FromFragment builds the bond graph of the non-ghost particles of F.
//If weightfunc is nil every bond weighs 1, so path lengths count bond
//hops.
func FromFragment(F *mbuild.Fragment, weightfunc func(*Bond) float64) *Graph {
	G := &Graph{index: make(map[int64]*Particle)}
	for _, p := range F.Particles() {
		np := &Particle{Particle: p}
		G.parts = append(G.parts, np)
		G.index[p.ID()] = np
	}
	for i, b := range F.Bonds() {
		p1 := G.index[b.P1.ID()]
		p2 := G.index[b.P2.ID()]
		if p1 == nil || p2 == nil {
			panic(fmt.Sprintf("molgraph: bond %d has at least one endpoint outside the fragment", i))
		}
		nb := &Bond{Bond: b, P1: p1, P2: p2, Weightfunc: weightfunc}
		G.Bonds = append(G.Bonds, nb)
		p1.Bonds = append(p1.Bonds, nb)
		p2.Bonds = append(p2.Bonds, nb)
	}
	return G
}

//Molecules returns the particles of the graph grouped by connected
//component, one molecule per group.
func (G *Graph) Molecules() [][]*Particle {
	comps := topo.ConnectedComponents(G)
	ret := make([][]*Particle, 0, len(comps))
	for _, c := range comps {
		mol := make([]*Particle, 0, len(c))
		for _, n := range c {
			mol = append(mol, n.(*Particle))
		}
		ret = append(ret, mol)
	}
	return ret
}

//Connected tells whether a chain of bonds joins the two particles.
func (G *Graph) Connected(a, b *mbuild.Particle) bool {
	na, ok := G.index[a.ID()]
	if !ok {
		return false
	}
	nb, ok := G.index[b.ID()]
	if !ok {
		return false
	}
	return topo.PathExistsIn(G, na, nb)
}

//BondPath returns the particles along a shortest chain of bonds
//joining a and b, endpoints included. It is nil, without an error,
//when no chain joins them. A particle that is not in the graph at all
//is a NotFoundError.
func (G *Graph) BondPath(a, b *mbuild.Particle) ([]*Particle, error) {
	var from, to *Particle
	var ok bool
	if from, ok = G.index[a.ID()]; !ok {
		return nil, &mbuild.NotFoundError{Label: fmt.Sprintf("particle %s (id %d)", a.Name, a.ID()), Where: "the bond graph"}
	}
	if to, ok = G.index[b.ID()]; !ok {
		return nil, &mbuild.NotFoundError{Label: fmt.Sprintf("particle %s (id %d)", b.Name, b.ID()), Where: "the bond graph"}
	}
	sh := path.DijkstraFrom(from, G)
	nodes, _ := sh.To(to.ID())
	if len(nodes) == 0 {
		return nil, nil
	}
	ret := make([]*Particle, 0, len(nodes))
	for _, n := range nodes {
		ret = append(ret, n.(*Particle))
	}
	return ret, nil
}
