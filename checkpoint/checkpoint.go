//Package checkpoint saves assemblies to disk and reads them back. A
//checkpoint is a short stack of JSON documents, one per line: a header,
//the fragment tree, and the bond list, the whole thing compressed
//according to the last letter of the file name: 'z' for gzip, 'j' for
//plain text, anything else (canonically, the .mbc extension) for zstd.
package checkpoint

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	mbuild "github.com/amburan/mbuild"
	v3 "github.com/amburan/mbuild/v3"
	"github.com/klauspost/compress/zstd"
)

const (
	magic   = "mbuild checkpoint"
	version = 1
)

//The on-disk records. Particles are numbered by their order of
//appearance in the tree, and bonds and port anchors refer to them by
//that number. Ghost points are not stored: each port record carries its
//two ghost frames as raw coordinates, and the ghosts are rebuilt from
//them on loading.
type jHeader struct {
	Format    string
	Version   int
	Particles int
}

type jParticle struct {
	Name   string
	Symbol string
	Mass   float64
	Charge float64
	Ghost  bool
	Coords []float64
}

type jPort struct {
	Name   string
	Anchor int
	Up     []float64
	Down   []float64
	Used   bool
}

type jChild struct {
	Label    string
	Particle *jParticle `json:",omitempty"`
	Port     *jPort     `json:",omitempty"`
	Fragment *jFragment `json:",omitempty"`
}

type jFragment struct {
	Name     string
	Children []*jChild
}

type jBond struct {
	P1    int
	P2    int
	Dist  float64
	Order float64
}

//Save writes F, with everything it contains, to the file name. The
//last letter of name picks the compression, as described in the package
//documentation. Saving fails if a port of the subtree is anchored to a
//particle outside of it, as the anchor could not be resolved back on
//loading.
func Save(name string, F *mbuild.Fragment) error {
	if F == nil {
		return &Error{NilFragment, name, []string{"Save"}, true}
	}
	index := make(map[int64]int)
	if err := indexParticles(F, index); err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	root, err := encodeFragment(F, index)
	if err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	bonds, err := encodeBonds(F, index)
	if err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	defer f.Close()
	h, err := newCompressor(f, name)
	if err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	enc := json.NewEncoder(h)
	err = enc.Encode(&jHeader{Format: magic, Version: version, Particles: len(index)})
	if err == nil {
		err = enc.Encode(root)
	}
	if err == nil {
		err = enc.Encode(bonds)
	}
	if err != nil {
		h.Close()
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	if err := h.Close(); err != nil {
		return &Error{err.Error(), name, []string{"Save"}, true}
	}
	return nil
}

//Load reads a file written by Save and rebuilds the fragment it holds.
//The compression is picked from the file name the same way Save picks
//it, so a checkpoint must keep the name it was saved under. The
//particles and ports of the copy are fresh identities. All bonds end up
//attached to the returned (outermost) fragment, wherever in the tree
//they were before saving.
func Load(name string) (*mbuild.Fragment, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &Error{err.Error(), name, []string{"Load"}, true}
	}
	defer f.Close()
	h, err := newDecompressor(f, name)
	if err != nil {
		return nil, &Error{"Can't read header " + err.Error(), name, []string{"Load"}, true}
	}
	defer h.Close()
	dec := json.NewDecoder(h)
	head := new(jHeader)
	if err := dec.Decode(head); err != nil {
		return nil, &Error{"Can't read header " + err.Error(), name, []string{"Load"}, true}
	}
	if head.Format != magic {
		return nil, &Error{WrongFormat, name, []string{"Load"}, true}
	}
	if head.Version > version {
		return nil, &Error{fmt.Sprintf("file version %d is newer than this library understands", head.Version), name, []string{"Load"}, true}
	}
	root := new(jFragment)
	if err := dec.Decode(root); err != nil {
		return nil, &Error{"Can't read the fragment tree " + err.Error(), name, []string{"Load"}, true}
	}
	bonds := make([]*jBond, 0)
	if err := dec.Decode(&bonds); err != nil {
		return nil, &Error{"Can't read the bond list " + err.Error(), name, []string{"Load"}, true}
	}
	parts, err := buildParticles(root, make([]*mbuild.Particle, 0, head.Particles))
	if err != nil {
		return nil, &Error{err.Error(), name, []string{"Load"}, true}
	}
	if len(parts) != head.Particles {
		return nil, &Error{fmt.Sprintf("the header promises %d particles but the tree holds %d", head.Particles, len(parts)), name, []string{"Load"}, true}
	}
	cursor := 0
	F, err := buildFragment(root, parts, &cursor)
	if err != nil {
		return nil, &Error{err.Error(), name, []string{"Load"}, true}
	}
	for _, br := range bonds {
		if br.P1 < 0 || br.P1 >= len(parts) || br.P2 < 0 || br.P2 >= len(parts) {
			return nil, &Error{fmt.Sprintf("bond %d-%d refers to particles the file does not hold", br.P1, br.P2), name, []string{"Load"}, true}
		}
		b, err := F.AddBond(parts[br.P1], parts[br.P2], br.Order)
		if err != nil {
			return nil, &Error{err.Error(), name, []string{"Load"}, true}
		}
		b.Dist = br.Dist
	}
	return F, nil
}

//indexParticles numbers the bare particles of the subtree in depth-first
//insertion order. Ghosts under ports get no number, as they are not
//stored. A particle sitting in two places of the tree at once can not be
//saved faithfully, so it is an error.
func indexParticles(F *mbuild.Fragment, index map[int64]int) error {
	for _, l := range F.Labels() {
		c, _ := F.Get(l)
		switch v := c.(type) {
		case *mbuild.Particle:
			if _, seen := index[v.ID()]; seen {
				return fmt.Errorf("particle %s (id %d) appears more than once in the tree", v.Name, v.ID())
			}
			index[v.ID()] = len(index)
		case *mbuild.Fragment:
			if err := indexParticles(v, index); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeFragment(F *mbuild.Fragment, index map[int64]int) (*jFragment, error) {
	rec := &jFragment{Name: F.Name()}
	for _, l := range F.Labels() {
		c, _ := F.Get(l)
		child := &jChild{Label: l}
		switch v := c.(type) {
		case *mbuild.Particle:
			child.Particle = encodeParticle(v)
		case *mbuild.Port:
			if v.Anchor() == nil {
				return nil, fmt.Errorf("port %q has no anchor", v.Name())
			}
			anchor, ok := index[v.Anchor().ID()]
			if !ok {
				return nil, fmt.Errorf("port %q is anchored outside the fragment being saved", v.Name())
			}
			child.Port = &jPort{
				Name:   v.Name(),
				Anchor: anchor,
				Up:     flatten(v.Up()),
				Down:   flatten(v.Down()),
				Used:   v.Used(),
			}
		case *mbuild.Fragment:
			sub, err := encodeFragment(v, index)
			if err != nil {
				return nil, err
			}
			child.Fragment = sub
		}
		rec.Children = append(rec.Children, child)
	}
	return rec, nil
}

func encodeParticle(p *mbuild.Particle) *jParticle {
	c := p.Coord()
	return &jParticle{
		Name:   p.Name,
		Symbol: p.Symbol,
		Mass:   p.Mass,
		Charge: p.Charge,
		Ghost:  p.Ghost,
		Coords: []float64{c.At(0, 0), c.At(0, 1), c.At(0, 2)},
	}
}

func encodeBonds(F *mbuild.Fragment, index map[int64]int) ([]*jBond, error) {
	bonds := F.Bonds()
	ret := make([]*jBond, 0, len(bonds))
	for _, b := range bonds {
		i1, ok1 := index[b.P1.ID()]
		i2, ok2 := index[b.P2.ID()]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("bond %d has an endpoint outside the fragment being saved", b.Index)
		}
		ret = append(ret, &jBond{P1: i1, P2: i2, Dist: b.Dist, Order: b.Order})
	}
	return ret, nil
}

//flatten turns an Nx3 set of positions into the row-major slice that
//goes into the file.
func flatten(m *v3.Matrix) []float64 {
	r, _ := m.Dims()
	ret := make([]float64, 0, r*3)
	for i := 0; i < r; i++ {
		ret = append(ret, m.At(i, 0), m.At(i, 1), m.At(i, 2))
	}
	return ret
}

//buildParticles rebuilds the particles of the record tree, in the same
//depth-first order Save numbered them in.
func buildParticles(rec *jFragment, parts []*mbuild.Particle) ([]*mbuild.Particle, error) {
	var err error
	for _, child := range rec.Children {
		switch {
		case child.Particle != nil:
			jp := child.Particle
			if len(jp.Coords) != 3 {
				return nil, fmt.Errorf("particle %q has %d coordinates instead of 3", jp.Name, len(jp.Coords))
			}
			pos, _ := v3.NewMatrix(jp.Coords)
			p := mbuild.NewParticle(jp.Name, jp.Symbol, pos)
			p.Mass = jp.Mass
			p.Charge = jp.Charge
			p.Ghost = jp.Ghost
			parts = append(parts, p)
		case child.Fragment != nil:
			parts, err = buildParticles(child.Fragment, parts)
			if err != nil {
				return nil, err
			}
		}
	}
	return parts, nil
}

//buildFragment rebuilds the tree. The particle list must already be
//complete when this runs, as a port may be anchored to a particle that
//appears later in the walk than the port itself.
func buildFragment(rec *jFragment, parts []*mbuild.Particle, cursor *int) (*mbuild.Fragment, error) {
	F := mbuild.NewFragment(rec.Name)
	for _, child := range rec.Children {
		var err error
		switch {
		case child.Particle != nil:
			err = F.Add(parts[*cursor], child.Label)
			*cursor++
		case child.Port != nil:
			jp := child.Port
			if jp.Anchor < 0 || jp.Anchor >= len(parts) {
				return nil, fmt.Errorf("port %q is anchored to particle %d, which the file does not hold", jp.Name, jp.Anchor)
			}
			up, err2 := ghostFrame(jp.Up)
			if err2 != nil {
				return nil, fmt.Errorf("port %q: %s", jp.Name, err2.Error())
			}
			down, err2 := ghostFrame(jp.Down)
			if err2 != nil {
				return nil, fmt.Errorf("port %q: %s", jp.Name, err2.Error())
			}
			var port *mbuild.Port
			port, err = mbuild.MakePort(jp.Name, parts[jp.Anchor], up, down, jp.Used)
			if err == nil {
				err = F.Add(port, child.Label)
			}
		case child.Fragment != nil:
			var sub *mbuild.Fragment
			sub, err = buildFragment(child.Fragment, parts, cursor)
			if err == nil {
				err = F.Add(sub, child.Label)
			}
		default:
			err = fmt.Errorf("fragment %q has a child of no kind under label %q", rec.Name, child.Label)
		}
		if err != nil {
			return nil, err
		}
	}
	return F, nil
}

func ghostFrame(coords []float64) (*v3.Matrix, error) {
	if len(coords) != 12 {
		return nil, fmt.Errorf("a ghost point set needs 12 numbers, got %d", len(coords))
	}
	return v3.NewMatrix(coords)
}

//newCompressor wraps f in the compressor the file name asks for.
func newCompressor(f io.Writer, name string) (io.WriteCloser, error) {
	gzipwriter := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, gzip.BestCompression) }
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	plainwriter := func(a io.Writer) (io.WriteCloser, error) { return nopWriteCloser{a}, nil }
	var anyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		anyNewWriter = gzipwriter
	case 'j':
		anyNewWriter = plainwriter
	default:
		anyNewWriter = zstdwriter
	}
	return anyNewWriter(f)
}

func newDecompressor(f io.Reader, name string) (io.ReadCloser, error) {
	gzreader := func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	zstdreader := func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return zstdql{r.Close, r}, nil
	}
	plainreader := func(a io.Reader) (io.ReadCloser, error) { return io.NopCloser(a), nil }
	var anyNewReader func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		anyNewReader = gzreader
	case 'j':
		anyNewReader = plainreader
	default:
		anyNewReader = zstdreader
	}
	return anyNewReader(f)
}

//zstd.Decoder.Close returns nothing, so it doesn't fit io.ReadCloser on
//its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

//for the uncompressed case, so every format still goes out through the
//same interface.
type nopWriteCloser struct {
	io.Writer
}

func (n nopWriteCloser) Close() error { return nil }

//Error is the type for problems saving or loading checkpoints. It
//implements mbuild.Error.
type Error struct {
	message  string
	filename string //the file involved, or an empty string if none
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("checkpoint file %s error: %s", err.filename, err.message)
}

//Decorate adds the given string to the decoration slice of the error
//and returns the resulting slice.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file the failing checkpoint was associated to.
func (err *Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err *Error) Critical() bool { return err.critical }

//Common error messages.
const (
	NilFragment = "Given a nil fragment"
	WrongFormat = "Not an mbuild checkpoint file"
)
