//Package polymer builds repeating chains out of a monomer fragment, by
//cloning the monomer and snapping the copies together port to port.
package polymer

import (
	"fmt"

	mbuild "github.com/amburan/mbuild"
)

//Options holds the adjustable settings for building chains. The zero
//value is not useful, get one from DefaultOptions.
type Options struct {
	bond bool
	name string
}

//DefaultOptions returns an Options with the default settings: junctions
//get a bond, and the chain is named "polymer".
func DefaultOptions() *Options {
	ret := new(Options)
	ret.bond = true
	ret.name = "polymer"
	return ret
}

//Bond returns whether each junction gets a bond between the joined
//anchors, and sets it, if a value is given.
func (r *Options) Bond(bond ...bool) bool {
	ret := r.bond
	if len(bond) > 0 {
		r.bond = bond[0]
	}
	return ret
}

//Name returns the name the built chain will get, and sets it, if a
//non-empty value is given.
func (r *Options) Name(name ...string) string {
	ret := r.name
	if len(name) > 0 && name[0] != "" {
		r.name = name[0]
	}
	return ret
}

//errDecorate asserts that the error implements mbuild.Error and
//decorates it with the caller's name before returning it. A non
//mbuild.Error error is returned as it came.
func errDecorate(err error, caller string) error {
	err2, ok := err.(mbuild.Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//Chain builds a chain of n copies of unit, connecting the port labeled
//head on each copy to the port labeled tail on the copy before it. The
//head of the first copy and the tail of the last are left available, as
//are any other ports the unit carries. head and tail must label ports
//among the immediate children of the unit; they may be the same label.
//Each junction gets a bond between the joined anchors unless the Bond
//option says otherwise. The unit itself is never touched, only copies
//of it go into the chain.
func Chain(unit *mbuild.Fragment, head, tail string, n int, options ...*Options) (*mbuild.Fragment, error) {
	if unit == nil {
		panic(mbuild.ErrNilComponent)
	}
	var o *Options
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	} else {
		o = DefaultOptions()
	}
	if n < 1 {
		err := new(mbuild.ConfigurationError)
		err.Msg = fmt.Sprintf("a chain needs at least one monomer, %d requested", n)
		err.Decorate("Chain")
		return nil, err
	}
	chain := mbuild.NewFragment(o.name)
	prev, err := unit.Clone()
	if err != nil {
		return nil, errDecorate(err, "Chain")
	}
	//catch bad labels now, even if n is 1 and they'd never be looked
	//up again.
	if _, err := prev.Port(head); err != nil {
		return nil, errDecorate(err, "Chain")
	}
	if _, err := prev.Port(tail); err != nil {
		return nil, errDecorate(err, "Chain")
	}
	if err := chain.Add(prev); err != nil {
		return nil, errDecorate(err, "Chain")
	}
	for i := 1; i < n; i++ {
		next, err := unit.Clone()
		if err != nil {
			return nil, errDecorate(err, "Chain")
		}
		if err := chain.Add(next); err != nil {
			return nil, errDecorate(err, "Chain")
		}
		from, err := next.Port(head)
		if err != nil {
			return nil, errDecorate(err, "Chain")
		}
		to, err := prev.Port(tail)
		if err != nil {
			return nil, errDecorate(err, "Chain")
		}
		if o.bond {
			err = mbuild.ForceOverlap(next, from, to, chain)
		} else {
			err = mbuild.ForceOverlap(next, from, to)
		}
		if err != nil {
			return nil, errDecorate(err, "Chain")
		}
		prev = next
	}
	return chain, nil
}

//Cap closes the port at, which must be in host, with a copy of capper,
//connected through the capper's port labeled via. The copy goes into
//host and, unless the Bond option says otherwise, the junction gets a
//bond. The copy is returned, already placed.
func Cap(host *mbuild.Fragment, at *mbuild.Port, capper *mbuild.Fragment, via string, options ...*Options) (*mbuild.Fragment, error) {
	if host == nil || capper == nil {
		panic(mbuild.ErrNilComponent)
	}
	if at == nil {
		panic(mbuild.ErrNilPort)
	}
	var o *Options
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	} else {
		o = DefaultOptions()
	}
	if !host.Contains(at) {
		err := new(mbuild.InvalidPortError)
		err.Port = at.Name()
		err.Reason = fmt.Sprintf("not in fragment %q, which it should cap", host.Name())
		err.Decorate("Cap")
		return nil, err
	}
	if o.bond && !host.Contains(at.Anchor()) {
		err := new(mbuild.InvalidPortError)
		err.Port = at.Name()
		err.Reason = fmt.Sprintf("anchored outside fragment %q, so the junction cannot be bonded", host.Name())
		err.Decorate("Cap")
		return nil, err
	}
	cp, err := capper.Clone()
	if err != nil {
		return nil, errDecorate(err, "Cap")
	}
	from, err := cp.Port(via)
	if err != nil {
		return nil, errDecorate(err, "Cap")
	}
	//align first and insert after, so a failed alignment leaves the
	//host untouched.
	if err := mbuild.ForceOverlap(cp, from, at); err != nil {
		return nil, errDecorate(err, "Cap")
	}
	if err := host.Add(cp); err != nil {
		return nil, errDecorate(err, "Cap")
	}
	if o.bond {
		if _, err := host.AddBond(from.Anchor(), at.Anchor(), 1); err != nil {
			return nil, errDecorate(err, "Cap")
		}
	}
	return cp, nil
}
