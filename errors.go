/*
 * errors.go, part of mbuild.
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

import "fmt"

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
// The decoration slice records the calling stack, one function per
// element, plus, for each function, any relevant information, or nothing.
type Error interface {
	Error() string
	Decorate(string) []string //Decorate adds the given string to the error's decoration slice and returns the resulting slice. If given an empty string, it just returns the current slice.
}

//errDecorate is a helper function that asserts that the error
//implements Error and decorates it with the caller's name before
//returning it. If used with a non-Error error, it will just return the
//error.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//DuplicateLabelError is returned when a component is added to a
//fragment under a label that the fragment already contains.
type DuplicateLabelError struct {
	Label string //the offending label
	Where string //name of the fragment that rejected it
	deco  []string
}

func (err *DuplicateLabelError) Error() string {
	return fmt.Sprintf("mbuild: label %q already present in fragment %q", err.Label, err.Where)
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *DuplicateLabelError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//NotFoundError is returned when a label, port or particle is looked up
//in a fragment that does not contain it.
type NotFoundError struct {
	Label string //the label or particle that could not be found
	Where string //name of the fragment that was searched
	deco  []string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("mbuild: %q not found in fragment %q", err.Label, err.Where)
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *NotFoundError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//InvalidPortError is returned when a port given to an alignment is not
//usable: its ghost geometry is not well-formed, the label given does
//not name a port, or the same port appears on both sides.
type InvalidPortError struct {
	Port   string //name of the offending port
	Reason string
	deco   []string
}

func (err *InvalidPortError) Error() string {
	return fmt.Sprintf("mbuild: port %q is not valid: %s", err.Port, err.Reason)
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *InvalidPortError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//PortAlreadyUsedError is returned when a port that was already consumed
//by a previous connection is given to an alignment operation.
type PortAlreadyUsedError struct {
	Port string //name of the offending port
	deco []string
}

func (err *PortAlreadyUsedError) Error() string {
	return fmt.Sprintf("mbuild: port %q has already been used", err.Port)
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *PortAlreadyUsedError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//ConfigurationError is returned when the values given to build or
//modify an object are inconsistent or out of range.
type ConfigurationError struct {
	Msg  string
	deco []string
}

func (err *ConfigurationError) Error() string {
	return "mbuild: " + err.Msg
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *ConfigurationError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//RegistrationError is returned when the point-set registration
//underlying an alignment has no unique rigid solution, for instance
//when one of the sets is degenerate or the sets are specular images.
type RegistrationError struct {
	Msg  string
	deco []string
}

func (err *RegistrationError) Error() string {
	return "mbuild: " + err.Msg
}

//Decorate adds the given string to the decoration slice of the error,
//and returns the resulting slice.
func (err *RegistrationError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//PanicMsg is the type used for panics, even though it does satisfy the
//error interface. Panics are reserved for programming errors, anything
//caused by user input returns one of the error types above.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilComponent   = PanicMsg("mbuild: nil component given")
	ErrNilPort        = PanicMsg("mbuild: nil port given")
	ErrNilBond        = PanicMsg("mbuild: nil bond given")
	ErrNilMatrix      = PanicMsg("mbuild: nil coordinate matrix given")
	ErrParticleInBond = PanicMsg("mbuild: the given particle is not present in the bond")
)
