/*
 * doc.go, part of mbuild.
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

/*Package mbuild assembles molecules from fragments. It provides a hierarchical
fragment container with labeled children and a bond graph, ports that mark the
places where fragments can connect, and the rigid alignment that snaps a port
of one fragment onto a port of another.



	**mbuild Capabilities**


    Builds fragments as trees of particles, ports and nested fragments,
	addressed by label.

    Attaches ports to anchor particles. A port carries two four-point ghost
	frames pointing opposite ways, so an assembly can approach from either
	side; ghost points never show up in default traversals.

    Snaps fragments together with ForceOverlap: an orthogonal Procrustes
	fit of one port onto another that leaves the two anchor particles at
	bonding distance and pointing at each other, wherever the moving
	fragment started from.

    Composes, inverts and applies rigid transforms (proper rotation plus
	translation), including rotators about arbitrary axes.

    Calculates RMSD between sets of coordinates.

    Guesses bonds from interatomic distances and covalent radii, trimming
	the excess contacts of over-coordinated atoms.

    Detects steric clashes between the real particles of an assembly.

    Deep-copies fragment trees, rewiring bonds and port anchors to the
	copied particles, so a monomer can be stamped out many times.

    Spins sub-trees about any axis given by 2 points.



The ghost geometry and the anchor-to-center separation of a port are
configuration, through PortOptions; the defaults are sized from the covalent
radius of the anchor's element. Every default length is in Angstroms, as the
element tables are; the engine itself is unit-agnostic, so separations
configured in another unit come back in that unit.

mbuild is not safe for concurrent use. Every operation runs to completion on
the caller's goroutine, and callers sharing a fragment tree across goroutines
serialize access themselves.

mbuild stores coordinates in the v3.Matrix type, where each row is one point
in space. Transforms act by right-multiplication, so rotators here are the
transposes of the column-vector convention found in most textbooks.*/
package mbuild
