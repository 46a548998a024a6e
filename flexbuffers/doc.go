// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package flexbuffers implements FlexBuffers, a schema-less,
// self-describing binary format in the FlatBuffers family.
//
// A FlexBuffer encodes an arbitrary tree of scalars, strings, blobs,
// vectors and string-keyed maps into one contiguous byte slice that is
// read in place: the reader never runs a parsing pass or allocates,
// it only follows back-offsets from the end of the buffer towards
// its children.
//
// Use Builder to produce a document and GetRoot to read one back.
package flexbuffers
