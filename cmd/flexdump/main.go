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

package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/SnellerInc/flexbuffers/flexbuffers"
)

func dump(o *bufio.Writer, arg string) error {
	var in *os.File
	if arg == "-" {
		in = os.Stdin
	} else {
		var err error
		in, err = os.Open(arg)
		if err != nil {
			return fmt.Errorf("can't open %q: %w", arg, err)
		}
		defer in.Close()
	}
	buf, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading %q: %w", arg, err)
	}
	root, err := flexbuffers.GetRoot(buf)
	if err != nil {
		return fmt.Errorf("input %s: %w", arg, err)
	}
	enc := json.NewEncoder(o)
	return enc.Encode(root.Interface())
}

func main() {
	flag.Parse()
	o := bufio.NewWriter(os.Stdout)
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		if err := dump(o, arg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := o.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
