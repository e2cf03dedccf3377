// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"cloudeng.io/errors"

	"github.com/kinnay/ninres-go"
)

func inspectFile(name string) error {
	buf, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	decoded, err := ninres.Decode(buf)
	if err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}

	fmt.Printf("=== %v (.%s) ===\n", name, decoded.Extension())
	switch v := decoded.(type) {
	case *ninres.SarcView:
		fmt.Printf("file_size    : %d\n", v.FileSize)
		fmt.Printf("data_offset  : %d\n", v.DataOffset)
		fmt.Printf("version      : %d\n", v.Version)
		fmt.Printf("nodes        : %d\n", len(v.Nodes))
		for _, n := range v.Nodes {
			path := "<unnamed>"
			if n.Path != nil {
				path = *n.Path
			}
			fmt.Printf("  %-40s %8d bytes\n", path, len(n.Payload()))
		}
	case *ninres.BfresView:
		fmt.Printf("version      : %d\n", v.Version)
		fmt.Printf("files        : %d\n", len(v.Files))
		for i, f := range v.Files {
			if f.BNTX != nil {
				fmt.Printf("  [%d] bntx, %d textures\n", i, len(f.BNTX.Textures))
			} else {
				fmt.Printf("  [%d] %d bytes, unrecognized\n", i, len(f.Data))
			}
		}
	}
	return nil
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	errs := errors.M{}
	for _, arg := range args {
		errs.Append(inspectFile(arg))
	}
	return errs.Err()
}
