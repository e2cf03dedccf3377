// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"cloudeng.io/cmdutil/subcmd"
)

type CommonFlags struct {
	Concurrency int  `subcmd:"concurrency,4,'concurrency for concurrent file extraction'"`
	Verbose     bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type extractFlags struct {
	CommonFlags
	Output      string `subcmd:"output,,'directory to extract into, defaults to the input file name without its extension'"`
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
}

type inspectFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	defaultConcurrency := map[string]interface{}{
		"concurrency": 4,
	}

	extractCmd := subcmd.NewCommand("extract",
		subcmd.MustRegisterFlagStruct(&extractFlags{}, defaultConcurrency, nil),
		extract, subcmd.ExactlyNumArguments(1))
	extractCmd.Document(`recursively extract a SARC archive's contents to a directory, recognizing and re-extracting any nested SARC archives it contains.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`print a summary of each input file's decoded structure without writing anything to disk.`)

	cmdSet = subcmd.NewCommandSet(extractCmd, inspectCmd)
	cmdSet.Document(`inspect Nintendo SARC and BFRES files (including the BNTX texture banks BFRES embeds) and extract SARC archives.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}
