// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloudeng.io/errors"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/kinnay/ninres-go"
)

// writeJob is one file write to be performed by the worker pool.
type writeJob struct {
	path string
	data []byte
}

func extract(ctx context.Context, values interface{}, args []string) error {
	cl := values.(*extractFlags)

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	outDir := cl.Output
	if outDir == "" {
		base := filepath.Base(args[0])
		outDir = strings.TrimSuffix(base, filepath.Ext(base))
	}

	jobs := make(chan writeJob, cl.Concurrency)
	errs := &errors.M{}
	var errsMu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(cl.Concurrency)
	for i := 0; i < cl.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := os.MkdirAll(filepath.Dir(job.path), 0o755); err != nil {
					errsMu.Lock()
					errs.Append(err)
					errsMu.Unlock()
					continue
				}
				if err := os.WriteFile(job.path, job.data, 0o644); err != nil {
					errsMu.Lock()
					errs.Append(err)
					errsMu.Unlock()
				}
			}
		}()
	}

	var bar *progressbar.ProgressBar
	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	if cl.ProgressBar && isTTY {
		bar = progressbar.NewOptions(-1, progressbar.OptionSetWriter(os.Stdout))
	}

	decoded, err := ninres.Decode(buf)
	if err != nil {
		close(jobs)
		wg.Wait()
		return err
	}

	sv, ok := decoded.(*ninres.SarcView)
	if !ok {
		close(jobs)
		wg.Wait()
		return fmt.Errorf("extract only supports SARC archives, got .%s", decoded.Extension())
	}

	extractSarc(sv, outDir, jobs, bar)
	close(jobs)
	wg.Wait()

	return errs.Err()
}

// extractSarc walks sv's nodes and queues a write job for each named node,
// recursing into nested SARC archives using the node's file stem as the
// new base directory.
func extractSarc(sv *ninres.SarcView, base string, jobs chan<- writeJob, bar *progressbar.ProgressBar) {
	for _, node := range sv.Nodes {
		if node.Path == nil {
			continue
		}
		path := filepath.Join(base, *node.Path)
		data := node.Payload()

		if nested, err := ninres.Decode(data); err == nil {
			path = path[:len(path)-len(filepath.Ext(path))] + "." + nested.Extension()
			if nestedSarc, ok := nested.(*ninres.SarcView); ok {
				stem := strings.TrimSuffix(path, filepath.Ext(path))
				extractSarc(nestedSarc, stem, jobs, bar)
			}
		}

		jobs <- writeJob{path: path, data: data}
		if bar != nil {
			bar.Add(1)
		}
	}
}
