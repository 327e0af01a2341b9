// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/routepatch/cmd/routepatch/opts"
	"github.com/walteh/routepatch/pkg/log"
	"github.com/walteh/routepatch/pkg/operation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code: 0 when
// every target was read and written (or left unchanged), 1 otherwise.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := &opts.RootOpts{}
	cmd := newRootCmd(root, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	// failed targets were already reported one by one
	if !errors.Is(err, operation.ErrTargetsFailed) {
		console := root.Console
		if console == nil {
			console = log.New(stderr, setupLogging(root.Debug, stderr).GetLevel())
		}
		console.Error(err.Error())
	}
	return 1
}
