// Copyright 2025 The edgefilter Authors
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

// Command edgefilter runs the Prewitt and neighborhood-uniformity edge
// detectors over a bitmap with every scheduling strategy, checks that the
// parallel outputs match the serial ones and saves the results.
//
// Usage:
//
//	edgefilter run -i photo.bmp -o out/                       # every filter, every strategy
//	edgefilter run -i photo.bmp -o out/ --prewitt forkjoin --uniformity ''
//	edgefilter run -i photo.bmp -c run.hcl --metrics
//	edgefilter in.bmp serialPrewitt.bmp parallelPrewitt.bmp serialEdge.bmp parallelEdge.bmp
//	edgefilter strategies
//
// The five-path form runs each filter serially and with fork-join and
// writes the four outputs to the given paths.
//
// Exit status is 0 when every run passed, 1 on I/O failure, 2 on usage or
// configuration errors and 3 when a parallel output differed from the
// serial one.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitMismatch = 3
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line args and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(stderr, "Error:", exitErr.Message)
		}
		return exitErr.Code
	}
	// Flag parsing and argument validation errors come from cobra itself.
	fmt.Fprintln(stderr, "Error:", err)
	fmt.Fprintln(stderr, cmd.UsageString())
	return exitUsage
}
