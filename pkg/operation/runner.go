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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏃 OperationRunner executes operations
type OperationRunner struct {
	logger *zerolog.Logger
	async  bool
}

// 🏗️ NewRunner creates a new runner. An async runner returns as soon as the
// context is cancelled, even if the operation is still running.
func NewRunner(logger *zerolog.Logger, async bool) *OperationRunner {
	return &OperationRunner{
		logger: logger,
		async:  async,
	}
}

// 🏃 Run executes operations in order and stops at the first failure
func (r *OperationRunner) Run(ctx context.Context, ops ...Operation) error {
	for _, op := range ops {
		r.logger.Debug().Str("operation", op.Name()).Bool("async", r.async).Msg("running operation")

		var err error
		if r.async {
			err = r.runAsync(ctx, op)
		} else {
			err = r.runSync(ctx, op)
		}
		if err != nil {
			return errors.Errorf("%s: %w", op.Name(), err)
		}
	}
	return nil
}

// 🔄 runSync runs an operation synchronously
func (r *OperationRunner) runSync(ctx context.Context, op Operation) error {
	return op.Execute(ctx)
}

// ⚡ runAsync runs an operation in its own goroutine
func (r *OperationRunner) runAsync(ctx context.Context, op Operation) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- op.Execute(ctx)
	}()

	select {
	case <-ctx.Done():
		return errors.Errorf("operation cancelled: %w", ctx.Err())
	case err := <-errCh:
		return err
	}
}
