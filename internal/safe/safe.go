// SPDX-License-Identifier: AGPL-3.0-only

// Package safe implements the error-isolation boundary that lets
// ExtractAll keep going when a single extractor misbehaves.
//
// Modeled on an Error-accumulator pattern (type Error []error, AddError)
// where extraction failures are collected rather than aborting the whole
// run: here there is no retryable network state to accumulate against, so
// "collect and continue" becomes "recover and continue."
package safe

import (
	"fmt"
	"log/slog"
)

// Run executes fn, recovering from any panic. On recovery it logs an error
// and returns normally, without propagating the panic or reporting it to
// the caller; a result slot that fn had not yet assigned stays at its
// zero value.
func Run(logger *slog.Logger, extractor string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("extractor recovered from fault",
				slog.String("extractor", extractor),
				slog.Any("err", asError(r)),
			)
		}
	}()
	fn()
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
