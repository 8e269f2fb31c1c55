// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package report

import (
	"bytes"
	"errors"
)

// dataVolumeSentinel is embedded in an otherwise successful response when the
// requested range and column set exceed the upstream row ceiling.
const dataVolumeSentinel = "Unable to display more data"

// ErrDataVolumeCeiling reports that a response was truncated by the upstream
// data volume ceiling. It is recoverable by narrowing the request.
var ErrDataVolumeCeiling = errors.New("report exceeds upstream data volume ceiling")

// IsDataVolumeCeiling reports whether body carries the ceiling sentinel.
func IsDataVolumeCeiling(body []byte) bool {
	return bytes.Contains(body, []byte(dataVolumeSentinel))
}

// Classify returns ErrDataVolumeCeiling for a ceiling-bound body and nil otherwise.
func Classify(body []byte) error {
	if IsDataVolumeCeiling(body) {
		return ErrDataVolumeCeiling
	}
	return nil
}
