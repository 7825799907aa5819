// SPDX-License-Identifier: GPL-3.0-or-later

package metrix

import "errors"

var (
	errInvalidMetricName  = errors.New("metrix: invalid metric name")
	errInvalidLabelName   = errors.New("metrix: invalid label name")
	errDuplicateLabelName = errors.New("metrix: duplicate label name")
	errReservedLabelName  = errors.New("metrix: reserved label name")
	errDuplicateMetric    = errors.New("metrix: metric already registered")
	errInvalidKind        = errors.New("metrix: invalid metric kind")
	errHistogramBuckets   = errors.New("metrix: histogram buckets must be finite and strictly increasing")
)
