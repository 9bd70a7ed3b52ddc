/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package util

import (
	"github.com/r3labs/diff/v2"
)

// DiffTwoObject reports the changes that turn a into b. Type mismatches
// become changelog entries instead of errors and slice order is ignored,
// which suits comparing schema maps after a server has normalized them.
func DiffTwoObject(a, b interface{}) (diff.Changelog, error) {
	return diff.Diff(a, b, diff.DisableStructValues(), diff.AllowTypeMismatch(true), diff.SliceOrdering(false))
}
