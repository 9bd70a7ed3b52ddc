/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package util

import (
	"testing"

	"github.com/r3labs/diff/v2"
	"github.com/stretchr/testify/assert"
)

func TestDiffTwoObject(t *testing.T) {
	sent := MapStr{"index": MapStr{"number_of_shards": "3"}}
	stored := MapStr{"index": MapStr{"number_of_shards": "3", "uuid": "kTguZ5yLTzK"}}

	changes, err := DiffTwoObject(sent, stored)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(changes))
	assert.Equal(t, diff.CREATE, changes[0].Type)
	assert.Equal(t, []string{"index", "uuid"}, changes[0].Path)
}

func TestDiffTwoObjectTypeMismatch(t *testing.T) {
	// a normalized value that changed type is a reportable change, not an error
	sent := MapStr{"replicas": 1}
	stored := MapStr{"replicas": "1"}

	changes, err := DiffTwoObject(sent, stored)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(changes))
	assert.Equal(t, diff.UPDATE, changes[0].Type)
}
