/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXXHash(t *testing.T) {
	// reference vectors from the xxHash project
	assert.Equal(t, uint32(0x32D153FF), XXHash("abc"))
	assert.Equal(t, uint32(0x02CC5D05), XXHash(""))

	assert.Equal(t, XXHash("logs-v1>logs-v2>logs"), XXHash("logs-v1>logs-v2>logs"))
	assert.NotEqual(t, XXHash("logs-v1>logs-v2>logs"), XXHash("logs-v1>logs-v2>search"))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "32d153ff", Fingerprint("abc"))

	// small digests keep their leading zeros, the token width never varies
	assert.Equal(t, "02cc5d05", Fingerprint(""))
	assert.Equal(t, 8, len(Fingerprint("logs-v1>logs-v2>logs")))
}

func BenchmarkXXHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		XXHash(fmt.Sprintf("logs-v%v>logs-v%v>logs", i, i+1))
	}
}
