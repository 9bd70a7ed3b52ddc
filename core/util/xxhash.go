/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package util

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
)

// XXHash returns the 32 bit xxHash digest of data.
func XXHash(data string) uint32 {
	hash := xxhash.New32()
	hash.Write(UnsafeStringToBytes(data))
	return hash.Sum32()
}

// Fingerprint renders the digest of data as a fixed width, lowercase hex
// token, stable across runs and platforms.
func Fingerprint(data string) string {
	return fmt.Sprintf("%08x", XXHash(data))
}
