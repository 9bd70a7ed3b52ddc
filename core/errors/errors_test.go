// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// The INFINI Framework is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := NewWithCode(New("connection refused"), HostUnreachable, "http://localhost:9200")
	assert.Equal(t, HostUnreachable, CodeOf(err))

	wrapped := Wrap(err, "check cluster")
	assert.Equal(t, HostUnreachable, CodeOf(wrapped))

	assert.Equal(t, Default, CodeOf(New("plain")))
	assert.Equal(t, Default, CodeOf(nil))
}

func TestPayloadOf(t *testing.T) {
	failures := []interface{}{"doc-1", "doc-2"}
	err := NewWithPayload(New("3 of 100 docs failed"), CopyIncomplete, failures, "myindex")
	assert.Equal(t, failures, PayloadOf(err))
	assert.Nil(t, PayloadOf(New("plain")))
}

func TestCodedErrorMessage(t *testing.T) {
	err := NewWithCode(New("index_not_found_exception"), SourceNotFound, "logs_v1")
	assert.Contains(t, err.Error(), "source_not_found")
	assert.Contains(t, err.Error(), "logs_v1")
	assert.Contains(t, err.Error(), "index_not_found_exception")

	bare := NewWithCode(nil, UsageError, "")
	assert.Equal(t, "usage_error", bare.Error())
}
