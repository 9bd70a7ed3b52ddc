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

package rotate

import (
	"reflect"
	"testing"
)

// assert fails the test when condition is false.
func assert(condition bool, t testing.TB, msg string, v ...interface{}) {
	t.Helper()
	if !condition {
		t.Fatalf(msg, v...)
	}
}

// equals fails the test when exp and act differ according to reflect.DeepEqual.
func equals(exp, act interface{}, t testing.TB) {
	t.Helper()
	if !reflect.DeepEqual(exp, act) {
		t.Fatalf("exp: %v (%T), got: %v (%T)", exp, exp, act, act)
	}
}

// isNil fails the test when the value is not nil. Values which cannot be
// nil always fail this check.
func isNil(obtained interface{}, t testing.TB) {
	t.Helper()
	if !_isNil(obtained) {
		t.Fatalf("expected nil, got: %v", obtained)
	}
}

// notNil fails the test when the value is nil.
func notNil(obtained interface{}, t testing.TB) {
	t.Helper()
	if _isNil(obtained) {
		t.Fatalf("expected non-nil, got: %v", obtained)
	}
}

func _isNil(obtained interface{}) bool {
	if obtained == nil {
		return true
	}

	switch v := reflect.ValueOf(obtained); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}
