/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package kv

import (
	log "github.com/cihub/seelog"
	"infini.sh/shift/core/errors"
)

// KVStore is the durable bucket store behind the run journal. One backend
// registers itself at boot, everything else goes through the package
// functions and never sees the backend type.
type KVStore interface {
	Open() error

	Close() error

	GetValue(bucket string, key []byte) ([]byte, error)

	GetCompressedValue(bucket string, key []byte) ([]byte, error)

	AddValueCompress(bucket string, key []byte, value []byte) error

	AddValue(bucket string, key []byte, value []byte) error

	ExistsKey(bucket string, key []byte) (bool, error)

	DeleteKey(bucket string, key []byte) error
}

var handler KVStore

func getKVHandler() KVStore {
	if handler == nil {
		panic(errors.New("kv store handler is not registered"))
	}
	return handler
}

func GetValue(bucket string, key []byte) ([]byte, error) {
	return getKVHandler().GetValue(bucket, key)
}

func GetCompressedValue(bucket string, key []byte) ([]byte, error) {
	return getKVHandler().GetCompressedValue(bucket, key)
}

func AddValueCompress(bucket string, key []byte, value []byte) error {
	return getKVHandler().AddValueCompress(bucket, key, value)
}

func AddValue(bucket string, key []byte, value []byte) error {
	return getKVHandler().AddValue(bucket, key, value)
}

func ExistsKey(bucket string, key []byte) (bool, error) {
	return getKVHandler().ExistsKey(bucket, key)
}

func DeleteKey(bucket string, key []byte) error {
	return getKVHandler().DeleteKey(bucket, key)
}

var stores map[string]KVStore

// Register installs a named backend, the most recent registration is the
// one the package functions talk to.
func Register(name string, h KVStore) {
	log.Debugf("register kv store with type [%s]", name)
	if stores == nil {
		stores = map[string]KVStore{}
	}
	if _, ok := stores[name]; ok {
		panic(errors.Errorf("kv store with same name already exists: %v", name))
	}

	stores[name] = h
	handler = h
}
