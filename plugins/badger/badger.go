/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package badger

import (
	"errors"
	"path"
	"sync"

	"github.com/bkaradzic/go-lz4"
	log "github.com/cihub/seelog"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
)

var l sync.RWMutex

var buckets = sync.Map{}

func (module *Module) Open() error {
	if module.cfg.Path == "" {
		module.cfg.Path = path.Join(global.Env().GetDataDir(), "badger")
	}

	if module.cfg.SingleBucketMode {
		module.bucket = module.getOrInitBucket("default")
	}

	return nil
}

func (module *Module) mustGetBucket(bucket string) *badger.DB {
	if module.closed {
		panic(errors.New("module closed"))
	}

	if module.cfg.SingleBucketMode {
		if module.bucket == nil {
			panic("invalid badger module")
		}
		return module.bucket
	}
	return module.getOrInitBucket(bucket)
}

func (module *Module) getOrInitBucket(bucket string) *badger.DB {
	item, ok := buckets.Load(bucket)
	if ok {
		db, ok := item.(*badger.DB)
		if ok {
			if db != nil {
				return db
			}
		}
	}

	l.Lock()
	defer l.Unlock()

	//double check after lock
	item, ok = buckets.Load(bucket)
	if ok {
		return item.(*badger.DB)
	}

	log.Debugf("init badger database [%v]", bucket)

	dir := path.Join(module.cfg.Path, bucket)

	var err error
	option := badger.DefaultOptions(dir)
	option.InMemory = module.cfg.InMemoryMode
	option.MemTableSize = module.cfg.MemTableSize
	option.ValueLogMaxEntries = module.cfg.ValueLogMaxEntries
	option.ValueThreshold = module.cfg.ValueThreshold
	option.NumGoroutines = 1
	option.NumMemtables = module.cfg.NumMemtables
	option.Compression = options.None
	option.MetricsEnabled = false
	option.NumLevelZeroTables = module.cfg.NumLevelZeroTables
	option.NumLevelZeroTablesStall = module.cfg.NumLevelZeroTablesStall
	option.SyncWrites = module.cfg.SyncWrites
	option.CompactL0OnClose = true
	option.ValueLogFileSize = module.cfg.ValueLogFileSize

	// the store reports disk trouble through its logger, that has to stay
	// visible outside debug runs too
	option.Logger = &seelogBridge{}

	h, err := badger.Open(option)
	if err != nil {
		panic(err)
	}
	buckets.Store(bucket, h)
	return h
}

func (module *Module) Close() error {
	if module.cfg.SingleBucketMode {
		module.bucket.Close()
	}

	buckets.Range(func(key, value any) bool {
		db, ok := value.(*badger.DB)
		if ok {
			err := db.Close()
			if err != nil {
				panic(err)
			}
		}
		return true
	})
	return nil
}

func (module *Module) exists(bucket string, key []byte) bool {

	if module.cfg.SingleBucketMode {
		key = joinKey(bucket, key)
	}

	var exists = false
	module.mustGetBucket(bucket).View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if item != nil && err == nil {
			exists = true
		}
		return nil
	})
	return exists
}

// for kv implementation
func (module *Module) GetValue(bucket string, key []byte) ([]byte, error) {

	if module.closed {
		return nil, errors.New("module closed")
	}

	if module.cfg.SingleBucketMode {
		key = joinKey(bucket, key)
	}

	var valCopy []byte
	var err error
	var item *badger.Item
	err = module.mustGetBucket(bucket).View(func(txn *badger.Txn) error {
		if txn == nil {
			return errors.New("invalid txn")
		}
		item, err = txn.Get(key)
		if item != nil && err == nil {
			err = item.Value(func(val []byte) error {
				valCopy = append([]byte{}, val...)
				return nil
			})
		}
		return nil
	})
	return valCopy, err
}

func (module *Module) GetCompressedValue(bucket string, key []byte) ([]byte, error) {
	d, err := module.GetValue(bucket, key)
	if err != nil {
		return d, err
	}
	if len(d) == 0 {
		return nil, nil
	}
	data, err := lz4.Decode(nil, d)
	if err != nil {
		log.Error("Failed to decode:", err)
		return nil, err
	}
	return data, err
}

func (module *Module) AddValueCompress(bucket string, key []byte, value []byte) error {
	value, err := lz4.Encode(nil, value)
	if err != nil {
		log.Error("Failed to encode:", err)
		return err
	}
	return module.AddValue(bucket, key, value)
}

func joinKey(bucket string, key []byte) []byte {
	return util.UnsafeStringToBytes(bucket + "," + util.UnsafeBytesToString(key))
}

func (module *Module) AddValue(bucket string, key []byte, value []byte) error {
	if module.closed {
		return errors.New("module closed")
	}

	if module.cfg.SingleBucketMode {
		key = joinKey(bucket, key)
	}

	err := module.mustGetBucket(bucket).Update(func(txn *badger.Txn) error {
		err := txn.Set(key, value)
		return err
	})
	return err
}

func (module *Module) ExistsKey(bucket string, key []byte) (bool, error) {
	ok := module.exists(bucket, key)
	return ok, nil
}

func (module *Module) DeleteKey(bucket string, key []byte) error {

	key2 := key
	if module.cfg.SingleBucketMode {
		key2 = joinKey(bucket, key)
	}

	var err error
	err = module.mustGetBucket(bucket).Update(func(txn *badger.Txn) error {
		err = txn.Delete(key2)
		return err
	})
	return err
}
