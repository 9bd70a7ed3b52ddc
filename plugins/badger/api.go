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

/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package badger

import (
	"net/http"
	"sort"

	log "github.com/cihub/seelog"
	"github.com/dgraph-io/badger/v4"
	httprouter "infini.sh/shift/core/api/router"
	"infini.sh/shift/core/util"
)

const (
	SortBySize  = "size"
	SortByCount = "count"
)

// dumpKeyStats reports the heaviest keys across the open buckets, handy for
// checking what the journal store actually holds on disk.
func (m *Module) dumpKeyStats(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	var stats []*KeyStats
	size := m.GetIntOrDefault(req, "size", 10)
	sortKey := m.GetParameterOrDefault(req, "sort", SortBySize)

	var totalKeyCount int

	buckets.Range(func(key, value any) bool {
		db, ok := value.(*badger.DB)
		if !ok {
			log.Errorf("failed to get badger db for bucket %s", key)
			return true
		} else {
			if db == nil {
				log.Debugf("got empty badger db for bucket %s", key)
				return true
			}
		}

		partStats, keyCount, err := getBadgerStats(db, size, sortKey)
		if err != nil {
			log.Errorf("failed to get badger stats: %v", err)
			return true
		}
		totalKeyCount += keyCount
		if len(partStats) > 0 {
			stats = append(stats, partStats...)
		}
		return true
	})

	if sortKey == SortBySize {
		sort.Sort(BySize(stats))
	} else {
		sort.Sort(ByCount(stats))
	}

	if len(stats) < size {
		size = len(stats)
	}

	m.WriteJSON(w, util.MapStr{
		"total":    totalKeyCount,
		"top_hits": stats[:size],
	}, 200)
}

// KeyStats represents the statistics for each key, its occurrence count and value size.
type KeyStats struct {
	Key   string
	Count int
	Size  int64
}

func getBadgerStats(db *badger.DB, size int, sortBy string) ([]*KeyStats, int, error) {

	keyStats := make(map[string]*KeyStats)

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if _, ok := keyStats[key]; !ok {
				keyStats[key] = &KeyStats{
					Key:   key,
					Count: 1,
					Size:  item.ValueSize(),
				}
			} else {
				keyStats[key].Count++
				keyStats[key].Size += item.ValueSize()
			}
		}
		return nil
	})

	if err != nil {
		return nil, 0, err
	}

	var stats = make([]*KeyStats, 0, len(keyStats))
	for _, v := range keyStats {
		stats = append(stats, v)
	}
	keyCount := len(stats)
	if sortBy == SortBySize {
		sort.Sort(BySize(stats))
	} else {
		sort.Sort(ByCount(stats))
	}
	if len(stats) < size {
		size = len(stats)
	}
	return stats[0:size], keyCount, nil
}

// ByCount sorts KeyStats by the occurrence count of each key, descending.
type ByCount []*KeyStats

func (a ByCount) Len() int           { return len(a) }
func (a ByCount) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByCount) Less(i, j int) bool { return a[i].Count > a[j].Count }

// BySize sorts KeyStats by the size of the value for each key, descending.
type BySize []*KeyStats

func (a BySize) Len() int           { return len(a) }
func (a BySize) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a BySize) Less(i, j int) bool { return a[i].Size > a[j].Size }
