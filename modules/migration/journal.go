/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	log "github.com/cihub/seelog"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/kv"
	"infini.sh/shift/core/util"
)

const (
	journalBucket   = "migration"
	journalIndexKey = "_runs"
)

// saveRun writes a settled run into the journal. The journal is an audit
// trail and never an input, a write failure is logged and swallowed so the
// outcome of the run stands regardless. The kv layer panics when no store
// is registered, which is the normal situation in one-shot runs without a
// data directory, hence the recover.
func saveRun(state *MigrationState) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("journal not available: %v", r)
		}
	}()

	if err := kv.AddValue(journalBucket, []byte(state.ID), util.MustToJSONBytes(state)); err != nil {
		log.Warnf("could not journal run [%v]: %v", state.ID, err)
		return
	}

	ids := append(runIDs(), state.ID)
	if err := kv.AddValue(journalBucket, []byte(journalIndexKey), util.MustToJSONBytes(ids)); err != nil {
		log.Warnf("could not update the run listing: %v", err)
	}
}

// runIDs reads the listing key, every journaled run id oldest first. Only
// ever called with the kv layer known to be up, or under a recover.
func runIDs() []string {
	data, err := kv.GetValue(journalBucket, []byte(journalIndexKey))
	if err != nil || len(data) == 0 {
		return []string{}
	}
	ids := []string{}
	if err := util.FromJSONBytes(data, &ids); err != nil {
		log.Warnf("run listing is unreadable, starting a fresh one: %v", err)
		return []string{}
	}
	return ids
}

// GetRun reads one journaled run back by id.
func GetRun(id string) (state *MigrationState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("journal not available: %v", r)
		}
	}()

	data, err := kv.GetValue(journalBucket, []byte(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.Errorf("run [%v] is not in the journal", id)
	}
	state = &MigrationState{}
	if err := util.FromJSONBytes(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ListRuns returns every journaled run, oldest first. Entries that no
// longer parse are skipped, not fatal, the journal may span versions.
func ListRuns() (states []*MigrationState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("journal not available: %v", r)
		}
	}()

	states = []*MigrationState{}
	for _, id := range runIDs() {
		state, err := GetRun(id)
		if err != nil {
			log.Warnf("skipping unreadable run [%v]: %v", id, err)
			continue
		}
		states = append(states, state)
	}
	return states, nil
}
