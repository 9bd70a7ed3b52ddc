/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/util"
	"infini.sh/shift/plugins/badger"
)

func TestJournalRoundTrip(t *testing.T) {
	setupTestEnv()
	storage := badger.Module{}
	storage.Setup(nil)
	assert.NoError(t, storage.Start())
	defer storage.Stop()

	first := &MigrationState{
		ID:          util.GetUUID(),
		Source:      "logs_v1",
		Destination: "logs_v2",
		Alias:       "logs",
		Phase:       PhaseDone,
		Success:     true,
	}
	saveRun(first)

	got, err := GetRun(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, "logs_v1", got.Source)
	assert.Equal(t, PhaseDone, got.Phase)
	assert.True(t, got.Success)

	second := &MigrationState{
		ID:          util.GetUUID(),
		Source:      "audit_v3",
		Destination: "audit_v4",
		Alias:       "audit",
		Phase:       PhaseDestinationCreated,
		Error:       "phase [data_copied]: copy went sideways",
	}
	saveRun(second)

	runs, err := ListRuns()
	assert.NoError(t, err)
	assert.True(t, len(runs) >= 2)
	assert.Equal(t, first.ID, runs[len(runs)-2].ID)
	assert.Equal(t, second.ID, runs[len(runs)-1].ID)
	assert.False(t, runs[len(runs)-1].Success)
}

func TestJournalMissingRun(t *testing.T) {
	_, err := GetRun("no-such-run")
	assert.Error(t, err)
}

func TestJournalUnavailableNeverEscapes(t *testing.T) {
	// with no usable store behind the kv layer, saving must stay silent and
	// reading must fail cleanly, the run outcome does not depend on it
	saveRun(&MigrationState{ID: "unjournaled"})
}
