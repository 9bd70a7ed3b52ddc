/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/util"
)

func TestFormatReportSuccess(t *testing.T) {
	state := &MigrationState{
		ID:          "r1",
		Source:      "logs_v1",
		Destination: "logs_v2",
		Alias:       "logs",
		Phase:       PhaseDone,
		Success:     true,
		Copy:        &CopyResult{SourceDocs: 2, DestinationDocs: 2, TookInMs: 12},
		Timings: []PhaseTiming{
			{Phase: PhaseHostChecked, TookInMs: 3},
			{Phase: PhaseDataCopied, TookInMs: 40},
		},
	}

	report := FormatReport(state)
	assert.Contains(t, report, "MIGRATION OK")
	assert.Contains(t, report, "logs_v1")
	assert.Contains(t, report, "logs_v2")
	assert.Contains(t, report, "host_checked")
	assert.Contains(t, report, "data_copied")
	assert.NotContains(t, report, "left in place")
}

func TestFormatReportFailureNamesPhaseAndCaveat(t *testing.T) {
	state := &MigrationState{
		Source:      "logs_v1",
		Destination: "logs_v2",
		Alias:       "logs",
		Phase:       PhaseDestinationCreated,
		Error:       "phase [data_copied]: 2 documents failed while copying",
	}

	report := FormatReport(state)
	assert.Contains(t, report, "MIGRATION FAILED")
	assert.Contains(t, report, "data_copied")
	assert.Contains(t, report, "left in place")
	assert.Contains(t, report, "logs_v2")
}

func TestFormatReportEarlyFailureHasNoCaveat(t *testing.T) {
	state := &MigrationState{
		Source:      "logs_v1",
		Destination: "logs_v2",
		Alias:       "logs",
		Phase:       PhaseInit,
		Error:       "phase [host_checked]: connection refused",
	}

	report := FormatReport(state)
	assert.Contains(t, report, "MIGRATION FAILED")
	// nothing was created, so nothing was left behind
	assert.NotContains(t, report, "left in place")
}

func TestFormatReportDryRunShowsSchemaAndPlan(t *testing.T) {
	state := &MigrationState{
		Source:      "logs_v1",
		Destination: "logs_v2",
		Alias:       "logs",
		Phase:       PhaseSchemaExtracted,
		DryRun:      true,
		Success:     true,
		Schema: &SchemaDefinition{
			Settings: util.MapStr{"index": util.MapStr{"number_of_shards": "1"}},
		},
		Plan: PlanAliasSwitch([]string{"logs_v1"}, "logs", "logs_v2"),
	}

	report := FormatReport(state)
	assert.Contains(t, report, "DRY RUN OK")
	assert.Contains(t, report, "number_of_shards")
	assert.Contains(t, report, `"remove"`)
	assert.Contains(t, report, `"add"`)
}

func TestFormatReportNilState(t *testing.T) {
	assert.Equal(t, "", FormatReport(nil))
}

func TestPhaseOrdering(t *testing.T) {
	assert.True(t, phaseReached(PhaseDataCopied, PhaseDestinationCreated))
	assert.True(t, phaseReached(PhaseDestinationCreated, PhaseDestinationCreated))
	assert.False(t, phaseReached(PhaseSchemaExtracted, PhaseDestinationCreated))
	assert.False(t, phaseReached(Phase("bogus"), PhaseInit))
}
