/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/util"
)

func TestPlanAliasSwitchFreshAlias(t *testing.T) {
	plan := PlanAliasSwitch(nil, "logs", "logs_v2")

	assert.Len(t, plan.Actions, 1)
	add, ok := plan.Actions[0]["add"]
	assert.True(t, ok)
	assert.Equal(t, "logs_v2", add.Index)
	assert.Equal(t, "logs", add.Alias)
}

func TestPlanAliasSwitchManyHolders(t *testing.T) {
	plan := PlanAliasSwitch([]string{"c_idx", "a_idx", "b_idx"}, "logs", "logs_v2")

	assert.Len(t, plan.Actions, 4)
	removed := []string{}
	for _, action := range plan.Actions[:3] {
		body, ok := action["remove"]
		assert.True(t, ok)
		assert.Equal(t, "logs", body.Alias)
		removed = append(removed, body.Index)
	}
	assert.Equal(t, []string{"a_idx", "b_idx", "c_idx"}, removed)

	add, ok := plan.Actions[3]["add"]
	assert.True(t, ok)
	assert.Equal(t, "logs_v2", add.Index)
}

func TestPlanAliasSwitchNeverRemovesDestination(t *testing.T) {
	plan := PlanAliasSwitch([]string{"logs_v1", "logs_v2"}, "logs", "logs_v2")

	assert.Len(t, plan.Actions, 2)
	remove, ok := plan.Actions[0]["remove"]
	assert.True(t, ok)
	assert.Equal(t, "logs_v1", remove.Index)
	add, ok := plan.Actions[1]["add"]
	assert.True(t, ok)
	assert.Equal(t, "logs_v2", add.Index)
}

func TestPlanAliasSwitchDestinationAlreadyHolder(t *testing.T) {
	// the add still goes out, adding an existing mapping is a no-op on the
	// server and keeps the plan uniform
	plan := PlanAliasSwitch([]string{"logs_v2"}, "logs", "logs_v2")

	assert.Len(t, plan.Actions, 1)
	_, ok := plan.Actions[0]["add"]
	assert.True(t, ok)
}

func TestPlanAliasSwitchDoesNotTouchInput(t *testing.T) {
	holders := []string{"z_idx", "a_idx"}
	PlanAliasSwitch(holders, "logs", "logs_v2")
	assert.Equal(t, []string{"z_idx", "a_idx"}, holders)
}

func TestAliasPlanWireFormat(t *testing.T) {
	plan := PlanAliasSwitch([]string{"logs_v1"}, "logs", "logs_v2")

	rendered := string(util.MustToJSONBytes(plan))
	assert.Equal(t,
		`{"actions":[{"remove":{"index":"logs_v1","alias":"logs"}},{"add":{"index":"logs_v2","alias":"logs"}}]}`,
		rendered)
}
