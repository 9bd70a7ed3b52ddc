/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"fmt"
	"sort"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// AliasActionBody names one index and alias pair inside an action.
type AliasActionBody struct {
	Index string `json:"index"`
	Alias string `json:"alias"`
}

// AliasAction holds exactly one key, either "add" or "remove".
type AliasAction map[string]AliasActionBody

// AliasPlan is the actions body of one alias update request. The whole plan
// goes to the server as a single call, readers either still see the old
// membership or already the new one, never anything in between.
type AliasPlan struct {
	Actions []AliasAction `json:"actions"`
}

// PlanAliasSwitch computes the minimal action set that moves alias onto
// exactly destination: one remove per current holder except the destination
// itself, then a single add. The add stays in the plan even when the
// destination already holds the alias, adding an existing mapping is a
// no-op on the server and keeps the plan uniform. Holders are sorted so the
// rendered body is deterministic.
func PlanAliasSwitch(holders []string, alias, destination string) *AliasPlan {
	sorted := make([]string, len(holders))
	copy(sorted, holders)
	sort.Strings(sorted)

	plan := &AliasPlan{Actions: []AliasAction{}}
	for _, index := range sorted {
		if index == destination {
			continue
		}
		plan.Actions = append(plan.Actions, AliasAction{
			"remove": {Index: index, Alias: alias},
		})
	}
	plan.Actions = append(plan.Actions, AliasAction{
		"add": {Index: destination, Alias: alias},
	})
	return plan
}

// ReassignAlias reads the alias membership fresh, plans the switch and
// applies the whole plan atomically. Membership is never carried over from
// an earlier phase, the cluster may have changed since the run started.
// The plan comes back even on failure so the caller can report what was
// attempted.
func ReassignAlias(client elastic.API, alias, destination string) (*AliasPlan, error) {
	membership, err := client.GetAlias(alias)
	if err != nil {
		return nil, errors.NewWithCode(err, errors.AliasUpdateFailed,
			fmt.Sprintf("resolving alias [%v]", alias))
	}

	var holders []string
	if membership != nil {
		if info, ok := (*membership)[alias]; ok {
			holders = info.Index
		}
	}

	plan := PlanAliasSwitch(holders, alias, destination)
	log.Debugf("alias plan for [%v]: %v", alias, util.MustToJSON(plan))

	if err := client.Alias(util.MustToJSONBytes(plan)); err != nil {
		return plan, errors.NewWithCode(err, errors.AliasUpdateFailed,
			fmt.Sprintf("switching alias [%v] onto [%v]", alias, destination))
	}

	log.Infof("alias [%v] now points at [%v], removed from %v other holder(s)",
		alias, destination, len(plan.Actions)-1)
	return plan, nil
}
