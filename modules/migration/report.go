/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/util"
)

// FormatReport renders the terminal summary of a settled run. Pure string
// building over a state copy, a formatting problem can never reach back
// into the run itself.
func FormatReport(state *MigrationState) string {
	if state == nil {
		return ""
	}

	var b strings.Builder
	switch {
	case state.Success && state.DryRun:
		b.WriteString("DRY RUN OK, nothing was changed\n")
	case state.Success:
		b.WriteString("MIGRATION OK\n")
	default:
		b.WriteString("MIGRATION FAILED\n")
	}

	fmt.Fprintf(&b, "  source:      %v\n", state.Source)
	fmt.Fprintf(&b, "  destination: %v\n", state.Destination)
	fmt.Fprintf(&b, "  alias:       %v\n", state.Alias)
	fmt.Fprintf(&b, "  phase:       %v\n", state.Phase)
	if state.Copy != nil {
		fmt.Fprintf(&b, "  documents:   %v\n", state.Copy.DestinationDocs)
	}
	for _, timing := range state.Timings {
		fmt.Fprintf(&b, "  %-22v %vms\n", string(timing.Phase)+":", timing.TookInMs)
	}

	if state.Error != "" {
		// error text may carry remote payload fragments, keep the terminal clean
		fmt.Fprintf(&b, "  error:       %v\n", util.StripCtlFromUTF8(state.Error))
		if !state.DryRun && phaseReached(state.Phase, PhaseDestinationCreated) {
			fmt.Fprintf(&b, "  note: index [%v] was created and is left in place without the alias,\n", state.Destination)
			fmt.Fprintf(&b, "        inspect or delete it, or rerun with force to recreate it\n")
		}
	}

	if state.DryRun {
		if state.Schema != nil {
			b.WriteString("\nschema that would be applied:\n")
			b.WriteString(prettyJSON(state.Schema))
			b.WriteString("\n")
		}
		if state.Plan != nil {
			b.WriteString("\nalias update that would be sent:\n")
			b.WriteString(prettyJSON(state.Plan))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// prettyJSON indents v for human eyes, falling back to plain fmt when
// marshaling refuses, the report gets printed either way.
func prettyJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
