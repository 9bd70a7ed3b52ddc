/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"fmt"
	"strings"

	log "github.com/cihub/seelog"
	"github.com/r3labs/diff/v2"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// CreateDestination provisions the destination index from the sanitized
// definition. An existing destination is a conflict and is never silently
// reused, force deletes it first, which is an explicit operator decision.
func CreateDestination(client elastic.API, destination string, def *SchemaDefinition, force bool) error {
	if force {
		log.Warnf("force is set, deleting index [%v] before creating it", destination)
		if err := client.DeleteIndex(destination); err != nil {
			return errors.NewWithCode(err, errors.HostUnreachable, destination)
		}
	} else {
		exists, err := client.IndexExists(destination)
		if err != nil {
			return errors.NewWithCode(err, errors.HostUnreachable, destination)
		}
		if exists {
			return errors.NewWithCode(nil, errors.DestinationConflict,
				fmt.Sprintf("index [%v] already exists, pick another name, delete it, or pass force", destination))
		}
	}

	body := map[string]interface{}{}
	if len(def.Settings) > 0 {
		body["settings"] = def.Settings
	}
	if len(def.Mappings) > 0 {
		body["mappings"] = def.Mappings
	}

	if err := client.CreateIndex(destination, body); err != nil {
		msg := err.Error()
		if util.ContainStr(msg, "resource_already_exists_exception") {
			return errors.NewWithCode(err, errors.DestinationConflict, destination)
		}
		if util.ContainStr(msg, "code:") {
			return errors.NewWithCode(err, errors.SchemaRejected, destination)
		}
		return errors.NewWithCode(err, errors.HostUnreachable, destination)
	}

	verifyDestination(client, destination, def)
	return nil
}

// verifyDestination reads the created index back through the settings and
// mapping endpoints and compares it against the definition it was created
// from. The server normalizes what it stores and adds fields of its own, so
// only drift on keys that were sent is worth a warning. Verification never
// fails the run.
func verifyDestination(client elastic.API, destination string, def *SchemaDefinition) {
	reportSectionDrift(destination, "settings", def.Settings, func() (*elastic.Indexes, error) {
		return client.GetIndexSettings(destination)
	})
	reportSectionDrift(destination, "mappings", def.Mappings, func() (*elastic.Indexes, error) {
		return client.GetMapping(destination)
	})
}

func reportSectionDrift(destination, section string, sent util.MapStr, read func() (*elastic.Indexes, error)) {
	indexes, err := read()
	if err != nil {
		log.Warnf("could not read %v of [%v] back for verification: %v", section, destination, err)
		return
	}
	entry, err := describeEntry(indexes, destination)
	if err != nil {
		log.Warnf("could not read %v of [%v] back for verification: %v", section, destination, err)
		return
	}
	stored, ok := entry[section].(map[string]interface{})
	if !ok {
		log.Warnf("%v of [%v] read back as a %T, not an object", section, destination, entry[section])
		return
	}
	reportDrift(destination, section, sent, util.MapStr(stored))
}

func reportDrift(destination, section string, sent, stored util.MapStr) {
	if len(sent) == 0 {
		return
	}
	changelog, err := util.DiffTwoObject(sent, stored)
	if err != nil {
		log.Debugf("could not compare %v of [%v]: %v", section, destination, err)
		return
	}
	for _, change := range changelog {
		if change.Type == diff.CREATE {
			// added by the server, expected
			continue
		}
		log.Warnf("%v drift on [%v] at %v: sent %v, stored %v",
			section, destination, strings.Join(change.Path, "."), change.From, change.To)
	}
}
