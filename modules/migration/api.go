/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"net/http"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/api"
	httprouter "infini.sh/shift/core/api/router"
)

type APIHandler struct {
	api.Handler
	module *MigrationModule
}

// startMigration submits a run over HTTP. One run at a time, a busy module
// answers 429 and the caller tries again once the current run settles.
func (h APIHandler) startMigration(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	if !h.module.serve {
		h.WriteError(w, "migrations can only be submitted in serve mode", http.StatusForbidden)
		return
	}

	// submissions come from scripts and curl, read the body loosely and
	// pick out the fields, anything missing is caught by validation
	jq, err := h.GetJSON(req)
	if err != nil {
		log.Error(err)
		h.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	request := Request{}
	request.Source, _ = jq.String("source")
	request.Destination, _ = jq.String("destination")
	request.Alias, _ = jq.String("alias")
	request.DryRun, _ = jq.Bool("dry_run")
	request.Force, _ = jq.Bool("force")

	id, err := h.module.StartAsync(request)
	if err != nil {
		if err == ErrBusy {
			h.WriteError(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		h.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.WriteCreatedOKJSON(w, id)
}

// getMigration answers with the live run when the id matches it, otherwise
// with whatever the journal holds.
func (h APIHandler) getMigration(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	id := ps.MustGetParameter("id")

	if live := h.module.CurrentState(); live != nil && live.ID == id {
		h.WriteGetOKJSON(w, id, live)
		return
	}

	state, err := GetRun(id)
	if err != nil {
		h.WriteGetMissingJSON(w, id)
		return
	}
	h.WriteGetOKJSON(w, id, state)
}

func (h APIHandler) listMigrations(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	runs, err := ListRuns()
	if err != nil {
		log.Error(err)
		h.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.WriteJSONListResult(w, int64(len(runs)), runs, http.StatusOK)
}
