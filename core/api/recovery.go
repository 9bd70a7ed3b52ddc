package api

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/cihub/seelog"
	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/util"
)

type recoveryHandler struct {
	handler http.Handler
}

// RecoveryHandler is HTTP middleware that recovers from a panic anywhere in
// the wrapped chain, answers 500 and keeps the server alive. The stack goes
// to the log only, the response body just names the error.
func RecoveryHandler() func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return &recoveryHandler{handler: h}
	}
}

func (h recoveryHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			payload, jerr := json.Marshal(util.MapStr{
				"error": fmt.Sprintf("%v", err),
			})
			if jerr != nil {
				log.Error(jerr)
			}
			w.Write(payload)

			log.Errorf("panic serving %v %v: %v", req.Method, req.URL.Path, err)
			log.Error(string(debug.Stack()))
		}
	}()

	h.handler.ServeHTTP(w, req)
}
