/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitForIdle(m *MigrationModule) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m.runLock.Lock()
		busy := m.busy
		m.runLock.Unlock()
		if !busy {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartMigrationReadsLooseBody(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	m.SetServeMode(true)
	h := APIHandler{module: m}

	// unknown fields ride along, only the named ones matter
	body := `{"source":"logs_v1","destination":"logs_v2","alias":"logs","dry_run":true,"requested_by":"ops"}`
	req := httptest.NewRequest("POST", "/migration/_start", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.startMigration(w, req, nil)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"result": "created"`)

	waitForIdle(m)
	state := m.CurrentState()
	assert.NotNil(t, state)
	assert.True(t, state.DryRun)
	assert.True(t, state.Success)
	assert.Nil(t, fc.aliasBody)
}

func TestStartMigrationRefusesEmptyBody(t *testing.T) {
	setupTestEnv()
	m := newTestModule("")
	m.SetServeMode(true)
	h := APIHandler{module: m}

	req := httptest.NewRequest("POST", "/migration/_start", strings.NewReader(""))
	w := httptest.NewRecorder()
	h.startMigration(w, req, nil)

	assert.Equal(t, 400, w.Code)
}

func TestStartMigrationOutsideServeMode(t *testing.T) {
	setupTestEnv()
	m := newTestModule("")
	h := APIHandler{module: m}

	req := httptest.NewRequest("POST", "/migration/_start",
		strings.NewReader(`{"source":"logs_v1","destination":"logs_v2","alias":"logs"}`))
	w := httptest.NewRecorder()
	h.startMigration(w, req, nil)

	assert.Equal(t, 403, w.Code)
}
