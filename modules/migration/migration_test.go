/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/env"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
	"infini.sh/shift/modules/elastic/adapter"
)

func setupTestEnv() {
	testEnv := env.EmptyEnv()
	testEnv.SystemConfig.PathConfig.Data = path.Join(os.TempDir(), "shift_test_"+util.GetUUID())
	global.RegisterEnv(testEnv)
}

const logsV1Describe = `{
  "logs_v1": {
    "aliases": {"logs": {}},
    "mappings": {"properties": {"message": {"type": "text"}, "ts": {"type": "date"}}},
    "settings": {
      "index": {
        "creation_date": "1693456789000",
        "number_of_shards": "1",
        "number_of_replicas": "1",
        "uuid": "e5kMOaMLRiqvoqq9pWnYWg",
        "version": {"created": "7100299"},
        "provided_name": "logs_v1"
      }
    }
  }
}`

// fakeCluster speaks just enough of the management surface for a whole
// migration. Every mutating request is recorded so tests can assert exactly
// what went over the wire, and what never did.
type fakeCluster struct {
	server *httptest.Server

	sourceMissing     bool
	destinationExists bool
	copyFailures      bool
	countMismatch     bool
	asyncCopy         bool
	aliasReadFails    bool

	mu           sync.Mutex
	created      bool
	createBody   []byte
	aliasBody    []byte
	reindexBody  []byte
	deletes      []string
	settingsPuts [][]byte
	settingsGets int
	mappingGets  int
	taskPolls    int
}

func newFakeCluster() *fakeCluster {
	fc := &fakeCluster{}
	mux := http.NewServeMux()

	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}

	mux.HandleFunc("/logs_v1", func(w http.ResponseWriter, r *http.Request) {
		if fc.sourceMissing {
			w.WriteHeader(http.StatusNotFound)
			write(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [logs_v1]"},"status":404}`)
			return
		}
		write(w, logsV1Describe)
	})
	mux.HandleFunc("/logs_v1/_count", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"count":2}`)
	})

	mux.HandleFunc("/logs_v2", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			fc.mu.Lock()
			fc.created = true
			fc.createBody = body
			fc.mu.Unlock()
			write(w, `{"acknowledged":true,"shards_acknowledged":true,"index":"logs_v2"}`)
		case http.MethodDelete:
			fc.mu.Lock()
			fc.deletes = append(fc.deletes, "logs_v2")
			fc.destinationExists = false
			fc.mu.Unlock()
			write(w, `{"acknowledged":true}`)
		default:
			fc.mu.Lock()
			exists := fc.destinationExists || fc.created
			body := fc.createBody
			fc.mu.Unlock()
			if !exists {
				w.WriteHeader(http.StatusNotFound)
				write(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [logs_v2]"},"status":404}`)
				return
			}
			if body == nil {
				write(w, `{"logs_v2":{"settings":{"index":{"number_of_shards":"1"}},"mappings":{}}}`)
				return
			}
			// echo the created schema back as the describe document
			write(w, `{"logs_v2":`+string(body)+`}`)
		}
	})
	mux.HandleFunc("/logs_v2/_count", func(w http.ResponseWriter, r *http.Request) {
		if fc.countMismatch {
			write(w, `{"count":1}`)
			return
		}
		write(w, `{"count":2}`)
	})
	mux.HandleFunc("/logs_v2/_refresh", func(w http.ResponseWriter, r *http.Request) {
		write(w, `{"_shards":{"total":2,"successful":2,"failed":0}}`)
	})
	mux.HandleFunc("/logs_v2/_settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			fc.mu.Lock()
			fc.settingsPuts = append(fc.settingsPuts, body)
			fc.mu.Unlock()
			write(w, `{"acknowledged":true}`)
			return
		}
		fc.mu.Lock()
		fc.settingsGets++
		fc.mu.Unlock()
		write(w, `{"logs_v2":{"settings":{"index":{"number_of_shards":"1","number_of_replicas":"1","uuid":"qqWnYWge5kMOaMLRiqvopW","creation_date":"1693456999000","provided_name":"logs_v2","version":{"created":"7100299"}}}}}`)
	})
	mux.HandleFunc("/logs_v2/_mapping", func(w http.ResponseWriter, r *http.Request) {
		fc.mu.Lock()
		fc.mappingGets++
		fc.mu.Unlock()
		write(w, `{"logs_v2":{"mappings":{"properties":{"message":{"type":"text"},"ts":{"type":"date"}}}}}`)
	})

	mux.HandleFunc("/_reindex", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.reindexBody = body
		fc.mu.Unlock()
		if fc.asyncCopy {
			write(w, `{"task":"node-1:42"}`)
			return
		}
		if fc.copyFailures {
			write(w, `{"took":5,"total":2,"created":1,"batches":1,"failures":[{"index":"logs_v2","id":"1","cause":{"type":"version_conflict_engine_exception"},"status":409}]}`)
			return
		}
		write(w, `{"took":12,"total":2,"created":2,"batches":1,"failures":[]}`)
	})
	mux.HandleFunc("/_tasks/", func(w http.ResponseWriter, r *http.Request) {
		fc.mu.Lock()
		fc.taskPolls++
		polls := fc.taskPolls
		fc.mu.Unlock()
		if polls < 2 {
			write(w, `{"completed":false,"task":{"node":"node-1","id":42,"type":"transport","action":"indices:data/write/reindex","status":{"total":2,"created":1,"batches":1}}}`)
			return
		}
		write(w, `{"completed":true,"task":{"node":"node-1","id":42,"type":"transport","action":"indices:data/write/reindex","status":{"total":2,"created":2,"batches":1}},"response":{"took":20,"total":2,"created":2,"batches":1,"failures":[]}}`)
	})

	mux.HandleFunc("/_alias/logs", func(w http.ResponseWriter, r *http.Request) {
		if fc.aliasReadFails {
			w.WriteHeader(http.StatusInternalServerError)
			write(w, `{"error":{"type":"search_phase_execution_exception","reason":"all shards failed"},"status":500}`)
			return
		}
		write(w, `{"logs_v1":{"aliases":{"logs":{}}}}`)
	})
	mux.HandleFunc("/_aliases", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.aliasBody = body
		fc.mu.Unlock()
		write(w, `{"acknowledged":true}`)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			write(w, `{"error":"unexpected call to `+r.URL.Path+`"}`)
			return
		}
		write(w, `{"name":"node-1","cluster_name":"shift-test","cluster_uuid":"x","version":{"number":"7.10.2","lucene_version":"8.7.0"}}`)
	})

	fc.server = httptest.NewServer(mux)
	return fc
}

func newTestModule(endpoint string) *MigrationModule {
	m := &MigrationModule{}
	m.Setup(nil)
	if endpoint != "" {
		id := "test-" + util.GetUUID()
		cfg := elastic.ElasticsearchConfig{ID: id, Name: id, Enabled: true, Endpoint: endpoint, Version: "7.10.2"}
		client := new(adapter.ESAPIV7)
		client.Config = cfg
		client.Version = "7.10.2"
		elastic.RegisterInstance(id, cfg, client)
		m.cfg.Elasticsearch = id
	}
	return m
}

func TestMigrationEndToEnd(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.Equal(t, PhaseDone, state.Phase)
	assert.Equal(t, int64(2), state.Copy.DestinationDocs)
	assert.Equal(t, int64(2), state.Copy.SourceDocs)

	// the create request went out without the store-assigned settings
	created := util.MapStr{}
	assert.NoError(t, util.FromJSONBytes(fc.createBody, &created))
	_, err = created.GetValue("settings.index.number_of_shards")
	assert.NoError(t, err)
	for _, key := range storeAssignedSettings {
		_, err := created.GetValue("settings.index." + key)
		assert.Error(t, err, "expected [%v] to be stripped from the create request", key)
	}
	_, err = created.GetValue("mappings.properties.message")
	assert.NoError(t, err)

	// the copy targeted the right pair
	reindex := util.MapStr{}
	assert.NoError(t, util.FromJSONBytes(fc.reindexBody, &reindex))
	src, _ := reindex.GetValue("source.index")
	dst, _ := reindex.GetValue("dest.index")
	assert.Equal(t, "logs_v1", src)
	assert.Equal(t, "logs_v2", dst)

	// one atomic alias update, remove then add
	assert.Equal(t,
		`{"actions":[{"remove":{"index":"logs_v1","alias":"logs"}},{"add":{"index":"logs_v2","alias":"logs"}}]}`,
		string(fc.aliasBody))

	// the created index was read back for drift checking through the
	// dedicated settings and mapping endpoints
	assert.True(t, fc.settingsGets >= 1)
	assert.True(t, fc.mappingGets >= 1)

	phases := []Phase{}
	for _, timing := range state.Timings {
		phases = append(phases, timing.Phase)
	}
	assert.Equal(t, []Phase{
		PhaseHostChecked, PhaseSourceVerified, PhaseSchemaExtracted,
		PhaseDestinationCreated, PhaseDataCopied, PhaseAliasReassigned,
	}, phases)
}

func TestMigrationDryRunMutatesNothing(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs", DryRun: true})

	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.True(t, state.DryRun)
	assert.Equal(t, PhaseSchemaExtracted, state.Phase)

	assert.Nil(t, fc.createBody)
	assert.Nil(t, fc.reindexBody)
	assert.Nil(t, fc.aliasBody)
	assert.Empty(t, fc.deletes)

	assert.NotNil(t, state.Schema)
	_, err = state.Schema.Settings.GetValue("index.uuid")
	assert.Error(t, err)
	_, err = state.Schema.Settings.GetValue("index.number_of_shards")
	assert.NoError(t, err)

	assert.NotNil(t, state.Plan)
	assert.Len(t, state.Plan.Actions, 2)
}

func TestMigrationDryRunAliasReadFailure(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.aliasReadFails = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs", DryRun: true})

	assert.Error(t, err)
	assert.False(t, state.Success)

	// the failed read happened while planning, the report must not claim a
	// switchover was attempted
	assert.Equal(t, PhaseSchemaExtracted, state.Phase)
	assert.Contains(t, state.Error, string(PhaseSchemaExtracted))
	assert.NotContains(t, state.Error, string(PhaseAliasReassigned))
	assert.Nil(t, fc.aliasBody)
}

func TestMigrationRefusesExistingDestination(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.destinationExists = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.DestinationConflict, errors.CodeOf(err))
	assert.False(t, state.Success)
	assert.Equal(t, PhaseSchemaExtracted, state.Phase)
	assert.Nil(t, fc.createBody)
	assert.Nil(t, fc.aliasBody)
}

func TestMigrationForceRecreatesDestination(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.destinationExists = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs", Force: true})

	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.Equal(t, []string{"logs_v2"}, fc.deletes)
	assert.NotNil(t, fc.createBody)
}

func TestMigrationStopsOnCopyFailures(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.copyFailures = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.CopyIncomplete, errors.CodeOf(err))
	assert.Equal(t, PhaseDestinationCreated, state.Phase)

	// the alias was never touched and the half-filled destination was left
	// in place for inspection
	assert.Nil(t, fc.aliasBody)
	assert.Empty(t, fc.deletes)
}

func TestMigrationStopsOnCountMismatch(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.countMismatch = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	_, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.CopyIncomplete, errors.CodeOf(err))
	assert.NotNil(t, errors.PayloadOf(err))
	assert.Nil(t, fc.aliasBody)
}

func TestMigrationAsyncCopyPollsTask(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.asyncCopy = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	m.cfg.Copy.Async = true
	m.cfg.Copy.PollIntervalInMs = 10
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.True(t, fc.taskPolls >= 2)
	assert.NotNil(t, fc.aliasBody)
}

func TestMigrationAsyncFallsBackWithoutTaskAPI(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	defer fc.server.Close()

	m := &MigrationModule{}
	m.Setup(nil)
	id := "test-" + util.GetUUID()
	cfg := elastic.ElasticsearchConfig{ID: id, Name: id, Enabled: true, Endpoint: fc.server.URL, Version: "2.4.6"}
	client := new(adapter.ESAPIV0)
	client.Config = cfg
	client.Version = "2.4.6"
	elastic.RegisterInstance(id, cfg, client)
	m.cfg.Elasticsearch = id
	m.cfg.Copy.Async = true

	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	// a 2.x cluster has no task api, the copy silently runs as one
	// blocking request instead
	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.Equal(t, 0, fc.taskPolls)
	assert.NotNil(t, fc.reindexBody)
}

func TestMigrationOptimizeForSpeedTunesRefresh(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	m.cfg.Copy.OptimizeForSpeed = true
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.NoError(t, err)
	assert.True(t, state.Success)
	assert.Len(t, fc.settingsPuts, 2)
	assert.Contains(t, string(fc.settingsPuts[0]), `"-1"`)
	assert.Contains(t, string(fc.settingsPuts[1]), `"1s"`)
}

func TestMigrationRestoresRefreshAfterFailedCopy(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.copyFailures = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	m.cfg.Copy.OptimizeForSpeed = true
	_, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.CopyIncomplete, errors.CodeOf(err))

	// the abandoned destination stays behind for inspection, but with
	// refresh turned back on
	assert.Len(t, fc.settingsPuts, 2)
	assert.Contains(t, string(fc.settingsPuts[0]), `"-1"`)
	assert.Contains(t, string(fc.settingsPuts[1]), `"1s"`)
}

func TestMigrationSourceMissing(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.sourceMissing = true
	defer fc.server.Close()

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.SourceNotFound, errors.CodeOf(err))
	assert.Equal(t, PhaseHostChecked, state.Phase)
}

func TestMigrationHostUnreachable(t *testing.T) {
	setupTestEnv()
	fc := newFakeCluster()
	fc.server.Close() // nothing listens anymore

	m := newTestModule(fc.server.URL)
	state, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})

	assert.Error(t, err)
	assert.Equal(t, errors.HostUnreachable, errors.CodeOf(err))
	assert.Equal(t, PhaseInit, state.Phase)
}

func TestMigrationValidationRefusesBadNames(t *testing.T) {
	setupTestEnv()
	m := newTestModule("")

	for _, req := range []Request{
		{Source: "", Destination: "logs_v2", Alias: "logs"},
		{Source: "logs_v1", Destination: "logs_v1", Alias: "logs"},
		{Source: "logs_v1", Destination: "logs_v2", Alias: "logs_v1"},
		{Source: "Logs_v1", Destination: "logs_v2", Alias: "logs"},
		{Source: "logs v1", Destination: "logs_v2", Alias: "logs"},
		{Source: "logs*", Destination: "logs_v2", Alias: "logs"},
		{Source: "-logs", Destination: "logs_v2", Alias: "logs"},
	} {
		_, err := m.Run(req)
		assert.Error(t, err, "request %+v should have been refused", req)
		assert.Equal(t, errors.UsageError, errors.CodeOf(err), "request %+v", req)
	}
}

func TestMigrationProtectedIndices(t *testing.T) {
	setupTestEnv()
	m := newTestModule("")

	_, err := m.Run(Request{Source: ".kibana", Destination: "kibana_copy", Alias: "kib"})
	assert.Error(t, err)
	assert.Equal(t, errors.UsageError, errors.CodeOf(err))

	// the override lets it past validation, it then fails later, on the
	// cluster, not on the name
	m.cfg.AllowProtected = true
	_, err = m.Run(Request{Source: ".kibana", Destination: "kibana_copy", Alias: "kib"})
	assert.Error(t, err)
	assert.NotEqual(t, errors.UsageError, errors.CodeOf(err))
}

func TestMigrationOneRunAtATime(t *testing.T) {
	setupTestEnv()
	m := newTestModule("")
	m.busy = true

	_, err := m.Run(Request{Source: "logs_v1", Destination: "logs_v2", Alias: "logs"})
	assert.Equal(t, ErrBusy, err)
}
