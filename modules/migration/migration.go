/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/cihub/seelog"
	"github.com/ryanuber/go-glob"
	"infini.sh/shift/core/api"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/stats"
	"infini.sh/shift/core/util"
)

// Phase is one step of the workflow. Phases only ever move forward, the
// state records the last step that finished.
type Phase string

const (
	PhaseInit               Phase = "init"
	PhaseHostChecked        Phase = "host_checked"
	PhaseSourceVerified     Phase = "source_verified"
	PhaseSchemaExtracted    Phase = "schema_extracted"
	PhaseDestinationCreated Phase = "destination_created"
	PhaseDataCopied         Phase = "data_copied"
	PhaseAliasReassigned    Phase = "alias_reassigned"
	PhaseDone               Phase = "done"
)

var phaseOrder = []Phase{
	PhaseInit,
	PhaseHostChecked,
	PhaseSourceVerified,
	PhaseSchemaExtracted,
	PhaseDestinationCreated,
	PhaseDataCopied,
	PhaseAliasReassigned,
	PhaseDone,
}

// phaseReached reports whether p is at or past target in workflow order.
func phaseReached(p, target Phase) bool {
	pi, ti := -1, -1
	for i, v := range phaseOrder {
		if v == p {
			pi = i
		}
		if v == target {
			ti = i
		}
	}
	return pi >= 0 && ti >= 0 && pi >= ti
}

// PhaseTiming records how long one phase took.
type PhaseTiming struct {
	Phase    Phase `json:"phase"`
	TookInMs int64 `json:"took_in_ms"`
}

// MigrationState is the full record of one run, the live object while the
// run is going and the journal entry afterwards.
type MigrationState struct {
	ID          string            `json:"id"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	Alias       string            `json:"alias"`
	Phase       Phase             `json:"phase"`
	DryRun      bool              `json:"dry_run,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	Timings     []PhaseTiming     `json:"timings,omitempty"`
	Copy        *CopyResult       `json:"copy,omitempty"`
	Schema      *SchemaDefinition `json:"schema,omitempty"`
	Plan        *AliasPlan        `json:"alias_plan,omitempty"`
	Error       string            `json:"error,omitempty"`
	Success     bool              `json:"success"`
}

// Request names one migration, filled from the command line positionals or
// the HTTP body.
type Request struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Alias       string `json:"alias"`
	DryRun      bool   `json:"dry_run,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

// ModuleConfig is the migration section of the config file. Elasticsearch
// names the cluster instance to run against, empty follows the system
// cluster the elastic module registered.
type ModuleConfig struct {
	Elasticsearch    string     `config:"elasticsearch"`
	ProtectedIndices []string   `config:"protected_indices"`
	AllowProtected   bool       `config:"allow_protected"`
	Copy             CopyConfig `config:"copy"`
}

// ErrBusy is returned when a run is submitted while another one is going,
// one migration mutates the cluster at a time.
var ErrBusy = errors.New("another migration is already running")

type MigrationModule struct {
	cfg   *ModuleConfig
	serve bool

	runLock  sync.Mutex
	busy     bool
	stopping bool

	stateMu sync.RWMutex
	current *MigrationState
}

func (module *MigrationModule) Name() string {
	return "migration"
}

func (module *MigrationModule) Setup(cfg *config.Config) {
	module.cfg = &ModuleConfig{
		ProtectedIndices: []string{".*"},
		Copy: CopyConfig{
			PollIntervalInMs: defaultPollIntervalInMs,
			TimeoutInSeconds: defaultTimeoutInSeconds,
		},
	}
	if cfg != nil {
		if err := cfg.Unpack(module.cfg); err != nil {
			panic(err)
		}
	}

	handler := APIHandler{module: module}
	api.HandleAPIMethod(api.POST, "/migration/_start", handler.startMigration)
	api.HandleAPIMethod(api.GET, "/migration/_history", handler.listMigrations)
	api.HandleAPIMethod(api.GET, "/migration/:id", handler.getMigration)
}

func (module *MigrationModule) Start() error {
	return nil
}

// Stop asks a live run to give up at its next phase boundary and waits a
// short while for it to get there, so the run can still journal itself
// before the stores behind it shut down. A run stuck inside a long network
// call keeps going, nothing is killed mid-call.
func (module *MigrationModule) Stop() error {
	module.runLock.Lock()
	module.stopping = true
	busy := module.busy
	module.runLock.Unlock()

	for i := 0; busy && i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		module.runLock.Lock()
		busy = module.busy
		module.runLock.Unlock()
	}
	return nil
}

func (module *MigrationModule) stopRequested() bool {
	module.runLock.Lock()
	defer module.runLock.Unlock()
	return module.stopping || global.ShuttingDown()
}

// checkpoint refuses to enter the next phase once a stop was requested,
// the boundary between phases is the only safe place to give up.
func (module *MigrationModule) checkpoint(state *MigrationState, next Phase) error {
	if !module.stopRequested() {
		return nil
	}
	return module.fail(state, next, errors.New("stop requested, not entering the next phase"))
}

// SetServeMode marks the module as running inside a long-lived server, the
// HTTP submit endpoint refuses work outside of it.
func (module *MigrationModule) SetServeMode(on bool) {
	module.serve = on
}

// CurrentState returns a copy of the live run, nil when idle.
func (module *MigrationModule) CurrentState() *MigrationState {
	module.stateMu.RLock()
	defer module.stateMu.RUnlock()
	if module.current == nil {
		return nil
	}
	state := *module.current
	state.Timings = append([]PhaseTiming{}, module.current.Timings...)
	return &state
}

// Run drives one migration to its terminal state, blocking until it is
// done. The returned state is complete either way, the error tells the
// caller which phase gave up and why.
func (module *MigrationModule) Run(req Request) (*MigrationState, error) {
	state, err := module.begin(req)
	if err != nil {
		return nil, err
	}
	return module.execute(state, req)
}

// StartAsync begins a migration in the background, the HTTP path. The run
// id comes back right away, progress is read via CurrentState or the
// journal once the run has settled.
func (module *MigrationModule) StartAsync(req Request) (string, error) {
	state, err := module.begin(req)
	if err != nil {
		return "", err
	}
	go func() {
		if _, err := module.execute(state, req); err != nil {
			log.Error(err)
		}
	}()
	return state.ID, nil
}

// begin validates the request and takes the single run slot. Validation
// happens before anything touches the cluster, a refused request exits
// without a single network call.
func (module *MigrationModule) begin(req Request) (*MigrationState, error) {
	if err := module.validate(req); err != nil {
		return nil, err
	}

	module.runLock.Lock()
	if module.busy {
		module.runLock.Unlock()
		return nil, ErrBusy
	}
	if module.stopping {
		module.runLock.Unlock()
		return nil, errors.New("shutting down, not accepting new migrations")
	}
	module.busy = true
	module.runLock.Unlock()

	// repeat runs of the same triple share a fingerprint, so the journal
	// can tell a retry from an unrelated migration
	state := &MigrationState{
		ID:          util.GetUUID(),
		Fingerprint: util.Fingerprint(req.Source + ">" + req.Destination + ">" + req.Alias),
		Source:      req.Source,
		Destination: req.Destination,
		Alias:       req.Alias,
		Phase:       PhaseInit,
		DryRun:      req.DryRun,
		StartedAt:   time.Now(),
	}

	module.stateMu.Lock()
	module.current = state
	module.stateMu.Unlock()

	log.Infof("[%v] migrating [%v] -> [%v], alias [%v], dry_run=%v",
		state.ID, state.Source, state.Destination, state.Alias, state.DryRun)
	return state, nil
}

func (module *MigrationModule) release() {
	module.runLock.Lock()
	module.busy = false
	module.runLock.Unlock()
}

// clusterID resolves which registered cluster instance this run uses, the
// configured one or the system cluster the elastic module set up.
func (module *MigrationModule) clusterID() string {
	if module.cfg.Elasticsearch != "" {
		return module.cfg.Elasticsearch
	}
	if v := global.Lookup(elastic.GlobalSystemElasticsearchID); v != nil {
		if name, ok := v.(string); ok && name != "" {
			return name
		}
	}
	return "default"
}

func (module *MigrationModule) validate(req Request) error {
	for _, name := range []string{req.Source, req.Destination, req.Alias} {
		if err := validateIndexName(name); err != nil {
			return errors.NewWithCode(err, errors.UsageError, "")
		}
	}
	if req.Source == req.Destination {
		return errors.NewWithCode(nil, errors.UsageError, "source and destination must be different indices")
	}
	if req.Alias == req.Source || req.Alias == req.Destination {
		return errors.NewWithCode(nil, errors.UsageError,
			fmt.Sprintf("alias [%v] must not collide with an index name in this migration", req.Alias))
	}
	if !module.cfg.AllowProtected {
		for _, pattern := range module.cfg.ProtectedIndices {
			for _, name := range []string{req.Source, req.Destination} {
				if glob.Glob(pattern, name) {
					return errors.NewWithCode(nil, errors.UsageError,
						fmt.Sprintf("index [%v] matches protected pattern [%v], set allow_protected to override", name, pattern))
				}
			}
		}
	}
	return nil
}

// execute walks the phases in order. Every failure is terminal, nothing is
// retried and nothing is rolled back: a destination created before the
// failing phase stays behind, without the alias, for inspection.
func (module *MigrationModule) execute(state *MigrationState, req Request) (result *MigrationState, err error) {
	defer module.release()
	defer func() {
		if r := recover(); r != nil {
			var v string
			switch r := r.(type) {
			case error:
				v = r.Error()
			case string:
				v = r
			default:
				v = fmt.Sprintf("%v", r)
			}
			result = state
			err = module.fail(state, state.Phase, errors.New(v))
		}
	}()

	client := elastic.GetClient(module.clusterID())
	stats.Increment("migration", "started")

	t := time.Now()
	info, err := client.GetClusterInfo()
	if err != nil {
		return state, module.fail(state, PhaseHostChecked, errors.NewWithCode(err, errors.HostUnreachable, ""))
	}
	log.Debugf("cluster [%v] version [%v]", info.ClusterName, info.Version.Number)
	module.advance(state, PhaseHostChecked, t)

	if err := module.checkpoint(state, PhaseSourceVerified); err != nil {
		return state, err
	}
	t = time.Now()
	exists, err := client.IndexExists(state.Source)
	if err != nil {
		return state, module.fail(state, PhaseSourceVerified, errors.NewWithCode(err, errors.HostUnreachable, state.Source))
	}
	if !exists {
		return state, module.fail(state, PhaseSourceVerified,
			errors.NewWithCode(nil, errors.SourceNotFound, fmt.Sprintf("index [%v] does not exist", state.Source)))
	}
	module.advance(state, PhaseSourceVerified, t)

	if err := module.checkpoint(state, PhaseSchemaExtracted); err != nil {
		return state, err
	}
	t = time.Now()
	def, err := ExtractSchema(client, state.Source)
	if err != nil {
		return state, module.fail(state, PhaseSchemaExtracted, err)
	}
	module.advance(state, PhaseSchemaExtracted, t)

	if state.DryRun {
		return module.finishDryRun(state, client, def)
	}

	if err := module.checkpoint(state, PhaseDestinationCreated); err != nil {
		return state, err
	}
	t = time.Now()
	if err := CreateDestination(client, state.Destination, def, req.Force); err != nil {
		return state, module.fail(state, PhaseDestinationCreated, err)
	}
	module.advance(state, PhaseDestinationCreated, t)

	if err := module.checkpoint(state, PhaseDataCopied); err != nil {
		return state, err
	}
	t = time.Now()
	copied, err := CopyData(client, state.Source, state.Destination, module.cfg.Copy)
	if err != nil {
		return state, module.fail(state, PhaseDataCopied, err)
	}
	module.stateMu.Lock()
	state.Copy = copied
	module.stateMu.Unlock()
	module.advance(state, PhaseDataCopied, t)

	if err := module.checkpoint(state, PhaseAliasReassigned); err != nil {
		return state, err
	}
	t = time.Now()
	plan, err := ReassignAlias(client, state.Alias, state.Destination)
	module.stateMu.Lock()
	state.Plan = plan
	module.stateMu.Unlock()
	if err != nil {
		return state, module.fail(state, PhaseAliasReassigned, err)
	}
	module.advance(state, PhaseAliasReassigned, t)

	module.finish(state)
	return state, nil
}

// finishDryRun computes everything a real run would apply and applies none
// of it. The alias membership is still read so the printed plan matches
// what a real run would send.
func (module *MigrationModule) finishDryRun(state *MigrationState, client elastic.API, def *SchemaDefinition) (*MigrationState, error) {
	// the read happens while planning, nothing was applied, so a failure
	// here belongs to the extraction phase, not to the switchover
	membership, err := client.GetAlias(state.Alias)
	if err != nil {
		return state, module.fail(state, PhaseSchemaExtracted,
			errors.NewWithCode(err, errors.AliasUpdateFailed,
				fmt.Sprintf("resolving alias [%v] for the dry run plan", state.Alias)))
	}
	var holders []string
	if membership != nil {
		if info, ok := (*membership)[state.Alias]; ok {
			holders = info.Index
		}
	}

	module.stateMu.Lock()
	state.Schema = def
	state.Plan = PlanAliasSwitch(holders, state.Alias, state.Destination)
	state.Success = true
	module.stateMu.Unlock()

	stats.Increment("migration", "dry_run")
	log.Infof("[%v] dry run complete, nothing was changed", state.ID)
	saveRun(state)
	return state, nil
}

func (module *MigrationModule) advance(state *MigrationState, phase Phase, started time.Time) {
	took := time.Since(started).Milliseconds()
	module.stateMu.Lock()
	state.Phase = phase
	state.Timings = append(state.Timings, PhaseTiming{Phase: phase, TookInMs: took})
	module.stateMu.Unlock()
	stats.Timing("migration", string(phase), took)
	log.Infof("[%v] phase [%v] done in %vms", state.ID, phase, took)
}

// fail records the error against the phase that was being attempted and
// journals the run. The state's own phase stays at the last one that
// actually finished.
func (module *MigrationModule) fail(state *MigrationState, attempted Phase, cause error) error {
	module.stateMu.Lock()
	state.Error = fmt.Sprintf("phase [%v]: %v", attempted, cause.Error())
	module.stateMu.Unlock()
	stats.Increment("migration", "failed")
	log.Errorf("[%v] failed in phase [%v]: %v", state.ID, attempted, cause)
	saveRun(state)
	return cause
}

func (module *MigrationModule) finish(state *MigrationState) {
	module.stateMu.Lock()
	state.Phase = PhaseDone
	state.Success = true
	module.stateMu.Unlock()
	stats.Increment("migration", "completed")
	stats.Timing("migration", "total", time.Since(state.StartedAt).Milliseconds())
	log.Infof("[%v] done, [%v] -> [%v], alias [%v] switched", state.ID, state.Source, state.Destination, state.Alias)
	saveRun(state)
}

// invalidNameChars can not appear in an index or alias name.
const invalidNameChars = " \"*\\<|,>/?#:"

func validateIndexName(name string) error {
	if name == "" {
		return errors.New("index and alias names must not be empty")
	}
	if len(name) > 255 {
		return errors.Errorf("name [%v] is longer than 255 bytes", name)
	}
	if name != strings.ToLower(name) {
		return errors.Errorf("name [%v] must be lowercase", name)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return errors.Errorf("name [%v] contains characters the store refuses", name)
	}
	switch name[0] {
	case '-', '_', '+':
		return errors.Errorf("name [%v] must not start with -, _ or +", name)
	}
	if name == "." || name == ".." {
		return errors.Errorf("name [%v] is reserved", name)
	}
	return nil
}
