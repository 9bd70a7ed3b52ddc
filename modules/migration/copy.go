/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"fmt"
	"time"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/progress"
	"infini.sh/shift/core/util"
)

// CopyConfig tunes the copy phase. The zero value means synchronous copy
// with a one hour timeout, which suits small and medium indices, async mode
// trades the single long request for task polling.
type CopyConfig struct {
	Async            bool `config:"async" json:"async,omitempty"`
	PollIntervalInMs int  `config:"poll_interval_in_ms" json:"poll_interval_in_ms,omitempty"`
	TimeoutInSeconds int  `config:"timeout_in_seconds" json:"timeout_in_seconds,omitempty"`
	OptimizeForSpeed bool `config:"optimize_for_speed" json:"optimize_for_speed,omitempty"`
}

const (
	defaultPollIntervalInMs = 1000
	defaultTimeoutInSeconds = 3600
)

// CopyResult is what the rest of the workflow needs to know about a
// finished copy.
type CopyResult struct {
	TookInMs        int64 `json:"took_in_ms,omitempty"`
	Created         int64 `json:"created,omitempty"`
	Updated         int64 `json:"updated,omitempty"`
	SourceDocs      int64 `json:"source_docs"`
	DestinationDocs int64 `json:"destination_docs"`
}

// CopyData drives the server-side copy from source into destination and
// verifies the outcome by comparing document counts afterwards. Any failure
// here is terminal, reissuing a copy without knowing what the first attempt
// did is how indices end up with duplicate documents.
func CopyData(client elastic.API, source, destination string, cfg CopyConfig) (*CopyResult, error) {
	if cfg.TimeoutInSeconds <= 0 {
		cfg.TimeoutInSeconds = defaultTimeoutInSeconds
	}
	if cfg.PollIntervalInMs <= 0 {
		cfg.PollIntervalInMs = defaultPollIntervalInMs
	}

	// the task api the polling mode relies on landed in 5.0
	if cfg.Async && client.GetMajorVersion() < 5 {
		log.Warnf("cluster version %v has no task api, the copy runs synchronously instead", client.ClusterVersion())
		cfg.Async = false
	}

	tuned := cfg.OptimizeForSpeed
	restore := func() {
		if tuned {
			tuned = false
			tuneForBulk(client, destination, false)
		}
	}
	if cfg.OptimizeForSpeed {
		tuneForBulk(client, destination, true)
		// a failed copy must not leave the abandoned destination with
		// refresh disabled
		defer restore()
	}

	body := util.MustToJSONBytes(util.MapStr{
		"source": util.MapStr{"index": source},
		"dest":   util.MapStr{"index": destination},
	})

	var resp *elastic.ReindexResponse
	var err error
	if cfg.Async {
		resp, err = submitAndPoll(client, body, cfg)
	} else {
		resp, err = client.ReindexAndWait(body, time.Duration(cfg.TimeoutInSeconds)*time.Second)
	}
	if err != nil {
		return nil, errors.NewWithCode(err, errors.CopyIncomplete,
			fmt.Sprintf("copying [%v] into [%v]", source, destination))
	}

	if len(resp.Failures) > 0 {
		return nil, errors.NewWithPayload(nil, errors.CopyIncomplete,
			util.MapStr{"failures": resp.Failures},
			fmt.Sprintf("%v documents failed while copying [%v] into [%v]", len(resp.Failures), source, destination))
	}
	if resp.TimedOut {
		return nil, errors.NewWithCode(nil, errors.CopyIncomplete,
			fmt.Sprintf("copy of [%v] into [%v] timed out on the server", source, destination))
	}

	restore()

	result := &CopyResult{
		TookInMs: resp.Took,
		Created:  resp.Created,
		Updated:  resp.Updated,
	}

	if err := client.Refresh(destination); err != nil {
		log.Warnf("could not refresh [%v] before counting, counts may lag: %v", destination, err)
	}
	if err := verifyCounts(client, source, destination, result); err != nil {
		return nil, err
	}

	log.Infof("copied %v documents from [%v] into [%v] in %vms",
		result.DestinationDocs, source, destination, result.TookInMs)
	return result, nil
}

// verifyCounts compares the document counts of both indices, they have to
// match exactly. The source is expected to be idle during the migration, a
// mismatch means either lost documents or live writes.
func verifyCounts(client elastic.API, source, destination string, result *CopyResult) error {
	srcCount, err := client.Count(source)
	if err != nil {
		return errors.NewWithCode(err, errors.CopyIncomplete, source)
	}
	dstCount, err := client.Count(destination)
	if err != nil {
		return errors.NewWithCode(err, errors.CopyIncomplete, destination)
	}

	result.SourceDocs = srcCount.Count
	result.DestinationDocs = dstCount.Count

	if srcCount.Count != dstCount.Count {
		return errors.NewWithPayload(nil, errors.CopyIncomplete,
			util.MapStr{"source_docs": srcCount.Count, "destination_docs": dstCount.Count},
			fmt.Sprintf("[%v] holds %v documents but [%v] holds %v after the copy",
				source, srcCount.Count, destination, dstCount.Count))
	}
	return nil
}

// submitAndPoll starts the copy as a background task and polls it until it
// is done. The counters reported along the way feed the progress bar.
func submitAndPoll(client elastic.API, body []byte, cfg CopyConfig) (*elastic.ReindexResponse, error) {
	resp, err := client.Reindex(body)
	if err != nil {
		return nil, err
	}
	if resp.Task == "" {
		// the server answered synchronously after all
		return resp, nil
	}

	log.Debugf("copy running as task [%v]", resp.Task)
	progress.RegisterBar("migration", "copy", 0)
	progress.Start()
	defer progress.Stop()

	interval := time.Duration(cfg.PollIntervalInMs) * time.Millisecond
	deadline := time.Now().Add(time.Duration(cfg.TimeoutInSeconds) * time.Second)
	var lastDone int64

	for {
		if global.ShuttingDown() {
			return nil, errors.Errorf("shutting down, task [%v] keeps running on the server", resp.Task)
		}
		if time.Now().After(deadline) {
			return nil, errors.Errorf("task [%v] did not finish within %vs, it keeps running on the server",
				resp.Task, cfg.TimeoutInSeconds)
		}

		task, err := client.GetTask(resp.Task)
		if err != nil {
			return nil, err
		}

		status := task.Task.Status
		done := status.Created + status.Updated + status.Deleted + status.Noops
		if status.Total > 0 {
			progress.IncreaseWithTotal("migration", "copy", int(done-lastDone), int(status.Total))
			lastDone = done
		}

		if task.Completed {
			if task.Error != nil {
				return nil, errors.Errorf("task [%v] failed: %v, %v", resp.Task, task.Error.Type, task.Error.Reason)
			}
			if task.Response != nil {
				return task.Response, nil
			}
			// completed without an embedded response, settle for the counters
			return &elastic.ReindexResponse{
				Total:   status.Total,
				Created: status.Created,
				Updated: status.Updated,
				Deleted: status.Deleted,
			}, nil
		}
		time.Sleep(interval)
	}
}

// tuneForBulk flips the refresh interval of the destination off for the copy
// and back afterwards. Tuning is advisory, failing to apply it never fails
// the run.
func tuneForBulk(client elastic.API, indexName string, bulk bool) {
	interval := "-1"
	if !bulk {
		interval = "1s"
	}
	err := client.UpdateIndexSettings(indexName, map[string]interface{}{
		"index": map[string]interface{}{"refresh_interval": interval},
	})
	if err != nil {
		log.Warnf("could not set refresh_interval=%v on [%v]: %v", interval, indexName, err)
	}
}
