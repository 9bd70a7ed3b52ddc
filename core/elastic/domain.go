package elastic

const (
	Elasticsearch = "elasticsearch"
	Easysearch    = "easysearch"
	Opensearch    = "opensearch"
)

// Indexes holds an index-level response body keyed by concrete index name.
type Indexes map[string]interface{}

type ClusterInformation struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number        string `json:"number"`
		Distribution  string `json:"distribution,omitempty"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"version"`
}

type ClusterHealth struct {
	Name                        string  `json:"cluster_name"`
	Status                      string  `json:"status"`
	TimedOut                    bool    `json:"timed_out"`
	NumberOfNodes               int     `json:"number_of_nodes"`
	NumberOfDataNodes           int     `json:"number_of_data_nodes"`
	ActivePrimaryShards         int     `json:"active_primary_shards"`
	ActiveShards                int     `json:"active_shards"`
	RelocatingShards            int     `json:"relocating_shards"`
	InitializingShards          int     `json:"initializing_shards"`
	UnassignedShards            int     `json:"unassigned_shards"`
	NumberOfPendingTasks        int     `json:"number_of_pending_tasks"`
	ActiveShardsPercentAsNumber float64 `json:"active_shards_percent_as_number"`
}

// CountResponse is a count response object
type CountResponse struct {
	Count int64 `json:"count"`
}

// ReindexResponse is the body of a _reindex call. A submit-only call fills
// just the task handle, a blocking call fills the outcome counters and the
// per-document failure entries.
type ReindexResponse struct {
	Task             string        `json:"task,omitempty"`
	Took             int64         `json:"took,omitempty"`
	TimedOut         bool          `json:"timed_out,omitempty"`
	Total            int64         `json:"total,omitempty"`
	Created          int64         `json:"created,omitempty"`
	Updated          int64         `json:"updated,omitempty"`
	Deleted          int64         `json:"deleted,omitempty"`
	Batches          int64         `json:"batches,omitempty"`
	VersionConflicts int64         `json:"version_conflicts,omitempty"`
	Noops            int64         `json:"noops,omitempty"`
	Failures         []interface{} `json:"failures,omitempty"`
}

// TaskStatus carries the live counters of a running reindex task.
type TaskStatus struct {
	Total            int64 `json:"total"`
	Created          int64 `json:"created"`
	Updated          int64 `json:"updated"`
	Deleted          int64 `json:"deleted"`
	Batches          int64 `json:"batches"`
	VersionConflicts int64 `json:"version_conflicts"`
	Noops            int64 `json:"noops"`
}

type TaskInfo struct {
	Node               string     `json:"node"`
	ID                 int64      `json:"id"`
	Type               string     `json:"type"`
	Action             string     `json:"action"`
	Status             TaskStatus `json:"status"`
	Description        string     `json:"description"`
	StartTimeInMillis  int64      `json:"start_time_in_millis"`
	RunningTimeInNanos int64      `json:"running_time_in_nanos"`
	Cancellable        bool       `json:"cancellable"`
}

// TaskResponse is the body of a task get, the embedded reindex response is
// only present once the task has completed.
type TaskResponse struct {
	Completed bool             `json:"completed"`
	Task      TaskInfo         `json:"task"`
	Response  *ReindexResponse `json:"response,omitempty"`
	Error     *struct {
		Type   string `json:"type,omitempty"`
		Reason string `json:"reason,omitempty"`
	} `json:"error,omitempty"`
}
