package sdk

import "encoding/json"

// JobStatus is the scan job lifecycle state reported by the job tracker.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSubmitted JobStatus = "submitted"
	JobRunnable  JobStatus = "runnable"
	JobRunning   JobStatus = "running"
	JobFailed    JobStatus = "failed"
	JobCompleted JobStatus = "completed"
	JobSucceeded JobStatus = "succeeded"
)

// Terminal reports whether no further transitions are expected.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobFailed, JobCompleted, JobSucceeded:
		return true
	default:
		return false
	}
}

// DefaultSyncStatuses are the states re-synced when none are given.
var DefaultSyncStatuses = []JobStatus{JobRunning, JobPending, JobSubmitted}

// Duration is the tracker's split duration. Total is in seconds.
type Duration struct {
	Minutes int     `json:"minutes"`
	Seconds int     `json:"seconds"`
	Total   float64 `json:"total"`
}

type StatusInfo struct {
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

type JobProgress struct {
	SubdomainsProcessed int `json:"subdomainsProcessed"`
	TotalSubdomains     int `json:"totalSubdomains"`
	FindingsFound       int `json:"findingsFound"`
}

type FindingsBySeverity struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

type SessionResults struct {
	FindingsBySeverity FindingsBySeverity `json:"findingsBySeverity"`
	TotalFindings      int                `json:"totalFindings"`
	SubdomainsScanned  int                `json:"subdomainsScanned"`
}

// Job is one batch job in a scan.
type Job struct {
	JobID        string      `json:"jobId"`
	JobName      string      `json:"jobName"`
	JobType      string      `json:"jobType"`
	Status       JobStatus   `json:"status"`
	StatusInfo   StatusInfo  `json:"statusInfo"`
	Domain       string      `json:"domain"`
	JobQueue     string      `json:"jobQueue"`
	SubmittedAt  string      `json:"submittedAt"`
	StartedAt    string      `json:"startedAt,omitempty"`
	CompletedAt  string      `json:"completedAt,omitempty"`
	Duration     *Duration   `json:"duration"`
	StatusReason string      `json:"statusReason,omitempty"`
	Progress     JobProgress `json:"progress"`
	ParentJobID  string      `json:"parentJobId"`
}

// ScanSession groups a parent job with its child jobs.
type ScanSession struct {
	SessionID      string         `json:"sessionId"`
	SessionName    string         `json:"sessionName"`
	Status         string         `json:"status"`
	Domain         string         `json:"domain"`
	ParentJobID    string         `json:"parentJobId"`
	TotalChildJobs int            `json:"totalChildJobs"`
	CompletedJobs  int            `json:"completedJobs"`
	FailedJobs     int            `json:"failedJobs"`
	StartedAt      string         `json:"startedAt"`
	CompletedAt    string         `json:"completedAt,omitempty"`
	Duration       *Duration      `json:"duration"`
	Results        SessionResults `json:"results"`
}

// OrganizationSummary aggregates one organization's jobs.
type OrganizationSummary struct {
	TotalJobs       int            `json:"totalJobs"`
	TotalSessions   int            `json:"totalSessions"`
	StatusCounts    map[string]int `json:"statusCounts"`
	DomainCounts    map[string]int `json:"domainCounts"`
	AverageDuration *float64       `json:"averageDuration"`
}

// OrganizationJobs is the per-organization job tracker view.
type OrganizationJobs struct {
	Success      bool                `json:"success"`
	Organization OrgRef              `json:"organization"`
	Summary      OrganizationSummary `json:"summary"`
	Sessions     []ScanSession       `json:"sessions"`
	Jobs         []Job               `json:"jobs"`
	Synced       bool                `json:"synced"`
}

type SessionConfiguration struct {
	JobQueue        string `json:"jobQueue"`
	JobDefinition   string `json:"jobDefinition"`
	ChunkSize       int    `json:"chunkSize"`
	MaxParallelJobs int    `json:"maxParallelJobs"`
	UseOnDemand     bool   `json:"useOnDemand"`
	FullScan        bool   `json:"fullScan"`
}

// SessionDetail is one scan session with its child jobs.
type SessionDetail struct {
	Success bool `json:"success"`
	Session struct {
		ScanSession
		Organization  OrgRef               `json:"organization"`
		Configuration SessionConfiguration `json:"configuration"`
	} `json:"session"`
	Summary struct {
		TotalJobs       int            `json:"totalJobs"`
		StatusCounts    map[string]int `json:"statusCounts"`
		AverageDuration *Duration      `json:"averageDuration"`
		CompletionRate  float64        `json:"completionRate"`
	} `json:"summary"`
	Jobs   []Job `json:"jobs"`
	Synced bool  `json:"synced"`
}

type JobParameters struct {
	Domain         string   `json:"domain"`
	OrganizationID string   `json:"organizationId"`
	TotalJobs      int      `json:"totalJobs"`
	JobIndex       int      `json:"jobIndex"`
	Subdomains     []string `json:"subdomains"`
	FullScan       bool     `json:"fullScan"`
}

type JobAttempt struct {
	ID        string `json:"_id"`
	StartedAt string `json:"startedAt"`
	StoppedAt string `json:"stoppedAt"`
}

// JobDetail is one job with parameters, attempts, and logs.
type JobDetail struct {
	Success bool `json:"success"`
	Job     struct {
		Job
		Organization  OrgRef          `json:"organization"`
		JobDefinition string          `json:"jobDefinition"`
		Parameters    JobParameters   `json:"parameters"`
		Attempts      []JobAttempt    `json:"attempts"`
		LastError     json.RawMessage `json:"lastError,omitempty"`
		RetryCount    int             `json:"retryCount"`
		MaxRetries    int             `json:"maxRetries"`
	} `json:"job"`
	Logs   []json.RawMessage `json:"logs"`
	Synced bool              `json:"synced"`
}

type Pagination struct {
	CurrentPage          int  `json:"currentPage"`
	TotalPages           int  `json:"totalPages"`
	TotalOrganizations   int  `json:"totalOrganizations"`
	OrganizationsPerPage int  `json:"organizationsPerPage"`
	HasNextPage          bool `json:"hasNextPage"`
	HasPrevPage          bool `json:"hasPrevPage"`
}

// TrackedOrganization is one row of the job tracker organization list.
type TrackedOrganization struct {
	Organization struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Domains   []string `json:"domains"`
		CreatedAt string   `json:"createdAt"`
	} `json:"organization"`
	JobStatistics struct {
		TotalJobs       int            `json:"totalJobs"`
		StatusCounts    map[string]int `json:"statusCounts"`
		AverageDuration *float64       `json:"averageDuration"`
	} `json:"jobStatistics"`
	SessionStatistics struct {
		TotalSessions     int `json:"totalSessions"`
		ActiveSessions    int `json:"activeSessions"`
		CompletedSessions int `json:"completedSessions"`
	} `json:"sessionStatistics"`
	RecentJobs []Job `json:"recentJobs"`
}

// OrganizationList is the paginated job tracker organization list.
type OrganizationList struct {
	Success    bool       `json:"success"`
	Pagination Pagination `json:"pagination"`
	Summary    struct {
		TotalOrganizations int     `json:"totalOrganizations"`
		OrganizationsShown int     `json:"organizationsShown"`
		TotalJobs          int     `json:"totalJobs"`
		TotalSessions      int     `json:"totalSessions"`
		SearchQuery        *string `json:"searchQuery"`
	} `json:"summary"`
	Organizations []TrackedOrganization `json:"organizations"`
	Synced        bool                  `json:"synced"`
}

// SyncResult acknowledges a sync request. The remaining fields vary by
// endpoint and are kept raw.
type SyncResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}
