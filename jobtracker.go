package sdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/plaidnox/veta/sdk/go/routes"
)

const (
	defaultJobLimit     = 50
	defaultOrgPageLimit = 10
	overviewConcurrency = 4
)

// JobTrackerClient reads and re-syncs scan job state.
type JobTrackerClient struct {
	client *Client
}

// JobFilter narrows an organization's job listing. Limit defaults to 50.
type JobFilter struct {
	Limit    int
	Statuses []JobStatus
}

func (f JobFilter) query() url.Values {
	q := url.Values{}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultJobLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if len(f.Statuses) > 0 {
		parts := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			parts = append(parts, string(s))
		}
		q.Set("status", strings.Join(parts, ","))
	}
	return q
}

// Organization returns jobs and sessions for one organization.
func (j *JobTrackerClient) Organization(ctx context.Context, orgID string, filter JobFilter) (OrganizationJobs, error) {
	if strings.TrimSpace(orgID) == "" {
		return OrganizationJobs{}, errors.New("sdk: organization id required")
	}
	path := withQuery(routes.Expand(routes.JobTrackerOrganization, "org_id", orgID), filter.query())
	var out OrganizationJobs
	err := j.client.requestJSON(ctx, path, RequestOptions{}, &out)
	return out, err
}

// Session returns one scan session with its child jobs.
func (j *JobTrackerClient) Session(ctx context.Context, sessionID string) (SessionDetail, error) {
	if strings.TrimSpace(sessionID) == "" {
		return SessionDetail{}, errors.New("sdk: session id required")
	}
	var out SessionDetail
	err := j.client.requestJSON(ctx, routes.Expand(routes.JobTrackerSession, "session_id", sessionID), RequestOptions{}, &out)
	return out, err
}

// Job returns one job with attempts and parameters.
func (j *JobTrackerClient) Job(ctx context.Context, jobID string) (JobDetail, error) {
	if strings.TrimSpace(jobID) == "" {
		return JobDetail{}, errors.New("sdk: job id required")
	}
	var out JobDetail
	err := j.client.requestJSON(ctx, routes.Expand(routes.JobTrackerJob, "job_id", jobID), RequestOptions{}, &out)
	return out, err
}

// SyncOrganization asks the backend to re-read job state for the given
// statuses, DefaultSyncStatuses when none are given.
func (j *JobTrackerClient) SyncOrganization(ctx context.Context, orgID string, statuses ...JobStatus) (SyncResult, error) {
	if strings.TrimSpace(orgID) == "" {
		return SyncResult{}, errors.New("sdk: organization id required")
	}
	if len(statuses) == 0 {
		statuses = DefaultSyncStatuses
	}
	q := url.Values{"sync": {"true"}}
	path := withQuery(routes.Expand(routes.JobTrackerSyncOrganization, "org_id", orgID), q)
	return j.sync(ctx, path, map[string]any{"status": statuses})
}

// SyncSession re-syncs the jobs of one scan session.
func (j *JobTrackerClient) SyncSession(ctx context.Context, sessionID string) (SyncResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return SyncResult{}, errors.New("sdk: session id required")
	}
	return j.sync(ctx, routes.Expand(routes.JobTrackerSyncSession, "session_id", sessionID), nil)
}

func (j *JobTrackerClient) sync(ctx context.Context, path string, body any) (SyncResult, error) {
	resp, err := j.client.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return SyncResult{}, err
	}
	var out SyncResult
	if err := resp.Decode(&out); err != nil {
		return SyncResult{}, err
	}
	out.Raw = resp.Body
	return out, nil
}

// OrganizationQuery pages through the tracked organizations.
type OrganizationQuery struct {
	Page   int
	Limit  int
	Search string
	// Sync asks the server to refresh job state first; nil leaves it unset.
	Sync *bool
}

// ListOrganizations returns tracked organizations with job statistics.
func (j *JobTrackerClient) ListOrganizations(ctx context.Context, query OrganizationQuery) (OrganizationList, error) {
	page, limit := query.Page, query.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultOrgPageLimit
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if query.Search != "" {
		q.Set("org", query.Search)
	}
	if query.Sync != nil {
		q.Set("sync", strconv.FormatBool(*query.Sync))
	}
	var out OrganizationList
	err := j.client.requestJSON(ctx, withQuery(routes.JobTracker, q), RequestOptions{}, &out)
	return out, err
}

// Overview loads several organizations concurrently. Results keep the order
// of orgIDs; the first failure cancels the rest.
func (j *JobTrackerClient) Overview(ctx context.Context, orgIDs []string, filter JobFilter) ([]OrganizationJobs, error) {
	out := make([]OrganizationJobs, len(orgIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i, id := range orgIDs {
		g.Go(func() error {
			res, err := j.Organization(gctx, id, filter)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
