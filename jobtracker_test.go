package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/plaidnox/veta/sdk/go/routes"
)

func TestJobTrackerOrganizationQuery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.client.JobTracker.Organization(ctx, "org-1", JobFilter{})
	if err != nil {
		t.Fatalf("organization: %v", err)
	}
	if res.Organization.ID != "org-1" || len(res.Jobs) != 2 || res.Jobs[1].Status != JobSubmitted {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Summary.AverageDuration == nil || *res.Summary.AverageDuration != 42.5 {
		t.Fatalf("average duration: %+v", res.Summary)
	}
	if res.Sessions[0].Results.FindingsBySeverity.High != 2 {
		t.Fatalf("session results: %+v", res.Sessions[0])
	}

	_, err = env.client.JobTracker.Organization(ctx, "org-1", JobFilter{Limit: 5, Statuses: []JobStatus{JobFailed, JobRunning}})
	if err != nil {
		t.Fatalf("filtered organization: %v", err)
	}
	reqs := env.backend.RequestsTo("/job-tracker/organization/org-1")
	if len(reqs) != 2 {
		t.Fatalf("expected two requests, got %d", len(reqs))
	}
	if q, _ := url.ParseQuery(reqs[0].RawQuery); q.Get("limit") != "50" || q.Has("status") {
		t.Fatalf("default query: %s", reqs[0].RawQuery)
	}
	if q, _ := url.ParseQuery(reqs[1].RawQuery); q.Get("limit") != "5" || q.Get("status") != "failed,running" {
		t.Fatalf("filtered query: %s", reqs[1].RawQuery)
	}
}

func TestJobTrackerDetailEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.client.JobTracker.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.Session.SessionID != "sess-1" || sess.Session.Configuration.ChunkSize != 50 || sess.Summary.CompletionRate != 100 {
		t.Fatalf("unexpected session %+v", sess)
	}

	job, err := env.client.JobTracker.Job(ctx, "job-9")
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if job.Job.JobID != "job-9" || !job.Job.Status.Terminal() || len(job.Job.Attempts) != 1 || job.Job.MaxRetries != 3 {
		t.Fatalf("unexpected job %+v", job)
	}

	if _, err := env.client.JobTracker.Job(ctx, " "); err == nil {
		t.Fatalf("expected an error for an empty id")
	}
}

func TestJobTrackerSync(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.client.JobTracker.SyncOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.Success || len(res.Raw) == 0 {
		t.Fatalf("unexpected sync result %+v", res)
	}
	reqs := env.backend.RequestsTo("/job-tracker/sync/org-1")
	if len(reqs) != 1 || reqs[0].Method != http.MethodPost || reqs[0].RawQuery != "sync=true" {
		t.Fatalf("unexpected sync request %+v", reqs)
	}
	var body struct {
		Status []string `json:"status"`
	}
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Status) != 3 || body.Status[0] != "running" || body.Status[1] != "pending" || body.Status[2] != "submitted" {
		t.Fatalf("default statuses: %v", body.Status)
	}

	if _, err := env.client.JobTracker.SyncSession(ctx, "sess-1"); err != nil {
		t.Fatalf("sync session: %v", err)
	}
	sessReqs := env.backend.RequestsTo(routes.Expand(routes.JobTrackerSyncSession, "session_id", "sess-1"))
	if len(sessReqs) != 1 || len(sessReqs[0].Body) != 0 {
		t.Fatalf("session sync sends no body: %+v", sessReqs)
	}
}

func TestJobTrackerListOrganizations(t *testing.T) {
	env := newTestEnv(t)
	list, err := env.client.JobTracker.ListOrganizations(context.Background(), OrganizationQuery{Search: "acme", Sync: BoolPtr(true)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !list.Synced || len(list.Organizations) != 1 || list.Organizations[0].Organization.Domains[0] != "acme.test" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list.Summary.SearchQuery == nil || *list.Summary.SearchQuery != "acme" {
		t.Fatalf("search query: %+v", list.Summary)
	}
	reqs := env.backend.RequestsTo(routes.JobTracker)
	q, _ := url.ParseQuery(reqs[0].RawQuery)
	if q.Get("page") != "1" || q.Get("limit") != "10" || q.Get("org") != "acme" || q.Get("sync") != "true" {
		t.Fatalf("unexpected query %s", reqs[0].RawQuery)
	}
}

func TestJobTrackerListOrganizationsSyncFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.client.JobTracker.ListOrganizations(ctx, OrganizationQuery{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := env.client.JobTracker.ListOrganizations(ctx, OrganizationQuery{Sync: BoolPtr(false)}); err != nil {
		t.Fatalf("list: %v", err)
	}
	reqs := env.backend.RequestsTo(routes.JobTracker)
	if len(reqs) != 2 {
		t.Fatalf("expected two requests, got %d", len(reqs))
	}
	if q, _ := url.ParseQuery(reqs[0].RawQuery); q.Has("sync") {
		t.Fatalf("unset sync must be omitted: %s", reqs[0].RawQuery)
	}
	if q, _ := url.ParseQuery(reqs[1].RawQuery); q.Get("sync") != "false" {
		t.Fatalf("explicit sync=false must be sent: %s", reqs[1].RawQuery)
	}
}

func TestJobTrackerOverviewKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	ids := []string{"org-a", "org-b", "org-c", "org-d", "org-e"}
	out, err := env.client.JobTracker.Overview(context.Background(), ids, JobFilter{Limit: 10})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	for i, id := range ids {
		if out[i].Organization.ID != id {
			t.Fatalf("result %d is %q, want %q", i, out[i].Organization.ID, id)
		}
	}
}

func TestJobTrackerOverviewSharesRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.backend.ExpireAccessTokens()
	if _, err := env.client.JobTracker.Overview(context.Background(), []string{"a", "b", "c", "d"}, JobFilter{}); err != nil {
		t.Fatalf("overview: %v", err)
	}
	if got := env.backend.RefreshCalls(); got != 1 {
		t.Fatalf("expected a single refresh for the fan-out, got %d", got)
	}
}
