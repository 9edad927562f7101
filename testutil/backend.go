// Package testutil provides an in-process fake of the console API for SDK tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Membership is one organization an account can sign in to.
type Membership struct {
	MembershipID string
	OrgID        string
	OrgName      string
	Role         string
}

// Account is a user known to the fake backend.
type Account struct {
	ID          string
	Email       string
	Password    string
	UserName    string
	Role        string
	Memberships []Membership
	// ABACRoutes activates allow-only ABAC with these routes.
	ABACRoutes  []string
	ManageUsers bool
}

// RecordedRequest is what the backend saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
	Traceparent   string
	ContentType   string
	Body          []byte
}

// RecordedUpload is one parsed multipart upload.
type RecordedUpload struct {
	OrgID    string
	Kind     string
	FileName string
	Content  []byte
	POCs     []byte
	Version  string
	Metadata string
}

type override struct {
	status int
	body   string
}

type grant struct {
	email string
	orgID string
}

// Backend is a chi-routed fake API.
type Backend struct {
	Server *httptest.Server

	secret []byte

	mu       sync.Mutex
	accounts map[string]*Account
	access   map[string]grant
	refresh  map[string]grant
	requests []RecordedRequest
	uploads  []RecordedUpload
	deleted  []string
	forced   map[string]override
	logouts  []string

	refreshCalls  atomic.Int64
	refreshDelay  atomic.Int64
	refreshStatus atomic.Int64
	refreshGate   chan struct{}
}

// NewBackend starts a fake API server. Close it with t.Cleanup(b.Close).
func NewBackend() *Backend {
	b := &Backend{
		secret:   []byte("test-signing-secret"),
		accounts: make(map[string]*Account),
		access:   make(map[string]grant),
		refresh:  make(map[string]grant),
		forced:   make(map[string]override),
	}
	b.Server = httptest.NewServer(b.routes())
	return b
}

// URL is the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Close shuts the server down.
func (b *Backend) Close() {
	b.ReleaseRefresh()
	b.Server.Close()
}

// AddAccount registers an account. Accounts without memberships get one.
func (b *Backend) AddAccount(a Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Role == "" {
		a.Role = "analyst"
	}
	if len(a.Memberships) == 0 {
		a.Memberships = []Membership{{MembershipID: "m-" + a.ID, OrgID: "org-1", OrgName: "Acme", Role: a.Role}}
	}
	b.accounts[a.Email] = &a
}

// IssueTokens mints a token pair for an account's first membership.
func (b *Backend) IssueTokens(email string) (access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[email]
	if acct == nil {
		return "", ""
	}
	return b.issueLocked(acct, acct.Memberships[0].OrgID)
}

func (b *Backend) issueLocked(acct *Account, orgID string) (string, string) {
	role := acct.Role
	for _, m := range acct.Memberships {
		if m.OrgID == orgID && m.Role != "" {
			role = m.Role
		}
	}
	claims := jwt.MapClaims{
		"id":        acct.ID,
		"email":     acct.Email,
		"orgId":     orgID,
		"role":      role,
		"user_name": acct.UserName,
		"jti":       uuid.NewString(),
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("testutil: sign token: %v", err))
	}
	refresh := "rt-" + uuid.NewString()
	b.access[signed] = grant{email: acct.Email, orgID: orgID}
	b.refresh[refresh] = grant{email: acct.Email, orgID: orgID}
	return signed, refresh
}

// ExpireAccessTokens makes every issued access token answer 401.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]grant)
}

// RevokeRefreshTokens makes every issued refresh token answer 401.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh = make(map[string]grant)
}

// SetRefreshDelay slows the refresh endpoint down.
func (b *Backend) SetRefreshDelay(d time.Duration) { b.refreshDelay.Store(int64(d)) }

// FailRefresh makes the refresh endpoint answer status. Zero restores it.
func (b *Backend) FailRefresh(status int) { b.refreshStatus.Store(int64(status)) }

// HoldRefresh blocks refresh calls until ReleaseRefresh.
func (b *Backend) HoldRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refreshGate == nil {
		b.refreshGate = make(chan struct{})
	}
}

// ReleaseRefresh unblocks held refresh calls.
func (b *Backend) ReleaseRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refreshGate != nil {
		close(b.refreshGate)
		b.refreshGate = nil
	}
}

// Force makes path answer status with body for every method.
func (b *Backend) Force(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forced[path] = override{status: status, body: body}
}

// RefreshCalls counts hits on the refresh endpoint.
func (b *Backend) RefreshCalls() int64 { return b.refreshCalls.Load() }

// Requests returns every recorded request in arrival order.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// RequestsTo filters Requests by path.
func (b *Backend) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Uploads returns every parsed upload.
func (b *Backend) Uploads() []RecordedUpload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedUpload(nil), b.uploads...)
}

// Logouts returns the emails that called logout.
func (b *Backend) Logouts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.logouts...)
}

type ctxKey struct{}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.forcedResponses)

	r.Post("/users/login", b.handleLogin)
	r.Post("/users/token/refresh", b.handleRefresh)
	r.Post("/users/set-password", b.handleTokenPassword)
	r.Post("/users/password-reset/request", b.handleEmailAck)
	r.Post("/users/password-reset/confirm", b.handleTokenPassword)
	r.Post("/users/resend-verification", b.handleEmailAck)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Post("/users/logout", b.handleLogout)
		r.Post("/users/switch", b.handleSwitch)
		r.Get("/me", b.handleMe)

		r.Get("/job-tracker/", b.handleOrgList)
		r.Get("/job-tracker/organization/{org_id}", b.handleOrgJobs)
		r.Get("/job-tracker/session/{session_id}", b.handleSession)
		r.Get("/job-tracker/job/{job_id}", b.handleJob)
		r.Post("/job-tracker/sync/{org_id}", b.handleSync)
		r.Post("/job-tracker/sync/session/{session_id}", b.handleSync)

		r.Get("/admin/orgs", b.handleAdminOrgs)
		r.Get("/admin/{org_id}/files", b.handleFiles)
		r.Delete("/admin/{org_id}/files/{file_id}", b.handleDelete)
		r.Get("/admin/{org_id}/{kind}", b.handleFiles)
		r.Post("/admin/{org_id}/{kind}", b.handleUpload)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-Id"),
			Traceparent:   r.Header.Get("traceparent"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) forcedResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		o, ok := b.forced[r.URL.Path]
		b.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(strings.TrimSpace(o.body), "{") {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "text/plain")
		}
		w.WriteHeader(o.status)
		_, _ = io.WriteString(w, o.body)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Authentication required"})
			return
		}
		parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return b.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid token"})
			return
		}
		b.mu.Lock()
		g, known := b.access[token]
		b.mu.Unlock()
		if !known {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, g)))
	})
}

func grantFrom(r *http.Request) grant {
	g, _ := r.Context().Value(ctxKey{}).(grant)
	return g
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		OrgID    string `json:"orgId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[req.Email]
	if acct == nil || acct.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": false, "success": false, "message": "Invalid email or password"})
		return
	}
	orgID := req.OrgID
	if orgID == "" {
		if len(acct.Memberships) > 1 {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":      true,
				"success":     true,
				"multiTenant": true,
				"message":     "Select an organization",
				"memberships": membershipsJSON(acct),
			})
			return
		}
		orgID = acct.Memberships[0].OrgID
	}
	if !hasOrg(acct, orgID) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Not a member of this organization"})
		return
	}
	access, refresh := b.issueLocked(acct, orgID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       true,
		"success":      true,
		"token":        access,
		"refreshToken": refresh,
		"user":         userJSON(acct, orgID),
		"message":      "Login successful",
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	b.mu.Lock()
	gate := b.refreshGate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if d := time.Duration(b.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	if status := int(b.refreshStatus.Load()); status != 0 {
		writeJSON(w, status, map[string]any{"success": false, "error": "refresh unavailable"})
		return
	}
	var req struct {
		Email        string `json:"email"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.refresh[req.RefreshToken]
	if !ok || g.email != req.Email {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid refresh token"})
		return
	}
	delete(b.refresh, req.RefreshToken)
	access, refresh := b.issueLocked(b.accounts[g.email], g.orgID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": access, "refreshToken": refresh})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	b.logouts = append(b.logouts, req.Email)
	for tok, g := range b.refresh {
		if g.email == req.Email {
			delete(b.refresh, tok)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "success": true, "message": "Logged out"})
}

func (b *Backend) handleSwitch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrgID        string `json:"orgId"`
		MembershipID string `json:"membershipId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	g := grantFrom(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[g.email]
	orgID := req.OrgID
	for _, m := range acct.Memberships {
		if req.MembershipID != "" && m.MembershipID == req.MembershipID {
			orgID = m.OrgID
		}
	}
	if orgID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "multiTenant": true, "memberships": membershipsJSON(acct)})
		return
	}
	if !hasOrg(acct, orgID) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Not a member of this organization"})
		return
	}
	access, refresh := b.issueLocked(acct, orgID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"token":        access,
		"refreshToken": refresh,
		"user":         userJSON(acct, orgID),
	})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	g := grantFrom(r)
	b.mu.Lock()
	acct := b.accounts[g.email]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": userJSON(acct, g.orgID)})
}

func (b *Backend) handleTokenPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Token == "" || len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": false, "success": false, "message": "Invalid token or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "success": true, "message": "Password updated"})
}

func (b *Backend) handleEmailAck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "success": true, "message": "Email sent"})
}

func (b *Backend) handleOrgList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pagination": map[string]any{
			"currentPage": 1, "totalPages": 1, "totalOrganizations": 1,
			"organizationsPerPage": 10, "hasNextPage": false, "hasPrevPage": false,
		},
		"summary": map[string]any{
			"totalOrganizations": 1, "organizationsShown": 1, "totalJobs": 2, "totalSessions": 1,
			"searchQuery": nilIfEmpty(r.URL.Query().Get("org")),
		},
		"organizations": []any{map[string]any{
			"organization":      map[string]any{"id": "org-1", "name": "Acme", "domains": []string{"acme.test"}, "createdAt": "2024-01-01T00:00:00Z"},
			"jobStatistics":     map[string]any{"totalJobs": 2, "statusCounts": map[string]int{"running": 1, "succeeded": 1}, "averageDuration": nil},
			"sessionStatistics": map[string]any{"totalSessions": 1, "activeSessions": 1, "completedSessions": 0},
			"recentJobs":        []any{jobJSON("job-1", "running")},
		}},
		"synced": r.URL.Query().Get("sync") == "true",
	})
}

func (b *Backend) handleOrgJobs(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org_id")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"organization": map[string]any{"id": orgID, "name": "Org " + orgID},
		"summary": map[string]any{
			"totalJobs": 2, "totalSessions": 1,
			"statusCounts":    map[string]int{"pending": 1, "submitted": 1, "failed": 0},
			"domainCounts":    map[string]int{"acme.test": 2},
			"averageDuration": 42.5,
		},
		"sessions": []any{map[string]any{
			"sessionId": "sess-1", "sessionName": "Nightly", "status": "active", "domain": "acme.test",
			"parentJobId": "job-0", "totalChildJobs": 2, "completedJobs": 1, "failedJobs": 0,
			"startedAt": "2024-01-01T00:00:00Z", "duration": nil,
			"results": map[string]any{"findingsBySeverity": map[string]int{"critical": 1, "high": 2}, "totalFindings": 3, "subdomainsScanned": 10},
		}},
		"jobs":   []any{jobJSON("job-1", "pending"), jobJSON("job-2", "submitted")},
		"synced": false,
	})
}

func (b *Backend) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": map[string]any{
			"sessionId": id, "sessionName": "Nightly", "status": "completed", "domain": "acme.test",
			"organization":  map[string]any{"id": "org-1", "name": "Acme"},
			"configuration": map[string]any{"jobQueue": "scan", "chunkSize": 50, "maxParallelJobs": 4, "fullScan": true},
		},
		"summary": map[string]any{"totalJobs": 1, "statusCounts": map[string]int{"succeeded": 1}, "completionRate": 100},
		"jobs":    []any{jobJSON("job-1", "succeeded")},
		"synced":  true,
	})
}

func (b *Backend) handleJob(w http.ResponseWriter, r *http.Request) {
	job := jobJSON(chi.URLParam(r, "job_id"), "failed")
	job["parameters"] = map[string]any{"domain": "acme.test", "organizationId": "org-1", "subdomains": []string{"a.acme.test"}}
	job["attempts"] = []any{map[string]any{"_id": "att-1", "startedAt": "2024-01-01T00:00:00Z", "stoppedAt": "2024-01-01T00:01:00Z"}}
	job["retryCount"] = 1
	job["maxRetries"] = 3
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "job": job, "logs": []any{}, "synced": false})
}

func (b *Backend) handleSync(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Sync started", "updated": 2})
}

func (b *Backend) handleAdminOrgs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "page": 1, "limit": 10, "total": 1,
		"items": []any{map[string]any{"_id": "org-1", "name": "Acme", "domain": "acme.test", "createdAt": "2024-01-01T00:00:00Z"}},
	})
}

func (b *Backend) handleFiles(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org_id")
	kind := chi.URLParam(r, "kind")
	if kind == "" {
		kind = r.URL.Query().Get("type")
	}
	var items []any
	b.mu.Lock()
	for i, u := range b.uploads {
		if u.OrgID != orgID || (kind != "" && u.Kind != kind) {
			continue
		}
		items = append(items, map[string]any{
			"id": fmt.Sprintf("file-%d", i+1), "type": u.Kind, "version": 1, "key": orgID + "/" + u.FileName,
			"fileName": u.FileName, "mimeType": "application/octet-stream", "size": len(u.Content),
			"createdAt": "2024-01-01T00:00:00Z", "url": "https://files.test/" + u.FileName,
		})
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items, "count": len(items)})
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org_id")
	kind := chi.URLParam(r, "kind")
	if kind != "report" && kind != "tracker" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "unknown file type"})
		return
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid multipart body"})
		return
	}
	up := RecordedUpload{OrgID: orgID, Kind: kind, Version: r.FormValue("version"), Metadata: r.FormValue("metadata")}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "file is required"})
		return
	}
	up.FileName = header.Filename
	up.Content, _ = io.ReadAll(file)
	_ = file.Close()
	if pocs, _, err := r.FormFile("pocs"); err == nil {
		up.POCs, _ = io.ReadAll(pocs)
		_ = pocs.Close()
	}
	b.mu.Lock()
	b.uploads = append(b.uploads, up)
	id := fmt.Sprintf("file-%d", len(b.uploads))
	b.mu.Unlock()

	stored := map[string]any{
		"id": id, "key": orgID + "/" + up.FileName, "url": "https://files.test/" + up.FileName,
		"type": kind, "version": 1, "fileName": up.FileName, "size": len(up.Content), "mimeType": "application/octet-stream",
	}
	if kind == "tracker" {
		var pocs any
		if up.POCs != nil {
			pocs = map[string]any{"count": 1, "items": []any{map[string]any{"key": "poc.zip", "size": len(up.POCs), "mimeType": "application/zip"}}}
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "tracker": stored, "pocs": pocs})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "file": stored})
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	b.mu.Lock()
	b.deleted = append(b.deleted, fileID)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": map[string]any{"id": fileID, "key": "k", "type": "report", "version": 1, "fileName": "report.pdf"},
	})
}

func hasOrg(acct *Account, orgID string) bool {
	for _, m := range acct.Memberships {
		if m.OrgID == orgID {
			return true
		}
	}
	return false
}

func membershipsJSON(acct *Account) []any {
	out := make([]any, 0, len(acct.Memberships))
	for _, m := range acct.Memberships {
		out = append(out, map[string]any{
			"membershipId": m.MembershipID,
			"org":          map[string]any{"id": m.OrgID, "name": m.OrgName},
			"role":         m.Role,
			"user_name":    acct.UserName,
		})
	}
	return out
}

func userJSON(acct *Account, orgID string) map[string]any {
	orgName, role := "", acct.Role
	for _, m := range acct.Memberships {
		if m.OrgID == orgID {
			orgName = m.OrgName
			if m.Role != "" {
				role = m.Role
			}
		}
	}
	manage := acct.ManageUsers || role == "admin"
	abac := map[string]any{"mode": nil, "active": false, "allowedRoutes": []string{}}
	grantedBy := any(nil)
	if manage {
		grantedBy = "role"
	}
	if len(acct.ABACRoutes) > 0 {
		abac = map[string]any{"mode": "allow-only", "active": true, "allowedRoutes": acct.ABACRoutes}
	}
	perms := map[string]bool{
		"readASM": true, "readDarkweb": true, "writeASM": role == "admin",
		"writeDarkweb": role == "admin", "manageUsers": manage,
	}
	return map[string]any{
		"id":                  acct.ID,
		"email":               acct.Email,
		"user_name":           acct.UserName,
		"organization":        map[string]any{"_id": orgID, "name": orgName},
		"role":                map[string]any{"_id": "role-" + role, "name": role, "permissions": perms},
		"roleBasePermissions": perms,
		"abac":                abac,
		"derived":             map[string]any{"effectiveManageUsers": manage, "manageUsersGrantedBy": grantedBy, "canExport": true},
	}
}

func jobJSON(id, status string) map[string]any {
	return map[string]any{
		"jobId": id, "jobName": "scan-" + id, "jobType": "child", "status": status,
		"statusInfo": map[string]any{"emoji": "*", "color": "gray"}, "domain": "acme.test",
		"jobQueue": "scan", "submittedAt": "2024-01-01T00:00:00Z", "duration": nil,
		"progress":    map[string]any{"subdomainsProcessed": 5, "totalSubdomains": 10, "findingsFound": 1},
		"parentJobId": "job-0",
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
