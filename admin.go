package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/plaidnox/veta/sdk/go/routes"
)

// FileKind selects the upload endpoint.
type FileKind string

const (
	FileReport  FileKind = "report"
	FileTracker FileKind = "tracker"
	FilePOC     FileKind = "poc"
	// FileAll disables type filtering when listing.
	FileAll FileKind = "all"
)

// AdminOrganization is one organization in the admin listing.
type AdminOrganization struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	CreatedAt string `json:"createdAt"`
}

// AdminOrganizationList is the paginated admin organization listing.
type AdminOrganizationList struct {
	Success bool                `json:"success"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	Total   int                 `json:"total"`
	Items   []AdminOrganization `json:"items"`
}

// ProjectRef is the project an uploaded file belongs to.
type ProjectRef struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// OrgFile is a stored report, tracker, or proof-of-concept archive.
type OrgFile struct {
	ID         string         `json:"id"`
	Type       FileKind       `json:"type"`
	Version    int            `json:"version"`
	ProjectKey string         `json:"projectKey,omitempty"`
	Project    *ProjectRef    `json:"project,omitempty"`
	Key        string         `json:"key"`
	FileName   string         `json:"fileName"`
	MimeType   string         `json:"mimeType"`
	Size       int64          `json:"size"`
	CreatedAt  string         `json:"createdAt"`
	URL        string         `json:"url"`
	UploadedBy string         `json:"uploadedBy,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// FileList is a list of stored files.
type FileList struct {
	Success bool      `json:"success"`
	Items   []OrgFile `json:"items"`
	Count   int       `json:"count"`
}

// POCSummary describes the archive contents accepted with a tracker.
type POCSummary struct {
	Count int `json:"count"`
	Items []struct {
		Key      string `json:"key"`
		Size     int64  `json:"size"`
		MimeType string `json:"mimeType"`
	} `json:"items"`
	ProjectKey string `json:"projectKey,omitempty"`
}

// UploadResult covers both upload response shapes: reports come back in
// File, trackers in Tracker with an optional POCs summary.
type UploadResult struct {
	Success bool        `json:"success"`
	File    *OrgFile    `json:"file,omitempty"`
	Tracker *OrgFile    `json:"tracker,omitempty"`
	POCs    *POCSummary `json:"pocs,omitempty"`
}

// Stored returns whichever file record the server sent.
func (r UploadResult) Stored() *OrgFile {
	if r.File != nil {
		return r.File
	}
	return r.Tracker
}

// DeleteResult acknowledges a file deletion.
type DeleteResult struct {
	Success bool `json:"success"`
	Deleted struct {
		ID       string `json:"id"`
		Key      string `json:"key"`
		Type     string `json:"type"`
		Version  int    `json:"version"`
		FileName string `json:"fileName"`
	} `json:"deleted"`
}

// UploadFile is one multipart file part.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadParams describes an upload. POCs is only sent with trackers.
type UploadParams struct {
	File     UploadFile
	POCs     *UploadFile
	Version  *int
	Metadata map[string]any
}

// FileFilter narrows a file listing.
type FileFilter struct {
	Type    FileKind
	Project string
}

// AdminClient manages organizations and their stored files.
type AdminClient struct {
	client *Client
}

// ListOrganizations pages through organizations visible to administrators.
func (a *AdminClient) ListOrganizations(ctx context.Context, page, limit int, search string) (AdminOrganizationList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	var out AdminOrganizationList
	err := a.client.requestJSON(ctx, withQuery(routes.AdminOrgs, q), RequestOptions{}, &out)
	return out, err
}

// Files lists an organization's stored files.
func (a *AdminClient) Files(ctx context.Context, orgID string, filter FileFilter) (FileList, error) {
	if strings.TrimSpace(orgID) == "" {
		return FileList{}, errors.New("sdk: organization id required")
	}
	q := url.Values{}
	if filter.Type != "" && filter.Type != FileAll {
		q.Set("type", string(filter.Type))
	}
	if filter.Project != "" {
		q.Set("project", filter.Project)
	}
	var out FileList
	err := a.client.requestJSON(ctx, withQuery(routes.Expand(routes.AdminOrgFiles, "org_id", orgID), q), RequestOptions{}, &out)
	return out, err
}

// Reports lists report uploads.
func (a *AdminClient) Reports(ctx context.Context, orgID string) (FileList, error) {
	return a.listKind(ctx, orgID, FileReport)
}

// Trackers lists tracker uploads.
func (a *AdminClient) Trackers(ctx context.Context, orgID string) (FileList, error) {
	return a.listKind(ctx, orgID, FileTracker)
}

func (a *AdminClient) listKind(ctx context.Context, orgID string, kind FileKind) (FileList, error) {
	if strings.TrimSpace(orgID) == "" {
		return FileList{}, errors.New("sdk: organization id required")
	}
	var out FileList
	err := a.client.requestJSON(ctx, routes.Expand(routes.AdminOrgUpload, "org_id", orgID, "kind", string(kind)), RequestOptions{}, &out)
	return out, err
}

// Upload stores a report or tracker. The form is buffered in memory so the
// gateway can replay it after a token refresh.
func (a *AdminClient) Upload(ctx context.Context, orgID string, kind FileKind, params UploadParams) (UploadResult, error) {
	if strings.TrimSpace(orgID) == "" {
		return UploadResult{}, errors.New("sdk: organization id required")
	}
	if kind != FileReport && kind != FileTracker {
		return UploadResult{}, fmt.Errorf("sdk: cannot upload file kind %q", kind)
	}
	body, contentType, err := encodeUpload(kind, params)
	if err != nil {
		return UploadResult{}, err
	}
	var out UploadResult
	err = a.client.requestJSON(ctx, routes.Expand(routes.AdminOrgUpload, "org_id", orgID, "kind", string(kind)), RequestOptions{
		Method:      http.MethodPost,
		RawBody:     body,
		ContentType: contentType,
	}, &out)
	return out, err
}

func encodeUpload(kind FileKind, params UploadParams) ([]byte, string, error) {
	if params.File.Content == nil {
		return nil, "", errors.New("sdk: upload file content required")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFilePart(w, "file", params.File); err != nil {
		return nil, "", err
	}
	if kind == FileTracker && params.POCs != nil && params.POCs.Content != nil {
		if err := writeFilePart(w, "pocs", *params.POCs); err != nil {
			return nil, "", err
		}
	}
	if params.Version != nil {
		if err := w.WriteField("version", strconv.Itoa(*params.Version)); err != nil {
			return nil, "", err
		}
	}
	if len(params.Metadata) > 0 {
		meta, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, "", fmt.Errorf("sdk: encode upload metadata: %w", err)
		}
		if err := w.WriteField("metadata", string(meta)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field string, f UploadFile) error {
	name := f.Name
	if name == "" {
		name = field
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("sdk: read upload %s: %w", field, err)
	}
	return nil
}

// DeleteFile removes a stored file.
func (a *AdminClient) DeleteFile(ctx context.Context, orgID, fileID string) (DeleteResult, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(fileID) == "" {
		return DeleteResult{}, errors.New("sdk: organization id and file id required")
	}
	var out DeleteResult
	err := a.client.requestJSON(ctx, routes.Expand(routes.AdminOrgFile, "org_id", orgID, "file_id", fileID), RequestOptions{
		Method: http.MethodDelete,
	}, &out)
	return out, err
}
