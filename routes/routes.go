// Package routes provides the API route constants used by the console SDK
// so that clients and the fake backend cannot drift apart.
package routes

// API route paths. Paths containing {placeholders} are expanded with Expand.
const (
	// UsersLogin exchanges email/password (and optional orgId) for a token pair.
	UsersLogin = "/users/login"

	// UsersTokenRefresh swaps a refresh token for a new token pair.
	UsersTokenRefresh = "/users/token/refresh" // #nosec G101 -- route path, not a credential

	// UsersLogout revokes the server-side session for an email.
	UsersLogout = "/users/logout"

	// UsersSwitch switches the active organization membership.
	UsersSwitch = "/users/switch"

	// UsersSetPassword completes an invitation by setting the initial password.
	UsersSetPassword = "/users/set-password"

	// UsersPasswordResetRequest emails a password reset link.
	UsersPasswordResetRequest = "/users/password-reset/request"

	// UsersPasswordResetConfirm applies a new password using a reset token.
	UsersPasswordResetConfirm = "/users/password-reset/confirm"

	// UsersResendVerification re-sends the account verification email.
	UsersResendVerification = "/users/resend-verification"

	// Me returns the current authenticated user's profile.
	Me = "/me"

	// JobTracker lists organizations with job and session statistics.
	JobTracker = "/job-tracker/"

	// JobTrackerOrganization returns jobs and sessions for one organization.
	JobTrackerOrganization = "/job-tracker/organization/{org_id}"

	// JobTrackerSession returns one scan session with its child jobs.
	JobTrackerSession = "/job-tracker/session/{session_id}"

	// JobTrackerJob returns one job with attempts and parameters.
	JobTrackerJob = "/job-tracker/job/{job_id}"

	// JobTrackerSyncOrganization re-syncs job state for an organization.
	JobTrackerSyncOrganization = "/job-tracker/sync/{org_id}"

	// JobTrackerSyncSession re-syncs job state for a scan session.
	JobTrackerSyncSession = "/job-tracker/sync/session/{session_id}"

	// AdminOrgs lists organizations visible to administrators.
	AdminOrgs = "/admin/orgs"

	// AdminOrgFiles lists every file stored for an organization.
	AdminOrgFiles = "/admin/{org_id}/files"

	// AdminOrgFile addresses a single stored file.
	AdminOrgFile = "/admin/{org_id}/files/{file_id}"

	// AdminOrgUpload uploads (POST) or lists (GET) files of one kind: report or tracker.
	AdminOrgUpload = "/admin/{org_id}/{kind}"
)
