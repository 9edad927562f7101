package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plaidnox/veta/sdk/go/routes"
)

// AuthClient covers login, organization switching, logout, and account
// maintenance endpoints.
type AuthClient struct {
	client *Client
}

// MeResult is the /me response.
type MeResult struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// Login exchanges credentials for a token pair and persists it.
//
// A multi-tenant user who did not pick an organization receives the
// membership list and nothing is persisted; call Login again with OrgID set.
// Login failures never tear a session down.
func (a *AuthClient) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return LoginResult{}, ConfigError{Reason: "email and password are required"}
	}
	req.Email = strings.TrimSpace(req.Email)
	var out LoginResult
	err := a.client.requestJSON(ctx, routes.UsersLogin, RequestOptions{
		Method:          http.MethodPost,
		Body:            req,
		Unauthenticated: true,
		SkipRefresh:     true,
		KeepSession:     true,
	}, &out)
	if err != nil {
		return LoginResult{}, err
	}
	if out.NeedsOrganization() || out.Token == "" {
		return out, nil
	}
	if err := a.client.store.SaveLogin(ctx, out.Token, out.RefreshToken, req.Email); err != nil {
		return out, fmt.Errorf("sdk: persist login: %w", err)
	}
	if out.User != nil && out.User.Organization.ID != "" {
		if err := a.client.store.SetOrg(ctx, out.User.Organization.ID); err != nil {
			return out, fmt.Errorf("sdk: persist organization: %w", err)
		}
	}
	a.client.telemetry.log(ctx, LogLevelInfo, EventLoginSucceeded, map[string]any{"email": req.Email})
	return out, nil
}

// SwitchOrganization moves the session to another membership. With both
// arguments empty the server answers with the membership list.
func (a *AuthClient) SwitchOrganization(ctx context.Context, orgID, membershipID string) (SwitchResult, error) {
	var out SwitchResult
	err := a.client.requestJSON(ctx, routes.UsersSwitch, RequestOptions{
		Method: http.MethodPost,
		Body:   SwitchRequest{OrgID: strings.TrimSpace(orgID), MembershipID: strings.TrimSpace(membershipID)},
	}, &out)
	if err != nil {
		return SwitchResult{}, err
	}
	if !out.Success || out.Token == "" || out.User == nil {
		return out, nil
	}
	if err := a.client.store.SaveTokens(ctx, out.Token, out.RefreshToken); err != nil {
		return out, fmt.Errorf("sdk: persist switch: %w", err)
	}
	if out.User.Email != "" {
		if err := a.client.store.SetEmail(ctx, out.User.Email); err != nil {
			return out, err
		}
	}
	if out.User.Organization.ID != "" {
		if err := a.client.store.SetOrg(ctx, out.User.Organization.ID); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Refresh calls the token refresh endpoint directly. It does not touch the
// store; the gateway rotates stored tokens itself.
func (a *AuthClient) Refresh(ctx context.Context, email, refreshToken string) (TokenPair, error) {
	var out TokenPair
	err := a.client.requestJSON(ctx, routes.UsersTokenRefresh, RequestOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"email":        email,
			"refreshToken": refreshToken,
		},
		Unauthenticated: true,
		SkipRefresh:     true,
	}, &out)
	if err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

// Logout revokes the server session on a best-effort basis and always
// clears every stored key. An expired access token is refreshed first so the
// server can revoke the refresh token too.
func (a *AuthClient) Logout(ctx context.Context) error {
	creds, err := a.client.store.Credentials(ctx)
	if err == nil && creds.Email != "" && creds.AccessToken != "" {
		var ack StatusMessage
		callErr := a.client.requestJSON(ctx, routes.UsersLogout, RequestOptions{
			Method: http.MethodPost,
			Body:   map[string]string{"email": creds.Email},
		}, &ack)
		if callErr != nil {
			a.client.telemetry.log(ctx, LogLevelWarn, EventLogoutFailed, map[string]any{"error": callErr.Error()})
		}
	}
	if resetErr := a.client.store.Reset(ctx); resetErr != nil {
		return fmt.Errorf("sdk: clear session: %w", resetErr)
	}
	return nil
}

// Me returns the current user's profile.
func (a *AuthClient) Me(ctx context.Context) (*User, error) {
	var out MeResult
	if err := a.client.requestJSON(ctx, routes.Me, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, DecodeError{Status: http.StatusOK, Cause: errors.New("missing user")}
	}
	return out.User, nil
}

// Resume validates a stored session by loading the profile. A session that
// cannot be validated is dropped so the caller starts from a clean login.
func (a *AuthClient) Resume(ctx context.Context) (*User, error) {
	creds, err := a.client.store.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := a.Me(ctx)
	if err != nil {
		//nolint:errcheck // best-effort cleanup; err is what the caller needs
		_ = a.client.store.ClearTokens(ctx)
		//nolint:errcheck // best-effort cleanup
		_ = a.client.store.ClearEmail(ctx)
		return nil, err
	}
	return user, nil
}

// SetPassword completes an invitation.
func (a *AuthClient) SetPassword(ctx context.Context, token, password string) (StatusMessage, error) {
	return a.publicCall(ctx, routes.UsersSetPassword, map[string]string{"token": token, "password": password})
}

// RequestPasswordReset emails a reset link.
func (a *AuthClient) RequestPasswordReset(ctx context.Context, email string) (StatusMessage, error) {
	return a.publicCall(ctx, routes.UsersPasswordResetRequest, map[string]string{"email": email})
}

// ConfirmPasswordReset applies a new password with a reset token.
func (a *AuthClient) ConfirmPasswordReset(ctx context.Context, token, password string) (StatusMessage, error) {
	return a.publicCall(ctx, routes.UsersPasswordResetConfirm, map[string]string{"token": token, "password": password})
}

// ResendVerification re-sends the verification email.
func (a *AuthClient) ResendVerification(ctx context.Context, email string) (StatusMessage, error) {
	return a.publicCall(ctx, routes.UsersResendVerification, map[string]string{"email": email})
}

func (a *AuthClient) publicCall(ctx context.Context, path string, body map[string]string) (StatusMessage, error) {
	var out StatusMessage
	err := a.client.requestJSON(ctx, path, RequestOptions{
		Method:          http.MethodPost,
		Body:            body,
		Unauthenticated: true,
		SkipRefresh:     true,
	}, &out)
	return out, err
}
