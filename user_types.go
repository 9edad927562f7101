package sdk

import (
	"encoding/json"
)

// OrgRef identifies an organization. The backend sends either "id" or "_id".
type OrgRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (o *OrgRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.ID = raw.ID
	if o.ID == "" {
		o.ID = raw.MongoID
	}
	o.Name = raw.Name
	return nil
}

// Permissions maps permission names (readASM, writeDarkweb, manageUsers...) to grants.
type Permissions map[string]bool

// Well-known permission names.
const (
	PermReadASM       = "readASM"
	PermReadDarkweb   = "readDarkweb"
	PermWriteASM      = "writeASM"
	PermWriteDarkweb  = "writeDarkweb"
	PermManageUsers   = "manageUsers"
	RoleAdmin         = "admin"
	DerivedManageUser = "effectiveManageUsers"
)

// Role is the user's role within the active organization.
type Role struct {
	ID          string      `json:"_id,omitempty"`
	Name        string      `json:"name"`
	Permissions Permissions `json:"permissions"`
}

// ABACMode is the attribute-based access mode.
type ABACMode string

const (
	ABACAllowOnly ABACMode = "allow-only"
	ABACDeny      ABACMode = "deny"
)

// ABAC carries route-level access restrictions.
type ABAC struct {
	Mode          ABACMode `json:"mode"`
	Active        bool     `json:"active"`
	AllowedRoutes []string `json:"allowedRoutes"`
}

// DerivedPermissions are computed server-side from role and ABAC.
type DerivedPermissions struct {
	EffectiveManageUsers bool
	ManageUsersGrantedBy string
	// Flags holds every other boolean entry.
	Flags map[string]bool
}

func (d *DerivedPermissions) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DerivedPermissions{Flags: make(map[string]bool)}
	for k, v := range raw {
		switch k {
		case DerivedManageUser:
			d.EffectiveManageUsers, _ = v.(bool)
		case "manageUsersGrantedBy":
			d.ManageUsersGrantedBy, _ = v.(string)
		default:
			if b, ok := v.(bool); ok {
				d.Flags[k] = b
			}
		}
	}
	return nil
}

func (d DerivedPermissions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Flags)+2)
	for k, v := range d.Flags {
		out[k] = v
	}
	out[DerivedManageUser] = d.EffectiveManageUsers
	if d.ManageUsersGrantedBy != "" {
		out["manageUsersGrantedBy"] = d.ManageUsersGrantedBy
	} else {
		out["manageUsersGrantedBy"] = nil
	}
	return json.Marshal(out)
}

// User is the signed-in user profile.
type User struct {
	ID                  string             `json:"id"`
	Email               string             `json:"email"`
	UserName            string             `json:"user_name"`
	Organization        OrgRef             `json:"organization"`
	Role                Role               `json:"role"`
	RoleBasePermissions Permissions        `json:"roleBasePermissions,omitempty"`
	ABAC                ABAC               `json:"abac"`
	Derived             DerivedPermissions `json:"derived"`
}

// Membership is one organization a multi-tenant user belongs to.
type Membership struct {
	MembershipID string `json:"membershipId"`
	Org          OrgRef `json:"org"`
	Role         string `json:"role"`
	UserName     string `json:"user_name"`
}

// LoginRequest mirrors POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OrgID    string `json:"orgId,omitempty"`
}

// LoginResult is the login response. A multi-tenant user without an OrgID
// gets MultiTenant and Memberships and no tokens.
type LoginResult struct {
	Status       bool         `json:"status"`
	Success      bool         `json:"success"`
	Token        string       `json:"token,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *User        `json:"user,omitempty"`
	Message      string       `json:"message,omitempty"`
	MultiTenant  bool         `json:"multiTenant,omitempty"`
	Memberships  []Membership `json:"memberships,omitempty"`
}

// NeedsOrganization reports whether login must be repeated with an OrgID.
func (r LoginResult) NeedsOrganization() bool {
	return r.MultiTenant && r.Token == ""
}

// SwitchRequest mirrors POST /users/switch. Both fields empty lists memberships.
type SwitchRequest struct {
	OrgID        string `json:"orgId,omitempty"`
	MembershipID string `json:"membershipId,omitempty"`
}

// SwitchResult is either a new token pair with user, or a membership list.
type SwitchResult struct {
	Success      bool         `json:"success"`
	Token        string       `json:"token,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *User        `json:"user,omitempty"`
	Message      string       `json:"message,omitempty"`
	MultiTenant  bool         `json:"multiTenant,omitempty"`
	Memberships  []Membership `json:"memberships,omitempty"`
}

// TokenPair is the refresh endpoint response.
type TokenPair struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// StatusMessage is the generic {status, success, message} acknowledgement.
type StatusMessage struct {
	Status  bool   `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
