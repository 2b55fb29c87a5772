package domain

import "fmt"

// Role enumerates the mutually exclusive account roles.
type Role string

const (
	RoleDonor            Role = "donor"
	RoleRecipient        Role = "recipient"
	RoleShelterVolunteer Role = "shelter_volunteer"
)

// Roles lists every supported role.
var Roles = []Role{RoleDonor, RoleRecipient, RoleShelterVolunteer}

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", Invalid("user_type", fmt.Sprintf("unknown role %q", s))
}

// User is an authenticated account. The role is fixed at registration.
type User struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"user_type"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Session is the persisted sign-in state.
type Session struct {
	Token      string
	User       User
	RememberMe bool
}

// Capabilities describes what a role may do and see.
type Capabilities struct {
	CanPost         bool
	CanReserve      bool
	CanEditOwn      bool
	CanChooseFilter bool
	// Categories restricts the visible categories; empty means all.
	Categories []Category
}

var capabilities = map[Role]Capabilities{
	RoleDonor: {
		CanPost:         true,
		CanEditOwn:      true,
		CanChooseFilter: true,
	},
	RoleRecipient: {
		CanReserve: true,
		Categories: []Category{CategoryCleanFood},
	},
	RoleShelterVolunteer: {
		CanReserve: true,
		Categories: []Category{CategoryWasteFood},
	},
}

// CapabilitiesFor looks up the capability set of a role. Unknown roles get none.
func CapabilitiesFor(role Role) Capabilities {
	return capabilities[role]
}

// Sees reports whether a donation category is visible under these capabilities.
func (c Capabilities) Sees(category Category) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, allowed := range c.Categories {
		if allowed == category {
			return true
		}
	}
	return false
}
