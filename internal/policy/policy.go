// Package policy contains the pure access-control decision tables: upload
// entitlements per role, read/delete access checks, and the listing scope
// pushed down to the file catalog. No I/O happens here.
package policy

import (
	"strings"

	"docstore/internal/model"
)

// Entitlement describes what a role may upload.
type Entitlement struct {
	Extensions   map[string]bool
	MaxSize      int64
	Visibilities map[model.Visibility]bool
}

const (
	mib = 1 << 20
)

// entitlements is the role-indexed upload table. Keep every role listed;
// EntitlementFor falls back to the USER row for unknown roles so a bad role
// value can never widen permissions.
var entitlements = map[model.Role]Entitlement{
	model.RoleUser: {
		Extensions:   map[string]bool{"pdf": true},
		MaxSize:      10 * mib,
		Visibilities: map[model.Visibility]bool{model.VisibilityPrivate: true},
	},
	model.RoleManager: {
		Extensions: map[string]bool{"pdf": true, "doc": true, "docx": true},
		MaxSize:    50 * mib,
		Visibilities: map[model.Visibility]bool{
			model.VisibilityPrivate:    true,
			model.VisibilityDepartment: true,
			model.VisibilityPublic:     true,
		},
	},
	model.RoleAdmin: {
		Extensions: map[string]bool{"pdf": true, "doc": true, "docx": true},
		MaxSize:    100 * mib,
		Visibilities: map[model.Visibility]bool{
			model.VisibilityPrivate:    true,
			model.VisibilityDepartment: true,
			model.VisibilityPublic:     true,
		},
	},
}

// EntitlementFor returns the upload entitlement for a role.
func EntitlementFor(role model.Role) Entitlement {
	if e, ok := entitlements[role]; ok {
		return e
	}
	return entitlements[model.RoleUser]
}

// Extension returns the lower-cased substring after the last dot of name.
// A name without a dot yields the whole name, which the entitlement table
// will almost always reject. That is accepted behavior, not a special case.
func Extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// CanAccess reports whether user may read or download file.
func CanAccess(file *model.File, user *model.User) bool {
	if user.Role == model.RoleAdmin {
		return true
	}
	switch file.Visibility {
	case model.VisibilityPublic:
		return true
	case model.VisibilityDepartment:
		return user.Role == model.RoleManager || user.Department == file.Department
	case model.VisibilityPrivate:
		return file.OwnerID == user.ID
	}
	return false
}

// CanDelete reports whether user may delete file. This is deliberately
// independent of visibility: a manager may delete a private file in their
// own department even though they cannot read it.
func CanDelete(file *model.File, user *model.User) bool {
	return user.Role == model.RoleAdmin ||
		file.OwnerID == user.ID ||
		(user.Role == model.RoleManager && user.Department == file.Department)
}

// ListScope is the listing predicate for one user, compiled by the file
// catalog into a single WHERE clause instead of post-filtering a full scan.
type ListScope struct {
	// All short-circuits every other field (admins).
	All bool
	// AllDepartments grants DEPARTMENT-visible rows regardless of
	// department (managers).
	AllDepartments bool
	UserID         int64
	Department     string
}

// ScopeFor derives the listing scope for a user.
func ScopeFor(user *model.User) ListScope {
	switch user.Role {
	case model.RoleAdmin:
		return ListScope{All: true}
	case model.RoleManager:
		return ListScope{AllDepartments: true, UserID: user.ID, Department: user.Department}
	default:
		return ListScope{UserID: user.ID, Department: user.Department}
	}
}
