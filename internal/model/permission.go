package model

import "fmt"

// Permission is a capability tag gating one feature area.
type Permission string

const (
	PermDashboard Permission = "dashboard"
	PermInbound   Permission = "inbound"
	PermOutbound  Permission = "outbound"
	PermInventory Permission = "inventory"
	PermAdmin     Permission = "admin"
)

// PermissionInfo pairs a permission with the label shown in the admin view.
type PermissionInfo struct {
	Code  Permission `json:"code"`
	Label string     `json:"label"`
}

// AllPermissions is the fixed vocabulary, in display order.
var AllPermissions = []PermissionInfo{
	{Code: PermDashboard, Label: "Dashboard"},
	{Code: PermInbound, Label: "Inbound"},
	{Code: PermOutbound, Label: "Outbound"},
	{Code: PermInventory, Label: "Inventory"},
	{Code: PermAdmin, Label: "Admin Panel"},
}

func (p Permission) Valid() bool {
	for _, info := range AllPermissions {
		if info.Code == p {
			return true
		}
	}
	return false
}

// ParsePermissions converts raw tags into permissions, dropping duplicates.
// Tags outside the vocabulary are an error.
func ParsePermissions(tags []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(tags))
	seen := make(map[Permission]bool, len(tags))
	for _, tag := range tags {
		p := Permission(tag)
		if !p.Valid() {
			return nil, fmt.Errorf("unknown permission %q", tag)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		perms = append(perms, p)
	}
	return perms, nil
}

// FullPermissionSet returns every permission in the vocabulary.
func FullPermissionSet() []Permission {
	perms := make([]Permission, len(AllPermissions))
	for i, info := range AllPermissions {
		perms[i] = info.Code
	}
	return perms
}
