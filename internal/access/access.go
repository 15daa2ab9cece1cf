// Package access maps pages to the permission each one requires.
package access

import "go-ombor/internal/model"

// Page identifies one feature area of the application.
type Page string

const (
	PageDashboard  Page = "dashboard"
	PageInbound    Page = "inbound"
	PageOutbound   Page = "outbound"
	PageInventory  Page = "inventory"
	PageAdminUsers Page = "admin_users"
	PageNone       Page = ""
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Page       Page             `json:"page"`
	Label      string           `json:"label"`
	Permission model.Permission `json:"permission"`
}

// menu is ordered as the sidebar shows it.
var menu = []MenuItem{
	{Page: PageDashboard, Label: "Dashboard", Permission: model.PermDashboard},
	{Page: PageInbound, Label: "Inbound", Permission: model.PermInbound},
	{Page: PageOutbound, Label: "Outbound", Permission: model.PermOutbound},
	{Page: PageInventory, Label: "Products", Permission: model.PermInventory},
	{Page: PageAdminUsers, Label: "Admin Panel", Permission: model.PermAdmin},
}

// Required returns the permission guarding page. Unknown pages report false.
func Required(page Page) (model.Permission, bool) {
	for _, item := range menu {
		if item.Page == page {
			return item.Permission, true
		}
	}
	return "", false
}

func holds(perms []model.Permission, p model.Permission) bool {
	for _, held := range perms {
		if held == p {
			return true
		}
	}
	return false
}

// Allowed reports whether perms grant access to page.
func Allowed(perms []model.Permission, page Page) bool {
	required, ok := Required(page)
	if !ok {
		return false
	}
	return holds(perms, required)
}

// Menu returns the sidebar entries perms can open.
func Menu(perms []model.Permission) []MenuItem {
	visible := []MenuItem{}
	for _, item := range menu {
		if holds(perms, item.Permission) {
			visible = append(visible, item)
		}
	}
	return visible
}

// Landing picks the page to open after sign-in: the dashboard when permitted,
// otherwise the page of the first permission held.
func Landing(perms []model.Permission) Page {
	if holds(perms, model.PermDashboard) {
		return PageDashboard
	}
	for _, p := range perms {
		for _, item := range menu {
			if item.Permission == p {
				return item.Page
			}
		}
	}
	return PageNone
}
