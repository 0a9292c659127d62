package model

import "time"

// UserQuery filters and paginates user listings. Zero values mean "no
// filter"; IsActive uses a pointer because false is a meaningful filter.
type UserQuery struct {
	Search   string // matches email, first or last name (substring)
	Role     Role   // empty = any role
	IsActive *bool
	Page     int
	Limit    int
}

// AuditQuery filters and paginates audit-log listings.
type AuditQuery struct {
	ActorUserID uint64 // 0 = any actor
	Action      AuditAction
	From        time.Time
	To          time.Time
	Page        int
	Limit       int
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPageMeta normalizes page/limit and computes the page count.
func NewPageMeta(total, page, limit int) PageMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	Users struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
		Admins   int `json:"admins"`
		Users    int `json:"users"`
		Viewers  int `json:"viewers"`
	} `json:"users"`
	RecentActivity struct {
		NewUsersThisWeek  int `json:"new_users_this_week"`
		NewUsersThisMonth int `json:"new_users_this_month"`
	} `json:"recent_activity"`
	GeneratedAt time.Time `json:"generated_at"`
}
