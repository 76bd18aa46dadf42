package repository

import "github.com/xeppelin/user-service/internal/domain"

const (
	// DefaultPageSize applies when a request carries no explicit size.
	DefaultPageSize = 20
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 100
)

// PageRequest describes a zero-based page request.
type PageRequest struct {
	Number int
	Size   int
}

// Normalized clamps the request into valid bounds.
func (p PageRequest) Normalized() PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// UserPage is one page of users plus pagination metadata.
type UserPage struct {
	Users         []domain.User
	Size          int
	Number        int
	TotalElements int64
	TotalPages    int64
}

// NewUserPage assembles a page from its items and the total row count.
func NewUserPage(users []domain.User, req PageRequest, total int64) UserPage {
	totalPages := int64(0)
	if req.Size > 0 {
		totalPages = (total + int64(req.Size) - 1) / int64(req.Size)
	}
	return UserPage{
		Users:         users,
		Size:          req.Size,
		Number:        req.Number,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role   *domain.UserRole
	Status *domain.UserStatus
}
