package dto

import (
	"time"

	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/repository"
)

// AddressRequest carries address fields for create/update payloads.
type AddressRequest struct {
	Line1       string `json:"line1" validate:"required"`
	Line2       string `json:"line2"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required"`
	Country     string `json:"country" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// UserRequest carries user fields for create/update payloads.
type UserRequest struct {
	Name    string          `json:"name" validate:"required"`
	Email   string          `json:"email" validate:"required,email"`
	Role    string          `json:"role" validate:"required,oneof=ADMIN ORGANIZER STAFF ATTENDEE"`
	Status  string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	Address *AddressRequest `json:"address" validate:"omitempty"`
}

// ToDomain maps the request onto a candidate aggregate. Identity fields are
// left zero; the service assigns or preserves them.
func (r UserRequest) ToDomain() (domain.User, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return domain.User{}, err
	}

	status := domain.StatusActive
	if r.Status != "" {
		status, err = domain.ParseStatus(r.Status)
		if err != nil {
			return domain.User{}, err
		}
	}

	user := domain.User{
		Name:   r.Name,
		Email:  r.Email,
		Role:   role,
		Status: status,
	}
	if r.Address != nil {
		user.Address = &domain.Address{
			Line1:       r.Address.Line1,
			Line2:       r.Address.Line2,
			City:        r.Address.City,
			State:       r.Address.State,
			PostalCode:  r.Address.PostalCode,
			Country:     r.Address.Country,
			PhoneNumber: r.Address.PhoneNumber,
		}
	}
	return user, nil
}

// AddressResponse is the wire shape of an owned address.
type AddressResponse struct {
	ID               string `json:"id"`
	Line1            string `json:"line1"`
	Line2            string `json:"line2,omitempty"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postalCode"`
	Country          string `json:"country"`
	PhoneNumber      string `json:"phoneNumber"`
	FormattedAddress string `json:"formattedAddress"`
}

// UserResponse is the wire shape of a user aggregate.
type UserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Status    string           `json:"status"`
	Address   *AddressResponse `json:"address,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewUserResponse maps a domain aggregate onto the wire shape.
func NewUserResponse(user domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Address != nil {
		resp.Address = &AddressResponse{
			ID:               user.Address.ID.String(),
			Line1:            user.Address.Line1,
			Line2:            user.Address.Line2,
			City:             user.Address.City,
			State:            user.Address.State,
			PostalCode:       user.Address.PostalCode,
			Country:          user.Address.Country,
			PhoneNumber:      user.Address.PhoneNumber,
			FormattedAddress: user.Address.Formatted(),
		}
	}
	return resp
}

// PageMetadata carries pagination totals.
type PageMetadata struct {
	Size          int64 `json:"size"`
	Number        int64 `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

// PagedResponse wraps one page of users.
type PagedResponse struct {
	Content  []UserResponse `json:"content"`
	Metadata PageMetadata   `json:"metadata"`
}

// NewPagedResponse maps a repository page onto the wire shape.
func NewPagedResponse(page repository.UserPage) PagedResponse {
	content := make([]UserResponse, 0, len(page.Users))
	for _, user := range page.Users {
		content = append(content, NewUserResponse(user))
	}
	return PagedResponse{
		Content: content,
		Metadata: PageMetadata{
			Size:          int64(page.Size),
			Number:        int64(page.Number),
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages,
		},
	}
}
