package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/xeppelin/user-service/internal/api/dto"
	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/repository"
	"github.com/xeppelin/user-service/internal/service"
	apperrors "github.com/xeppelin/user-service/pkg/util"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users    service.UserManagement
	validate *validator.Validate
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users service.UserManagement) *UsersHandler {
	return &UsersHandler{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create handles POST /api/v1/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	req, err := h.parseUserRequest(c)
	if err != nil {
		return err
	}

	candidate, err := req.ToDomain()
	if err != nil {
		return apperrors.MapError(err)
	}

	created, err := h.users.Create(c.UserContext(), candidate)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(created)})
}

// GetByID handles GET /api/v1/users/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByEmail handles GET /api/v1/users/by-email?email=...
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return apperrors.NewValidationError("email query parameter is required", nil)
	}

	user, err := h.users.GetByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByPhoneNumber handles GET /api/v1/users/by-phone?phone=...
func (h *UsersHandler) GetByPhoneNumber(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		return apperrors.NewValidationError("phone query parameter is required", nil)
	}

	user, err := h.users.GetByPhoneNumber(c.UserContext(), phone)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /api/v1/users with page/size and optional role/status
// filters.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	req := repository.PageRequest{
		Number: c.QueryInt("page", 0),
		Size:   c.QueryInt("size", repository.DefaultPageSize),
	}

	filter := repository.ListFilter{}
	if raw := c.Query("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return apperrors.MapError(err)
		}
		filter.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return apperrors.MapError(err)
		}
		filter.Status = &status
	}

	page, err := h.users.List(c.UserContext(), req, filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewPagedResponse(page)})
}

// Update handles PUT /api/v1/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	req, err := h.parseUserRequest(c)
	if err != nil {
		return err
	}

	incoming, err := req.ToDomain()
	if err != nil {
		return apperrors.MapError(err)
	}

	updated, err := h.users.Update(c.UserContext(), id, incoming)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(updated)})
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(http.StatusNoContent)
}

func (h *UsersHandler) parseUserRequest(c *fiber.Ctx) (dto.UserRequest, error) {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.UserRequest{}, apperrors.NewValidationError("invalid request payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return dto.UserRequest{}, apperrors.NewValidationError("invalid request payload", validationDetails(err))
	}
	return req, nil
}

func parseUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid user id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return details
	}
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
