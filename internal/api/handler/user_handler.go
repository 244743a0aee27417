package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

// UserHandler serves the authenticated account lookup routes.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// userResponse is the public view of an account. Credential and token fields
// are never exposed.
type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Image        string    `json:"image"`
	CoverPhoto   string    `json:"cover_photo"`
	RegisteredAt time.Time `json:"registered_at"`
}

// GetUsers lists all registered users. Admin only.
//
// @Summary      List registered users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/get_users [get]
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetSingleUser returns one user by id.
//
// @Summary      Get a single user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   query     string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/get_single_user [get]
func (h *UserHandler) GetSingleUser(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "id is required"})
	}

	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Image:        u.ImageURL,
		CoverPhoto:   u.CoverPhotoURL,
		RegisteredAt: u.RegistrationTimestamp,
	}
}
