package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/middleware"
	"github.com/yourorg/imnotdurnk/internal/models"
)

// UserService is what the user endpoints need from the service layer.
type UserService interface {
	SignUp(ctx context.Context, dto models.UserDTO) error
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*models.AuthDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDTO, error)
	SendTemporaryPassword(ctx context.Context, email string) error
	GetProfile(ctx context.Context, token string) (*models.UserDTO, error)
	UpdateProfile(ctx context.Context, token string, dto models.UserDTO) (*models.UserDTO, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SignUp handles POST /users/signup.
func (h *UserHandler) SignUp(c *fiber.Ctx) error {
	var dto models.UserDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	if err := h.svc.SignUp(c.UserContext(), dto); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewResponse(fiber.StatusCreated, "signup success"))
}

// SendVerificationCode handles POST /users/signup/verify?email.
func (h *UserHandler) SendVerificationCode(c *fiber.Ctx) error {
	if err := h.svc.SendVerificationCode(c.UserContext(), c.Query("email")); err != nil {
		return err
	}
	return ok(c, "verification code sent")
}

// VerifyCode handles POST /users/signup/verify-code?email&code.
func (h *UserHandler) VerifyCode(c *fiber.Ctx) error {
	if err := h.svc.VerifyCode(c.UserContext(), c.Query("email"), c.Query("code")); err != nil {
		return err
	}
	return ok(c, "email verified")
}

// Login handles GET /users/login?email&password. The refresh token goes
// into an HttpOnly cookie and the access token into the Authorization
// response header.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	tokens, err := h.svc.Login(c.UserContext(), c.Query("email"), c.Query("password"))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    tokens.RefreshToken.Token,
		Path:     "/",
		MaxAge:   tokens.RefreshToken.MaxAgeSeconds(),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	c.Set(fiber.HeaderAuthorization, "Bearer "+tokens.AccessToken.Token)
	return c.Status(fiber.StatusCreated).JSON(models.NewResponse(fiber.StatusCreated, "login success"))
}

// Refresh handles POST /users/refresh using the refresh token cookie.
func (h *UserHandler) Refresh(c *fiber.Ctx) error {
	access, err := h.svc.Refresh(c.UserContext(), refreshToken(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderAuthorization, "Bearer "+access.Token)
	return single(c, fiber.StatusOK, "token refreshed", access)
}

// SendTemporaryPassword handles GET /users/login/find-password?email.
func (h *UserHandler) SendTemporaryPassword(c *fiber.Ctx) error {
	if err := h.svc.SendTemporaryPassword(c.UserContext(), c.Query("email")); err != nil {
		return err
	}
	return ok(c, "temporary password sent")
}

// UpdateProfile handles PUT /users/profile.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var dto models.UserDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	if _, err := h.svc.UpdateProfile(c.UserContext(), accessToken(c), dto); err != nil {
		return err
	}
	return ok(c, "profile updated")
}

// GetProfile handles GET /users/profile.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.svc.GetProfile(c.UserContext(), accessToken(c))
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "profile loaded", profile)
}

// Logout handles GET /users/logout and expires the refresh token cookie.
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.UserContext(), accessToken(c), refreshToken(c)); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return ok(c, "logout success")
}
