package accounts

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the account lifecycle over a JSON API. Every route
// delegates to a command handler or the directory query; the controller only
// binds, validates, and translates errors into the response envelope.
type HTTPController struct {
	register  *RegisterUserHandler
	login     *LoginUserHandler
	confirm   *ConfirmAccountHandler
	change    *ChangePasswordHandler
	forgot    *ForgotPasswordHandler
	reset     *ResetPasswordHandler
	refresh   *RefreshTokenHandler
	update    *UpdateUserHandler
	retire    *RetireUserHandler
	purge     *PurgeUserHandler
	directory *DirectoryQuery
	logger    Logger
}

// HTTPControllerOption mutates the controller during construction.
type HTTPControllerOption func(*HTTPController) *HTTPController

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.logger = logger
		}
		return c
	}
}

// NewHTTPController wires every handler against the shared dependencies.
func NewHTTPController(repo RepositoryManager, tokens TokenService, cfg Config, mailer Mailer, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		register:  NewRegisterUserHandler(repo, tokens, cfg).WithMailer(mailer),
		login:     NewLoginUserHandler(repo, tokens),
		confirm:   NewConfirmAccountHandler(repo, tokens),
		change:    NewChangePasswordHandler(repo),
		forgot:    NewForgotPasswordHandler(repo, tokens, cfg).WithMailer(mailer),
		reset:     NewResetPasswordHandler(repo, tokens),
		refresh:   NewRefreshTokenHandler(tokens),
		update:    NewUpdateUserHandler(repo),
		retire:    NewRetireUserHandler(repo),
		purge:     NewPurgeUserHandler(repo),
		directory: NewDirectoryQuery(repo.Users()),
		logger:    defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// RegisterRoutes registers the account lifecycle routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/register", c.Register)
	group.Post("/login", c.Login)
	group.Post("/confirm-account", c.ConfirmAccount)
	group.Post("/change-password", c.ChangePassword)
	group.Post("/forgot-password", c.ForgotPassword)
	group.Post("/reset-password", c.ResetPassword)
	group.Post("/verify-token", c.VerifyToken)
	group.Get("/users", c.ListUsers)
	group.Get("/users/:id", c.GetUser)
	group.Put("/users/:id", c.UpdateUser)
	group.Delete("/users/:id", c.RetireUser)
	group.Delete("/users/:id/purge", c.PurgeUser)
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *RegisterUserResponse
	msg := RegisterUserMessage{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		Role:     UserRole(payload.Role),
		OnResponse: func(r *RegisterUserResponse) {
			res = r
		},
	}

	if err := c.register.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, res)
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *LoginUserResponse
	msg := LoginUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(r *LoginUserResponse) {
			res = r
		},
	}

	if err := c.login.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

// TokenPayload carries a bare token body
type TokenPayload struct {
	Token string `json:"token"`
}

// Validate will run validation rules
func (r TokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (c *HTTPController) ConfirmAccount(ctx router.Context) error {
	payload := new(TokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *PublicUser
	msg := ConfirmAccountMessage{
		Token: payload.Token,
		OnResponse: func(u *PublicUser) {
			res = u
		},
	}

	if err := c.confirm.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

// ChangePasswordPayload is the password change body
type ChangePasswordPayload struct {
	UserID      string `json:"user_id"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUID),
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

func (c *HTTPController) ChangePassword(ctx router.Context) error {
	payload := new(ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	msg := ChangePasswordMessage{
		UserID:      payload.UserID,
		OldPassword: payload.OldPassword,
		NewPassword: payload.NewPassword,
	}

	if err := c.change.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "password changed",
	})
}

// ForgotPasswordPayload is the reset request body
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (c *HTTPController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *ForgotPasswordResponse
	msg := ForgotPasswordMessage{
		Email: payload.Email,
		OnResponse: func(r *ForgotPasswordResponse) {
			res = r
		},
	}

	if err := c.forgot.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

// ResetPasswordPayload is the reset finalization body
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (c *HTTPController) ResetPassword(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	msg := ResetPasswordMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	if err := c.reset.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "password reset",
	})
}

func (c *HTTPController) VerifyToken(ctx router.Context) error {
	payload := new(TokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *RefreshTokenResponse
	msg := RefreshTokenMessage{
		Token: payload.Token,
		OnResponse: func(r *RefreshTokenResponse) {
			res = r
		},
	}

	if err := c.refresh.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

func (c *HTTPController) ListUsers(ctx router.Context) error {
	page := queryInt(ctx, "page", 1)
	limit := queryInt(ctx, "limit", 10)

	res, err := c.directory.ListUsers(ctx.Context(), page, limit)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

func (c *HTTPController) GetUser(ctx router.Context) error {
	id := ctx.Param("id")

	res, err := c.directory.GetUser(ctx.Context(), id)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

// UpdateUserPayload is the partial profile update body
type UpdateUserPayload struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// Validate will run validation rules
func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Length(8, 100)),
	)
}

func (c *HTTPController) UpdateUser(ctx router.Context) error {
	payload := new(UpdateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	var res *UserProfile
	msg := UpdateUserMessage{
		UserID:   ctx.Param("id"),
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		OnResponse: func(p *UserProfile) {
			res = p
		},
	}

	if err := c.update.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

func (c *HTTPController) RetireUser(ctx router.Context) error {
	msg := RetireUserMessage{UserID: ctx.Param("id")}

	if err := c.retire.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "retired",
	})
}

func (c *HTTPController) PurgeUser(ctx router.Context) error {
	msg := PurgeUserMessage{UserID: ctx.Param("id")}

	if err := c.purge.Execute(ctx.Context(), msg); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "purged",
	})
}

func (c *HTTPController) badPayload(ctx router.Context, err error) error {
	c.logger.Error("failed to parse payload: %v", err)
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"statusCode": router.StatusBadRequest,
		"message":    "failed to parse request body",
	})
}

func (c *HTTPController) invalidPayload(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"statusCode": router.StatusBadRequest,
		"message":    err.Error(),
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	status, message := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("request failed: %v", err)
	}
	return ctx.JSON(status, map[string]any{
		"statusCode": status,
		"message":    message,
	})
}

func queryInt(ctx router.Context, key string, def int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return n
}
