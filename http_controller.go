package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// SignInRequest is the sign in payload
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse is returned by a successful sign in
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateUserAdminRequest toggles the admin flag of a user
type UpdateUserAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

func (r UpdateUserAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsAdmin, validation.NotNil),
	)
}

// AuthController serves the /auth routes
type AuthController struct {
	auther *Auther
	users  *UserService
	key    string
}

func NewAuthController(auther *Auther, users *UserService) *AuthController {
	return &AuthController{
		auther: auther,
		users:  users,
		key:    DefaultContextKey,
	}
}

// WithContextKey sets the locals key the guard stores identities under
func (a *AuthController) WithContextKey(key string) *AuthController {
	if key != "" {
		a.key = key
	}
	return a
}

// RegisterRoutes mounts the controller on r. protected runs before the
// profile handler, normally the guard middleware.
func (a *AuthController) RegisterRoutes(r fiber.Router, protected ...fiber.Handler) {
	r.Post("/sign-in", a.SignIn)
	r.Post("/register", a.Register)

	handlers := append(protected, a.Profile)
	r.Get("/profile", handlers...)
}

func (a *AuthController) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return ValidationError(err)
	}

	token, err := a.auther.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{Token: token})
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterUserMessage
	if err := bindBody(c, &req); err != nil {
		return err
	}

	identity, err := a.users.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(identity)
}

func (a *AuthController) Profile(c *fiber.Ctx) error {
	identity, err := MustIdentity(c, a.key)
	if err != nil {
		return err
	}
	return c.JSON(identity)
}

// UserController serves the /user routes
type UserController struct {
	users *UserService
	key   string
}

func NewUserController(users *UserService) *UserController {
	return &UserController{
		users: users,
		key:   DefaultContextKey,
	}
}

func (u *UserController) WithContextKey(key string) *UserController {
	if key != "" {
		u.key = key
	}
	return u
}

// RegisterRoutes mounts the controller on r, which must already be guarded
func (u *UserController) RegisterRoutes(r fiber.Router) {
	r.Post("/", u.Create)
	r.Get("/", u.List)
	r.Get("/:id", u.Get)
	r.Patch("/:id", u.Update)
	r.Patch("/:id/admin", u.SetAdmin)
	r.Delete("/:id", u.Delete)
}

func (u *UserController) Create(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	var req RegisterUserMessage
	if err := bindBody(c, &req); err != nil {
		return err
	}

	identity, err := u.users.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(identity)
}

func (u *UserController) List(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	records, err := u.users.List(c.UserContext(), actor)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (u *UserController) Get(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	identity, err := u.users.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.JSON(identity)
}

func (u *UserController) Update(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserMessage
	if err := bindBody(c, &req); err != nil {
		return err
	}

	identity, err := u.users.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}

	return c.JSON(identity)
}

func (u *UserController) SetAdmin(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserAdminRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return ValidationError(err)
	}

	identity, err := u.users.SetAdmin(c.UserContext(), actor, id, *req.IsAdmin)
	if err != nil {
		return err
	}

	return c.JSON(identity)
}

func (u *UserController) Delete(c *fiber.Ctx) error {
	actor, err := MustIdentity(c, u.key)
	if err != nil {
		return err
	}

	id, err := ParamID(c, "id")
	if err != nil {
		return err
	}

	identity, err := u.users.Delete(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.JSON(identity)
}
