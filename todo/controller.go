package todo

import (
	"github.com/gofiber/fiber/v2"

	auth "github.com/goliatone/go-todo-auth"
)

// Controller serves the /todo routes
type Controller struct {
	todos *Service
	key   string
}

func NewController(todos *Service) *Controller {
	return &Controller{
		todos: todos,
		key:   auth.DefaultContextKey,
	}
}

// WithContextKey sets the locals key the guard stores identities under
func (t *Controller) WithContextKey(key string) *Controller {
	if key != "" {
		t.key = key
	}
	return t
}

// RegisterRoutes mounts the controller on r, which must already be guarded
func (t *Controller) RegisterRoutes(r fiber.Router) {
	r.Post("/", t.Create)
	r.Get("/", t.List)
	r.Get("/:id", t.Get)
	r.Put("/:id", t.Update)
	r.Delete("/:id", t.Delete)
}

func (t *Controller) Create(c *fiber.Ctx) error {
	actor, err := auth.MustIdentity(c, t.key)
	if err != nil {
		return err
	}

	var req CreateTodoMessage
	if err := auth.BindBody(c, &req); err != nil {
		return err
	}

	record, err := t.todos.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (t *Controller) List(c *fiber.Ctx) error {
	actor, err := auth.MustIdentity(c, t.key)
	if err != nil {
		return err
	}

	records, err := t.todos.List(c.UserContext(), actor)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (t *Controller) Get(c *fiber.Ctx) error {
	actor, err := auth.MustIdentity(c, t.key)
	if err != nil {
		return err
	}

	id, err := auth.ParamID(c, "id")
	if err != nil {
		return err
	}

	record, err := t.todos.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

func (t *Controller) Update(c *fiber.Ctx) error {
	actor, err := auth.MustIdentity(c, t.key)
	if err != nil {
		return err
	}

	id, err := auth.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateTodoMessage
	if err := auth.BindBody(c, &req); err != nil {
		return err
	}

	record, err := t.todos.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

func (t *Controller) Delete(c *fiber.Ctx) error {
	actor, err := auth.MustIdentity(c, t.key)
	if err != nil {
		return err
	}

	id, err := auth.ParamID(c, "id")
	if err != nil {
		return err
	}

	record, err := t.todos.Delete(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.JSON(record)
}
