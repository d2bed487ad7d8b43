package todo

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	auth "github.com/goliatone/go-todo-auth"
)

const maxTitleLength = 50

// CreateTodoMessage is the payload for a new todo
type CreateTodoMessage struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsClosed    bool    `json:"isClosed"`
}

func (m CreateTodoMessage) Type() string { return "todo.create" }

func (m CreateTodoMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

// UpdateTodoMessage changes the fields that are set. Version must match the
// stored version.
type UpdateTodoMessage struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsClosed    *bool   `json:"isClosed"`
	Version     int     `json:"version"`
}

func (m UpdateTodoMessage) Type() string { return "todo.update" }

func (m UpdateTodoMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		validation.Field(&m.Version, validation.Required, validation.Min(1)),
	)
}

// Service holds the todo operations. Only the creator of a todo or an
// admin may read or change it.
type Service struct {
	repo   Repository
	logger auth.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) WithLogger(l auth.Logger) *Service {
	s.logger = l
	return s
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, msg CreateTodoMessage) (*Todo, error) {
	if err := auth.Authorize(actor); err != nil {
		return nil, err
	}

	msg.Title = strings.TrimSpace(msg.Title)
	if err := msg.Validate(); err != nil {
		return nil, auth.ValidationError(err)
	}

	record, err := s.repo.Create(ctx, &Todo{
		Title:       msg.Title,
		Description: msg.Description,
		IsClosed:    msg.IsClosed,
		CreatedByID: actor.ID,
		UpdatedByID: &actor.ID,
	})
	if err != nil {
		return nil, auth.ErrInternal.WithMessage("failed to create todo").Wrap(err)
	}

	auth.LoggerFor(ctx, s.logger).Debug("todo created", "todo_id", record.ID, "actor_id", actor.ID)
	return record, nil
}

// List returns every todo to admins and the actor's own todos otherwise
func (s *Service) List(ctx context.Context, actor *auth.Identity) ([]*Todo, error) {
	if err := auth.Authorize(actor); err != nil {
		return nil, err
	}

	var owner *int64
	if !actor.HasRole(auth.RoleAdmin) {
		owner = &actor.ID
	}

	records, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, auth.ErrInternal.WithMessage("failed to list todos").Wrap(err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Identity, id int64) (*Todo, error) {
	return s.owned(ctx, actor, id)
}

func (s *Service) Update(ctx context.Context, actor *auth.Identity, id int64, msg UpdateTodoMessage) (*Todo, error) {
	record, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if msg.Title != nil {
		title := strings.TrimSpace(*msg.Title)
		msg.Title = &title
	}
	if err := msg.Validate(); err != nil {
		return nil, auth.ValidationError(err)
	}

	columns := make([]string, 0, 3)
	if msg.Title != nil {
		record.Title = *msg.Title
		columns = append(columns, "title")
	}
	if msg.Description != nil {
		record.Description = msg.Description
		columns = append(columns, "description")
	}
	if msg.IsClosed != nil {
		record.IsClosed = *msg.IsClosed
		columns = append(columns, "is_closed")
	}
	record.Version = msg.Version
	record.UpdatedByID = &actor.ID

	updated, err := s.repo.Update(ctx, record, columns...)
	if err != nil {
		return nil, err
	}

	auth.LoggerFor(ctx, s.logger).Debug("todo updated", "todo_id", updated.ID, "version", updated.Version)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id int64) (*Todo, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	record, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	auth.LoggerFor(ctx, s.logger).Info("todo deleted", "todo_id", record.ID, "actor_id", actor.ID)
	return record, nil
}

// owned loads todo id and checks actor may access it
func (s *Service) owned(ctx context.Context, actor *auth.Identity, id int64) (*Todo, error) {
	if err := auth.Authorize(actor); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(actor, auth.RequireOwner(record.CreatedByID)); err != nil {
		return nil, err
	}
	return record, nil
}
