package rest

import (
	"context"
	"strconv"

	"campusbot/app/service/catalog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// resource serves CRUD routes for one catalog table.
type resource[T any] struct {
	repo     *catalog.Repo[T]
	validate *validator.Validate
	// overrides repo.Delete when set
	remove func(ctx context.Context, id int64) error
}

func registerResource[T any](router fiber.Router, path string, r *resource[T]) {
	group := router.Group(path)

	group.Get("/", r.list)
	group.Post("/", r.create)
	group.Get("/:id", r.get)
	group.Put("/:id", r.update)
	group.Delete("/:id", r.delete)
}

func (r *resource[T]) list(c *fiber.Ctx) error {
	items, err := r.repo.List(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(items)
}

func (r *resource[T]) get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	item, err := r.repo.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func (r *resource[T]) create(c *fiber.Ctx) error {
	item, err := r.parseBody(c)
	if err != nil {
		return err
	}

	if err := r.repo.Create(c.UserContext(), item); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (r *resource[T]) update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	item, err := r.parseBody(c)
	if err != nil {
		return err
	}

	if err := r.repo.Update(c.UserContext(), id, item); err != nil {
		return err
	}

	return c.JSON(item)
}

func (r *resource[T]) delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	remove := r.repo.Delete
	if r.remove != nil {
		remove = r.remove
	}

	if err := remove(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *resource[T]) parseBody(c *fiber.Ctx) (*T, error) {
	var item T
	if err := c.BodyParser(&item); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := r.validate.Struct(&item); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return &item, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}

	return id, nil
}
