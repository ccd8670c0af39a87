package rest

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File is required")
	}

	item, err := s.uploadSvc.Save(c.UserContext(), header)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) handleListUploads(c *fiber.Ctx) error {
	items, err := s.uploadSvc.List(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(items)
}

func (s *Server) handleGetUpload(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	item, err := s.uploadSvc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func (s *Server) handleDownloadUpload(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	item, path, err := s.uploadSvc.Path(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Download(path, item.OriginalName)
}
