package controller

import (
	"ecom-support-be/internal/dto"
	"ecom-support-be/internal/pkg/serverutils"
	"ecom-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPassageController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
}

type passageController struct {
	service service.IPassageService
}

func NewPassageController(service service.IPassageService) IPassageController {
	return &passageController{service: service}
}

func (c *passageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/passage/v1")
	h.Post("", c.Index)
}

func (c *passageController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexPassageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Index(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success index passage", res))
}
