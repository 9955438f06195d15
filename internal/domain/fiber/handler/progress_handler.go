package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fadilmartias/jobmarket/internal/dto"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

type ProgressHandler struct {
	uc *usecase.ProgressUsecase
}

func NewProgressHandler(uc *usecase.ProgressUsecase) *ProgressHandler {
	return &ProgressHandler{uc: uc}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Put("/sessions/:id/steps/:stepId", h.ToggleStep)
	r.Put("/sessions/:id/checklist/:itemId", h.ToggleChecklistItem)
	r.Get("/sessions/:id/completion", h.Completion)
	r.Get("/sessions/:id/progress", h.Rows)
}

func (h *ProgressHandler) ToggleStep(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	stepID, err := uuidParam(c, "stepId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.ToggleStepRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	completion, err := h.uc.ToggleStep(c.UserContext(), middleware.ActorFrom(c), sessionID, stepID, req.Completed)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Step updated", Data: completion})
}

func (h *ProgressHandler) ToggleChecklistItem(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.ToggleChecklistItemRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	completion, err := h.uc.ToggleChecklistItem(c.UserContext(), middleware.ActorFrom(c), sessionID, itemID, req.Checked)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Checklist item updated", Data: completion})
}

func (h *ProgressHandler) Completion(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	completion, err := h.uc.Completion(c.UserContext(), sessionID)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success get completion", Data: completion})
}

func (h *ProgressHandler) Rows(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	steps, items, err := h.uc.Rows(c.UserContext(), sessionID)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get progress",
		Data:    fiber.Map{"steps": steps, "checklist_items": items},
	})
}
