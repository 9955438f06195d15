package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fadilmartias/jobmarket/internal/dto"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

type EvaluationHandler struct {
	uc *usecase.EvaluationUsecase
}

func NewEvaluationHandler(uc *usecase.EvaluationUsecase) *EvaluationHandler {
	return &EvaluationHandler{uc: uc}
}

func (h *EvaluationHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/sessions/:id/evaluation", h.Submit)
	r.Get("/sessions/:id/evaluation", h.Get)
}

func (h *EvaluationHandler) Submit(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.SubmitEvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	ev, err := h.uc.Submit(c.UserContext(), middleware.ActorFrom(c), sessionID, req.Rating, req.Comment)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Evaluation submitted",
		Data:    ev,
	})
}

func (h *EvaluationHandler) Get(c *fiber.Ctx) error {
	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	ev, err := h.uc.Get(c.UserContext(), sessionID)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success get evaluation", Data: ev})
}
