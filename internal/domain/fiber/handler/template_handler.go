package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/dto"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/response"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

type TemplateHandler struct {
	uc             *usecase.TemplateUsecase
	gen            *usecase.GeneratorUsecase
	defaultHorizon int
}

func NewTemplateHandler(uc *usecase.TemplateUsecase, gen *usecase.GeneratorUsecase, defaultHorizon int) *TemplateHandler {
	return &TemplateHandler{uc: uc, gen: gen, defaultHorizon: defaultHorizon}
}

func (h *TemplateHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/templates", h.Create)
	r.Get("/templates", h.List)
	r.Get("/templates/:id", h.Get)
	r.Put("/templates/:id/steps", h.ReplaceSteps)
	r.Post("/templates/:id/activate", h.Activate)
	r.Post("/templates/:id/archive", h.Archive)
	r.Post("/templates/:id/generate", h.Generate)
}

func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTemplateRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	tpl, err := req.ToModel()
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	created, err := h.uc.Create(c.UserContext(), middleware.ActorFrom(c), tpl)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Template created",
		Data:    created,
	})
}

func (h *TemplateHandler) List(c *fiber.Ctx) error {
	employerID, err := uuidQuery(c, "employer_id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	status := model.TemplateStatus(c.Query("status"))
	page, size := usecase.Page(c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	items, total, err := h.uc.List(c.UserContext(), repository.TemplateFilter{
		EmployerID: employerID,
		Status:     status,
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list templates",
		Data:       items,
		Pagination: response.NewPagination(page, size, total, len(items)),
	})
}

func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	tpl, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success get template", Data: tpl})
}

func (h *TemplateHandler) ReplaceSteps(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.ReplaceStepsRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	tpl, err := h.uc.ReplaceSteps(c.UserContext(), middleware.ActorFrom(c), id, dto.StepsToModel(req.Steps))
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Steps replaced", Data: tpl})
}

func (h *TemplateHandler) Activate(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	tpl, err := h.uc.Activate(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Template activated", Data: tpl})
}

func (h *TemplateHandler) Archive(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	tpl, err := h.uc.Archive(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Template archived", Data: tpl})
}

func (h *TemplateHandler) Generate(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	req := dto.GenerateSessionsRequest{HorizonDays: h.defaultHorizon}
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return util.AppErrorResponse(c, err)
		}
	}
	if req.HorizonDays == 0 {
		return util.AppErrorResponse(c, apperr.Invalid("invalid horizon", map[string]string{"horizon_days": "required"}))
	}
	sessions, err := h.gen.Generate(c.UserContext(), middleware.ActorFrom(c), id, req.HorizonDays)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Sessions generated",
		Data:    dto.NewSessionDTOs(sessions),
		Meta:    fiber.Map{"created": len(sessions)},
	})
}
