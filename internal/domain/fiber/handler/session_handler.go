package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/dto"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/response"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

type SessionHandler struct {
	uc *usecase.SessionUsecase
}

func NewSessionHandler(uc *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/sessions", h.List)
	r.Get("/sessions/:id", h.Get)
	r.Get("/sessions/:id/events", h.History)
	r.Post("/sessions/:id/claim", middleware.RateLimiter(10, 10*time.Second), h.Claim)
	r.Post("/sessions/:id/approve", h.action(h.uc.Approve, "Claim approved"))
	r.Post("/sessions/:id/refuse", h.action(h.uc.Refuse, "Claim refused"))
	r.Post("/sessions/:id/start", h.action(h.uc.Start, "Session started"))
	r.Post("/sessions/:id/complete", h.action(h.uc.Complete, "Session completed"))
	r.Post("/sessions/:id/cancel", h.action(h.uc.Cancel, "Session cancelled"))
	r.Post("/sessions/:id/transition", h.Transition)
	r.Put("/sessions/:id/price", h.Reprice)
}

type sessionAction func(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.JobSession, error)

func (h *SessionHandler) action(fn sessionAction, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuidParam(c, "id")
		if err != nil {
			return util.AppErrorResponse(c, err)
		}
		s, err := fn(c.UserContext(), middleware.ActorFrom(c), id)
		if err != nil {
			return util.AppErrorResponse(c, err)
		}
		return util.SuccessResponse(c, util.SuccessResponseFormat{Message: message, Data: dto.NewSessionDTO(s)})
	}
}

// Claim reports a lost arbitration as 409 so clients can show "already taken".
func (h *SessionHandler) Claim(c *fiber.Ctx) error {
	return h.action(h.uc.Claim, "Session claimed")(c)
}

func (h *SessionHandler) Transition(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.TransitionRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	to := model.SessionStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	s, err := h.uc.Transition(c.UserContext(), middleware.ActorFrom(c), id, to)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Session moved to " + string(s.Status), Data: dto.NewSessionDTO(s)})
}

func (h *SessionHandler) Reprice(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.RepriceRequest
	if err := bindJSON(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}
	s, err := h.uc.Reprice(c.UserContext(), middleware.ActorFrom(c), id, req.PriceOverride)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Session repriced", Data: dto.NewSessionDTO(s)})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	s, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success get session", Data: dto.NewSessionDTO(s)})
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	f, err := sessionFilter(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	items, total, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list sessions",
		Data:       dto.NewSessionDTOs(items),
		Pagination: response.NewPagination(f.Page, f.PageSize, total, len(items)),
	})
}

func (h *SessionHandler) History(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	events, err := h.uc.History(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success get session events", Data: events})
}

func sessionFilter(c *fiber.Ctx) (repository.SessionFilter, error) {
	var f repository.SessionFilter
	var err error
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s := model.SessionStatus(strings.ToUpper(strings.TrimSpace(part)))
			if !s.Valid() {
				return f, apperr.Invalid("invalid filter", map[string]string{"status": "unknown status " + part})
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	if f.TemplateID, err = uuidQuery(c, "template_id"); err != nil {
		return f, err
	}
	if f.AssignedTo, err = uuidQuery(c, "assigned_to"); err != nil {
		return f, err
	}
	if f.EmployerID, err = uuidQuery(c, "employer_id"); err != nil {
		return f, err
	}
	if f.CustomerID, err = uuidQuery(c, "customer_id"); err != nil {
		return f, err
	}
	if f.From, err = dto.ParseDate(c.Query("from"), "from"); err != nil {
		return f, err
	}
	if f.To, err = dto.ParseDate(c.Query("to"), "to"); err != nil {
		return f, err
	}
	f.Page, f.PageSize = usecase.Page(c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	return f, nil
}
