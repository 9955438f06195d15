package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

const (
	streamBuffer   = 64
	replayLimit    = 100
	heartbeatEvery = 15 * time.Second
	seenWindow     = 1024
)

// seqWindow admits each seq above the client's cursor once. Bus delivery is
// not ordered across committers, so a lower seq may follow a higher one.
type seqWindow struct {
	floor uint64
	seen  map[uint64]struct{}
	order []uint64
	size  int
}

func newSeqWindow(after uint64, size int) *seqWindow {
	return &seqWindow{floor: after, seen: make(map[uint64]struct{}, size), size: size}
}

func (w *seqWindow) admit(seq uint64) bool {
	if seq <= w.floor {
		return false
	}
	if _, ok := w.seen[seq]; ok {
		return false
	}
	w.seen[seq] = struct{}{}
	w.order = append(w.order, seq)
	if len(w.order) > w.size {
		delete(w.seen, w.order[0])
		w.order = w.order[1:]
	}
	return true
}

// EventHandler exposes the domain event stream for notification and UI
// collaborators: a polling feed over the outbox and a live SSE stream.
type EventHandler struct {
	uc  *usecase.SessionUsecase
	bus *event.Bus
}

func NewEventHandler(uc *usecase.SessionUsecase, bus *event.Bus) *EventHandler {
	return &EventHandler{uc: uc, bus: bus}
}

func (h *EventHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/events", h.Feed)
	r.Get("/events/stream", h.Stream)
}

func afterParam(c *fiber.Ctx) (uint64, error) {
	raw := c.Query("after")
	if raw == "" {
		raw = c.Get("Last-Event-ID")
	}
	if raw == "" {
		return 0, nil
	}
	after, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("invalid cursor", map[string]string{"after": "must be a non-negative integer"})
	}
	return after, nil
}

func (h *EventHandler) Feed(c *fiber.Ctx) error {
	after, err := afterParam(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	events, err := h.uc.Feed(c.UserContext(), after, c.QueryInt("limit", 0))
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	next := after
	if len(events) > 0 {
		next = events[len(events)-1].Seq
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get events",
		Data:    events,
		Meta:    fiber.Map{"next": next},
	})
}

// Stream replays outbox events after the cursor and then follows the bus.
func (h *EventHandler) Stream(c *fiber.Ctx) error {
	after, err := afterParam(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	actor := middleware.ActorFrom(c)
	ch, unsubscribe := h.bus.Subscribe("sse:"+actor.ID.String(), streamBuffer)

	backlog, err := h.uc.Feed(c.UserContext(), after, replayLimit)
	if err != nil {
		unsubscribe()
		return util.AppErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		window := newSeqWindow(after, seenWindow)
		for _, ev := range backlog {
			if !window.admit(ev.Seq) {
				continue
			}
			if writeEvent(w, ev) != nil {
				return
			}
		}

		ticker := time.NewTicker(heartbeatEvery)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if !window.admit(ev.Seq) {
					continue
				}
				if writeEvent(w, ev) != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, ev model.SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Kind, data); err != nil {
		return err
	}
	return w.Flush()
}
