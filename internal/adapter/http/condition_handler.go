package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mortgage-backend/internal/adapter/middleware"
	"mortgage-backend/internal/domain/condition"
	ucCondition "mortgage-backend/internal/usecase/condition"
)

type ConditionHandler struct {
	tracker *ucCondition.Tracker
	log     *slog.Logger
}

func NewConditionHandler(t *ucCondition.Tracker, log *slog.Logger) *ConditionHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ConditionHandler{tracker: t, log: log}
}

type completeReq struct {
	Notes string `json:"notes" validate:"max=4000"`
}

type waiveReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type assignReq struct {
	AssigneeID string `json:"assignee_id" validate:"required,max=64"`
}

type priorityReq struct {
	Priority condition.Priority `json:"priority" validate:"required,priority"`
}

func (h *ConditionHandler) Create(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req ucCondition.CreateConditionInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.LoanID = loanID
	req.Actor = middleware.ActorID(c)
	cond, err := h.tracker.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, cond)
}

func (h *ConditionHandler) ListByLoan(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	cs, err := h.tracker.ListByLoan(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "conditions": cs})
}

func (h *ConditionHandler) Summary(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	s, err := h.tracker.Summarize(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ConditionHandler) ListOverdue(c echo.Context) error {
	cs, err := h.tracker.ListOverdue(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conditions": cs})
}

func (h *ConditionHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	cond, err := h.tracker.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, cond)
}

func (h *ConditionHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	var req ucCondition.UpdateConditionInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.Actor = middleware.ActorID(c)
	cond, err := h.tracker.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, cond)
}

func (h *ConditionHandler) Start(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.Start(c.Request().Context(), id, middleware.ActorID(c))
	})
}

func (h *ConditionHandler) Complete(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	var req completeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.Complete(c.Request().Context(), id, middleware.ActorID(c), req.Notes)
	})
}

func (h *ConditionHandler) Waive(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	var req waiveReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.Waive(c.Request().Context(), id, middleware.ActorID(c), req.Reason)
	})
}

func (h *ConditionHandler) Expire(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.Expire(c.Request().Context(), id, middleware.ActorID(c))
	})
}

func (h *ConditionHandler) Assign(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	var req assignReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.Assign(c.Request().Context(), id, req.AssigneeID, middleware.ActorID(c))
	})
}

func (h *ConditionHandler) SetPriority(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	var req priorityReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.respond(c, func() (*condition.Condition, error) {
		return h.tracker.SetPriority(c.Request().Context(), id, req.Priority, middleware.ActorID(c))
	})
}

func (h *ConditionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "condition_id")
	if !ok {
		return badRequest(c, "invalid condition_id path param")
	}
	if err := h.tracker.Delete(c.Request().Context(), id, middleware.ActorID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ConditionHandler) respond(c echo.Context, fn func() (*condition.Condition, error)) error {
	cond, err := fn()
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, cond)
}
