package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mortgage-backend/internal/adapter/middleware"
	ucLoan "mortgage-backend/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *ucLoan.Usecase
	log *slog.Logger
}

func NewLoanHandler(uc *ucLoan.Usecase, log *slog.Logger) *LoanHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LoanHandler{uc: uc, log: log}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req ucLoan.CreateLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.Actor = middleware.ActorID(c)
	l, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	l, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) GetLoanByNumber(c echo.Context) error {
	l, err := h.uc.GetByLoanNumber(c.Request().Context(), c.Param("loan_number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req ucLoan.UpdateLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.Actor = middleware.ActorID(c)
	l, err := h.uc.Update(c.Request().Context(), loanID, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) Transition(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req ucLoan.TransitionInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.LoanID = loanID
	req.Actor = middleware.ActorID(c)
	l, err := h.uc.Transition(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) History(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	hist, err := h.uc.History(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "transitions": hist})
}

func (h *LoanHandler) NextStatuses(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	next, err := h.uc.NextStatuses(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "next_statuses": next})
}

func (h *LoanHandler) AssignStaff(c echo.Context) error {
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return badRequest(c, "invalid loan_id path param")
	}
	var req ucLoan.AssignStaffInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.LoanID = loanID
	req.Actor = middleware.ActorID(c)
	l, err := h.uc.AssignStaff(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}
