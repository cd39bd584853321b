package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/aldisetia/obligation-engine/internal/domain"
	"github.com/aldisetia/obligation-engine/internal/service"
	"github.com/aldisetia/obligation-engine/pkg/response"
)

type RecurringExpenseHandler struct {
	service *service.RecurringExpenseService
}

func NewRecurringExpenseHandler(service *service.RecurringExpenseService) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{service: service}
}

func (h *RecurringExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req domain.CreateRecurringExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, expense)
}

func (h *RecurringExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		response.BadRequest(w, "invalid expense id", err)
		return
	}

	expense, err := h.service.GetExpense(r.Context(), userID, expenseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expense)
}

// List serves the collection endpoint, optionally filtered by ?status= or
// ?frequency= query parameters.
func (h *RecurringExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var expenses []*domain.RecurringExpense
	switch {
	case r.URL.Query().Get("status") != "":
		expenses, err = h.service.ListExpensesByStatus(r.Context(), userID, domain.RecurringStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("frequency") != "":
		expenses, err = h.service.ListExpensesByFrequency(r.Context(), userID, domain.Frequency(r.URL.Query().Get("frequency")))
	default:
		expenses, err = h.service.ListExpenses(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expenses)
}

func (h *RecurringExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		response.BadRequest(w, "invalid expense id", err)
		return
	}

	var req domain.UpdateRecurringExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	req.ID = expenseID

	expense, err := h.service.UpdateExpense(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expense)
}

func (h *RecurringExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		response.BadRequest(w, "invalid expense id", err)
		return
	}

	if err := h.service.DeleteExpense(r.Context(), userID, expenseID); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *RecurringExpenseHandler) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		response.BadRequest(w, "invalid expense id", err)
		return
	}

	expense, err := h.service.MarkAsPaid(r.Context(), userID, expenseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expense)
}

func (h *RecurringExpenseHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Pause)
}

func (h *RecurringExpenseHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Resume)
}

func (h *RecurringExpenseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Cancel)
}

func (h *RecurringExpenseHandler) setStatus(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID, expenseID uuid.UUID) (*domain.RecurringExpense, error),
) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		response.BadRequest(w, "invalid expense id", err)
		return
	}

	expense, err := op(r.Context(), userID, expenseID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expense)
}

func (h *RecurringExpenseHandler) DueToday(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenses, err := h.service.ListDueToday(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expenses)
}

func (h *RecurringExpenseHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenses, err := h.service.ListOverdueExpenses(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expenses)
}

func (h *RecurringExpenseHandler) DueSoon(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenses, err := h.service.ListDueSoonExpenses(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expenses)
}

func (h *RecurringExpenseHandler) AutoPay(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	expenses, err := h.service.ListAutoPayExpenses(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, expenses)
}

func (h *RecurringExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}
