package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aldisetia/obligation-engine/internal/domain"
	"github.com/aldisetia/obligation-engine/internal/service"
	"github.com/aldisetia/obligation-engine/pkg/response"
)

type LoanHandler struct {
	service *service.LoanService
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), userID, loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// List serves the collection endpoint, optionally filtered by ?status= or
// ?type= query parameters.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var loans []*domain.Loan
	switch {
	case r.URL.Query().Get("status") != "":
		loans, err = h.service.ListLoansByStatus(r.Context(), userID, domain.LoanStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("type") != "":
		loans, err = h.service.ListLoansByType(r.Context(), userID, domain.LoanType(r.URL.Query().Get("type")))
	default:
		loans, err = h.service.ListLoans(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	req.ID = loanID

	loan, err := h.service.UpdateLoan(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	if err := h.service.DeleteLoan(r.Context(), userID, loanID); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	loan, err := h.service.RecordPayment(r.Context(), userID, loanID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) MarkUrgent(w http.ResponseWriter, r *http.Request) {
	h.toggleUrgency(w, r, true)
}

func (h *LoanHandler) MarkNotUrgent(w http.ResponseWriter, r *http.Request) {
	h.toggleUrgency(w, r, false)
}

func (h *LoanHandler) toggleUrgency(w http.ResponseWriter, r *http.Request, urgent bool) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var loan *domain.Loan
	if urgent {
		loan, err = h.service.MarkUrgent(r.Context(), userID, loanID)
	} else {
		loan, err = h.service.MarkNotUrgent(r.Context(), userID, loanID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loans, err := h.service.ListOverdueLoans(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) DueSoon(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	loans, err := h.service.ListDueSoonLoans(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) Summary(w http.ResponseWriter, r *http.Request) {
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
