package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/liber-hq/liber/http/request"
	"github.com/liber-hq/liber/http/response"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

// borrowBook runs the full lending use case: resolve copy and reader, run
// the eligibility check, then let the store commit the stock decrement and
// the record insert atomically.
func (h *Handler) borrowBook(w http.ResponseWriter, r *http.Request) {
	req := &model.BorrowRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	copy, err := h.store.GetCopy(&model.FindCopy{ID: &req.CopyID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if copy == nil {
		response.DomainError(w, r, model.NewNotFoundError("copy", req.CopyID))
		return
	}

	reader, err := h.store.GetReader(&model.FindReader{ID: &req.ReaderID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if reader == nil {
		response.DomainError(w, r, model.NewNotFoundError("reader", req.ReaderID))
		return
	}

	now := time.Now().UTC()
	activeCount, err := h.store.CountActiveByReader(reader.ID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	hasOverdue, err := h.store.HasOverdueByReader(reader.ID, now)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}

	decision := model.CheckBorrow(copy, reader, activeCount, hasOverdue)
	if !decision.Can {
		log.Debug("Borrow rejected",
			zap.Int32("copy_id", copy.ID),
			zap.Int32("reader_id", reader.ID),
			zap.String("reason", decision.Reason))
		response.Conflict(w, r, model.NewConflictError("%s", decision.Reason))
		return
	}

	policy, err := h.store.GetBorrowPolicy()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	borrowDays := policy.DefaultBorrowDays
	if req.BorrowDays != nil {
		borrowDays = *req.BorrowDays
	}

	record, err := model.NewBorrowRecord(copy, reader.ID, now, borrowDays)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	newRecord, err := h.store.BorrowBook(record, copy.Type)
	if err != nil {
		log.Error("Failed to borrow",
			zap.Int32("copy_id", copy.ID),
			zap.Int32("reader_id", reader.ID),
			zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.Created(w, r, newRecord)
}

func (h *Handler) returnBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	record, err := h.store.GetBorrow(&model.FindBorrow{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if record == nil {
		response.DomainError(w, r, model.NewNotFoundError("borrow record", id))
		return
	}

	returned, err := h.store.ReturnBook(record.ID, time.Now().UTC())
	if err != nil {
		log.Error("Failed to return", zap.Int32("record_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, returned)
}

func (h *Handler) renewBorrow(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	record, err := h.store.GetBorrow(&model.FindBorrow{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if record == nil {
		response.DomainError(w, r, model.NewNotFoundError("borrow record", id))
		return
	}

	req := &model.RenewRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			response.BadRequest(w, r, err)
			return
		}
	}

	policy, err := h.store.GetBorrowPolicy()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	renewDays := policy.RenewDays
	if req.RenewDays != nil {
		renewDays = *req.RenewDays
	}

	if err := record.Renew(time.Now().UTC(), renewDays, policy.MaxRenewCount); err != nil {
		response.DomainError(w, r, err)
		return
	}

	updated, err := h.store.UpdateBorrow(record)
	if err != nil {
		log.Error("Failed to renew", zap.Int32("record_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) listBorrows(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBorrow{}
	if readerID := request.QueryIntParam(r, "reader_id", 0); readerID > 0 {
		id := int32(readerID)
		find.ReaderID = &id
	}
	if status := request.QueryStringParam(r, "status", ""); status != "" {
		borrowStatus := model.BorrowStatus(status)
		find.Status = &borrowStatus
	}
	limit := request.QueryIntParam(r, "limit", 50)
	offset := request.QueryIntParam(r, "offset", 0)
	find.Limit = &limit
	find.Offset = &offset

	records, err := h.store.ListBorrows(find)
	if err != nil {
		log.Error("Failed to list borrow records", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	// overdue=true narrows to records past due right now, including
	// BORROWED ones the sweep has not promoted yet.
	if request.QueryStringParam(r, "overdue", "") == "true" {
		now := time.Now().UTC()
		overdue := records[:0]
		for _, record := range records {
			if record.IsOverdue(now) {
				overdue = append(overdue, record)
			}
		}
		records = overdue
	}

	response.OK(w, r, records)
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.store.GetBorrowPolicy()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, policy)
}

func (h *Handler) setPolicy(w http.ResponseWriter, r *http.Request) {
	policy := model.BorrowPolicy{}
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	updated, err := h.store.SetBorrowPolicy(policy)
	if err != nil {
		log.Error("Failed to set borrow policy", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) sweepOverdue(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.MarkOverdueRecords(time.Now().UTC())
	if err != nil {
		log.Error("Failed to sweep overdue records", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	type sweepResult struct {
		Marked int64 `json:"marked"`
	}
	response.OK(w, r, sweepResult{Marked: count})
}
