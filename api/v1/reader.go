package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/liber-hq/liber/http/request"
	"github.com/liber-hq/liber/http/response"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

func (h *Handler) listReaders(w http.ResponseWriter, r *http.Request) {
	find := &model.FindReader{}
	if status := request.QueryStringParam(r, "status", ""); status != "" {
		readerStatus := model.ReaderStatus(status)
		find.Status = &readerStatus
	}
	limit := request.QueryIntParam(r, "limit", 50)
	offset := request.QueryIntParam(r, "offset", 0)
	find.Limit = &limit
	find.Offset = &offset

	readers, err := h.store.ListReaders(find)
	if err != nil {
		log.Error("Failed to list readers", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, readers)
}

func (h *Handler) getReader(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	reader, err := h.store.GetReader(&model.FindReader{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if reader == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, reader)
}

func (h *Handler) addReader(w http.ResponseWriter, r *http.Request) {
	create := &model.ReaderUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	user, err := h.store.GetUser(&model.FindUser{ID: &create.UserID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.DomainError(w, r, model.NewNotFoundError("user", create.UserID))
		return
	}

	reader, err := model.NewReader(create)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	newReader, err := h.store.AddReader(reader)
	if err != nil {
		log.Error("Failed to add reader", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.Created(w, r, newReader)
}

func (h *Handler) updateReader(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	reader, err := h.store.GetReader(&model.FindReader{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if reader == nil {
		response.NotFound(w, r)
		return
	}

	update := &model.ReaderUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(update); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	if err := reader.UpdateInfo(update); err != nil {
		response.DomainError(w, r, err)
		return
	}

	updated, err := h.store.UpdateReader(reader)
	if err != nil {
		log.Error("Failed to update reader", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) activateReader(w http.ResponseWriter, r *http.Request) {
	h.setReaderStatus(w, r, func(reader *model.Reader) error {
		return reader.Activate()
	})
}

func (h *Handler) deactivateReader(w http.ResponseWriter, r *http.Request) {
	h.setReaderStatus(w, r, func(reader *model.Reader) error {
		return reader.Deactivate()
	})
}

func (h *Handler) setReaderStatus(w http.ResponseWriter, r *http.Request, transition func(*model.Reader) error) {
	id := request.RouteInt32Param(r, "id")
	reader, err := h.store.GetReader(&model.FindReader{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if reader == nil {
		response.NotFound(w, r)
		return
	}

	if err := transition(reader); err != nil {
		response.DomainError(w, r, err)
		return
	}

	updated, err := h.store.UpdateReader(reader)
	if err != nil {
		log.Error("Failed to update reader status", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) deleteReader(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	if err := h.store.RemoveReader(id); err != nil {
		log.Error("Failed to delete reader", zap.Int32("reader_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
