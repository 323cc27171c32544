package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/http/request"
	"github.com/liber-hq/liber/http/response"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/util"
)

type physicalCopyCreateRequest struct {
	BookID      int32  `json:"book_id"`
	TotalCopies int    `json:"total_copies"`
	Location    string `json:"location"`
}

type copyUpdateRequest struct {
	Location *string `json:"location"`
}

type copyStatusRequest struct {
	Status model.CopyStatus `json:"status"`
}

type copyStockRequest struct {
	TotalCopies int `json:"total_copies"`
}

func (h *Handler) listBookCopies(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	copies, err := h.store.ListCopies(&model.FindCopy{BookID: &bookID})
	if err != nil {
		log.Error("Failed to list copies", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, copies)
}

func (h *Handler) getCopy(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	copy, err := h.store.GetCopy(&model.FindCopy{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if copy == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, copy)
}

// addCopy creates a physical copy from a JSON body, or queues an ebook
// ingest when the body is multipart.
func (h *Handler) addCopy(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.addEbookCopy(w, r)
		return
	}

	create := &physicalCopyCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if ok := h.bookExists(w, r, create.BookID); !ok {
		return
	}

	copy, err := model.NewPhysicalCopy(create.BookID, create.TotalCopies, create.Location)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	newCopy, err := h.store.AddCopy(copy)
	if err != nil {
		log.Error("Failed to add copy", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.Created(w, r, newCopy)
}

var supportedEbookExtensions = map[string]bool{
	".pdf":  true,
	".epub": true,
	".mobi": true,
}

func (h *Handler) addEbookCopy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Opts.MaxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	bookID, err := util.ConvertStringToInt32(r.FormValue("book_id"))
	if err != nil {
		response.BadRequest(w, r, errors.New("book_id is required"))
		return
	}
	if ok := h.bookExists(w, r, bookID); !ok {
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		response.BadRequest(w, r, errors.New("exactly one file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(files[0].Filename))
	if !supportedEbookExtensions[ext] {
		response.BadRequest(w, r, fmt.Errorf("unsupported file type %q", ext))
		return
	}

	bookPath := filepath.Join(config.Opts.Data, "books", util.GenUUID()+ext)
	job := model.Job{
		BookID: bookID,
		Path:   bookPath,
		Type:   model.JobTypeEbookIngest,
		Status: model.JobStatusPending,
		Item:   files[0],
	}
	newJob, err := h.store.AddJob(&job)
	if err != nil {
		log.Error("Failed to add job", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	newJob.Item = files[0]
	go h.ingestPool.Push(*newJob)

	response.Accepted(w, r, newJob)
}

// updateCopy edits descriptive fields. Stock and status have their own
// endpoints with transition rules.
func (h *Handler) updateCopy(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	copy, err := h.store.GetCopy(&model.FindCopy{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if copy == nil {
		response.NotFound(w, r)
		return
	}

	req := &copyUpdateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	if req.Location != nil {
		if copy.Type != model.CopyTypePhysical {
			response.DomainError(w, r, model.NewValidationError("only a physical copy has a location"))
			return
		}
		copy.Location = *req.Location
	}

	updated, err := h.store.UpdateCopy(copy)
	if err != nil {
		log.Error("Failed to update copy", zap.Int32("copy_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) deleteCopy(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	if err := h.store.RemoveCopy(id); err != nil {
		log.Error("Failed to delete copy", zap.Int32("copy_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) setCopyStatus(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	copy, err := h.store.GetCopy(&model.FindCopy{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if copy == nil {
		response.NotFound(w, r)
		return
	}

	req := &copyStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	switch req.Status {
	case model.CopyStatusAvailable:
		copy.MarkAvailable()
	case model.CopyStatusUnavailable:
		copy.MarkUnavailable()
	case model.CopyStatusMaintenance:
		copy.MarkMaintenance()
	default:
		response.BadRequest(w, r, fmt.Errorf("unknown copy status %q", req.Status))
		return
	}

	updated, err := h.store.UpdateCopy(copy)
	if err != nil {
		log.Error("Failed to update copy status", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) setCopyStock(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")

	req := &copyStockRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	updated, err := h.store.UpdateCopyStock(id, req.TotalCopies)
	if err != nil {
		log.Error("Failed to update copy stock", zap.Int32("copy_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) bookExists(w http.ResponseWriter, r *http.Request, bookID int32) bool {
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		response.ServerError(w, r, err)
		return false
	}
	if book == nil {
		response.DomainError(w, r, model.NewNotFoundError("book", bookID))
		return false
	}
	return true
}
