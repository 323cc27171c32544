package v1

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/http/request"
	"github.com/liber-hq/liber/http/response"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/storage"
)

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBook{}
	if title := request.QueryStringParam(r, "title", ""); title != "" {
		find.Title = &title
	}
	if author := request.QueryStringParam(r, "author", ""); author != "" {
		find.Author = &author
	}
	if isbn := request.QueryStringParam(r, "isbn", ""); isbn != "" {
		normalized, err := model.NormalizeISBN(isbn)
		if err != nil {
			response.BadRequest(w, r, err)
			return
		}
		find.ISBN = &normalized
	}
	if categoryID := request.QueryIntParam(r, "category_id", 0); categoryID > 0 {
		id := int32(categoryID)
		find.CategoryID = &id
	}
	limit := request.QueryIntParam(r, "limit", 50)
	offset := request.QueryIntParam(r, "offset", 0)
	find.Limit = &limit
	find.Offset = &offset

	books, err := h.store.ListBooks(find)
	if err != nil {
		log.Error("Failed to list books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	create := &model.BookCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	book, err := model.NewBook(create)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	category, err := h.store.GetCategory(&model.FindCategory{ID: &book.CategoryID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if category == nil {
		response.DomainError(w, r, model.NewNotFoundError("category", book.CategoryID))
		return
	}

	if exists, err := h.store.ExistsByISBN(book.ISBN, 0); err != nil {
		response.ServerError(w, r, err)
		return
	} else if exists {
		response.DomainError(w, r, model.NewConflictError("a book with isbn %s already exists", book.ISBN))
		return
	}

	newBook, err := h.store.AddBook(book)
	if err != nil {
		log.Error("Failed to add book", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.Created(w, r, newBook)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	update := &model.BookCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(update); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := book.UpdateInfo(update); err != nil {
		response.DomainError(w, r, err)
		return
	}

	category, err := h.store.GetCategory(&model.FindCategory{ID: &book.CategoryID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if category == nil {
		response.DomainError(w, r, model.NewNotFoundError("category", book.CategoryID))
		return
	}

	if exists, err := h.store.ExistsByISBN(book.ISBN, book.ID); err != nil {
		response.ServerError(w, r, err)
		return
	} else if exists {
		response.DomainError(w, r, model.NewConflictError("a book with isbn %s already exists", book.ISBN))
		return
	}

	updated, err := h.store.UpdateBook(book)
	if err != nil {
		log.Error("Failed to update book", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	if err := h.store.RemoveBook(id); err != nil {
		log.Error("Failed to delete book", zap.Int32("book_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *Handler) getCover(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil || book.CoverPath == "" {
		response.NotFound(w, r)
		return
	}
	response.ServeFile(w, r, book.CoverPath)
}

// uploadCover stores the image and queues the webp conversion.
func (h *Handler) uploadCover(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(config.Opts.MaxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		response.BadRequest(w, r, errors.New("exactly one file is required"))
		return
	}

	file, err := files[0].Open()
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	defer file.Close()

	coverStorage := storage.NewLocalStorage("covers")
	coverPath, err := coverStorage.StoreFile(file, files[0].Filename)
	if err != nil {
		log.Error("Failed to store cover", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	job := model.Job{
		BookID: book.ID,
		Path:   coverPath,
		Type:   model.JobTypeCoverConvert,
		Status: model.JobStatusPending,
	}
	newJob, err := h.store.AddJob(&job)
	if err != nil {
		log.Error("Failed to add job", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	go h.ingestPool.Push(*newJob)

	response.Accepted(w, r, newJob)
}
