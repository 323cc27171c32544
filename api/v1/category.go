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

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(&model.FindCategory{})
	if err != nil {
		log.Error("Failed to list categories", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, categories)
}

func (h *Handler) addCategory(w http.ResponseWriter, r *http.Request) {
	create := &model.CategoryUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	category, err := model.NewCategory(create)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	newCategory, err := h.store.AddCategory(category)
	if err != nil {
		log.Error("Failed to add category", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.Created(w, r, newCategory)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	category, err := h.store.GetCategory(&model.FindCategory{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if category == nil {
		response.NotFound(w, r)
		return
	}

	update := &model.CategoryUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(update); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	updated, err := model.NewCategory(update)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	updated.ID = category.ID

	result, err := h.store.UpdateCategory(updated)
	if err != nil {
		log.Error("Failed to update category", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.OK(w, r, result)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt32Param(r, "id")
	if err := h.store.RemoveCategory(id); err != nil {
		log.Error("Failed to delete category", zap.Int32("category_id", id), zap.Error(err))
		response.DomainError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
