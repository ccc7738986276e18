package rest

import (
	"errors"
	"net/http"

	"arkom-be/internal/logger"
	"arkom-be/internal/taxonomy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type reorderRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

func (h *handler) catalogueTree(c *gin.Context) {
	tree, err := h.svc.Taxonomy.Tree(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Catalogues retrieved successfully", tree)
}

func (h *handler) categoryFilters(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	filters, err := h.svc.Taxonomy.FiltersForCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filters retrieved successfully", filters)
}

// ---------- CATALOGUES ----------

func (h *handler) listCatalogues(c *gin.Context) {
	list, err := h.svc.Taxonomy.ListCatalogues(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Catalogues retrieved successfully", list)
}

func (h *handler) createCatalogue(c *gin.Context) {
	var input taxonomy.CreateCatalogueInput
	if !bindJSON(c, &input) {
		return
	}
	created, err := h.svc.Taxonomy.CreateCatalogue(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Catalogue created successfully", created)
}

func (h *handler) updateCatalogue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input taxonomy.UpdateCatalogueInput
	if !bindJSON(c, &input) {
		return
	}
	updated, err := h.svc.Taxonomy.UpdateCatalogue(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Catalogue updated successfully", updated)
}

func (h *handler) deleteCatalogue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteCatalogue(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Catalogue deleted successfully", nil)
}

func (h *handler) reorderCatalogues(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.svc.Taxonomy.ReorderCatalogues(c.Request.Context(), req.IDs)
	respondReorder(c, "Catalogues", list, err)
}

// ---------- CATEGORIES ----------

func (h *handler) listCategories(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Taxonomy.ListCategories(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Categories retrieved successfully", list)
}

func (h *handler) createCategory(c *gin.Context) {
	var input taxonomy.CreateCategoryInput
	if !bindJSON(c, &input) {
		return
	}
	created, err := h.svc.Taxonomy.CreateCategory(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Category created successfully", created)
}

func (h *handler) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input taxonomy.UpdateCategoryInput
	if !bindJSON(c, &input) {
		return
	}
	updated, err := h.svc.Taxonomy.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *handler) reorderCategories(c *gin.Context) {
	catalogueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.svc.Taxonomy.ReorderCategories(c.Request.Context(), catalogueID, req.IDs)
	respondReorder(c, "Categories", list, err)
}

// ---------- FILTERS ----------

func (h *handler) listFilters(c *gin.Context) {
	list, err := h.svc.Taxonomy.ListFilters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filters retrieved successfully", list)
}

func (h *handler) createFilter(c *gin.Context) {
	var input taxonomy.CreateFilterInput
	if !bindJSON(c, &input) {
		return
	}
	created, err := h.svc.Taxonomy.CreateFilter(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Filter created successfully", created)
}

func (h *handler) updateFilter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input taxonomy.UpdateFilterInput
	if !bindJSON(c, &input) {
		return
	}
	updated, err := h.svc.Taxonomy.UpdateFilter(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter updated successfully", updated)
}

func (h *handler) deleteFilter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteFilter(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter deleted successfully", nil)
}

func (h *handler) reorderFilters(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.svc.Taxonomy.ReorderFilters(c.Request.Context(), req.IDs)
	respondReorder(c, "Filters", list, err)
}

// ---------- OPTIONS ----------

func (h *handler) createOption(c *gin.Context) {
	filterID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input taxonomy.CreateOptionInput
	if !bindJSON(c, &input) {
		return
	}
	input.FilterID = filterID
	created, err := h.svc.Taxonomy.CreateOption(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Filter option created successfully", created)
}

func (h *handler) updateOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input taxonomy.UpdateOptionInput
	if !bindJSON(c, &input) {
		return
	}
	updated, err := h.svc.Taxonomy.UpdateOption(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter option updated successfully", updated)
}

func (h *handler) deleteOption(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteOption(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter option deleted successfully", nil)
}

func (h *handler) reorderOptions(c *gin.Context) {
	filterID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.svc.Taxonomy.ReorderOptions(c.Request.Context(), filterID, req.IDs)
	respondReorder(c, "Filter options", list, err)
}

// ---------- ASSIGNMENTS ----------

func (h *handler) assignedFilters(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Taxonomy.AssignedFilters(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Assigned filters retrieved successfully", list)
}

func (h *handler) assignFilter(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	filterID, ok := pathID(c, "filterId")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.AssignFilter(c.Request.Context(), categoryID, filterID); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter assigned successfully", nil)
}

func (h *handler) unassignFilter(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	filterID, ok := pathID(c, "filterId")
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.UnassignFilter(c.Request.Context(), categoryID, filterID); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Filter unassigned successfully", nil)
}

// respondReorder reports a reorder. A failed write answers 500 with the
// reloaded store order as data so the client can replace its optimistic
// list.
func respondReorder[T any](c *gin.Context, what string, list []T, err error) {
	switch {
	case err == nil:
		success(c, http.StatusOK, what+" reordered successfully", list)
	case errors.Is(err, taxonomy.ErrReorderWrite):
		logger.FromCtx(c.Request.Context()).Error("reorder write failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ApiResponse{
			Message: taxonomy.ErrReorderWrite.Error(),
			Data:    list,
			Error:   true,
		})
	default:
		writeError(c, err)
	}
}
