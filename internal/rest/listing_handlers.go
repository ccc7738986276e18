package rest

import (
	"net/http"

	"arkom-be/internal/browse"
	"arkom-be/internal/listing"
	"arkom-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// browseListings serves GET /listings?catalogueId=&categoryId=&options=1,2&page=&limit=
func (h *handler) browseListings(c *gin.Context) {
	catalogueID, err := utils.ParseOptionalID(c.Query("catalogueId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid catalogueId")
		return
	}
	categoryID, err := utils.ParseOptionalID(c.Query("categoryId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid categoryId")
		return
	}
	options, err := utils.ParseIDList(c.Query("options"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid options")
		return
	}

	state := browse.FilterState{
		CatalogueID:           catalogueID,
		CategoryID:            categoryID,
		SubCategorySelections: options,
	}
	page := utils.ParseIntDefault(c.Query("page"), 1)
	limit := utils.ParseIntDefault(c.Query("limit"), listing.DefaultLimit)

	res, err := h.svc.Listings.Browse(c.Request.Context(), state, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApiResponse{
		Message: "Listings retrieved successfully",
		Data:    res.Items,
		Meta:    newPagination(res.Page, res.Limit, res.Total),
	})
}

func (h *handler) getListing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := h.svc.Listings.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Listing retrieved successfully", l)
}

func (h *handler) createListing(c *gin.Context) {
	var input listing.CreateListingInput
	if !bindJSON(c, &input) {
		return
	}
	l, err := h.svc.Listings.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Listing created successfully", l)
}

func (h *handler) updateListing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input listing.UpdateListingInput
	if !bindJSON(c, &input) {
		return
	}
	l, err := h.svc.Listings.Update(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Listing updated successfully", l)
}

func (h *handler) deleteListing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Listings.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Listing deleted successfully", nil)
}

func (h *handler) myListings(c *gin.Context) {
	list, err := h.svc.Listings.ListByArtist(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Listings retrieved successfully", list)
}
