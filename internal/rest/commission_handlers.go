package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commissionRequest struct {
	ListingID int64  `json:"listingId" binding:"required"`
	Message   string `json:"message"`
}

type commissionAnswer struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *handler) requestCommission(c *gin.Context) {
	var req commissionRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Commissions.Request(c.Request.Context(), currentUser(c), req.ListingID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusCreated, "Commission requested successfully", r)
}

func (h *handler) incomingCommissions(c *gin.Context) {
	list, err := h.svc.Commissions.ListForArtist(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Commission requests retrieved successfully", list)
}

func (h *handler) outgoingCommissions(c *gin.Context) {
	list, err := h.svc.Commissions.ListForClient(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Commission requests retrieved successfully", list)
}

func (h *handler) respondCommission(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commissionAnswer
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Commissions.Respond(c.Request.Context(), currentUser(c), id, *req.Accept)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Commission request answered", r)
}
