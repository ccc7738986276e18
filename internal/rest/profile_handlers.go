package rest

import (
	"net/http"

	"arkom-be/internal/profile"
	"arkom-be/internal/theme"

	"github.com/gin-gonic/gin"
)

func (h *handler) getProfile(c *gin.Context) {
	p, err := h.svc.Profiles.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Profile retrieved successfully", p)
}

func (h *handler) upsertProfile(c *gin.Context) {
	var input profile.UpsertInput
	if !bindJSON(c, &input) {
		return
	}
	p, err := h.svc.Profiles.Upsert(c.Request.Context(), currentUser(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Profile saved successfully", p)
}

/* ---------- THEME ---------- */

func (h *handler) getTheme(c *gin.Context) {
	p, err := h.svc.Themes.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Theme retrieved successfully", p)
}

func (h *handler) updateTheme(c *gin.Context) {
	var input theme.Palette
	if !bindJSON(c, &input) {
		return
	}
	p, err := h.svc.Themes.Update(c.Request.Context(), currentUser(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Theme saved successfully", p)
}

func (h *handler) themeCSS(c *gin.Context) {
	p, err := h.svc.Themes.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(p.CSS()))
}
