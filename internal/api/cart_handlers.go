package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

func (h *Handler) viewCart(c *gin.Context) {
	view, err := h.cartService.ViewCart(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) addCartLine(c *gin.Context) {
	var req service.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	line, err := h.cartService.AddLine(c.Request.Context(), callerID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *Handler) editCartLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.EditLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.cartService.EditLine(c.Request.Context(), callerID(c), id, &req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart line updated"})
}

func (h *Handler) removeCartLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cartService.RemoveLine(c.Request.Context(), callerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeCart(c *gin.Context) {
	if err := h.cartService.RemoveCart(c.Request.Context(), callerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) checkout(c *gin.Context) {
	order, err := h.cartService.Checkout(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
