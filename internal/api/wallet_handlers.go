package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

func (h *Handler) registerWallet(c *gin.Context) {
	var req service.PINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	account, err := h.walletService.Register(c.Request.Context(), callerID(c), req.PIN)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *Handler) walletLogin(c *gin.Context) {
	var req service.PINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	session, err := h.walletService.Authenticate(c.Request.Context(), callerID(c), req.PIN)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) walletLogout(c *gin.Context) {
	if err := h.walletService.Logout(c.Request.Context(), c.GetHeader(walletTokenHeader)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "wallet session closed"})
}

func (h *Handler) showWallet(c *gin.Context) {
	view, err := h.walletService.Show(c.Request.Context(), callerID(c), c.GetHeader(walletTokenHeader))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) topUpWallet(c *gin.Context) {
	var req service.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	view, err := h.walletService.TopUp(c.Request.Context(), callerID(c), c.GetHeader(walletTokenHeader), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) payOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	payment, err := h.walletService.PayOrder(c.Request.Context(), callerID(c), c.GetHeader(walletTokenHeader), req.PIN, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
