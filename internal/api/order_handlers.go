package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

func (h *Handler) listCustomerOrders(c *gin.Context) {
	view, err := h.orderService.ListForCustomer(c.Request.Context(), callerID(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) orderDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.orderService.Detail(c.Request.Context(), callerID(c), callerRole(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	refund, err := h.orderService.Cancel(c.Request.Context(), callerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "refund": refund})
}

func (h *Handler) listWorkerOrders(c *gin.Context) {
	orders, err := h.orderService.ListForWorker(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) listAvailableOrders(c *gin.Context) {
	orders, err := h.orderService.ListAvailable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) takeOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orderService.Take(c.Request.Context(), callerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order taken"})
}

func (h *Handler) completeOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fee, err := h.orderService.Complete(c.Request.Context(), callerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order completed", "delivery_fee": fee})
}

func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) advanceOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.orderService.Advance(c.Request.Context(), id, req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order advanced", "status": req.Status})
}

func (h *Handler) orderAuditTrail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	events, err := h.orderService.AuditTrail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
