package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

func (h *Handler) createReview(c *gin.Context) {
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), callerID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) updateReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), callerID(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), callerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createFraudReport(c *gin.Context) {
	var req service.FraudReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	report, err := h.reviewService.CreateFraudReport(c.Request.Context(), callerID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) listFraudReports(c *gin.Context) {
	reports, err := h.reviewService.ListFraudReports(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fraud_reports": reports})
}

func (h *Handler) updateFraudReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.FraudReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	report, err := h.reviewService.UpdateFraudReport(c.Request.Context(), callerID(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) deleteFraudReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteFraudReport(c.Request.Context(), callerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createTestimony(c *gin.Context) {
	var req service.TestimonyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	testimony, err := h.reviewService.CreateTestimony(c.Request.Context(), callerID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, testimony)
}

func (h *Handler) listTestimonies(c *gin.Context) {
	testimonies, err := h.reviewService.ListTestimonies(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testimonies": testimonies})
}

func (h *Handler) listProductTestimonies(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	testimonies, err := h.reviewService.ListTestimoniesByProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testimonies": testimonies})
}

func (h *Handler) updateTestimony(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.TestimonyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	testimony, err := h.reviewService.UpdateTestimony(c.Request.Context(), callerID(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimony)
}

func (h *Handler) deleteTestimony(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteTestimony(c.Request.Context(), callerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
