package service

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// ReviewService handles reviews, fraud reports and testimonies. All
// records are author scoped: only the creating user may edit or delete
// them.
type ReviewService struct {
	store  ReviewStore
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store ReviewStore) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ReviewRequest creates or updates a review
type ReviewRequest struct {
	OrderID     int64  `json:"order_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
}

// FraudReportRequest creates or updates a fraud report
type FraudReportRequest struct {
	OrderID     int64  `json:"order_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// TestimonyRequest creates or updates a testimony
type TestimonyRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
}

// CreateReview attaches a review to the user's completed order and
// advances the order to reviewed.
func (s *ReviewService) CreateReview(ctx context.Context, userID int64, req *ReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateReview")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusCompleted && order.Status != models.OrderStatusReviewed {
		return nil, fmt.Errorf("order %d is not completed: %w", req.OrderID, models.ErrValidation)
	}

	review := &models.Review{
		UserID:      userID,
		OrderID:     req.OrderID,
		Description: req.Description,
		Rating:      req.Rating,
	}
	if err := s.store.CreateReviewTx(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("order_id", req.OrderID))
	return review, nil
}

// ListReviews returns the user's own reviews
func (s *ReviewService) ListReviews(ctx context.Context, userID int64) ([]models.Review, error) {
	return s.store.GetReviewsByUser(ctx, userID)
}

// UpdateReview edits the user's own review
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID int64, req *ReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.UpdateReview")
	defer span.End()

	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, fmt.Errorf("review %d: %w", reviewID, models.ErrForbidden)
	}

	review.Description = req.Description
	review.Rating = req.Rating
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the user's own review
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	ctx, span := util.StartSpan(ctx, "ReviewService.DeleteReview")
	defer span.End()

	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return fmt.Errorf("review %d: %w", reviewID, models.ErrForbidden)
	}
	return s.store.DeleteReview(ctx, reviewID)
}

// CreateFraudReport attaches a complaint to the user's order
func (s *ReviewService) CreateFraudReport(ctx context.Context, userID int64, req *FraudReportRequest) (*models.FraudReport, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateFraudReport")
	defer span.End()

	if _, err := s.store.GetOrderByID(ctx, req.OrderID); err != nil {
		return nil, err
	}

	report := &models.FraudReport{
		UserID:      userID,
		OrderID:     req.OrderID,
		Description: req.Description,
	}
	if err := s.store.CreateFraudReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("fraud report created",
		zap.Int64("report_id", report.ID),
		zap.Int64("order_id", req.OrderID))
	return report, nil
}

// ListFraudReports returns the user's own fraud reports
func (s *ReviewService) ListFraudReports(ctx context.Context, userID int64) ([]models.FraudReport, error) {
	return s.store.GetFraudReportsByUser(ctx, userID)
}

// UpdateFraudReport edits the user's own fraud report
func (s *ReviewService) UpdateFraudReport(ctx context.Context, userID, reportID int64, req *FraudReportRequest) (*models.FraudReport, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.UpdateFraudReport")
	defer span.End()

	report, err := s.store.GetFraudReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.UserID != userID {
		return nil, fmt.Errorf("fraud report %d: %w", reportID, models.ErrForbidden)
	}

	report.Description = req.Description
	if err := s.store.UpdateFraudReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteFraudReport removes the user's own fraud report
func (s *ReviewService) DeleteFraudReport(ctx context.Context, userID, reportID int64) error {
	ctx, span := util.StartSpan(ctx, "ReviewService.DeleteFraudReport")
	defer span.End()

	report, err := s.store.GetFraudReportByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report.UserID != userID {
		return fmt.Errorf("fraud report %d: %w", reportID, models.ErrForbidden)
	}
	return s.store.DeleteFraudReport(ctx, reportID)
}

// CreateTestimony attaches a testimony to a product. The message is
// HTML escaped before storage.
func (s *ReviewService) CreateTestimony(ctx context.Context, userID int64, req *TestimonyRequest) (*models.Testimony, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateTestimony")
	defer span.End()

	if _, err := s.store.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	testimony := &models.Testimony{
		UserID:    userID,
		ProductID: req.ProductID,
		Message:   html.EscapeString(req.Message),
		Rating:    req.Rating,
	}
	if err := s.store.CreateTestimony(ctx, testimony); err != nil {
		return nil, err
	}

	s.logger.Info("testimony created",
		zap.Int64("testimony_id", testimony.ID),
		zap.Int64("product_id", req.ProductID))
	return testimony, nil
}

// ListTestimoniesByProduct returns a product's testimonies; this view
// is public.
func (s *ReviewService) ListTestimoniesByProduct(ctx context.Context, productID int64) ([]models.Testimony, error) {
	return s.store.GetTestimoniesByProduct(ctx, productID)
}

// ListTestimonies returns the user's own testimonies
func (s *ReviewService) ListTestimonies(ctx context.Context, userID int64) ([]models.Testimony, error) {
	return s.store.GetTestimoniesByUser(ctx, userID)
}

// UpdateTestimony edits the user's own testimony
func (s *ReviewService) UpdateTestimony(ctx context.Context, userID, testimonyID int64, req *TestimonyRequest) (*models.Testimony, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.UpdateTestimony")
	defer span.End()

	testimony, err := s.store.GetTestimonyByID(ctx, testimonyID)
	if err != nil {
		return nil, err
	}
	if testimony.UserID != userID {
		return nil, fmt.Errorf("testimony %d: %w", testimonyID, models.ErrForbidden)
	}

	testimony.Message = html.EscapeString(req.Message)
	testimony.Rating = req.Rating
	if err := s.store.UpdateTestimony(ctx, testimony); err != nil {
		return nil, err
	}
	return testimony, nil
}

// DeleteTestimony removes the user's own testimony
func (s *ReviewService) DeleteTestimony(ctx context.Context, userID, testimonyID int64) error {
	ctx, span := util.StartSpan(ctx, "ReviewService.DeleteTestimony")
	defer span.End()

	testimony, err := s.store.GetTestimonyByID(ctx, testimonyID)
	if err != nil {
		return err
	}
	if testimony.UserID != userID {
		return fmt.Errorf("testimony %d: %w", testimonyID, models.ErrForbidden)
	}
	return s.store.DeleteTestimony(ctx, testimonyID)
}
