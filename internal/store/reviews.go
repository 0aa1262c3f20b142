package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"
)

// CreateReviewTx inserts the review and, when the order is COMPLETED,
// advances it to REVIEWED in the same transaction. Multiple reviews per
// order are allowed; only the first one moves the status.
func (s *Store) CreateReviewTx(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, review, `
		INSERT INTO reviews (user_id, order_id, description, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING *`, review.UserID, review.OrderID, review.Description, review.Rating)
	if err != nil {
		return convertErr(err, "creating review for order %d", review.OrderID)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		models.OrderStatusReviewed, review.OrderID, models.OrderStatusCompleted); err != nil {
		return fmt.Errorf("marking order %d reviewed: %w", review.OrderID, err)
	}

	return tx.Commit()
}

// GetReviewByID retrieves a review
func (s *Store) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "review %d", id)
	}
	return &review, nil
}

// GetReviewsByUser retrieves a user's reviews, newest first
func (s *Store) GetReviewsByUser(ctx context.Context, userID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return reviews, err
}

// UpdateReview updates a review's text and rating
func (s *Store) UpdateReview(ctx context.Context, review *models.Review) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET description = $1, rating = $2 WHERE id = $3",
		review.Description, review.Rating, review.ID)
	if err != nil {
		return convertErr(err, "updating review %d", review.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("review %d: %w", review.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteReview removes a review
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return convertErr(err, "deleting review %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// CreateFraudReport inserts a fraud report
func (s *Store) CreateFraudReport(ctx context.Context, report *models.FraudReport) error {
	err := s.db.GetContext(ctx, report, `
		INSERT INTO fraud_reports (user_id, order_id, description)
		VALUES ($1, $2, $3)
		RETURNING *`, report.UserID, report.OrderID, report.Description)
	return convertErr(err, "creating fraud report for order %d", report.OrderID)
}

// GetFraudReportByID retrieves a fraud report
func (s *Store) GetFraudReportByID(ctx context.Context, id int64) (*models.FraudReport, error) {
	var report models.FraudReport
	err := s.db.GetContext(ctx, &report, "SELECT * FROM fraud_reports WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "fraud report %d", id)
	}
	return &report, nil
}

// GetFraudReportsByUser retrieves a user's fraud reports, newest first
func (s *Store) GetFraudReportsByUser(ctx context.Context, userID int64) ([]models.FraudReport, error) {
	var reports []models.FraudReport
	err := s.db.SelectContext(ctx, &reports,
		"SELECT * FROM fraud_reports WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return reports, err
}

// UpdateFraudReport updates a fraud report's description
func (s *Store) UpdateFraudReport(ctx context.Context, report *models.FraudReport) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE fraud_reports SET description = $1 WHERE id = $2",
		report.Description, report.ID)
	if err != nil {
		return convertErr(err, "updating fraud report %d", report.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fraud report %d: %w", report.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteFraudReport removes a fraud report
func (s *Store) DeleteFraudReport(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM fraud_reports WHERE id = $1", id)
	if err != nil {
		return convertErr(err, "deleting fraud report %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fraud report %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// CreateTestimony inserts a product testimony
func (s *Store) CreateTestimony(ctx context.Context, testimony *models.Testimony) error {
	err := s.db.GetContext(ctx, testimony, `
		INSERT INTO testimonies (user_id, product_id, message, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING *`, testimony.UserID, testimony.ProductID, testimony.Message, testimony.Rating)
	return convertErr(err, "creating testimony for product %d", testimony.ProductID)
}

// GetTestimonyByID retrieves a testimony
func (s *Store) GetTestimonyByID(ctx context.Context, id int64) (*models.Testimony, error) {
	var testimony models.Testimony
	err := s.db.GetContext(ctx, &testimony, "SELECT * FROM testimonies WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "testimony %d", id)
	}
	return &testimony, nil
}

// GetTestimoniesByProduct retrieves every testimony for a product
func (s *Store) GetTestimoniesByProduct(ctx context.Context, productID int64) ([]models.Testimony, error) {
	var testimonies []models.Testimony
	err := s.db.SelectContext(ctx, &testimonies,
		"SELECT * FROM testimonies WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return testimonies, err
}

// GetTestimoniesByUser retrieves a user's testimonies, newest first
func (s *Store) GetTestimoniesByUser(ctx context.Context, userID int64) ([]models.Testimony, error) {
	var testimonies []models.Testimony
	err := s.db.SelectContext(ctx, &testimonies,
		"SELECT * FROM testimonies WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return testimonies, err
}

// UpdateTestimony updates a testimony's message and rating
func (s *Store) UpdateTestimony(ctx context.Context, testimony *models.Testimony) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE testimonies SET message = $1, rating = $2 WHERE id = $3",
		testimony.Message, testimony.Rating, testimony.ID)
	if err != nil {
		return convertErr(err, "updating testimony %d", testimony.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("testimony %d: %w", testimony.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteTestimony removes a testimony
func (s *Store) DeleteTestimony(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM testimonies WHERE id = $1", id)
	if err != nil {
		return convertErr(err, "deleting testimony %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("testimony %d: %w", id, models.ErrNotFound)
	}
	return nil
}
