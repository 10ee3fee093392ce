package usecase

import (
	"context"
	"errors"
	"net/http"

	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"
)

type notificationUsecase struct {
	submissionRepo domain.SubmissionRepository
	notifier       domain.DecisionNotifier
}

// NewNotificationUsecase creates a new notification usecase
func NewNotificationUsecase(submissionRepo domain.SubmissionRepository, notifier domain.DecisionNotifier) domain.NotificationUsecase {
	return &notificationUsecase{
		submissionRepo: submissionRepo,
		notifier:       notifier,
	}
}

// NotifyDecision re-sends the decision email for an already decided
// submission. Used when the automatic dispatch after a decision failed;
// the email recipients tolerate duplicate deliveries.
func (uc *notificationUsecase) NotifyDecision(ctx context.Context, submissionID, action, feedback string) error {
	if action != domain.SubmissionStatusAccepted && action != domain.SubmissionStatusRejected {
		return apperror.BadRequest("Invalid action. Must be: accepted or rejected")
	}

	sub, err := uc.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Submission not found")
		}
		return apperror.Internal(err)
	}

	if err := uc.notifier.SendDecision(ctx, sub.Email, action, feedback, sub.FullName); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to send notification email", err)
	}
	return nil
}
