package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"
	"moondev-backend/pkg/imaging"
	"moondev-backend/pkg/logger"
	"moondev-backend/pkg/storage"
	"moondev-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Buckets names the object storage buckets for submission artifacts
type Buckets struct {
	ProfilePictures string
	SourceCode      string
}

type submissionUsecase struct {
	submissionRepo domain.SubmissionRepository
	store          domain.ArtifactStore
	notifier       domain.DecisionNotifier
	broadcaster    domain.SubmissionBroadcaster
	validate       *validator.Validate
	buckets        Buckets
	maxArchiveSize int64
	notifyTimeout  time.Duration
}

// NewSubmissionUsecase creates a new submission usecase
func NewSubmissionUsecase(
	submissionRepo domain.SubmissionRepository,
	store domain.ArtifactStore,
	notifier domain.DecisionNotifier,
	broadcaster domain.SubmissionBroadcaster,
	validate *validator.Validate,
	buckets Buckets,
	maxArchiveSize int64,
	notifyTimeout time.Duration,
) domain.SubmissionUsecase {
	return &submissionUsecase{
		submissionRepo: submissionRepo,
		store:          store,
		notifier:       notifier,
		broadcaster:    broadcaster,
		validate:       validate,
		buckets:        buckets,
		maxArchiveSize: maxArchiveSize,
		notifyTimeout:  notifyTimeout,
	}
}

// Submit creates the developer's one and only submission: both
// artifacts are persisted to object storage first, then the row is
// inserted with status pending.
func (uc *submissionUsecase) Submit(ctx context.Context, userID, email string, profile domain.SubmissionProfile, picture, archive domain.Artifact) (*domain.Submission, error) {
	// 1. Validate profile fields
	if err := uc.validate.Struct(profile); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	// 2. Both artifacts are required
	if len(picture.Data) == 0 || len(archive.Data) == 0 {
		return nil, apperror.BadRequest("Please upload both profile picture and source code")
	}

	// 3. Reject early if a submission already exists; the unique index
	// on user_id still backstops a race between two submits.
	exists, err := uc.submissionRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict("You have already submitted an application")
	}

	// 4. Recompress the profile picture; reject if still over the ceiling
	if !validation.IsSupportedImage(picture.Data) {
		return nil, apperror.BadRequest("Profile picture must be a JPEG or PNG image")
	}
	compressed, err := imaging.CompressProfilePicture(picture.Data)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			return nil, apperror.TooLarge("Profile picture is too large even after compression (max 1MB)")
		}
		return nil, apperror.BadRequest("Could not process profile picture: " + err.Error())
	}

	// 5. Source archive must be a real ZIP within the size ceiling
	if !validation.IsZIPArchive(archive.Data) {
		return nil, apperror.BadRequest("Source code must be a ZIP archive")
	}
	if int64(len(archive.Data)) > uc.maxArchiveSize {
		return nil, apperror.TooLarge("Source code archive exceeds the size limit")
	}

	// 6. Upload artifacts. Keys are namespaced by user and disambiguated
	// by timestamp so re-attempts after failures never collide.
	now := time.Now()
	pictureName := storage.SanitizeFilename(picture.Filename)
	// The compressed upload is always JPEG regardless of the input format
	pictureName = strings.TrimSuffix(pictureName, filepath.Ext(pictureName)) + ".jpg"
	pictureKey := fmt.Sprintf("%s/%d-%s", userID, now.UnixNano(), pictureName)
	archiveKey := fmt.Sprintf("%s/%d-%s", userID, now.UnixNano(), storage.SanitizeFilename(archive.Filename))

	if err := uc.store.Upload(ctx, uc.buckets.ProfilePictures, pictureKey, compressed, "image/jpeg"); err != nil {
		return nil, apperror.Upstream("Failed to upload profile picture", err)
	}
	if err := uc.store.Upload(ctx, uc.buckets.SourceCode, archiveKey, archive.Data, "application/zip"); err != nil {
		uc.cleanupArtifact(uc.buckets.ProfilePictures, pictureKey)
		return nil, apperror.Upstream("Failed to upload source code", err)
	}

	// 7. Insert the row. If this fails the uploaded objects are orphans;
	// delete them best-effort rather than leaving them to accumulate.
	sub := &domain.Submission{
		UserID:            userID,
		FullName:          profile.FullName,
		Email:             email,
		PhoneNumber:       profile.PhoneNumber,
		Location:          profile.Location,
		Hobbies:           profile.Hobbies,
		ProfilePictureURL: uc.store.PublicURL(uc.buckets.ProfilePictures, pictureKey),
		SourceCodeURL:     uc.store.PublicURL(uc.buckets.SourceCode, archiveKey),
		Status:            domain.SubmissionStatusPending,
	}
	if err := uc.submissionRepo.Create(ctx, sub); err != nil {
		uc.cleanupArtifact(uc.buckets.ProfilePictures, pictureKey)
		uc.cleanupArtifact(uc.buckets.SourceCode, archiveKey)
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return nil, apperror.Conflict("You have already submitted an application")
		}
		return nil, apperror.Internal(err)
	}

	uc.broadcaster.Broadcast(domain.SubmissionEvent{
		Kind:       domain.SubmissionEventCreated,
		Submission: sub,
	})

	return sub, nil
}

// Decide records an evaluator's terminal verdict. The store performs a
// conditional update so that when two evaluators race, exactly one
// wins; the loser gets an AlreadyDecided conflict and must re-fetch.
// The email notification is dispatched asynchronously and its outcome
// never rolls back the committed decision.
func (uc *submissionUsecase) Decide(ctx context.Context, submissionID, evaluatorID, decision, feedback string) (*domain.Submission, error) {
	// 1. Validate before touching the store
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperror.BadRequest("Please provide feedback before making a decision")
	}
	if decision != domain.SubmissionStatusAccepted && decision != domain.SubmissionStatusRejected {
		return nil, apperror.BadRequest("Invalid decision. Must be: accepted or rejected")
	}

	// 2. Conditional update, guarded by status = 'pending'
	sub, err := uc.submissionRepo.Decide(ctx, submissionID, decision, feedback)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyDecided):
			return nil, apperror.Conflict("Submission has already been decided by another evaluator")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Submission not found")
		}
		return nil, apperror.Internal(err)
	}

	uc.broadcaster.Broadcast(domain.SubmissionEvent{
		Kind:       domain.SubmissionEventUpdated,
		Submission: sub,
	})

	// 3. Fire the notification without holding up the response. A
	// failure is logged with everything needed for a manual resend via
	// the notify endpoint.
	go uc.dispatchNotification(sub, decision, feedback, evaluatorID)

	return sub, nil
}

func (uc *submissionUsecase) dispatchNotification(sub *domain.Submission, decision, feedback, evaluatorID string) {
	ctx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
	defer cancel()

	if err := uc.notifier.SendDecision(ctx, sub.Email, decision, feedback, sub.FullName); err != nil {
		logger.Log.Error("decision saved but notification failed",
			"submission_id", sub.ID,
			"evaluator_id", evaluatorID,
			"decision", decision,
			"feedback", feedback,
			"error", err,
		)
		return
	}
	logger.Log.Info("decision notification sent", "submission_id", sub.ID, "email", sub.Email)
}

// List returns submissions for the evaluator view, newest first
func (uc *submissionUsecase) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, error) {
	if filter.Status != "" {
		switch filter.Status {
		case domain.SubmissionStatusPending, domain.SubmissionStatusAccepted, domain.SubmissionStatusRejected:
		default:
			return nil, apperror.BadRequest("Invalid status filter")
		}
	}
	subs, err := uc.submissionRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return subs, nil
}

// MyStatus returns the developer's own submission projection
func (uc *submissionUsecase) MyStatus(ctx context.Context, userID string) (*domain.SubmissionStatusView, error) {
	sub, err := uc.submissionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("No submission found")
		}
		return nil, apperror.Internal(err)
	}
	return &domain.SubmissionStatusView{
		ID:       sub.ID,
		Status:   sub.Status,
		Feedback: sub.Feedback,
	}, nil
}

// cleanupArtifact removes an orphaned object after a failed submit.
// Failures are logged only; the submit error already tells the user
// what went wrong.
func (uc *submissionUsecase) cleanupArtifact(bucket, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uc.store.Delete(ctx, bucket, key); err != nil {
		logger.Log.Warn("failed to clean up orphaned artifact", "bucket", bucket, "key", key, "error", err)
	}
}
