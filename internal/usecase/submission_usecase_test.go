package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"moondev-backend/internal/domain"
	"moondev-backend/internal/usecase"
	"moondev-backend/pkg/logger"
	"moondev-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.Init()
}

// Mock Repositories
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *MockSubmissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) GetByUserID(ctx context.Context, userID string) (*domain.Submission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockSubmissionRepo) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) Decide(ctx context.Context, id, status, feedback string) (*domain.Submission, error) {
	args := m.Called(ctx, id, status, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	return m.Called(ctx, bucket, key, data, contentType).Error(0)
}
func (m *MockArtifactStore) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}
func (m *MockArtifactStore) PublicURL(bucket, key string) string {
	return m.Called(bucket, key).String(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendDecision(ctx context.Context, to, decision, feedback, fullName string) error {
	return m.Called(ctx, to, decision, feedback, fullName).Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ev domain.SubmissionEvent) {
	m.Called(ev)
}

func newValidate() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func newDecideFixture() (*MockSubmissionRepo, *MockNotifier, *MockBroadcaster, domain.SubmissionUsecase) {
	repo := new(MockSubmissionRepo)
	notifier := new(MockNotifier)
	broadcaster := new(MockBroadcaster)
	uc := usecase.NewSubmissionUsecase(
		repo, new(MockArtifactStore), notifier, broadcaster,
		newValidate(),
		usecase.Buckets{ProfilePictures: "profile-pictures", SourceCode: "source-code"},
		50<<20,
		5*time.Second,
	)
	return repo, notifier, broadcaster, uc
}

func TestDecideValidation(t *testing.T) {
	t.Run("Should reject empty feedback before touching the store", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		_, err := uc.Decide(context.Background(), "sub1", "eval1", domain.SubmissionStatusAccepted, "   ")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "feedback")
		repo.AssertNotCalled(t, "Decide")
	})

	t.Run("Should reject unknown decision values", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		_, err := uc.Decide(context.Background(), "sub1", "eval1", "maybe", "solid work")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid decision")
		repo.AssertNotCalled(t, "Decide")
	})
}

func TestDecideConcurrentEvaluators(t *testing.T) {
	t.Run("Should return conflict when another evaluator already decided", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		repo.On("Decide", mock.Anything, "sub1", domain.SubmissionStatusAccepted, "great").
			Return(nil, domain.ErrAlreadyDecided)

		_, err := uc.Decide(context.Background(), "sub1", "eval1", domain.SubmissionStatusAccepted, "great")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already been decided")
	})

	t.Run("Should return not found when the submission never existed", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		repo.On("Decide", mock.Anything, "ghost", domain.SubmissionStatusRejected, "nope").
			Return(nil, domain.ErrNotFound)

		_, err := uc.Decide(context.Background(), "ghost", "eval1", domain.SubmissionStatusRejected, "nope")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestDecideNotificationDoesNotRollBack(t *testing.T) {
	t.Run("Decision stays committed when the email fails", func(t *testing.T) {
		repo, notifier, broadcaster, uc := newDecideFixture()

		decided := &domain.Submission{
			ID:       "sub1",
			Email:    "dev@example.com",
			FullName: "Dev One",
			Status:   domain.SubmissionStatusAccepted,
		}
		repo.On("Decide", mock.Anything, "sub1", domain.SubmissionStatusAccepted, "welcome").
			Return(decided, nil)
		broadcaster.On("Broadcast", mock.MatchedBy(func(ev domain.SubmissionEvent) bool {
			return ev.Kind == domain.SubmissionEventUpdated && ev.Submission.ID == "sub1"
		})).Return()

		sent := make(chan struct{})
		notifier.On("SendDecision", mock.Anything, "dev@example.com", domain.SubmissionStatusAccepted, "welcome", "Dev One").
			Run(func(args mock.Arguments) { close(sent) }).
			Return(errors.New("smtp: connection refused"))

		sub, err := uc.Decide(context.Background(), "sub1", "eval1", domain.SubmissionStatusAccepted, "welcome")
		assert.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusAccepted, sub.Status)

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was never attempted")
		}
		broadcaster.AssertExpectations(t)
	})
}

func TestSubmitDuplicate(t *testing.T) {
	t.Run("Should conflict when the developer already submitted", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		store := new(MockArtifactStore)
		uc := usecase.NewSubmissionUsecase(
			repo, store, new(MockNotifier), new(MockBroadcaster),
			newValidate(),
			usecase.Buckets{ProfilePictures: "profile-pictures", SourceCode: "source-code"},
			50<<20,
			5*time.Second,
		)

		repo.On("ExistsByUserID", mock.Anything, "user1").Return(true, nil)

		profile := domain.SubmissionProfile{
			FullName:    "Dev One",
			PhoneNumber: "+12025550123",
			Location:    "Berlin",
			Hobbies:     "chess",
		}
		_, err := uc.Submit(context.Background(), "user1", "dev@example.com", profile,
			domain.Artifact{Filename: "me.png", Data: []byte{0x89, 'P', 'N', 'G'}},
			domain.Artifact{Filename: "src.zip", Data: []byte{'P', 'K', 0x03, 0x04}},
		)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already submitted")
		store.AssertNotCalled(t, "Upload")
	})
}

func TestSubmitProfileValidation(t *testing.T) {
	t.Run("Should reject a profile with an invalid phone number", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		uc := usecase.NewSubmissionUsecase(
			repo, new(MockArtifactStore), new(MockNotifier), new(MockBroadcaster),
			newValidate(),
			usecase.Buckets{ProfilePictures: "profile-pictures", SourceCode: "source-code"},
			50<<20,
			5*time.Second,
		)

		profile := domain.SubmissionProfile{
			FullName:    "Dev One",
			PhoneNumber: "not-a-phone",
			Location:    "Berlin",
			Hobbies:     "chess",
		}
		_, err := uc.Submit(context.Background(), "user1", "dev@example.com", profile,
			domain.Artifact{Filename: "me.png", Data: []byte{1}},
			domain.Artifact{Filename: "src.zip", Data: []byte{1}},
		)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "ExistsByUserID")
	})
}

func TestListStatusFilter(t *testing.T) {
	t.Run("Should reject an unknown status filter", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		_, err := uc.List(context.Background(), domain.SubmissionFilter{Status: "archived"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "List")
	})

	t.Run("Should pass a valid filter through to the store", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		filter := domain.SubmissionFilter{Status: domain.SubmissionStatusPending, Search: "berlin"}
		repo.On("List", mock.Anything, filter).Return([]domain.Submission{{ID: "sub1"}}, nil)

		subs, err := uc.List(context.Background(), filter)
		assert.NoError(t, err)
		assert.Len(t, subs, 1)
	})
}

func TestMyStatus(t *testing.T) {
	t.Run("Should project only status and feedback", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		fb := "welcome aboard"
		repo.On("GetByUserID", mock.Anything, "user1").Return(&domain.Submission{
			ID:       "sub1",
			UserID:   "user1",
			Status:   domain.SubmissionStatusAccepted,
			Feedback: &fb,
		}, nil)

		view, err := uc.MyStatus(context.Background(), "user1")
		assert.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusAccepted, view.Status)
		assert.Equal(t, &fb, view.Feedback)
	})

	t.Run("Should return not found when nothing was submitted", func(t *testing.T) {
		repo, _, _, uc := newDecideFixture()

		repo.On("GetByUserID", mock.Anything, "user1").Return(nil, domain.ErrNotFound)

		_, err := uc.MyStatus(context.Background(), "user1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "No submission")
	})
}

func TestNotifyDecisionResend(t *testing.T) {
	t.Run("Should resend for a known submission", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		notifier := new(MockNotifier)
		uc := usecase.NewNotificationUsecase(repo, notifier)

		repo.On("GetByID", mock.Anything, "sub1").Return(&domain.Submission{
			ID: "sub1", Email: "dev@example.com", FullName: "Dev One",
		}, nil)
		notifier.On("SendDecision", mock.Anything, "dev@example.com", domain.SubmissionStatusRejected, "thanks anyway", "Dev One").
			Return(nil)

		err := uc.NotifyDecision(context.Background(), "sub1", domain.SubmissionStatusRejected, "thanks anyway")
		assert.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("Should return not found for an unknown submission", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockNotifier))

		repo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		err := uc.NotifyDecision(context.Background(), "ghost", domain.SubmissionStatusAccepted, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
