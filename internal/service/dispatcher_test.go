package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"parcel-notifier/internal/mocks"
	"parcel-notifier/internal/models"
	"parcel-notifier/internal/repository"
	"parcel-notifier/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validBody = `{"type":"INSERT","table":"parcels","record":{"id":"p1","studentId":"u42","lockerNumber":"B7"}}`

func strPtr(s string) *string { return &s }

func newDispatcher(repo repository.ProfileRepository, sender service.NotificationSender) *service.Dispatcher {
	return service.NewDispatcher(
		repository.NewStaticFactory(repo),
		service.NewMessagingState(sender, nil),
		time.Second,
		zap.NewNop(),
	)
}

func TestDispatch_Success(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)

	repo.On("GetProfileByID", mock.Anything, "u42").
		Return(&models.Profile{FCMToken: strPtr("tok-abc")}, nil).Once()
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *models.NotificationMessage) bool {
		return msg.Token == "tok-abc" &&
			msg.Notification.Title == "Your Parcel Has Arrived! 📦" &&
			msg.Notification.Body == "Your parcel is ready for collection at Locker B7."
	})).Return("projects/easy-parcel/messages/0:123", nil).Once()

	messageID, err := newDispatcher(repo, sender).Dispatch(context.Background(), []byte(validBody))
	require.NoError(t, err)
	assert.Equal(t, "projects/easy-parcel/messages/0:123", messageID)
}

func TestDispatch_NoTokenNeverSends(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
	}{
		{"null token", &models.Profile{FCMToken: nil}},
		{"empty token", &models.Profile{FCMToken: strPtr("")}},
		{"no profile", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockProfileRepository(t)
			sender := mocks.NewMockNotificationSender(t)
			repo.On("GetProfileByID", mock.Anything, "u42").Return(tt.profile, nil).Once()

			_, err := newDispatcher(repo, sender).Dispatch(context.Background(), []byte(validBody))
			require.Error(t, err)
			assert.Equal(t, "No FCM token found for student u42", err.Error())
			assert.ErrorIs(t, err, models.ErrLookupFault)
			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_LookupErrorIsPropagatedVerbatim(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)
	repo.On("GetProfileByID", mock.Anything, "u42").Return(nil, models.ErrMultipleOrNoRows).Once()

	_, err := newDispatcher(repo, sender).Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.Equal(t, "JSON object requested, multiple (or no) rows returned", err.Error())
	assert.ErrorIs(t, err, models.ErrLookupFault)
	assert.ErrorIs(t, err, models.ErrMultipleOrNoRows)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_MalformedBodyNeverQueriesStore(t *testing.T) {
	bodies := map[string]string{
		"invalid json":    `{"record":`,
		"missing record":  `{"type":"INSERT"}`,
		"null record":     `{"record":null}`,
		"record not obj":  `{"record":"p1"}`,
		"missing student": `{"record":{"id":"p1","lockerNumber":"B7"}}`,
		"missing locker":  `{"record":{"id":"p1","studentId":"u42"}}`,
		"empty body":      ``,
		"top-level array": `[]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			repo := mocks.NewMockProfileRepository(t)
			sender := mocks.NewMockNotificationSender(t)

			_, err := newDispatcher(repo, sender).Dispatch(context.Background(), []byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrPayloadFault)
			assert.Contains(t, err.Error(), "bad payload")
			repo.AssertNotCalled(t, "GetProfileByID", mock.Anything, mock.Anything)
			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_SendFailureReturnsProviderText(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)
	repo.On("GetProfileByID", mock.Anything, "u42").Return(&models.Profile{FCMToken: strPtr("tok-abc")}, nil).Once()
	sender.On("Send", mock.Anything, mock.Anything).
		Return("", errors.New("Requested entity was not found.")).Once()

	_, err := newDispatcher(repo, sender).Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.Equal(t, "Requested entity was not found.", err.Error())
	assert.ErrorIs(t, err, models.ErrDeliveryFault)
	repo.AssertNumberOfCalls(t, "GetProfileByID", 1)
}

func TestDispatch_IsNotIdempotent(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)
	repo.On("GetProfileByID", mock.Anything, "u42").Return(&models.Profile{FCMToken: strPtr("tok-abc")}, nil).Twice()
	sender.On("Send", mock.Anything, mock.Anything).Return("msg-1", nil).Once()
	sender.On("Send", mock.Anything, mock.Anything).Return("msg-2", nil).Once()

	d := newDispatcher(repo, sender)
	first, err := d.Dispatch(context.Background(), []byte(validBody))
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), []byte(validBody))
	require.NoError(t, err)

	assert.Equal(t, "msg-1", first)
	assert.Equal(t, "msg-2", second)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestDispatch_ProviderNotInitialized(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	d := service.NewDispatcher(
		repository.NewStaticFactory(repo),
		service.NewMessagingState(nil, errors.New("failed to parse private key")),
		time.Second,
		zap.NewNop(),
	)

	_, err := d.Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.Equal(t, "messaging client not initialized", err.Error())
	assert.ErrorIs(t, err, models.ErrConfigurationFault)
	repo.AssertNotCalled(t, "GetProfileByID", mock.Anything, mock.Anything)
}

func TestDispatch_StoreConfigurationFault(t *testing.T) {
	sender := mocks.NewMockNotificationSender(t)
	d := service.NewDispatcher(
		mocks.FailingFactory{Err: models.ConfigurationFaultf("configuration error: required environment variable SUPABASE_URL is not set")},
		service.NewMessagingState(sender, nil),
		time.Second,
		zap.NewNop(),
	)

	_, err := d.Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfigurationFault)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestDispatch_LookupTimeout(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)
	repo.On("GetProfileByID", mock.Anything, "u42").
		Return(nil, func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		}).Once()

	d := service.NewDispatcher(
		repository.NewStaticFactory(repo),
		service.NewMessagingState(sender, nil),
		20*time.Millisecond,
		zap.NewNop(),
	)
	_, err := d.Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLookupFault)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "profile lookup timed out")
}

func TestDispatch_SendTimeout(t *testing.T) {
	repo := mocks.NewMockProfileRepository(t)
	sender := mocks.NewMockNotificationSender(t)
	repo.On("GetProfileByID", mock.Anything, "u42").Return(&models.Profile{FCMToken: strPtr("tok-abc")}, nil).Once()
	sender.On("Send", mock.Anything, mock.Anything).
		Return("", func(ctx context.Context, _ *models.NotificationMessage) error {
			<-ctx.Done()
			return ctx.Err()
		}).Once()

	d := service.NewDispatcher(
		repository.NewStaticFactory(repo),
		service.NewMessagingState(sender, nil),
		20*time.Millisecond,
		zap.NewNop(),
	)
	_, err := d.Dispatch(context.Background(), []byte(validBody))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDeliveryFault)
	assert.Contains(t, err.Error(), "notification send timed out")
}

func TestParseParcelEvent_NumericFields(t *testing.T) {
	rec, err := service.ParseParcelEvent([]byte(`{"record":{"id":12,"studentId":"u42","lockerNumber":3,"extra":"ignored"}}`))
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("12"), rec.ID)
	assert.Equal(t, models.FlexString("3"), rec.LockerNumber)
}
