package chat_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"motorent/backend/internal/chat"
	"motorent/backend/internal/models"
	"motorent/backend/internal/storage"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	calls chan pushCall
	err   error
}

type pushCall struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

func newRecordingSender(err error) *recordingSender {
	return &recordingSender{calls: make(chan pushCall, 10), err: err}
}

func (r *recordingSender) SendPushNotification(userID, title, body string, data map[string]string) error {
	r.calls <- pushCall{UserID: userID, Title: title, Body: body, Data: data}
	return r.err
}

func testChat() *models.Chat {
	return &models.Chat{
		ID:       "chat-1",
		RentalID: "rental-1",
		RenterID: "renter-1",
		OwnerID:  "owner-1",
	}
}

func TestCreateChatForRental_ReturnsExisting(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	existing := testChat()
	storageMock.On("FindChatByRentalID", "rental-1").Return(existing, nil)

	got, err := svc.CreateChatForRental("rental-1", "renter-1", "owner-1")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	storageMock.AssertNotCalled(t, "CreateChat", mock.Anything)
}

func TestCreateChatForRental_CreatesWhenAbsent(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByRentalID", "rental-1").Return(nil, gorm.ErrRecordNotFound)
	storageMock.On("CreateChat", mock.AnythingOfType("*models.Chat")).Return(nil)

	got, err := svc.CreateChatForRental("rental-1", "renter-1", "owner-1")

	require.NoError(t, err)
	assert.Equal(t, "rental-1", got.RentalID)
	assert.Equal(t, "renter-1", got.RenterID)
	assert.Equal(t, "owner-1", got.OwnerID)
	storageMock.AssertCalled(t, "CreateChat", mock.AnythingOfType("*models.Chat"))
}

// A losing racer sees the unique violation and must return the winner's row,
// not an error.
func TestCreateChatForRental_FetchAfterConflict(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	winner := testChat()
	storageMock.On("FindChatByRentalID", "rental-1").Return(nil, gorm.ErrRecordNotFound).Once()
	storageMock.On("CreateChat", mock.AnythingOfType("*models.Chat")).Return(storage.ErrDuplicateChat)
	storageMock.On("FindChatByRentalID", "rental-1").Return(winner, nil).Once()

	got, err := svc.CreateChatForRental("rental-1", "renter-1", "owner-1")

	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

func TestCreateChatForRental_RenterEqualsOwner(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	_, err := svc.CreateChatForRental("rental-1", "same-user", "same-user")

	assert.ErrorIs(t, err, chat.ErrBadRequest)
	storageMock.AssertNotCalled(t, "CreateChat", mock.Anything)
}

func TestVerifyChatAccess(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("FindChatByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	ok, err := svc.VerifyChatAccess("chat-1", "renter-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyChatAccess("chat-1", "stranger")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyChatAccess("missing", "renter-1")
	require.NoError(t, err, "absent chat is not an error for the pre-flight check")
	assert.False(t, ok)
}

func TestSendMessage_PersistsAndReturnsRouting(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChat", "chat-1").Return(nil).Maybe()

	msg, routing, err := svc.SendMessage("chat-1", "renter-1", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "renter-1", msg.SenderID)
	assert.Equal(t, "Hi", msg.Content)
	assert.False(t, msg.IsRead)
	assert.Equal(t, "renter-1", routing.RenterID)
	assert.Equal(t, "owner-1", routing.OwnerID)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)

	_, _, err := svc.SendMessage("chat-1", "stranger", "Hi")

	assert.ErrorIs(t, err, chat.ErrForbidden)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestSendMessage_MissingChatNotFound(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.SendMessage("missing", "renter-1", "Hi")

	assert.ErrorIs(t, err, chat.ErrChatNotFound)
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	_, _, err := svc.SendMessage("chat-1", "renter-1", "   ")

	assert.ErrorIs(t, err, chat.ErrBadRequest)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestSendMessage_DispatchesPushToOtherParticipant(t *testing.T) {
	storageMock := new(MockStorage)
	sender := newRecordingSender(nil)
	svc := chat.NewService(storageMock, sender, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChat", "chat-1").Return(nil)
	storageMock.On("FindUserByID", "owner-1").Return(&models.User{ID: "owner-1", Name: "Olena", Language: "en"}, nil)
	storageMock.On("FindUserByID", "renter-1").Return(&models.User{ID: "renter-1", Name: "Roman"}, nil)

	_, _, err := svc.SendMessage("chat-1", "renter-1", "Hi there")
	require.NoError(t, err)

	select {
	case call := <-sender.calls:
		assert.Equal(t, "owner-1", call.UserID, "push goes to the other participant")
		assert.Equal(t, "New message from Roman", call.Title)
		assert.Equal(t, "Hi there", call.Body)
		assert.Equal(t, "chat-1", call.Data["chat_id"])
	case <-time.After(time.Second):
		t.Fatal("push was not dispatched")
	}

	storageMock.AssertCalled(t, "TouchChat", "chat-1")
}

// Push failures are swallowed: the durable write already succeeded.
func TestSendMessage_PushFailureDoesNotFailSend(t *testing.T) {
	storageMock := new(MockStorage)
	sender := newRecordingSender(errors.New("push gateway down"))
	svc := chat.NewService(storageMock, sender, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChat", "chat-1").Return(errors.New("db hiccup"))
	storageMock.On("FindUserByID", mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)

	msg, _, err := svc.SendMessage("chat-1", "renter-1", "Hi")

	require.NoError(t, err)
	assert.NotNil(t, msg)

	select {
	case <-sender.calls:
	case <-time.After(time.Second):
		t.Fatal("push was not attempted")
	}
}

func TestSendMessage_PreviewTruncatedTo100Runes(t *testing.T) {
	storageMock := new(MockStorage)
	sender := newRecordingSender(nil)
	svc := chat.NewService(storageMock, sender, nil)

	long := strings.Repeat("б", 250)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)
	storageMock.On("TouchChat", "chat-1").Return(nil)
	storageMock.On("FindUserByID", mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.SendMessage("chat-1", "renter-1", long)
	require.NoError(t, err)

	select {
	case call := <-sender.calls:
		assert.Equal(t, 100, len([]rune(call.Body)))
		assert.Equal(t, strings.Repeat("б", 100), call.Body)
	case <-time.After(time.Second):
		t.Fatal("push was not dispatched")
	}
}

func TestMarkMessagesAsRead(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("MarkMessagesRead", "chat-1", "owner-1", mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	err := svc.MarkMessagesAsRead("chat-1", "owner-1")

	require.NoError(t, err)
	storageMock.AssertCalled(t, "MarkMessagesRead", "chat-1", "owner-1", mock.AnythingOfType("time.Time"))
}

// Calling twice produces the same end state; the second call simply affects
// zero rows.
func TestMarkMessagesAsRead_Idempotent(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("MarkMessagesRead", "chat-1", "owner-1", mock.AnythingOfType("time.Time")).Return(int64(2), nil).Once()
	storageMock.On("MarkMessagesRead", "chat-1", "owner-1", mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

	require.NoError(t, svc.MarkMessagesAsRead("chat-1", "owner-1"))
	require.NoError(t, svc.MarkMessagesAsRead("chat-1", "owner-1"))
}

// The service boundary is hardened: a non-participant cannot flip read state
// even if the transport forgot to check.
func TestMarkMessagesAsRead_NonParticipantForbidden(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)

	err := svc.MarkMessagesAsRead("chat-1", "stranger")

	assert.ErrorIs(t, err, chat.ErrForbidden)
	storageMock.AssertNotCalled(t, "MarkMessagesRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatMessages_AscendingOrder(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	now := time.Now()
	newestFirst := []models.Message{
		{ID: "m3", ChatID: "chat-1", CreatedAt: now},
		{ID: "m2", ChatID: "chat-1", CreatedAt: now.Add(-time.Minute)},
		{ID: "m1", ChatID: "chat-1", CreatedAt: now.Add(-2 * time.Minute)},
	}

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("FindMessagesPage", "chat-1", 1, 50).Return(newestFirst, nil)

	msgs, err := svc.ChatMessages("chat-1", "renter-1", 0, 0)

	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID, "oldest first for display")
	assert.Equal(t, "m3", msgs[2].ID)
	assert.True(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
}

func TestChatMessages_LimitClamped(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("FindMessagesPage", "chat-1", 2, 200).Return([]models.Message{}, nil)

	_, err := svc.ChatMessages("chat-1", "renter-1", 2, 5000)

	require.NoError(t, err)
	storageMock.AssertCalled(t, "FindMessagesPage", "chat-1", 2, 200)
}

func TestChatMessages_NonParticipantForbidden(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)

	_, err := svc.ChatMessages("chat-1", "stranger", 1, 50)

	assert.ErrorIs(t, err, chat.ErrForbidden)
	storageMock.AssertNotCalled(t, "FindMessagesPage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnreadMessageCount(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("CountUnreadForUser", "owner-1").Return(int64(4), nil)

	n, err := svc.UnreadMessageCount("owner-1")

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestMyChats_EnrichedSummaries(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	c := testChat()
	last := &models.Message{ID: "m9", ChatID: c.ID, SenderID: "renter-1", Content: "see you"}

	storageMock.On("FindChatsForUser", "owner-1").Return([]models.Chat{*c}, nil)
	storageMock.On("FindUserByID", "renter-1").Return(&models.User{ID: "renter-1", Name: "Roman", AvatarURL: "https://cdn/a.jpg"}, nil)
	storageMock.On("FindRentalByID", "rental-1").Return(&models.Rental{ID: "rental-1", VehicleID: "bike-1"}, nil)
	storageMock.On("FindVehicleByID", "bike-1").Return(&models.Vehicle{
		ID: "bike-1", Brand: "Honda", Model: "CB500X",
		ImageURLs: pq.StringArray{"https://cdn/bike.jpg", "https://cdn/bike2.jpg"},
	}, nil)
	storageMock.On("LastMessage", "chat-1").Return(last, nil)
	storageMock.On("CountUnreadInChat", "chat-1", "owner-1").Return(int64(1), nil)

	summaries, err := svc.MyChats("owner-1")

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, "chat-1", s.ID)
	assert.Equal(t, "Roman", s.Counterpart.Name, "counterpart is the other participant")
	assert.Equal(t, "Honda", s.Vehicle.Brand)
	assert.Equal(t, "https://cdn/bike.jpg", s.Vehicle.PrimaryImage)
	assert.Equal(t, "m9", s.LastMessage.ID)
	assert.Equal(t, int64(1), s.UnreadCount)
}

func TestMyChats_MissingVehicleDegrades(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	c := testChat()
	storageMock.On("FindChatsForUser", "renter-1").Return([]models.Chat{*c}, nil)
	storageMock.On("FindUserByID", "owner-1").Return(&models.User{ID: "owner-1", Name: "Olena"}, nil)
	storageMock.On("FindRentalByID", "rental-1").Return(nil, gorm.ErrRecordNotFound)
	storageMock.On("LastMessage", "chat-1").Return(nil, nil)
	storageMock.On("CountUnreadInChat", "chat-1", "renter-1").Return(int64(0), nil)

	summaries, err := svc.MyChats("renter-1")

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].Vehicle.Brand)
	assert.Nil(t, summaries[0].LastMessage)
}

func TestChatByID(t *testing.T) {
	storageMock := new(MockStorage)
	svc := chat.NewService(storageMock, nil, nil)

	storageMock.On("FindChatByID", "chat-1").Return(testChat(), nil)
	storageMock.On("FindUserByID", "owner-1").Return(&models.User{ID: "owner-1", Name: "Olena"}, nil)
	storageMock.On("FindRentalByID", "rental-1").Return(&models.Rental{ID: "rental-1", VehicleID: "bike-1"}, nil)
	storageMock.On("FindVehicleByID", "bike-1").Return(&models.Vehicle{ID: "bike-1", Brand: "Yamaha", Model: "MT-07"}, nil)
	storageMock.On("LastMessage", "chat-1").Return(nil, nil)
	storageMock.On("CountUnreadInChat", "chat-1", "renter-1").Return(int64(0), nil)

	summary, err := svc.ChatByID("chat-1", "renter-1")

	require.NoError(t, err)
	assert.Equal(t, "Olena", summary.Counterpart.Name)

	_, err = svc.ChatByID("chat-1", "stranger")
	assert.ErrorIs(t, err, chat.ErrForbidden)

	storageMock.On("FindChatByID", "missing").Return(nil, gorm.ErrRecordNotFound)
	_, err = svc.ChatByID("missing", "renter-1")
	assert.ErrorIs(t, err, chat.ErrChatNotFound)
}
