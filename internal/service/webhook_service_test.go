package service

import (
	"ai_sensei_backend/internal/model"
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTelegramLinkStore struct {
	links map[int64]*model.StudentLink
}

func newFakeTelegramLinkStore() *fakeTelegramLinkStore {
	return &fakeTelegramLinkStore{links: map[int64]*model.StudentLink{}}
}

func (s *fakeTelegramLinkStore) Upsert(link *model.StudentLink) error {
	s.links[link.TelegramID] = link
	return nil
}

func (s *fakeTelegramLinkStore) FindByTelegramID(telegramID int64) (*model.StudentLink, error) {
	link, ok := s.links[telegramID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

type fakeTelegramUserStore struct {
	nextID uint
	users  map[int64]*model.User
}

func newFakeTelegramUserStore() *fakeTelegramUserStore {
	return &fakeTelegramUserStore{nextID: 100, users: map[int64]*model.User{}}
}

func (s *fakeTelegramUserStore) FindOrCreateByTelegramID(telegramID int64, displayName string) (*model.User, error) {
	if user, ok := s.users[telegramID]; ok {
		return user, nil
	}
	user := &model.User{DisplayName: displayName, Role: model.Student, TelegramID: &telegramID}
	user.ID = s.nextID
	s.nextID++
	s.users[telegramID] = user
	return user, nil
}

type webhookFixture struct {
	svc    *WebhookService
	chats  *fakeChatStore
	links  *fakeTelegramLinkStore
	users  *fakeTelegramUserStore
	bridge *fakeBridge
}

func newWebhookFixture(lesson *model.Lesson) *webhookFixture {
	lessons := newFakeLessonStore(lesson)
	chats := newFakeChatStore()
	tgLinks := newFakeTelegramLinkStore()
	tgUsers := newFakeTelegramUserStore()
	bridge := newFakeBridge()

	svc := NewWebhookService(lessons, tgLinks, tgUsers, chats, bridge)
	return &webhookFixture{svc: svc, chats: chats, links: tgLinks, users: tgUsers, bridge: bridge}
}

func textUpdate(telegramID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			From: &tgbotapi.User{ID: telegramID, FirstName: "Jana", LastName: "Nováková"},
			Chat: &tgbotapi.Chat{ID: chatID},
		},
	}
}

func TestWebhookStartBindsLesson(t *testing.T) {
	f := newWebhookFixture(chatLesson())

	f.svc.HandleUpdate(context.Background(), textUpdate(555, 777, "/start lesson-1"))

	link, err := f.links.FindByTelegramID(555)
	require.NoError(t, err)
	assert.Equal(t, "lesson-1", link.ActiveLessonID)
	assert.Equal(t, int64(777), link.ChatID)
	assert.Equal(t, "Jana", link.FirstName)

	require.Len(t, f.bridge.sent[777], 1)
	assert.Contains(t, f.bridge.sent[777][0], "Vítejte v lekci \"Fotosyntéza\"")
}

func TestWebhookStartWithoutArgument(t *testing.T) {
	f := newWebhookFixture(chatLesson())

	f.svc.HandleUpdate(context.Background(), textUpdate(555, 777, "/start"))

	_, err := f.links.FindByTelegramID(555)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Len(t, f.bridge.sent[777], 1)
	assert.Contains(t, f.bridge.sent[777][0], "/start <ID lekce>")
}

func TestWebhookStartUnknownLesson(t *testing.T) {
	f := newWebhookFixture(chatLesson())

	f.svc.HandleUpdate(context.Background(), textUpdate(555, 777, "/start missing-lesson"))

	// No link must be created for a lesson that does not exist.
	_, err := f.links.FindByTelegramID(555)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Len(t, f.bridge.sent[777], 1)
	assert.Equal(t, "Lekce s tímto ID nebyla nalezena.", f.bridge.sent[777][0])
}

func TestWebhookChatWithoutActiveLesson(t *testing.T) {
	f := newWebhookFixture(chatLesson())

	f.svc.HandleUpdate(context.Background(), textUpdate(555, 777, "Dobrý den"))

	require.Len(t, f.bridge.sent[777], 1)
	assert.Contains(t, f.bridge.sent[777][0], "Nejprve prosím spusťte lekci")
}

func TestWebhookChatAppendsStudentMessage(t *testing.T) {
	f := newWebhookFixture(chatLesson())
	ctx := context.Background()

	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/start lesson-1"))
	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "Co je fotosyntéza?"))

	// The welcome is the only outbound message: inbound chat text is
	// delivered to storage only, no auto-reply.
	require.Len(t, f.bridge.sent[777], 1)

	// The turn landed in the same transcript web students use.
	link, err := f.links.FindByTelegramID(555)
	require.NoError(t, err)
	messages, err := f.chats.Messages("lesson-1", link.UserID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Co je fotosyntéza?", messages[0].Text)
	assert.Equal(t, model.SenderStudent, messages[0].Sender)
}

func TestWebhookIgnoresNonTextUpdates(t *testing.T) {
	f := newWebhookFixture(chatLesson())

	f.svc.HandleUpdate(context.Background(), tgbotapi.Update{})
	f.svc.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 777}}})

	assert.Empty(t, f.bridge.sent)
}

func TestWebhookProvisionsEachTelegramStudent(t *testing.T) {
	f := newWebhookFixture(chatLesson())
	ctx := context.Background()

	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/start lesson-1"))
	f.svc.HandleUpdate(ctx, textUpdate(556, 778, "/start lesson-1"))

	first, err := f.links.FindByTelegramID(555)
	require.NoError(t, err)
	second, err := f.links.FindByTelegramID(556)
	require.NoError(t, err)
	assert.NotEqual(t, first.UserID, second.UserID)

	// Bot accounts carry no email so they cannot collide on the unique
	// email index.
	for _, telegramID := range []int64{555, 556} {
		user := f.users.users[telegramID]
		require.NotNil(t, user)
		assert.Nil(t, user.Email)
	}

	require.Len(t, f.bridge.sent[777], 1)
	require.Len(t, f.bridge.sent[778], 1)
	assert.Contains(t, f.bridge.sent[778][0], "Vítejte v lekci")
}

func TestWebhookStartLikeWordIsChat(t *testing.T) {
	f := newWebhookFixture(chatLesson())
	ctx := context.Background()

	// Without a link a /start lookalike is ordinary chat text.
	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/startle"))
	require.Len(t, f.bridge.sent[777], 1)
	assert.Contains(t, f.bridge.sent[777][0], "Nejprve prosím spusťte lekci")

	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/start lesson-1"))
	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/startle je jiné slovo"))

	link, err := f.links.FindByTelegramID(555)
	require.NoError(t, err)
	assert.Equal(t, "lesson-1", link.ActiveLessonID)

	messages, err := f.chats.Messages("lesson-1", link.UserID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "/startle je jiné slovo", messages[0].Text)
}

func TestWebhookRestartSwitchesLesson(t *testing.T) {
	second := &model.Lesson{Title: "Buněčné dýchání", OwnerID: 1, StudentText: "Text."}
	second.ID = "lesson-2"

	f := newWebhookFixture(chatLesson())
	fls := f.svc.lessons.(*fakeLessonStore)
	fls.lessons["lesson-2"] = second

	ctx := context.Background()
	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/start lesson-1"))
	f.svc.HandleUpdate(ctx, textUpdate(555, 777, "/start lesson-2"))

	link, err := f.links.FindByTelegramID(555)
	require.NoError(t, err)
	assert.Equal(t, "lesson-2", link.ActiveLessonID)
}
