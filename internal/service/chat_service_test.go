package service

import (
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/internal/util"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeChatStore struct {
	mu       sync.Mutex
	nextID   uint
	messages []model.ChatMessage
	results  []model.QuizResult
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{nextID: 1}
}

func (s *fakeChatStore) AppendMessage(msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextID
	s.nextID++
	msg.Timestamp = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeChatStore) AppendQuizResult(result *model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = s.nextID
	s.nextID++
	result.SubmittedAt = time.Now()
	s.results = append(s.results, *result)
	return nil
}

func (s *fakeChatStore) Messages(lessonID string, studentID uint) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChatMessage
	for _, m := range s.messages {
		if m.LessonID == lessonID && m.StudentID == studentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *fakeChatStore) QuizResults(lessonID string, studentID uint) ([]model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.QuizResult
	for _, r := range s.results {
		if r.LessonID == lessonID && r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeChatStore) StudentIDs(lessonID string) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[uint]bool{}
	var ids []uint
	for _, m := range s.messages {
		if m.LessonID == lessonID && !seen[m.StudentID] {
			seen[m.StudentID] = true
			ids = append(ids, m.StudentID)
		}
	}
	return ids, nil
}

type fakeLinkStore struct {
	links map[uint]*model.StudentLink
}

func (s *fakeLinkStore) FindByUserID(userID uint) (*model.StudentLink, error) {
	link, ok := s.links[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return link, nil
}

type fakeUserStore struct {
	users map[uint]*model.User
}

func (s *fakeUserStore) FindByID(id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeBridge struct {
	mu     sync.Mutex
	sent   map[int64][]string
	alerts []string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{sent: map[int64][]string{}}
}

func (b *fakeBridge) SendToChat(chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent[chatID] = append(b.sent[chatID], text)
	return nil
}

func (b *fakeBridge) SendAlert(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(b.alerts, text)
	return nil
}

type chatFixture struct {
	svc    *ChatService
	chats  *fakeChatStore
	links  *fakeLinkStore
	bridge *fakeBridge
	gen    *stubGenerator
}

func newChatFixture(lesson *model.Lesson) *chatFixture {
	gen := &stubGenerator{response: "Odpověď tutora."}
	chats := newFakeChatStore()
	links := &fakeLinkStore{links: map[uint]*model.StudentLink{}}
	studentEmail := "student@example.com"
	users := &fakeUserStore{users: map[uint]*model.User{
		2: {Email: &studentEmail, DisplayName: "Student Dva", Role: model.Student},
	}}
	bridge := newFakeBridge()
	svc := NewChatService(newFakeLessonStore(lesson), chats, links, users, gen, bridge)
	return &chatFixture{svc: svc, chats: chats, links: links, bridge: bridge, gen: gen}
}

func chatLesson() *model.Lesson {
	l := &model.Lesson{
		Title:          "Fotosyntéza",
		OwnerID:        1,
		StudentText:    "Rostliny přeměňují světlo na energii.",
		ChatbotPersona: "Mluvte jako laskavý mentor.",
		PreparedQuiz: []model.Question{
			{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 2},
			{Question: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 0},
		},
	}
	l.ID = "lesson-1"
	return l
}

func TestHandleStudentMessage(t *testing.T) {
	f := newChatFixture(chatLesson())

	reply, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "Co je fotosyntéza?")
	require.NoError(t, err)
	assert.Equal(t, model.SenderAI, reply.Sender)
	assert.Equal(t, "Odpověď tutora.", reply.Text)

	// System instruction carries the study text and the persona; the
	// student's question is the prompt itself.
	assert.Equal(t, "Co je fotosyntéza?", f.gen.lastPrompt)
	assert.Contains(t, f.gen.lastSystem, "Rostliny přeměňují světlo na energii.")
	assert.Contains(t, f.gen.lastSystem, "Mluvte jako laskavý mentor.")

	messages, err := f.chats.Messages("lesson-1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.SenderStudent, messages[0].Sender)
	assert.Equal(t, model.SenderAI, messages[1].Sender)
}

func TestHandleStudentMessageGenerationFailure(t *testing.T) {
	f := newChatFixture(chatLesson())
	f.gen.err = util.ErrGenerationFailed

	reply, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "Otázka")
	require.NoError(t, err)
	assert.Equal(t, "Omlouvám se, došlo k chybě.", reply.Text)

	messages, err := f.chats.Messages("lesson-1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Omlouvám se, došlo k chybě.", messages[1].Text)
}

func TestHandleStudentMessageUnknownLesson(t *testing.T) {
	f := newChatFixture(chatLesson())

	_, err := f.svc.HandleStudentMessage(context.Background(), "missing", 2, "Otázka")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestConcurrentAppendsBothSurvive(t *testing.T) {
	f := newChatFixture(chatLesson())

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "paralelní zpráva")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	messages, err := f.chats.Messages("lesson-1", 2)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
	for i := 1; i < len(messages); i++ {
		assert.LessOrEqual(t, messages[i-1].Timestamp, messages[i].Timestamp)
	}
}

func TestSubmitQuizScoring(t *testing.T) {
	f := newChatFixture(chatLesson())

	// Correct answer for Q1 only; Q2 unanswered counts as wrong.
	result, err := f.svc.SubmitQuiz("lesson-1", 2, map[int]int{0: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Len(t, result.QuizData, 2)

	// Wrong answer for Q1 scores zero.
	result, err = f.svc.SubmitQuiz("lesson-1", 2, map[int]int{0: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)

	// Both attempts are kept.
	session, err := f.svc.Session("lesson-1", 2)
	require.NoError(t, err)
	assert.Len(t, session.QuizResults, 2)
}

func TestSubmitQuizWithoutQuiz(t *testing.T) {
	lesson := chatLesson()
	lesson.PreparedQuiz = nil
	f := newChatFixture(lesson)

	_, err := f.svc.SubmitQuiz("lesson-1", 2, map[int]int{0: 0})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestProfessorReplyRelaysToTelegram(t *testing.T) {
	f := newChatFixture(chatLesson())
	f.links.links[2] = &model.StudentLink{TelegramID: 555, ChatID: 777, UserID: 2, ActiveLessonID: "lesson-1"}

	err := f.svc.ProfessorReply(context.Background(), "lesson-1", 1, 2, "Podívejte se na kapitolu 3.")
	require.NoError(t, err)

	messages, err := f.chats.Messages("lesson-1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.SenderProfessor, messages[0].Sender)

	assert.Equal(t, []string{"Podívejte se na kapitolu 3."}, f.bridge.sent[777])
}

func TestProfessorReplyWithoutLinkKeepsMessage(t *testing.T) {
	f := newChatFixture(chatLesson())

	err := f.svc.ProfessorReply(context.Background(), "lesson-1", 1, 2, "Zpráva")
	assert.ErrorIs(t, err, util.ErrNotFound)

	// The reply is stored even though the relay had nowhere to go.
	messages, err := f.chats.Messages("lesson-1", 2)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestProfessorReplyRejectsNonOwner(t *testing.T) {
	f := newChatFixture(chatLesson())

	err := f.svc.ProfessorReply(context.Background(), "lesson-1", 42, 2, "Zpráva")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestEscalateBuildsDigest(t *testing.T) {
	f := newChatFixture(chatLesson())

	_, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "Nerozumím tématu.")
	require.NoError(t, err)

	require.NoError(t, f.svc.Escalate(context.Background(), "lesson-1", 2))
	require.Len(t, f.bridge.alerts, 1)

	digest := f.bridge.alerts[0]
	assert.Contains(t, digest, "Nová žádost o pomoc od studenta!")
	assert.Contains(t, digest, "Fotosyntéza")
	assert.Contains(t, digest, "student@example.com")
	assert.Contains(t, digest, "Student: Nerozumím tématu.")
	assert.Contains(t, digest, "AI: Odpověď tutora.")
}

func TestListInteractions(t *testing.T) {
	f := newChatFixture(chatLesson())

	_, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "Dotaz")
	require.NoError(t, err)

	interactions, err := f.svc.ListInteractions("lesson-1", 1)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, uint(2), interactions[0].StudentID)
	assert.Equal(t, "student@example.com", interactions[0].Email)

	_, err = f.svc.ListInteractions("lesson-1", 42)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestAnalyzeStudent(t *testing.T) {
	f := newChatFixture(chatLesson())

	_, err := f.svc.HandleStudentMessage(context.Background(), "lesson-1", 2, "Co je chlorofyl?")
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz("lesson-1", 2, map[int]int{0: 2, 1: 0})
	require.NoError(t, err)

	f.gen.response = `{
		"strongPoints": ["Aktivně se ptá."],
		"areasForImprovement": ["Terminologie."],
		"recommendationsForStudent": ["Projít slovníček."],
		"recommendationsForProfessor": ["Zopakovat pojmy."]
	}`

	analysis, err := f.svc.AnalyzeStudent(context.Background(), "lesson-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aktivně se ptá."}, analysis.StrongPoints)
	assert.Equal(t, []string{"Zopakovat pojmy."}, analysis.RecommendationsForProfessor)

	assert.NotNil(t, f.gen.lastSchema)
	assert.Contains(t, f.gen.lastPrompt, "Co je chlorofyl?")
	assert.Contains(t, f.gen.lastPrompt, "skóre 2 z 2")
}

func TestAnalyzeStudentNoActivity(t *testing.T) {
	f := newChatFixture(chatLesson())

	_, err := f.svc.AnalyzeStudent(context.Background(), "lesson-1", 1, 2)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}
