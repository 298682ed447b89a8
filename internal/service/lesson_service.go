package service

import (
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/internal/repository"
	"ai_sensei_backend/internal/util"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// LessonService covers the plain CRUD side of lessons. Generation steps
// live in AuthoringService.
type LessonService struct {
	lessonRepo *repository.LessonRepository
}

func NewLessonService(lessonRepo *repository.LessonRepository) *LessonService {
	return &LessonService{lessonRepo: lessonRepo}
}

// LessonUpdate carries the editable metadata fields. Pointers distinguish
// "not sent" from "set to empty".
type LessonUpdate struct {
	Title          *string `json:"title"`
	Subtitle       *string `json:"subtitle"`
	StudentText    *string `json:"studentText"`
	VideoURL       *string `json:"videoUrl"`
	ChatbotPersona *string `json:"chatbotPersona"`
}

func (s *LessonService) Create(ownerID uint, title, subtitle string) (*model.Lesson, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: missing title", util.ErrInvalidArgument)
	}

	lesson := &model.Lesson{
		Title:    title,
		Subtitle: subtitle,
		OwnerID:  ownerID,
	}
	if err := s.lessonRepo.Create(lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return lesson, nil
}

func (s *LessonService) Get(id string) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", id, util.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

// GetOwned is Get plus the ownership check used by every professor route.
func (s *LessonService) GetOwned(id string, ownerID uint) (*model.Lesson, error) {
	lesson, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if lesson.OwnerID != ownerID {
		return nil, util.ErrPermissionDenied
	}
	return lesson, nil
}

func (s *LessonService) ListByOwner(ownerID uint) ([]model.Lesson, error) {
	return s.lessonRepo.FindByOwner(ownerID)
}

// ListAll backs the student catalogue; artifacts stay included so clients
// can tell which lessons carry a quiz.
func (s *LessonService) ListAll() ([]model.Lesson, error) {
	return s.lessonRepo.FindAll()
}

func (s *LessonService) Update(id string, ownerID uint, update LessonUpdate) (*model.Lesson, error) {
	if _, err := s.GetOwned(id, ownerID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", util.ErrInvalidArgument)
		}
		fields["title"] = *update.Title
	}
	if update.Subtitle != nil {
		fields["subtitle"] = *update.Subtitle
	}
	if update.StudentText != nil {
		fields["student_text"] = *update.StudentText
	}
	if update.VideoURL != nil {
		fields["video_url"] = *update.VideoURL
	}
	if update.ChatbotPersona != nil {
		fields["chatbot_persona"] = *update.ChatbotPersona
	}

	if len(fields) > 0 {
		if err := s.lessonRepo.UpdateFields(id, fields); err != nil {
			return nil, fmt.Errorf("update lesson: %w", err)
		}
	}
	return s.lessonRepo.FindByID(id)
}

func (s *LessonService) Delete(id string, ownerID uint) error {
	if _, err := s.GetOwned(id, ownerID); err != nil {
		return err
	}
	return s.lessonRepo.Delete(id)
}
