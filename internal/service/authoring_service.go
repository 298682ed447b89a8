package service

import (
	"ai_sensei_backend/internal/model"
	"ai_sensei_backend/internal/util"
	"ai_sensei_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// lessonStore is the slice of the lesson repository the authoring workflow
// needs. Single-field updates are the transition commit primitive: each
// generation step writes exactly one column on success.
type lessonStore interface {
	FindByID(id string) (*model.Lesson, error)
	UpdateField(id string, field string, value interface{}) error
}

// blobStore is the slice of StorageService used for source files.
type blobStore interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	Download(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	GetURL(name string) string
}

// SourceFile is a listed source blob. Unsupported extensions are kept in
// storage but excluded from generation; the flag lets the UI say so.
type SourceFile struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	Supported bool   `json:"supported"`
}

const sourceSeparator = "\n\n---\n\n"

// AuthoringService drives a lesson from uploaded sources to study text to
// derived artifacts. Every transition is professor-initiated and one-shot:
// a failed generation leaves the lesson exactly as it was.
type AuthoringService struct {
	lessons   lessonStore
	storage   blobStore
	extractor *ExtractService
	generator Generator
}

func NewAuthoringService(lessons lessonStore, storage blobStore, extractor *ExtractService, generator Generator) *AuthoringService {
	return &AuthoringService{
		lessons:   lessons,
		storage:   storage,
		extractor: extractor,
		generator: generator,
	}
}

func sourcePrefix(lessonID string) string {
	return "sources/" + lessonID
}

func globalPrefix(professorID uint) string {
	return fmt.Sprintf("global_sources/%d", professorID)
}

// validateFileName rejects anything that is not a plain object name.
func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: bad file name", util.ErrInvalidArgument)
	}
	return nil
}

// validateFilePath rejects caller-supplied object paths whose cleaned
// form would escape the storage root.
func validateFilePath(p string) error {
	if p == "" || path.Clean("/"+p) != "/"+p {
		return fmt.Errorf("%w: bad file path", util.ErrInvalidArgument)
	}
	return nil
}

// requireOwnedLesson loads a lesson and checks the caller owns it.
func (s *AuthoringService) requireOwnedLesson(lessonID string, ownerID uint) (*model.Lesson, error) {
	lesson, err := s.lessons.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", lessonID, util.ErrNotFound)
		}
		return nil, err
	}
	if lesson.OwnerID != ownerID {
		return nil, util.ErrPermissionDenied
	}
	return lesson, nil
}

func (s *AuthoringService) UploadSource(ctx context.Context, lessonID string, ownerID uint, name string, reader io.Reader, size int64, contentType string) (*SourceFile, error) {
	if _, err := s.requireOwnedLesson(lessonID, ownerID); err != nil {
		return nil, err
	}
	if err := validateFileName(name); err != nil {
		return nil, err
	}

	objectName := path.Join(sourcePrefix(lessonID), name)
	url, err := s.storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload source: %w", err)
	}

	return &SourceFile{Name: name, URL: url, Size: size, Supported: IsSupported(name)}, nil
}

func (s *AuthoringService) ListSources(ctx context.Context, lessonID string, ownerID uint) ([]SourceFile, error) {
	if _, err := s.requireOwnedLesson(lessonID, ownerID); err != nil {
		return nil, err
	}
	return s.listPrefix(ctx, sourcePrefix(lessonID))
}

func (s *AuthoringService) DeleteSource(ctx context.Context, lessonID string, ownerID uint, name string) error {
	if _, err := s.requireOwnedLesson(lessonID, ownerID); err != nil {
		return err
	}
	if err := validateFileName(name); err != nil {
		return err
	}
	return s.storage.Delete(ctx, path.Join(sourcePrefix(lessonID), name))
}

// Global files are professor-scoped, not tied to any lesson.

func (s *AuthoringService) UploadGlobal(ctx context.Context, professorID uint, name string, reader io.Reader, size int64, contentType string) (*SourceFile, error) {
	if err := validateFileName(name); err != nil {
		return nil, err
	}
	objectName := path.Join(globalPrefix(professorID), name)
	url, err := s.storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload global file: %w", err)
	}
	return &SourceFile{Name: name, URL: url, Size: size, Supported: IsSupported(name)}, nil
}

func (s *AuthoringService) ListGlobal(ctx context.Context, professorID uint) ([]SourceFile, error) {
	return s.listPrefix(ctx, globalPrefix(professorID))
}

func (s *AuthoringService) DeleteGlobal(ctx context.Context, professorID uint, name string) error {
	if err := validateFileName(name); err != nil {
		return err
	}
	return s.storage.Delete(ctx, path.Join(globalPrefix(professorID), name))
}

func (s *AuthoringService) listPrefix(ctx context.Context, prefix string) ([]SourceFile, error) {
	objects, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	files := make([]SourceFile, 0, len(objects))
	for _, obj := range objects {
		files = append(files, SourceFile{
			Name:      obj.Name,
			URL:       s.storage.GetURL(path.Join(prefix, obj.Name)),
			Size:      obj.Size,
			Supported: IsSupported(obj.Name),
		})
	}
	return files, nil
}

// GenerateStudyText extracts every supported source in parallel, merges
// them into one synthesis prompt and stores the result as the lesson's
// study text. On any failure the previous study text is left untouched.
func (s *AuthoringService) GenerateStudyText(ctx context.Context, lessonID string, ownerID uint) (string, error) {
	if _, err := s.requireOwnedLesson(lessonID, ownerID); err != nil {
		return "", err
	}

	objects, err := s.storage.List(ctx, sourcePrefix(lessonID))
	if err != nil {
		return "", fmt.Errorf("list sources: %w", err)
	}

	var supported []ObjectInfo
	for _, obj := range objects {
		if IsSupported(obj.Name) {
			supported = append(supported, obj)
		}
	}
	if len(supported) == 0 {
		return "", util.ErrNoSupportedSources
	}

	// Extraction order is irrelevant; texts land at their source's index
	// so the combined document is deterministic.
	texts := make([]string, len(supported))
	g, gctx := errgroup.WithContext(ctx)
	for i, obj := range supported {
		g.Go(func() error {
			data, err := s.storage.Download(gctx, path.Join(sourcePrefix(lessonID), obj.Name))
			if err != nil {
				return fmt.Errorf("download %s: %w", obj.Name, err)
			}
			text, err := s.extractor.Extract(obj.Name, data)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	combined := strings.Join(texts, sourceSeparator)
	prompt := "Jste expert na vzdělávání. Na základě VŠECH NÁSLEDUJÍCÍCH MATERIÁLŮ (oddělených '---') vytvořte jeden souvislý a srozumitelný studijní text pro studenta. Syntetizujte informace ze všech zdrojů. Použijte nadpisy a odrážky. Materiály:\n\n" + combined

	text, err := s.generator.Generate(ctx, prompt, nil, "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("study_text", "error").Inc()
		return "", err
	}
	monitoring.GenerationCounter.WithLabelValues("study_text", "ok").Inc()

	if err := s.lessons.UpdateField(lessonID, "student_text", text); err != nil {
		return "", fmt.Errorf("store study text: %w", err)
	}
	return text, nil
}

// RefineStudyText is the user-in-the-loop edit step: one instruction, one
// rewrite, replace on success only.
func (s *AuthoringService) RefineStudyText(ctx context.Context, lessonID string, ownerID uint, instruction string) (string, error) {
	lesson, err := s.requireOwnedLesson(lessonID, ownerID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: missing instruction", util.ErrInvalidArgument)
	}
	if strings.TrimSpace(lesson.StudentText) == "" {
		return "", fmt.Errorf("%w: lesson has no study text", util.ErrInvalidArgument)
	}

	prompt := fmt.Sprintf("Jako expert na vzdělávání, uprav následující text na základě tohoto požadavku: \"%s\". Text k úpravě:\n\n%s", instruction, lesson.StudentText)

	text, err := s.generator.Generate(ctx, prompt, nil, "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("refine_text", "error").Inc()
		return "", err
	}
	monitoring.GenerationCounter.WithLabelValues("refine_text", "ok").Inc()

	if err := s.lessons.UpdateField(lessonID, "student_text", text); err != nil {
		return "", fmt.Errorf("store study text: %w", err)
	}
	return text, nil
}

// GenerateQuiz builds a schema-constrained quiz from the study text and
// persists it, overwriting any previous quiz (last write wins).
func (s *AuthoringService) GenerateQuiz(ctx context.Context, lessonID string, ownerID uint, count int, instructions string) ([]model.Question, error) {
	lesson, err := s.requireOwnedLesson(lessonID, ownerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(lesson.StudentText) == "" {
		return nil, fmt.Errorf("%w: lesson has no study text", util.ErrInvalidArgument)
	}
	if count < 1 || count > 20 {
		return nil, fmt.Errorf("%w: question count out of range", util.ErrInvalidArgument)
	}

	extra := ""
	if instructions != "" {
		extra = "Zaměř se na tyto specifické pokyny: " + instructions
	}
	prompt := fmt.Sprintf(`Jsi učitel. Na základě následujícího studijního textu vytvoř kvíz. Dodržuj tyto instrukce:
1. Vytvoř přesně %d otázek.
2. Každá otázka musí mít 4 možné odpovědi.
3. Jasně označ index správné odpovědi (0-3).
4. %s

Studijní text:
---
%s
---`, count, extra, lesson.StudentText)

	result, err := s.generator.Generate(ctx, prompt, quizSchema(), "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("quiz", "error").Inc()
		return nil, err
	}
	monitoring.GenerationCounter.WithLabelValues("quiz", "ok").Inc()

	var quiz []model.Question
	if err := json.Unmarshal([]byte(result), &quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationMalformed, err)
	}
	for i, q := range quiz {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", util.ErrGenerationMalformed, i, err)
		}
	}

	if err := s.lessons.UpdateField(lessonID, "prepared_quiz", quiz); err != nil {
		return nil, fmt.Errorf("store quiz: %w", err)
	}
	return quiz, nil
}

// GenerateFinalTest is GenerateQuiz's bigger sibling: typed questions,
// declared difficulty, per-question explanations.
func (s *AuthoringService) GenerateFinalTest(ctx context.Context, lessonID string, ownerID uint, count int, questionType, difficulty string) ([]model.TestQuestion, error) {
	lesson, err := s.requireOwnedLesson(lessonID, ownerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(lesson.StudentText) == "" {
		return nil, fmt.Errorf("%w: lesson has no study text", util.ErrInvalidArgument)
	}
	if count < 1 || count > 30 {
		return nil, fmt.Errorf("%w: question count out of range", util.ErrInvalidArgument)
	}
	if questionType != "multiple-choice" && questionType != "true-false" {
		return nil, fmt.Errorf("%w: unknown question type %q", util.ErrInvalidArgument, questionType)
	}

	prompt := fmt.Sprintf(`Jsi expert na tvorbu testů. Na základě studijního textu vytvoř finální test.
Studijní text: """%s"""
Požadavky:
- Vytvoř přesně %d otázek.
- Typ otázek: %s.
- Obtížnost: %s.
- Každá otázka musí mít 'question' (otázka), 'options' (pole 4 možností) a 'correctAnswerIndex' (index správné odpovědi 0-3).
- Přidej i 'explanation' (krátké vysvětlení správné odpovědi).
Odpověz POUZE ve formátu JSON.`, lesson.StudentText, count, questionType, difficulty)

	result, err := s.generator.Generate(ctx, prompt, finalTestSchema(), "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("final_test", "error").Inc()
		return nil, err
	}
	monitoring.GenerationCounter.WithLabelValues("final_test", "ok").Inc()

	var test []model.TestQuestion
	if err := json.Unmarshal([]byte(result), &test); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationMalformed, err)
	}
	for i, q := range test {
		if err := validateQuestion(q.Question); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", util.ErrGenerationMalformed, i, err)
		}
	}

	if err := s.lessons.UpdateField(lessonID, "final_test", test); err != nil {
		return nil, fmt.Errorf("store final test: %w", err)
	}
	return test, nil
}

// GeneratePresentation produces slide content, persists it on the lesson
// and renders the paginated PDF handed back to the professor.
func (s *AuthoringService) GeneratePresentation(ctx context.Context, lessonID string, ownerID uint, slideCount int, themeColor string) ([]model.Slide, []byte, error) {
	lesson, err := s.requireOwnedLesson(lessonID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(lesson.StudentText) == "" {
		return nil, nil, fmt.Errorf("%w: lesson has no study text", util.ErrInvalidArgument)
	}
	if slideCount < 1 || slideCount > 30 {
		return nil, nil, fmt.Errorf("%w: slide count out of range", util.ErrInvalidArgument)
	}

	prompt := fmt.Sprintf("Jsi expert na tvorbu prezentací. Z následujícího textu vytvoř obsah pro prezentaci o %d slidech. Každý slide musí mít krátký 'title' a 'content' jako pole s maximálně 4 stručnými odrážkami. Odpověz POUZE ve formátu JSON. Text:\n\n%s", slideCount, lesson.StudentText)

	result, err := s.generator.Generate(ctx, prompt, presentationSchema(), "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("presentation", "error").Inc()
		return nil, nil, err
	}
	monitoring.GenerationCounter.WithLabelValues("presentation", "ok").Inc()

	var slides []model.Slide
	if err := json.Unmarshal([]byte(result), &slides); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrGenerationMalformed, err)
	}
	if len(slides) == 0 {
		return nil, nil, fmt.Errorf("%w: empty presentation", util.ErrGenerationMalformed)
	}

	pdfBytes, err := renderPresentationPDF(slides, themeColor)
	if err != nil {
		return nil, nil, fmt.Errorf("render presentation: %w", err)
	}

	if err := s.lessons.UpdateField(lessonID, "presentation", slides); err != nil {
		return nil, nil, fmt.Errorf("store presentation: %w", err)
	}
	return slides, pdfBytes, nil
}

// AnalyzeSourceFile summarizes one uploaded file without touching the
// lesson; the result goes back to the caller only.
func (s *AuthoringService) AnalyzeSourceFile(ctx context.Context, lessonID string, ownerID uint, fileName string) (string, error) {
	if _, err := s.requireOwnedLesson(lessonID, ownerID); err != nil {
		return "", err
	}
	if err := validateFileName(fileName); err != nil {
		return "", err
	}

	data, err := s.storage.Download(ctx, path.Join(sourcePrefix(lessonID), fileName))
	if err != nil {
		return "", fmt.Errorf("%s: %w", fileName, util.ErrNotFound)
	}

	text, err := s.extractor.Extract(fileName, data)
	if err != nil {
		return "", err
	}

	prompt := "Proveď analýzu následujícího textu z edukativního materiálu a vytvoř strukturované shrnutí klíčových bodů:\n\n" + text

	analysis, err := s.generator.Generate(ctx, prompt, nil, "")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("source_analysis", "error").Inc()
		return "", err
	}
	monitoring.GenerationCounter.WithLabelValues("source_analysis", "ok").Inc()
	return analysis, nil
}

// SourceFileContent returns the extracted plain text of any stored file
// path the caller names.
func (s *AuthoringService) SourceFileContent(ctx context.Context, filePath string) (string, error) {
	if err := validateFilePath(filePath); err != nil {
		return "", err
	}

	data, err := s.storage.Download(ctx, filePath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filePath, util.ErrNotFound)
	}
	return s.extractor.Extract(path.Base(filePath), data)
}

func validateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("empty question")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(q.Options))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
		return fmt.Errorf("correct answer index %d out of range", q.CorrectAnswerIndex)
	}
	return nil
}
