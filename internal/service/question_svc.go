package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
	"github.com/mduc-2610/doc-agent-mlt/internal/prompt"
	"github.com/mduc-2610/doc-agent-mlt/internal/repository"
)

const (
	// How much of the retrieval context each item keeps as provenance.
	sourceContextExcerptLength = 300

	statusSuccess        = "success"
	statusPartialSuccess = "partial_success"
	statusWarning        = "warning"
)

// ErrNoRelevantContext signals that retrieval found nothing to ground
// generation on; handlers map it to a client error.
var ErrNoRelevantContext = fmt.Errorf("no relevant context found for topic")

// BatchResult reports what a generation batch delivered against its targets.
type BatchResult struct {
	Status         string            `json:"status"`
	Questions      []model.Question  `json:"questions"`
	Flashcards     []model.Flashcard `json:"flashcards"`
	QuestionCount  int               `json:"question_count"`
	FlashcardCount int               `json:"flashcard_count"`
	TargetTotal    int               `json:"target_total"`
	SuccessRate    float64           `json:"success_rate"`
	ContextLength  int               `json:"context_length"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// QuestionService orchestrates retrieval-grounded generation and owns the
// question/flashcard records it produces.
type QuestionService struct {
	search     *VectorSearchService
	generation *GenerationService
	questions  *repository.QuestionRepository
	flashcards *repository.FlashcardRepository

	maxContextLength int
	log              *logger.Logger
}

func NewQuestionService(
	search *VectorSearchService,
	generation *GenerationService,
	questions *repository.QuestionRepository,
	flashcards *repository.FlashcardRepository,
	maxContextLength int,
	log *logger.Logger,
) *QuestionService {
	if maxContextLength <= 0 {
		maxContextLength = 3000
	}
	return &QuestionService{
		search:           search,
		generation:       generation,
		questions:        questions,
		flashcards:       flashcards,
		maxContextLength: maxContextLength,
		log:              log,
	}
}

// GenerateBatch retrieves context for the topic, generates up to quizCount
// questions and flashcardCount flashcards, and persists whatever validated.
// Delivering less than the target is reported in the result, not as an
// error; an empty retrieval context is the one hard failure.
func (s *QuestionService) GenerateBatch(ctx context.Context, sessionID uuid.UUID, topic string, documentIDs []uuid.UUID, quizCount, flashcardCount int) (*BatchResult, error) {
	contextText, err := s.search.GetRelevantContext(ctx, topic, documentIDs, s.maxContextLength)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if contextText == "" {
		return nil, ErrNoRelevantContext
	}

	result := &BatchResult{
		TargetTotal:   quizCount + flashcardCount,
		ContextLength: len(contextText),
	}
	modelName := s.generation.Model()
	excerpt := contextExcerpt(contextText)

	if quizCount > 0 {
		items := s.generation.GenerateQuestionsChunked(ctx, prompt.QuestionTemplate, topic, contextText, quizCount)
		for _, item := range items {
			question, answers := buildQuestion(item, sessionID, topic, excerpt, modelName)
			if err := s.questions.CreateWithAnswers(ctx, question, answers); err != nil {
				s.log.Error("failed to persist question", "error", err)
				result.Warnings = append(result.Warnings, "failed to save a generated question")
				continue
			}
			result.Questions = append(result.Questions, *question)
		}
		if len(result.Questions) < quizCount {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("generated %d/%d questions", len(result.Questions), quizCount))
		}
	}

	if flashcardCount > 0 {
		items := s.generation.GenerateFlashcardsChunked(ctx, prompt.FlashcardTemplate, topic, contextText, flashcardCount)
		var cards []model.Flashcard
		for _, item := range items {
			cards = append(cards, buildFlashcard(item, sessionID, topic, excerpt, modelName))
		}
		if len(cards) > 0 {
			if err := s.flashcards.CreateBatch(ctx, cards); err != nil {
				s.log.Error("failed to persist flashcards", "error", err)
				result.Warnings = append(result.Warnings, "failed to save generated flashcards")
				cards = nil
			}
		}
		result.Flashcards = cards
		if len(cards) < flashcardCount {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("generated %d/%d flashcards", len(cards), flashcardCount))
		}
	}

	result.QuestionCount = len(result.Questions)
	result.FlashcardCount = len(result.Flashcards)
	result.SuccessRate = successRate(result.QuestionCount+result.FlashcardCount, result.TargetTotal)
	result.Status = batchStatus(result.SuccessRate)

	s.log.Info("generation batch finished",
		"session_id", sessionID, "topic", topic,
		"questions", result.QuestionCount, "flashcards", result.FlashcardCount,
		"success_rate", result.SuccessRate, "status", result.Status)
	return result, nil
}

func successRate(delivered, target int) float64 {
	if target <= 0 {
		return 100
	}
	return float64(delivered) / float64(target) * 100
}

func batchStatus(rate float64) string {
	switch {
	case rate >= 90:
		return statusSuccess
	case rate >= 50:
		return statusPartialSuccess
	default:
		return statusWarning
	}
}

func contextExcerpt(contextText string) string {
	return truncateOnRuneBoundary(contextText, sourceContextExcerptLength)
}

func buildQuestion(item map[string]interface{}, sessionID uuid.UUID, topic, excerpt, modelName string) (*model.Question, []model.QuestionAnswer) {
	correct := stringField(item, "correct_answer")
	questionType := stringField(item, "type")
	if questionType == "" {
		questionType = "multiple_choice"
	}
	question := &model.Question{
		SessionID:       sessionID,
		Content:         stringField(item, "question"),
		Type:            questionType,
		DifficultyLevel: stringField(item, "difficulty_level"),
		Topic:           topic,
		CorrectAnswer:   correct,
		Explanation:     stringField(item, "explanation"),
		SourceContext:   excerpt,
		GenerationModel: modelName,
	}

	var answers []model.QuestionAnswer
	if rawOptions, ok := item["options"].([]interface{}); ok {
		for _, opt := range rawOptions {
			content, ok := opt.(string)
			if !ok || strings.TrimSpace(content) == "" {
				continue
			}
			answers = append(answers, model.QuestionAnswer{
				Content:   content,
				IsCorrect: content == correct,
			})
		}
	}
	return question, answers
}

func buildFlashcard(item map[string]interface{}, sessionID uuid.UUID, topic, excerpt, modelName string) model.Flashcard {
	cardType := stringField(item, "type")
	if cardType == "" {
		cardType = "concept_flashcard"
	}
	return model.Flashcard{
		SessionID:       sessionID,
		CardType:        cardType,
		Question:        stringField(item, "question"),
		Answer:          stringField(item, "answer"),
		Explanation:     stringField(item, "explanation"),
		Topic:           topic,
		SourceContext:   excerpt,
		GenerationModel: modelName,
	}
}

// ListQuestions returns a session's questions with their answer options.
func (s *QuestionService) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.Question, error) {
	return s.questions.FindBySessionID(ctx, sessionID)
}

// ListFlashcards returns a session's flashcards.
func (s *QuestionService) ListFlashcards(ctx context.Context, sessionID uuid.UUID) ([]model.Flashcard, error) {
	return s.flashcards.FindBySessionID(ctx, sessionID)
}

// UpdateQuestion replaces a question's content and answer options.
func (s *QuestionService) UpdateQuestion(ctx context.Context, question *model.Question, answers []model.QuestionAnswer) error {
	if err := s.questions.Update(ctx, question); err != nil {
		return err
	}
	if answers != nil {
		return s.questions.ReplaceAnswers(ctx, question.ID, answers)
	}
	return nil
}

// DeleteQuestion removes a question and its answers.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.questions.Delete(ctx, id)
}

// UpdateFlashcard persists edits to a flashcard.
func (s *QuestionService) UpdateFlashcard(ctx context.Context, flashcard *model.Flashcard) error {
	return s.flashcards.Update(ctx, flashcard)
}

// DeleteFlashcard removes a flashcard.
func (s *QuestionService) DeleteFlashcard(ctx context.Context, id uuid.UUID) error {
	return s.flashcards.Delete(ctx, id)
}
