package service

import (
	"context"
	"strconv"
	"time"

	"github.com/mduc-2610/doc-agent-mlt/internal/cache"
	"github.com/mduc-2610/doc-agent-mlt/internal/llm"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/prompt"
)

const (
	// ContentKindJSON prepends a system instruction constraining output to
	// JSON; ContentKindSummary sends the prompt as a bare user message.
	ContentKindJSON    = "json"
	ContentKindSummary = "summary"

	jsonSystemPrompt = "You are an expert content creator. Respond with valid JSON only."

	maxGenerationRetries = 3
	// Responses shorter than this are not worth caching.
	minCacheableLength = 50
)

// ChatCompleter is the LLM backend contract for the generation service.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
	Model() string
}

// ItemValidator decides whether a parsed item has the minimal shape its
// content type requires.
type ItemValidator func(item map[string]interface{}) bool

// GenerationService calls the LLM with a prompt-hash cache and bounded
// retry/backoff, and drives the chunked loop that turns free-form output
// into an exact count of validated structured items. Under-delivery is an
// expected outcome the caller reports, never an error.
type GenerationService struct {
	client ChatCompleter
	cache  *cache.LRU[string]
	sched  retrySchedule
	sleep  func(time.Duration)
	log    *logger.Logger

	// Tunables for the chunked loop. The degradation constants (2 failed
	// calls, half the target) are empirically chosen, not load-bearing.
	questionsPerChunk  int
	flashcardsPerChunk int
}

func NewGenerationService(client ChatCompleter, cacheSize, questionsPerChunk, flashcardsPerChunk int, log *logger.Logger) *GenerationService {
	if questionsPerChunk <= 0 {
		questionsPerChunk = 15
	}
	if flashcardsPerChunk <= 0 {
		flashcardsPerChunk = 15
	}
	return &GenerationService{
		client:             client,
		cache:              cache.NewLRU[string](cacheSize),
		sched:              defaultRetrySchedule(),
		sleep:              time.Sleep,
		log:                log,
		questionsPerChunk:  questionsPerChunk,
		flashcardsPerChunk: flashcardsPerChunk,
	}
}

// GenerateContent produces text for a prompt, consulting the prompt-hash
// cache first. Identical prompts are answered from cache, which makes
// retried chunks free. All attempts failing degrades to an empty string;
// callers must treat "" as no content, not success.
func (s *GenerationService) GenerateContent(ctx context.Context, promptText, contentKind string) string {
	cacheKey := hashContent(promptText)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.log.Debug("using cached response")
		return cached
	}

	var messages []llm.ChatMessage
	if contentKind == ContentKindSummary {
		messages = []llm.ChatMessage{{Role: "user", Content: promptText}}
	} else {
		messages = []llm.ChatMessage{
			{Role: "system", Content: jsonSystemPrompt},
			{Role: "user", Content: promptText},
		}
	}

	for attempt := 0; attempt <= maxGenerationRetries; attempt++ {
		response, err := s.client.Complete(ctx, messages)
		if err == nil {
			if len(response) > minCacheableLength {
				s.cache.Set(cacheKey, response)
			}
			return response
		}

		rateLimited := llm.IsRateLimit(err)
		if attempt == maxGenerationRetries {
			s.log.Error("content generation failed", "attempts", attempt+1, "error", err)
			return ""
		}

		delay := s.sched.delay(attempt, rateLimited)
		if rateLimited {
			s.log.Warn("rate limited, backing off", "delay", delay, "attempt", attempt+1)
		} else {
			s.log.Warn("content generation error, retrying", "delay", delay, "error", err)
		}
		s.sleep(delay)
	}

	return ""
}

// GenerateJSONItems asks for structured items, parses the response
// tolerantly, and drops items the validator rejects. Never returns more than
// targetCount items.
func (s *GenerationService) GenerateJSONItems(ctx context.Context, promptText string, targetCount int, validate ItemValidator) []map[string]interface{} {
	response := s.GenerateContent(ctx, promptText, ContentKindJSON)
	if response == "" {
		return nil
	}

	items := CleanJSONResponse(response)
	if len(items) == 0 {
		return nil
	}

	if validate != nil {
		valid := items[:0]
		for _, item := range items {
			if validate(item) {
				valid = append(valid, item)
			}
		}
		items = valid
	}

	if len(items) > targetCount {
		items = items[:targetCount]
	}
	return items
}

// GenerateQuestionsChunked produces up to targetCount validated quiz items.
func (s *GenerationService) GenerateQuestionsChunked(ctx context.Context, promptTemplate, topic, contextText string, targetCount int) []map[string]interface{} {
	return s.generateChunked(ctx, promptTemplate, topic, contextText, targetCount, s.questionsPerChunk, ValidateQuizItem, "questions")
}

// GenerateFlashcardsChunked produces up to targetCount validated flashcards.
func (s *GenerationService) GenerateFlashcardsChunked(ctx context.Context, promptTemplate, topic, contextText string, targetCount int) []map[string]interface{} {
	return s.generateChunked(ctx, promptTemplate, topic, contextText, targetCount, s.flashcardsPerChunk, ValidateFlashcardItem, "flashcards")
}

// generateChunked covers targetCount in calls of at most chunkSize items
// each. Once two calls have yielded nothing while less than half the target
// is in hand, the chunk size halves (floor 1): smaller asks succeed more
// often when the model is struggling. The call budget is fixed up front; the
// final result is truncated to targetCount but may come up short.
func (s *GenerationService) generateChunked(ctx context.Context, promptTemplate, topic, contextText string, targetCount, chunkSize int, validate ItemValidator, contentType string) []map[string]interface{} {
	if targetCount <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	numCalls := (targetCount + chunkSize - 1) / chunkSize
	var allItems []map[string]interface{}
	failedCalls := 0

	s.log.Info("starting chunked generation",
		"content_type", contentType, "target", targetCount, "chunk_size", chunkSize, "calls", numCalls)

	for callIndex := 0; callIndex < numCalls; callIndex++ {
		remaining := targetCount - len(allItems)
		currentChunk := chunkSize
		if remaining < currentChunk {
			currentChunk = remaining
		}
		if currentChunk <= 0 {
			break
		}

		promptText := prompt.Render(promptTemplate, map[string]string{
			"topic":        topic,
			"context":      contextText,
			"target_count": strconv.Itoa(currentChunk),
		})

		items := s.GenerateJSONItems(ctx, promptText, currentChunk, validate)
		if len(items) > 0 {
			allItems = append(allItems, items...)
			s.log.Debug("chunk call produced items", "call", callIndex+1, "items", len(items))
		} else {
			failedCalls++
			s.log.Warn("chunk call produced no valid items", "call", callIndex+1, "content_type", contentType)

			if failedCalls >= 2 && float64(len(allItems)) < float64(targetCount)*0.5 {
				chunkSize = chunkSize / 2
				if chunkSize < 1 {
					chunkSize = 1
				}
				s.log.Info("repeated failures, reducing chunk size", "chunk_size", chunkSize)
			}
		}

		if len(allItems) >= targetCount {
			break
		}
	}

	if len(allItems) > targetCount {
		allItems = allItems[:targetCount]
	}

	successRate := 0.0
	if targetCount > 0 {
		successRate = float64(len(allItems)) / float64(targetCount) * 100
	}
	s.log.Info("chunked generation finished",
		"content_type", contentType, "generated", len(allItems), "target", targetCount,
		"success_rate", successRate, "failed_calls", failedCalls)

	return allItems
}

// CacheSize returns the number of cached generation responses.
func (s *GenerationService) CacheSize() int {
	return s.cache.Len()
}

// ClearCache drops all cached responses and returns how many were dropped.
func (s *GenerationService) ClearCache() int {
	n := s.cache.Clear()
	s.log.Info("cleared generation cache", "entries", n)
	return n
}

// Model returns the generation model identifier recorded as provenance on
// persisted items.
func (s *GenerationService) Model() string {
	return s.client.Model()
}
