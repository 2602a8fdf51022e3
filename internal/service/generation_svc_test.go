package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mduc-2610/doc-agent-mlt/internal/llm"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
)

// scriptedChatClient replays canned responses or errors in order, then
// repeats the last entry.
type scriptedChatClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *scriptedChatClient) Complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)

	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *scriptedChatClient) Model() string { return "fake-llm" }

func newTestGenerationService(client ChatCompleter) *GenerationService {
	svc := NewGenerationService(client, 100, 15, 15, logger.NewNop())
	svc.sleep = func(time.Duration) {}
	svc.sched = retrySchedule{
		base:   time.Second,
		jitter: func() time.Duration { return 0 },
	}
	return svc
}

func longResponse(body string) string {
	return body + strings.Repeat(" ", 60)
}

func TestGenerateContentCachesLongResponses(t *testing.T) {
	client := &scriptedChatClient{responses: []string{longResponse("answer one")}}
	svc := newTestGenerationService(client)

	first := svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)
	second := svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, svc.CacheSize())
}

func TestGenerateContentShortResponsesNotCached(t *testing.T) {
	client := &scriptedChatClient{responses: []string{"short"}}
	svc := newTestGenerationService(client)

	svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)
	svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, 0, svc.CacheSize())
}

func TestGenerateContentMessageShape(t *testing.T) {
	client := &scriptedChatClient{responses: []string{"ok"}}
	svc := newTestGenerationService(client)

	svc.GenerateContent(context.Background(), "summarize this", ContentKindSummary)
	assert.Equal(t, "summarize this", client.prompts[0])

	client2 := &scriptedChatClient{responses: []string{"ok"}}
	svc2 := newTestGenerationService(client2)
	recorded := &messageRecorder{inner: client2}
	svc2.client = recorded

	svc2.GenerateContent(context.Background(), "make json", ContentKindJSON)
	require.Len(t, recorded.messages, 2)
	assert.Equal(t, "system", recorded.messages[0].Role)
	assert.Contains(t, recorded.messages[0].Content, "JSON")
	assert.Equal(t, "user", recorded.messages[1].Role)
}

type messageRecorder struct {
	inner    ChatCompleter
	messages []llm.ChatMessage
}

func (r *messageRecorder) Complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	r.messages = messages
	return r.inner.Complete(ctx, messages)
}

func (r *messageRecorder) Model() string { return r.inner.Model() }

func TestGenerateContentRetriesThenSucceeds(t *testing.T) {
	client := &scriptedChatClient{
		errs:      []error{fmt.Errorf("transient"), fmt.Errorf("transient")},
		responses: []string{"", "", "recovered"},
	}
	svc := newTestGenerationService(client)

	var delays []time.Duration
	svc.sleep = func(d time.Duration) { delays = append(delays, d) }

	result := svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, client.calls)
	// Non-rate-limit errors wait the fixed half-base delay.
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, delays)
}

func TestGenerateContentRateLimitBackoff(t *testing.T) {
	rateErr := &llm.APIError{StatusCode: 429, Body: "too many requests"}
	client := &scriptedChatClient{
		errs:      []error{rateErr, rateErr},
		responses: []string{"", "", "ok"},
	}
	svc := newTestGenerationService(client)

	var delays []time.Duration
	svc.sleep = func(d time.Duration) { delays = append(delays, d) }

	result := svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, delays)
}

func TestGenerateContentExhaustionReturnsEmpty(t *testing.T) {
	err := fmt.Errorf("permanently down")
	client := &scriptedChatClient{errs: []error{err, err, err, err}}
	svc := newTestGenerationService(client)

	result := svc.GenerateContent(context.Background(), "prompt", ContentKindSummary)
	assert.Equal(t, "", result)
	assert.Equal(t, 4, client.calls)
}

func TestGenerateJSONItemsValidation(t *testing.T) {
	response := `[
		{"question": "Q1", "answer": "A1"},
		{"question": "", "answer": "A2"},
		{"question": "Q3", "answer": "A3"},
		{"question": "Q4"},
		{"question": "Q5", "answer": "A5"}
	]`
	client := &scriptedChatClient{responses: []string{response}}
	svc := newTestGenerationService(client)

	items := svc.GenerateJSONItems(context.Background(), "prompt", 10, ValidateFlashcardItem)
	require.Len(t, items, 3)
	assert.Equal(t, "Q1", items[0]["question"])
	assert.Equal(t, "Q3", items[1]["question"])
	assert.Equal(t, "Q5", items[2]["question"])
}

func TestGenerateJSONItemsTruncatesToTarget(t *testing.T) {
	response := `[{"question": "Q1", "answer": "A1"}, {"question": "Q2", "answer": "A2"}, {"question": "Q3", "answer": "A3"}]`
	client := &scriptedChatClient{responses: []string{response}}
	svc := newTestGenerationService(client)

	items := svc.GenerateJSONItems(context.Background(), "prompt", 2, ValidateFlashcardItem)
	assert.Len(t, items, 2)
}

func flashcardsJSON(count, offset int) string {
	var parts []string
	for i := 0; i < count; i++ {
		parts = append(parts, fmt.Sprintf(`{"question": "Q%d", "answer": "A%d"}`, offset+i, offset+i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestGenerateChunkedSingleCall(t *testing.T) {
	client := &scriptedChatClient{responses: []string{flashcardsJSON(5, 0)}}
	svc := newTestGenerationService(client)

	items := svc.GenerateFlashcardsChunked(context.Background(), "make {target_count} for {topic}: {context}", "topic", "ctx", 5)
	assert.Len(t, items, 5)
	assert.Equal(t, 1, client.calls)
	assert.Contains(t, client.prompts[0], "make 5")
}

func TestGenerateChunkedPartialDelivery(t *testing.T) {
	// One call asked for 5, only 3 valid items come back: the loop has no
	// remaining call budget, so it reports 3 of 5.
	client := &scriptedChatClient{responses: []string{flashcardsJSON(3, 0)}}
	svc := newTestGenerationService(client)

	items := svc.GenerateFlashcardsChunked(context.Background(), "{target_count}", "t", "c", 5)
	assert.Len(t, items, 3)
	assert.Equal(t, 1, client.calls)
}

func TestGenerateChunkedMultipleCalls(t *testing.T) {
	svc := NewGenerationService(nil, 100, 15, 2, logger.NewNop())
	client := &scriptedChatClient{responses: []string{
		flashcardsJSON(2, 0),
		flashcardsJSON(2, 2),
	}}
	svc.client = client
	svc.sleep = func(time.Duration) {}

	items := svc.GenerateFlashcardsChunked(context.Background(), "give {target_count}", "t", "c", 3)
	require.Len(t, items, 3)
	assert.Equal(t, 2, client.calls)
	assert.Contains(t, client.prompts[0], "give 2")
	// Final call only asks for the single remaining item; the extra item
	// the model returned anyway is truncated.
	assert.Contains(t, client.prompts[1], "give 1")
}

func TestGenerateChunkedHalvesAfterRepeatedFailures(t *testing.T) {
	svc := NewGenerationService(nil, 100, 15, 2, logger.NewNop())
	// Every response is garbage, so every call fails validation.
	client := &scriptedChatClient{responses: []string{"not json at all"}}
	svc.client = client
	svc.sleep = func(time.Duration) {}

	items := svc.GenerateFlashcardsChunked(context.Background(), "give {target_count}", "t", "c", 8)
	assert.Empty(t, items)
	// ceil(8/2) = 4 calls budgeted. After the second zero-item call the
	// chunk size halves, so the remaining calls ask for 1.
	require.Equal(t, 4, client.calls)
	assert.Contains(t, client.prompts[0], "give 2")
	assert.Contains(t, client.prompts[1], "give 2")
	assert.Contains(t, client.prompts[2], "give 1")
	assert.Contains(t, client.prompts[3], "give 1")
}

func TestGenerateChunkedZeroTarget(t *testing.T) {
	client := &scriptedChatClient{}
	svc := newTestGenerationService(client)

	assert.Nil(t, svc.GenerateFlashcardsChunked(context.Background(), "{target_count}", "t", "c", 0))
	assert.Equal(t, 0, client.calls)
}

func TestRetryScheduleDelays(t *testing.T) {
	sched := retrySchedule{
		base:   time.Second,
		jitter: func() time.Duration { return 100 * time.Millisecond },
	}

	assert.Equal(t, 1100*time.Millisecond, sched.delay(0, true))
	assert.Equal(t, 2100*time.Millisecond, sched.delay(1, true))
	assert.Equal(t, 4100*time.Millisecond, sched.delay(2, true))
	assert.Equal(t, 500*time.Millisecond, sched.delay(0, false))
	assert.Equal(t, 500*time.Millisecond, sched.delay(5, false))
}

func TestValidateQuizItem(t *testing.T) {
	tests := []struct {
		name string
		item map[string]interface{}
		want bool
	}{
		{
			"valid",
			map[string]interface{}{
				"question":       "Q",
				"correct_answer": "A",
				"options":        []interface{}{"A", "B", "C", "D"},
			},
			true,
		},
		{
			"missing question",
			map[string]interface{}{
				"correct_answer": "A",
				"options":        []interface{}{"A", "B"},
			},
			false,
		},
		{
			"missing correct answer",
			map[string]interface{}{
				"question": "Q",
				"options":  []interface{}{"A", "B"},
			},
			false,
		},
		{
			"too few options",
			map[string]interface{}{
				"question":       "Q",
				"correct_answer": "A",
				"options":        []interface{}{"A"},
			},
			false,
		},
		{
			"blank options ignored",
			map[string]interface{}{
				"question":       "Q",
				"correct_answer": "A",
				"options":        []interface{}{"A", "  ", ""},
			},
			false,
		},
		{
			"options wrong type",
			map[string]interface{}{
				"question":       "Q",
				"correct_answer": "A",
				"options":        "A, B, C",
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateQuizItem(tt.item))
		})
	}
}

func TestValidateFlashcardItem(t *testing.T) {
	assert.True(t, ValidateFlashcardItem(map[string]interface{}{"question": "Q", "answer": "A"}))
	assert.False(t, ValidateFlashcardItem(map[string]interface{}{"question": "Q"}))
	assert.False(t, ValidateFlashcardItem(map[string]interface{}{"question": " ", "answer": "A"}))
	assert.False(t, ValidateFlashcardItem(map[string]interface{}{}))
}
