// internal/workers/review-reply/analyze-review/handler_test.go
package analyzereview

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/llm"
	"review-responder/internal/common/logger"
	"review-responder/internal/models"
)

// ==========================
// Mock Completer
// ==========================

type MockCompleter struct {
	CompleteFunc func(ctx context.Context, instructions models.Instructions, opts llm.Options) (*llm.Completion, error)
	Calls        []llm.Options
}

func (m *MockCompleter) Complete(ctx context.Context, instructions models.Instructions, opts llm.Options) (*llm.Completion, error) {
	m.Calls = append(m.Calls, opts)
	return m.CompleteFunc(ctx, instructions, opts)
}

func jsonCompletion(v interface{}) *llm.Completion {
	data, _ := json.Marshal(v)
	return &llm.Completion{Content: string(data), JSON: data}
}

// ==========================
// Test Helper Functions
// ==========================

func createTestProfile() *models.BusinessProfile {
	return &models.BusinessProfile{
		BusinessName:         "MEDIKOM на Оболонській набережній",
		ResponderName:        "Олена",
		Language:             "Ukrainian",
		AvoidPhrases:         []string{"ми в захваті"},
		ServiceRecoveryOffer: "Вашою скаргою займається Заступник медичного директора з якості.",
	}
}

func createTestHandler(t *testing.T, completer llm.Completer) *Handler {
	return NewHandler(&Config{Temperature: 0.2}, completer, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_MixedReviewWithRealName(t *testing.T) {
	mock := &MockCompleter{
		CompleteFunc: func(ctx context.Context, instr models.Instructions, opts llm.Options) (*llm.Completion, error) {
			assert.Contains(t, instr.User, "Іван Петренко")
			assert.Contains(t, instr.User, ivanReview.Text)
			return jsonCompletion(map[string]interface{}{
				"nameClassification": "real_name",
				"greetingName":       "Іване",
				"allPoints":          []string{"чудова консультація лікаря Івана", "чекати довелося годину"},
				"mainPositivePoint":  "чудова консультація лікаря Івана",
				"mainNegativePoint":  "чекати довелося годину",
				"sentiment":          "mixed",
			}), nil
		},
	}

	analysis, err := createTestHandler(t, mock).Execute(context.Background(), createTestProfile(), ivanReview)
	require.NoError(t, err)

	assert.Equal(t, models.SentimentMixed, analysis.Sentiment)
	assert.Equal(t, "Іване", models.Deref(analysis.GreetingName))
	assert.Equal(t, "чудова консультація лікаря Івана", models.Deref(analysis.MainPositivePoint))
	assert.Equal(t, "чекати довелося годину", models.Deref(analysis.MainNegativePoint))

	require.Len(t, mock.Calls, 1)
	assert.True(t, mock.Calls[0].Structured)
	assert.InDelta(t, 0.2, mock.Calls[0].Creativity, 1e-9)
	assert.Equal(t, StageName, mock.Calls[0].Stage)
}

func TestHandler_Execute_PositiveReviewWithHandle(t *testing.T) {
	mock := &MockCompleter{
		CompleteFunc: func(ctx context.Context, _ models.Instructions, _ llm.Options) (*llm.Completion, error) {
			return jsonCompletion(map[string]interface{}{
				"nameClassification": "handle",
				"greetingName":       nil,
				"allPoints":          []string{"Чудовий заклад", "все сподобалось"},
				"mainPositivePoint":  "Чудовий заклад",
				"mainNegativePoint":  nil,
				"sentiment":          "positive",
			}), nil
		},
	}

	review := models.ReviewInput{Text: "Чудовий заклад, все сподобалось.", AuthorName: "SuperCat1998"}
	analysis, err := createTestHandler(t, mock).Execute(context.Background(), createTestProfile(), review)
	require.NoError(t, err)

	assert.Equal(t, models.SentimentPositive, analysis.Sentiment)
	assert.Nil(t, analysis.GreetingName)
	assert.Nil(t, analysis.MainNegativePoint)
	assert.Equal(t, models.NameHandle, analysis.NameClassification)
}

func TestHandler_Execute_FencedContentWithoutJSON(t *testing.T) {
	mock := &MockCompleter{
		CompleteFunc: func(ctx context.Context, _ models.Instructions, _ llm.Options) (*llm.Completion, error) {
			return &llm.Completion{Content: "```json\n{\"nameClassification\":\"absent\",\"allPoints\":[\"довго\"],\"mainNegativePoint\":\"довго\",\"sentiment\":\"negative\"}\n```"}, nil
		},
	}

	analysis, err := createTestHandler(t, mock).Execute(context.Background(), createTestProfile(), models.ReviewInput{Text: "Довго чекали."})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, analysis.Sentiment)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name       string
		completion *llm.Completion
		callErr    error
		wantErr    error
	}{
		{
			name:    "upstream error passes through",
			callErr: apperrors.NewUpstreamError(StageName, errors.New("500")),
			wantErr: apperrors.ErrUpstream,
		},
		{
			name:       "schema violation is malformed",
			completion: jsonCompletion(map[string]interface{}{"sentiment": "great"}),
			wantErr:    apperrors.ErrUpstreamMalformed,
		},
		{
			name:       "prose is malformed",
			completion: &llm.Completion{Content: "The review is mostly positive."},
			wantErr:    apperrors.ErrUpstreamMalformed,
		},
		{
			name: "no main point is incomplete",
			completion: jsonCompletion(map[string]interface{}{
				"nameClassification": "absent",
				"allPoints":          []string{},
				"mainPositivePoint":  nil,
				"mainNegativePoint":  nil,
				"sentiment":          "mixed",
			}),
			wantErr: apperrors.ErrAnalysisIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockCompleter{
				CompleteFunc: func(ctx context.Context, _ models.Instructions, _ llm.Options) (*llm.Completion, error) {
					return tt.completion, tt.callErr
				},
			}

			analysis, err := createTestHandler(t, mock).Execute(context.Background(), createTestProfile(), models.ReviewInput{Text: "текст"})
			assert.Nil(t, analysis)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
