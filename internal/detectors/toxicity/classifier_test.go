package toxicity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modguard/promptgate/internal/llm"
	"github.com/modguard/promptgate/internal/llm/mocks"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestClassifier(t *testing.T, client llm.LLMClient) *Classifier {
	t.Helper()
	classifier, err := NewClassifier(client, DefaultLabels, newTestLogger())
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	return classifier
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		invokeErr  error
		wantScores map[string]float64
		wantErr    bool
	}{
		{
			name:    "plain json response",
			content: `{"toxicity": 0.9, "threat": 0.1}`,
			wantScores: map[string]float64{
				"toxicity": 0.9,
				"threat":   0.1,
			},
		},
		{
			name: "json wrapped in markdown code block",
			content: "```json\n" +
				`{"toxicity": 0.25}` +
				"\n```",
			wantScores: map[string]float64{"toxicity": 0.25},
		},
		{
			name:    "non-json response is an error",
			content: "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "out of range score is an error",
			content: `{"toxicity": 1.5}`,
			wantErr: true,
		},
		{
			name:      "transport failure is an error",
			invokeErr: errors.New("throttled"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockLLMClient(ctrl)

			if tt.invokeErr != nil {
				mockClient.EXPECT().
					InvokeModelWithRetry(gomock.Any(), gomock.Any()).
					Return(nil, tt.invokeErr)
			} else {
				mockClient.EXPECT().
					InvokeModelWithRetry(gomock.Any(), gomock.Any()).
					Return(&llm.LLMResponse{Content: tt.content, StopReason: "end_turn"}, nil)
			}

			classifier := newTestClassifier(t, mockClient)
			scores, err := classifier.Classify(context.Background(), "some prompt")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if len(scores) != len(tt.wantScores) {
				t.Fatalf("scores: %+v, want %+v", scores, tt.wantScores)
			}
			for label, want := range tt.wantScores {
				if scores[label] != want {
					t.Errorf("score[%s] = %f, want %f", label, scores[label], want)
				}
			}
		})
	}
}

func TestClassify_PromptContainsLabelsAndText(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)

	var captured llm.LLMRequest
	mockClient.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
			captured = request
			return &llm.LLMResponse{Content: `{"toxicity": 0.0}`}, nil
		})

	classifier := newTestClassifier(t, mockClient)
	if _, err := classifier.Classify(context.Background(), "you utter fool"); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if !strings.Contains(captured.Prompt, "you utter fool") {
		t.Error("classifier prompt does not contain the text under analysis")
	}
	for _, label := range DefaultLabels {
		if !strings.Contains(captured.Prompt, label) {
			t.Errorf("classifier prompt does not mention label %q", label)
		}
	}
}

func TestNewClassifier_RequiresClient(t *testing.T) {
	if _, err := NewClassifier(nil, DefaultLabels, newTestLogger()); err == nil {
		t.Fatal("expected an error for a nil LLM client")
	}
}
