package sentiment

import (
	"context"
	"errors"
	"testing"

	"signal-sniper/internal/domain"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatClientStub struct {
	content string
	err     error
	params  openai.ChatCompletionNewParams
}

func (s *chatClientStub) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: s.content},
		}},
	}, nil
}

func TestOpenAIClassifyParsesFencedJSON(t *testing.T) {
	stub := &chatClientStub{content: "```json\n{\"label\":\"positive\",\"score\":0.97}\n```"}
	c := &OpenAI{client: stub, model: "gpt-test"}

	res, err := c.Classify(context.Background(), "$GME to the moon")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: domain.LabelPositive, Score: 0.97}, res)
	assert.Equal(t, "gpt-test", stub.params.Model)
	assert.Len(t, stub.params.Messages, 2)
}

func TestOpenAIClassifyClampsScore(t *testing.T) {
	c := &OpenAI{client: &chatClientStub{content: `{"label":"NEGATIVE","score":1.7}`}, model: "m"}
	res, err := c.Classify(context.Background(), "puts")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNegative, res.Label)
	assert.Equal(t, 1.0, res.Score)
}

func TestOpenAIClassifyErrors(t *testing.T) {
	c := &OpenAI{client: &chatClientStub{err: errors.New("rate limited")}, model: "m"}
	_, err := c.Classify(context.Background(), "x")
	assert.EqualError(t, err, "rate limited")

	c = &OpenAI{client: &chatClientStub{content: "not json"}, model: "m"}
	_, err = c.Classify(context.Background(), "x")
	assert.ErrorContains(t, err, "parse classifier json")

	var nilClassifier *OpenAI
	_, err = nilClassifier.Classify(context.Background(), "x")
	assert.Error(t, err)

	assert.Nil(t, NewOpenAI("  ", ""))
}
