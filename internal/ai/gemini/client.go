package gemini

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"jobmate/interview/internal/ai"
	"jobmate/interview/internal/prompts"
)

// Client is the Gemini-backed question generator and answer evaluator.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts prompts.PromptProvider
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeAPIKey,
			Message:  "failed to create Gemini client",
			Err:      err,
		}
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "failed to load prompt templates",
			Err:      err,
		}
	}

	return &Client{client: client, config: config, prompts: promptManager}, nil
}

func (c *Client) GenerateQuestion(ctx context.Context, req *ai.QuestionRequest) (*ai.GeneratedQuestion, error) {
	types := req.QuestionTypes
	if len(types) == 0 {
		types = []string{"behavioral"}
	}
	qType := types[(req.Order-1)%len(types)]

	companyClause := ""
	if req.Company != "" {
		companyClause = " at " + req.Company
	}

	prompt, err := c.prompts.BuildPrompt("question", req.Difficulty, map[string]string{
		"JobRole":            req.JobRole,
		"CompanyClause":      companyClause,
		"QuestionType":       qType,
		"Order":              strconv.Itoa(req.Order),
		"CustomInstructions": req.CustomInstructions,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "failed to build question prompt",
			Err:      err,
		}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ai.GeneratedQuestion{
		Text:       strings.TrimSpace(text),
		Type:       qType,
		Difficulty: req.Difficulty,
	}, nil
}

// evaluationResult mirrors the JSON shape the evaluation prompt requests.
type evaluationResult struct {
	CommunicationScore int      `json:"communicationScore"`
	TechnicalScore     int      `json:"technicalScore"`
	CompletenessScore  int      `json:"completenessScore"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	Suggestions        []string `json:"suggestions"`
}

func (c *Client) EvaluateAnswer(ctx context.Context, req *ai.EvaluationRequest) (*ai.Evaluation, error) {
	prompt, err := c.prompts.BuildPrompt("evaluation", req.Difficulty, map[string]string{
		"JobRole":      req.JobRole,
		"QuestionType": req.QuestionType,
		"Question":     req.Question,
		"Answer":       req.Answer,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "failed to build evaluation prompt",
			Err:      err,
		}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result evaluationResult
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "model returned unparseable evaluation",
			Err:      err,
		}
	}

	result.CommunicationScore = clampScore(result.CommunicationScore)
	result.TechnicalScore = clampScore(result.TechnicalScore)
	result.CompletenessScore = clampScore(result.CompletenessScore)
	overall := int(math.Round(float64(result.CommunicationScore+result.TechnicalScore+result.CompletenessScore) / 3.0))

	return &ai.Evaluation{
		CommunicationScore: result.CommunicationScore,
		TechnicalScore:     result.TechnicalScore,
		CompletenessScore:  result.CompletenessScore,
		OverallScore:       overall,
		Strengths:          result.Strengths,
		Weaknesses:         result.Weaknesses,
		Suggestions:        result.Suggestions,
	}, nil
}

func (c *Client) GetProviderName() string { return "gemini" }

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeServiceDown,
			Message:  "failed to generate content",
			Err:      err,
		}
	}
	if result == nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "no response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "empty response generated",
		}
	}
	return text, nil
}

// extractJSON strips markdown fences and surrounding prose the model may add
// around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}
