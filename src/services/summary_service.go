// backend/src/services/summary_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/username/cfolens/backend/src/logger"
	"github.com/username/cfolens/backend/src/models"
	"google.golang.org/genai"
)

type summaryServiceImpl struct {
	model     string
	timeout   time.Duration
	sanitizer *bluemonday.Policy
}

func NewSummaryService(model string, timeout time.Duration) SummaryService {
	return &summaryServiceImpl{
		model:   model,
		timeout: timeout,
		// Model output is rendered in the dashboard; strip any markup it
		// decides to emit.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

const insightsPromptFormat = "You are a financial analyst reviewing a company's figures.\n\n" +
	"Task:\n" +
	"- Review the JSON data summary below.\n" +
	"- Output STRICT JSON only (no comments, no extra text).\n" +
	"- Output a single JSON object with these fields:\n" +
	"  - \"grade\": string, a letter grade A-F for the financial picture\n" +
	"  - \"reasoning\": string, two or three sentences\n" +
	"  - \"insights\": array of strings, each one actionable observation\n\n" +
	"Do NOT wrap the response in code fences.\n\n" +
	"Instruction: %s\n\nData summary:\n%s\n"

const answerPromptFormat = "You are a financial analyst answering a question about a company's figures.\n\n" +
	"Task:\n" +
	"- Review the JSON data summary below.\n" +
	"- Output STRICT JSON only: a single object {\"answer\": string}.\n" +
	"- Do NOT wrap the response in code fences.\n\n" +
	"Question: %s\n\nData summary:\n%s\n"

func (s *summaryServiceImpl) Summarize(ctx context.Context, req models.SummaryRequest) (*models.SummaryResult, error) {
	summaryJSON, err := json.Marshal(req.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling data summary: %w", err)
	}

	format := insightsPromptFormat
	if req.Mode == models.SummaryModeAnswer {
		format = answerPromptFormat
	}
	prompt := fmt.Sprintf(format, req.Instruction, summaryJSON)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", ErrUpstream, err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: generate content: %v", ErrUpstream, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("%w: empty response from summarization model", ErrUpstream)
	}

	result := parseSummaryResponse(rawText, req.Mode)
	s.sanitizeResult(result)
	logger.FromContext(ctx).Info("Summarization completed", "mode", req.Mode, "insights", len(result.Insights))
	return result, nil
}

// parseSummaryResponse parses the model output as a JSON object. Malformed
// or non-JSON output falls back to treating the raw text as the reasoning
// (insights mode) or the answer, rather than failing the whole request.
func parseSummaryResponse(raw, mode string) *models.SummaryResult {
	clean := cleanModelJSON(raw)

	var result models.SummaryResult
	if err := json.Unmarshal([]byte(clean), &result); err == nil {
		if mode == models.SummaryModeAnswer && result.Answer == "" && result.Reasoning != "" {
			result.Answer = result.Reasoning
			result.Reasoning = ""
		}
		if result.Grade != "" || result.Reasoning != "" || len(result.Insights) > 0 || result.Answer != "" {
			return &result
		}
	}

	fallback := strings.TrimSpace(raw)
	if mode == models.SummaryModeAnswer {
		return &models.SummaryResult{Answer: fallback}
	}
	return &models.SummaryResult{Reasoning: fallback}
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func (s *summaryServiceImpl) sanitizeResult(result *models.SummaryResult) {
	result.Grade = s.sanitizer.Sanitize(result.Grade)
	result.Reasoning = s.sanitizer.Sanitize(result.Reasoning)
	result.Answer = s.sanitizer.Sanitize(result.Answer)
	for i, insight := range result.Insights {
		result.Insights[i] = s.sanitizer.Sanitize(insight)
	}
}
