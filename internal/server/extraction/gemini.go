package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

const payslipPrompt = `
Analyze this payslip document and extract the following information.
Return ONLY a valid JSON object with this exact structure, no other text:

{
  "grossPay": <number without currency symbols>,
  "netPay": <number without currency symbols or null>,
  "payslipDate": "<date in YYYY-MM-DD format>",
  "employeeName": "<full name or null>",
  "employerId": "<company name or null>"
}

Rules:
- Extract only numbers for grossPay and netPay (remove currency symbols and commas)
- Convert any date format to YYYY-MM-DD
- Use null if field cannot be found
- Return valid JSON only
`

const identityPrompt = `
Analyze this identity document and extract the following information.
Return ONLY a valid JSON object with this exact structure, no other text:

{
  "name": "<full name or null>",
  "dob": "<date of birth in YYYY-MM-DD format>",
  "documentNumber": "<document number or null>",
  "expiryDate": "<date in YYYY-MM-DD format or null>",
  "nationality": "<nationality or null>"
}

Rules:
- Convert any date format to YYYY-MM-DD
- Use null if field cannot be found
- Return valid JSON only
`

// GeminiExtractor implements Extractor against the Gemini generateContent
// API. Documents are passed inline as base64.
type GeminiExtractor struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  logging.Logger
}

// NewGeminiExtractor constructs a GeminiExtractor. baseURL is the API root
// (without the /v1beta suffix); model names the Gemini model to query.
func NewGeminiExtractor(baseURL, apiKey, model string, logger logging.Logger) *GeminiExtractor {
	return &GeminiExtractor{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
		logger:  logger.With("module", "extraction"),
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiExtractor) generate(ctx context.Context, prompt string, doc []byte, mimeType string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(doc),
				}},
			},
		}},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("document-ai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("document-ai returned %s: %s", resp.Status, string(body))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding document-ai response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("document-ai returned no candidates")
	}

	return stripCodeFences(out.Candidates[0].Content.Parts[0].Text), nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// around its JSON answer.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func (g *GeminiExtractor) ExtractPayslip(ctx context.Context, doc []byte, mimeType string) (*models.PayslipData, error) {
	text, err := g.generate(ctx, payslipPrompt, doc, mimeType)
	if err != nil {
		return nil, err
	}

	data := &models.PayslipData{}
	if err := json.Unmarshal([]byte(text), data); err != nil {
		return nil, fmt.Errorf("parsing extracted payslip fields: %w", err)
	}

	g.logger.Debug(ctx, "payslip extracted", "payslip_date", data.PayslipDate)
	return data, nil
}

func (g *GeminiExtractor) ExtractIdentity(ctx context.Context, doc []byte, mimeType string) (*models.IdentityData, error) {
	text, err := g.generate(ctx, identityPrompt, doc, mimeType)
	if err != nil {
		return nil, err
	}

	data := &models.IdentityData{}
	if err := json.Unmarshal([]byte(text), data); err != nil {
		return nil, fmt.Errorf("parsing extracted identity fields: %w", err)
	}

	g.logger.Debug(ctx, "identity extracted")
	return data, nil
}
