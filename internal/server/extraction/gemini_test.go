package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/proofpay/internal/logging"
)

func testLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func geminiStub(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)

		// the document must arrive as valid base64
		_, err := base64.StdEncoding.DecodeString(req.Contents[0].Parts[1].InlineData.Data)
		require.NoError(t, err)

		resp := geminiResponse{}
		resp.Candidates = []struct {
			Content geminiContent `json:"content"`
		}{{Content: geminiContent{Parts: []geminiPart{{Text: answer}}}}}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractPayslip(t *testing.T) {
	answer := "```json\n{\"grossPay\": 3500, \"netPay\": 2850.5, \"payslipDate\": \"2026-07-15\", \"employeeName\": \"John Doe\", \"employerId\": \"ACME Ltd\"}\n```"
	srv := geminiStub(t, answer)
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key", "gemini-2.0-flash-exp", testLogger(t))

	data, err := g.ExtractPayslip(context.Background(), []byte("%PDF-1.4 fake"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, 3500.0, data.GrossPay)
	assert.Equal(t, 2850.5, data.NetPay)
	assert.Equal(t, "2026-07-15", data.PayslipDate)
	assert.Equal(t, "John Doe", data.EmployeeName)
	assert.Equal(t, "ACME Ltd", data.EmployerID)
}

func TestExtractPayslip_NullFields(t *testing.T) {
	srv := geminiStub(t, `{"grossPay": 3500, "netPay": null, "payslipDate": "2026-07-15", "employeeName": null, "employerId": null}`)
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key", "gemini-2.0-flash-exp", testLogger(t))

	data, err := g.ExtractPayslip(context.Background(), []byte("doc"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, 3500.0, data.GrossPay)
	assert.Zero(t, data.NetPay)
	assert.Empty(t, data.EmployeeName)
}

func TestExtractIdentity(t *testing.T) {
	srv := geminiStub(t, `{"name": "John Doe", "dob": "1990-05-15", "documentNumber": "AB123456", "expiryDate": "2030-12-31", "nationality": "United Kingdom"}`)
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key", "gemini-2.0-flash-exp", testLogger(t))

	data, err := g.ExtractIdentity(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", data.Name)
	assert.Equal(t, "1990-05-15", data.DOB)
	assert.Equal(t, "AB123456", data.DocumentNumber)
}

func TestExtract_ModelGarbage(t *testing.T) {
	srv := geminiStub(t, "I could not read the document, sorry.")
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key", "gemini-2.0-flash-exp", testLogger(t))

	_, err := g.ExtractPayslip(context.Background(), []byte("doc"), "application/pdf")
	require.Error(t, err)
}

func TestExtract_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key", "gemini-2.0-flash-exp", testLogger(t))

	_, err := g.ExtractPayslip(context.Background(), []byte("doc"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stripCodeFences(tc.in))
	}
}
