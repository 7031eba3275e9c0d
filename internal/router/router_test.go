package router_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lipseyocr/internal/config"
	"lipseyocr/internal/handler"
	"lipseyocr/internal/middleware"
	openai "lipseyocr/internal/parser/openai"
	"lipseyocr/internal/router"
	"lipseyocr/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthz(t *testing.T) {
	r := router.Setup("", handler.NewProcessHandler(new(mocks.MockPageRenderer), new(mocks.MockReceiptParser), 4, 4, 0.8), handler.NewHealthHandler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// End to end through the real router and the real OpenAI parser against a
// fake completions endpoint: one page, one patient with two service rows.
func TestProcess_EndToEnd(t *testing.T) {
	modelDoc := map[string]interface{}{
		"Client": map[string]interface{}{
			"FirstName":        "Jane",
			"LastName":         "Doe",
			"StandardizedName": "Jane Doe",
			"ZipCode":          "14211",
			"GrantEligibility": "PFL",
			"AmountPaid":       "$85.00",
		},
		"Patients": []interface{}{
			map[string]interface{}{
				"Name":         "Rex",
				"Provider":     "Dr. Smith",
				"PatientTotal": "$85.00",
				"Items": []interface{}{
					map[string]interface{}{"Description": "Exam", "Date": "10/6/2025", "Quantity": "1", "Total": "$40.00"},
					map[string]interface{}{"Description": "Vaccine", "Date": "10/6/2025", "Quantity": "1", "Total": "$45.00"},
				},
			},
		},
	}
	content, err := json.Marshal(modelDoc)
	require.NoError(t, err)

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]interface{}{"content": string(content)},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer llm.Close()

	renderer := new(mocks.MockPageRenderer)
	renderer.On("RenderPages", mock.Anything, mock.Anything, 4).Return([][]byte{[]byte("png-1")}, nil)

	parserCfg := &config.ParserConfig{APIKey: "sk-test", DefaultModel: "gpt-4o-mini", TimeoutSecs: 30}
	promptCfg := &config.PromptConfig{CatchAllLabel: "Ineligible"}
	p := openai.NewParserWithEndpoint(parserCfg, promptCfg, llm.URL)

	r := router.Setup("shared-secret", handler.NewProcessHandler(renderer, p, 4, 4, 0.8), handler.NewHealthHandler())

	body, _ := json.Marshal(map[string]interface{}{
		"fileBase64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 one page")),
	})

	// Wrong secret is rejected before any work happens.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid secret runs the whole pipeline.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderServiceKey, "shared-secret")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	patients := resp["Patients"].([]interface{})
	require.Len(t, patients, 1)
	patient := patients[0].(map[string]interface{})
	assert.Equal(t, "$85.00", patient["PatientTotal"])
	assert.Len(t, patient["Items"].([]interface{}), 2)

	cov := resp["_coverage"].(map[string]interface{})
	assert.Equal(t, true, cov["covered"])
	assert.InDelta(t, 85.0, cov["amount_paid"], 0.0001)
	assert.InDelta(t, 85.0, cov["patient_total_sum"], 0.0001)

	renderer.AssertExpectations(t)
}

func TestProcess_VersionedRoute(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	parser := new(mocks.MockReceiptParser)
	renderer.On("RenderPages", mock.Anything, mock.Anything, 4).Return([][]byte{[]byte("png-1")}, nil)
	parser.On("Parse", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	r := router.Setup("", handler.NewProcessHandler(renderer, parser, 4, 4, 0.8), handler.NewHealthHandler())

	body, _ := json.Marshal(map[string]interface{}{
		"fileBase64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Unknown errors map to the internal error class.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
