package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var hfTracer = otel.Tracer("classdesk.llm.hf_inference")

// HFInferenceClient talks to the hosted HuggingFace Inference API.
// This is the default fallback backend.
type HFInferenceClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiToken   string
}

type hfInferenceRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type hfInferenceResponse struct {
	GeneratedText string `json:"generated_text"`
}

func NewHFInferenceClient() (*HFInferenceClient, error) {
	apiToken := os.Getenv("HF_API_TOKEN")
	if apiToken == "" {
		secretPath := "/run/secrets/hf_api_token"
		tokenBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiToken = strings.TrimSpace(string(tokenBytes))
			slog.Info("Read the HuggingFace API token from secrets")
		} else {
			slog.Error("HF_API_TOKEN environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("HF_API_TOKEN environment variable not set")
		}
	}
	model := os.Getenv("HF_MODEL")
	if model == "" {
		model = "meta-llama/Llama-3.2-3B-Instruct"
		slog.Warn("HF_MODEL not set, defaulting to meta-llama/Llama-3.2-3B-Instruct")
	}
	baseURL := os.Getenv("HF_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	slog.Info("Initializing HuggingFace Inference client", "base_url", baseURL, "model", model)
	return &HFInferenceClient{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    baseURL,
		model:      model,
		apiToken:   apiToken,
	}, nil
}

// Generate implements the LLMClient interface
func (h *HFInferenceClient) Generate(ctx context.Context, prompt string,
	params GenerationParams) (string, error) {

	ctx, span := hfTracer.Start(ctx, "HFInferenceClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", h.model))
	slog.Debug("Generating text via HuggingFace Inference", "model", h.model)

	parameters := map[string]interface{}{
		"do_sample":        true,
		"return_full_text": false,
	}
	if params.MaxTokens != nil {
		parameters["max_new_tokens"] = *params.MaxTokens
	} else {
		parameters["max_new_tokens"] = 300
	}
	if params.Temperature != nil {
		parameters["temperature"] = *params.Temperature
	} else {
		parameters["temperature"] = float32(0.7)
	}
	if params.TopP != nil {
		parameters["top_p"] = *params.TopP
	} else {
		parameters["top_p"] = float32(0.9)
	}
	if len(params.Stop) > 0 {
		parameters["stop"] = params.Stop
	}
	payload := hfInferenceRequest{
		Inputs:     prompt,
		Parameters: parameters,
	}

	reqBodyBytes, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to marshal request to HuggingFace: %w", err)
	}

	generateURL := fmt.Sprintf("%s/models/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, "POST", generateURL, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to create request to HuggingFace: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("HuggingFace API call failed", "error", err)
		return "", fmt.Errorf("HuggingFace API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to read response body from HuggingFace: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusServiceUnavailable {
			// The hosted API returns 503 while a cold model loads.
			slog.Warn("HuggingFace model is loading", "model", h.model)
			return "", fmt.Errorf("model '%s' is still loading, retry shortly", h.model)
		}
		slog.Error("HuggingFace returned an error", "status_code", resp.StatusCode, "response", string(respBodyBytes))
		return "", fmt.Errorf("HuggingFace failed with status %d: %s", resp.StatusCode, string(respBodyBytes))
	}

	var hfResp []hfInferenceResponse
	if err := json.Unmarshal(respBodyBytes, &hfResp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Failed to parse JSON response from HuggingFace", "error", err, "response", string(respBodyBytes))
		return "", fmt.Errorf("failed to parse HuggingFace response: %w", err)
	}
	if len(hfResp) == 0 {
		slog.Warn("HuggingFace returned an empty result list")
		return "", fmt.Errorf("HuggingFace returned no generations")
	}

	slog.Debug("Received response from HuggingFace")
	return hfResp[0].GeneratedText, nil
}
