package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TaskType selecciona el perfil de modelo y limite de salida por tarea.
type TaskType string

const (
	TaskScreeningAssessment TaskType = "screening_assessment"
	TaskFullAssessment      TaskType = "full_assessment"
	TaskClassification      TaskType = "classification"
	TaskChat                TaskType = "chat"
)

// ErrNoTextResponse indica que el proveedor respondio sin ningun bloque de
// texto usable (ej: respuesta truncada o solo contenido no-textual).
var ErrNoTextResponse = errors.New("llm: no text response")

// Completion es el payload crudo de una invocacion exitosa.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// CompletionClient define la interfaz hacia el servicio de generacion de
// texto. Una invocacion = una llamada externa; los reintentos son
// responsabilidad del orquestador, no del cliente.
type CompletionClient interface {
	Complete(ctx context.Context, task TaskType, prompt string) (Completion, error)
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type taskProfile struct {
	fast      bool
	maxTokens int
}

// Techos de salida por tarea. El analisis full necesita espacio para las
// nueve secciones; la clasificacion es corta y va al modelo rapido.
var taskProfiles = map[TaskType]taskProfile{
	TaskScreeningAssessment: {fast: false, maxTokens: 4096},
	TaskFullAssessment:      {fast: false, maxTokens: 8192},
	TaskClassification:      {fast: true, maxTokens: 256},
	TaskChat:                {fast: false, maxTokens: 2048},
}

// HTTPClient implementa CompletionClient contra una API OpenAI-compatible.
type HTTPClient struct {
	baseURL        string
	apiKey         string
	model          string
	fastModel      string
	embeddingModel string
	client         *http.Client
	logger         *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model, fastModel, embeddingModel string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if fastModel == "" {
		fastModel = model
	}
	return &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		fastModel:      fastModel,
		embeddingModel: embeddingModel,
		client:         &http.Client{Timeout: 120 * time.Second},
		logger:         logger,
	}
}

// ModelFor resuelve el modelo concreto para una tarea.
func (c *HTTPClient) ModelFor(task TaskType) string {
	if profile, ok := taskProfiles[task]; ok && profile.fast {
		return c.fastModel
	}
	return c.model
}

// MaxTokensFor resuelve el techo de salida para una tarea.
func MaxTokensFor(task TaskType) int {
	if profile, ok := taskProfiles[task]; ok {
		return profile.maxTokens
	}
	return 2048
}

func (c *HTTPClient) Complete(ctx context.Context, task TaskType, prompt string) (Completion, error) {
	reqBody := chatRequest{
		Model:     c.ModelFor(task),
		MaxTokens: MaxTokensFor(task),
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("llm http error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		}
		return Completion{}, fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Completion{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return Completion{}, fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	// Primer bloque de texto o nada: el caller necesita texto si o si.
	for _, choice := range cr.Choices {
		if choice.Message.Content != "" {
			return Completion{
				Text:         choice.Message.Content,
				InputTokens:  cr.Usage.PromptTokens,
				OutputTokens: cr.Usage.CompletionTokens,
			}, nil
		}
	}
	return Completion{}, ErrNoTextResponse
}

func (c *HTTPClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("embedding http error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		}
		return nil, fmt.Errorf("embedding http error: status=%d", resp.StatusCode)
	}

	var er embeddingResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding empty response")
	}
	return er.Data[0].Embedding, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}
