package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/atinylittleshell/shcopilot/internal/ai"
)

// OpenAIName is the registry key of the OpenAI-compatible model.
const OpenAIName = "openai"

// Supported values of OpenAIConfig.APIType.
const (
	APITypeOpenAI  = "openai"
	APITypeAzure   = "azure"
	APITypeAzureAD = "azure_ad"
)

const (
	cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
	defaultAzureAPIVersion = "2023-05-15"
)

// OpenAIConfig is the `model.openai` section of the configuration file.
type OpenAIConfig struct {
	// APIType selects the endpoint flavour and auth mode: "openai", "azure" or "azure_ad"
	APIType string `yaml:"api_type"`

	// APIBase overrides the endpoint URL. Required for azure and azure_ad.
	APIBase string `yaml:"api_base,omitempty"`

	// APIVersion is the Azure API version query parameter.
	APIVersion string `yaml:"api_version,omitempty"`

	// APIKey is the static key for "openai" and "azure". Falls back to
	// OPENAI_API_KEY or AZURE_OPENAI_API_KEY.
	APIKey string `yaml:"api_key,omitempty"`

	// Deployment is the model name, or the deployment name on Azure.
	Deployment string `yaml:"deployment"`

	DeploymentKwargs DeploymentKwargs `yaml:"deployment_kwargs"`
}

// DeploymentKwargs holds the generation parameters sent with every request.
type DeploymentKwargs struct {
	Temperature      float32  `yaml:"temperature"`
	MaxTokens        int      `yaml:"max_tokens"`
	TopP             float32  `yaml:"top_p"`
	FrequencyPenalty float32  `yaml:"frequency_penalty"`
	PresencePenalty  float32  `yaml:"presence_penalty"`
	Stop             []string `yaml:"stop,omitempty"`
}

// DefaultOpenAIConfig returns the configuration used for keys missing from
// the config file.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIType: APITypeOpenAI,
		DeploymentKwargs: DeploymentKwargs{
			Temperature: 0.7,
			MaxTokens:   800,
			TopP:        0.95,
		},
	}
}

// newAzureCredential is swapped in tests.
var newAzureCredential = func() (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}

// OpenAI talks to an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	config OpenAIConfig
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAI decodes and validates the configuration, then sets up the
// client. In azure_ad mode the bearer token is acquired here, once.
func NewOpenAI(decode DecodeFunc, logger *zap.Logger) (Model, error) {
	cfg := DefaultOpenAIConfig()
	if err := decode(&cfg); err != nil {
		return nil, &ConfigurationError{Model: OpenAIName, Err: fmt.Errorf("failed to decode config: %w", err)}
	}

	clientConfig, err := buildClientConfig(&cfg)
	if err != nil {
		return nil, &ConfigurationError{Model: OpenAIName, Err: err}
	}

	logger.Debug("initialized openai model",
		zap.String("api_type", cfg.APIType),
		zap.String("api_base", clientConfig.BaseURL),
		zap.String("deployment", cfg.Deployment),
	)

	return &OpenAI{
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

func buildClientConfig(cfg *OpenAIConfig) (openai.ClientConfig, error) {
	if cfg.Deployment == "" {
		return openai.ClientConfig{}, errors.New("'deployment' is required")
	}

	switch cfg.APIType {
	case "", APITypeOpenAI:
		cfg.APIType = APITypeOpenAI
		apiKey := lo.CoalesceOrEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			return openai.ClientConfig{}, errors.New("'api_key' is required (or set OPENAI_API_KEY)")
		}
		clientConfig := openai.DefaultConfig(apiKey)
		if cfg.APIBase != "" {
			clientConfig.BaseURL = cfg.APIBase
		}
		return clientConfig, nil

	case APITypeAzure:
		if cfg.APIBase == "" {
			return openai.ClientConfig{}, errors.New("'api_base' is required for azure")
		}
		apiKey := lo.CoalesceOrEmpty(cfg.APIKey, os.Getenv("AZURE_OPENAI_API_KEY"))
		if apiKey == "" {
			return openai.ClientConfig{}, errors.New("'api_key' is required (or set AZURE_OPENAI_API_KEY)")
		}
		return azureClientConfig(cfg, apiKey), nil

	case APITypeAzureAD:
		if cfg.APIBase == "" {
			return openai.ClientConfig{}, errors.New("'api_base' is required for azure_ad")
		}
		credential, err := newAzureCredential()
		if err != nil {
			return openai.ClientConfig{}, fmt.Errorf("failed to create azure credential: %w", err)
		}
		token, err := credential.GetToken(context.Background(), policy.TokenRequestOptions{
			Scopes: []string{cognitiveServicesScope},
		})
		if err != nil {
			return openai.ClientConfig{}, fmt.Errorf("failed to acquire azure token: %w", err)
		}
		clientConfig := azureClientConfig(cfg, token.Token)
		clientConfig.APIType = openai.APITypeAzureAD
		return clientConfig, nil

	default:
		return openai.ClientConfig{}, fmt.Errorf("unknown api_type %q, expected one of openai, azure, azure_ad", cfg.APIType)
	}
}

func azureClientConfig(cfg *OpenAIConfig, authToken string) openai.ClientConfig {
	clientConfig := openai.DefaultAzureConfig(authToken, cfg.APIBase)
	clientConfig.APIVersion = lo.CoalesceOrEmpty(cfg.APIVersion, defaultAzureAPIVersion)
	deployment := cfg.Deployment
	clientConfig.AzureModelMapperFunc = func(string) string {
		return deployment
	}
	return clientConfig
}

func (m *OpenAI) Name() string {
	return OpenAIName
}

// Config returns the effective configuration, defaults applied.
func (m *OpenAI) Config() OpenAIConfig {
	return m.config
}

// toOpenAIMessages tags every message with the role the API expects.
func toOpenAIMessages(messages []ai.Message) []openai.ChatCompletionMessage {
	return lo.Map(messages, func(message ai.Message, _ int) openai.ChatCompletionMessage {
		role := openai.ChatMessageRoleAssistant
		if message.Author == ai.Human {
			role = openai.ChatMessageRoleUser
		}
		return openai.ChatCompletionMessage{
			Role:    role,
			Content: message.Content,
		}
	})
}

func (m *OpenAI) newRequest(conversation *ai.Context) openai.ChatCompletionRequest {
	kwargs := m.config.DeploymentKwargs
	return openai.ChatCompletionRequest{
		Model:            m.config.Deployment,
		Messages:         toOpenAIMessages(conversation.Get()),
		Temperature:      requestTemperature(kwargs.Temperature),
		MaxTokens:        kwargs.MaxTokens,
		TopP:             kwargs.TopP,
		FrequencyPenalty: kwargs.FrequencyPenalty,
		PresencePenalty:  kwargs.PresencePenalty,
		Stop:             kwargs.Stop,
	}
}

// requestTemperature keeps an explicit 0 on the wire. go-openai omits a zero
// Temperature, which the server reads as its default of 1.
func requestTemperature(temperature float32) float32 {
	if temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return temperature
}

func (m *OpenAI) ChatCompletion(ctx context.Context, conversation *ai.Context) (ai.Message, error) {
	request := m.newRequest(conversation)
	m.logger.Debug("sending chat completion request", zap.Int("messages", len(request.Messages)))

	response, err := m.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return ai.Message{}, &BackendError{Model: OpenAIName, Err: err}
	}
	if len(response.Choices) == 0 {
		return ai.Message{}, &BackendError{Model: OpenAIName, Err: errors.New("no choices in response")}
	}

	m.logger.Debug("received chat completion",
		zap.String("finish_reason", string(response.Choices[0].FinishReason)),
		zap.Int("total_tokens", response.Usage.TotalTokens),
	)

	return ai.NewMessage(ai.AI, response.Choices[0].Message.Content), nil
}

func (m *OpenAI) ChatCompletionStream(ctx context.Context, conversation *ai.Context) (Stream, error) {
	request := m.newRequest(conversation)
	request.Stream = true
	m.logger.Debug("sending streaming chat completion request", zap.Int("messages", len(request.Messages)))

	stream, err := m.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, &BackendError{Model: OpenAIName, Err: err}
	}

	return &openAIStream{stream: stream, logger: m.logger}, nil
}

// openAIStream adapts the go-openai SSE reader to Stream.
type openAIStream struct {
	stream *openai.ChatCompletionStream
	logger *zap.Logger
}

func (s *openAIStream) Recv() (ai.ChunkedMessage, error) {
	for {
		response, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return ai.ChunkedMessage{}, io.EOF
		}
		if err != nil {
			return ai.ChunkedMessage{}, &BackendError{Model: OpenAIName, Err: err}
		}

		// Azure sends content filter results as chunks without choices
		if len(response.Choices) == 0 {
			s.logger.Debug("skipping stream chunk without choices", zap.String("id", response.ID))
			continue
		}

		return ai.Chunk(response.Choices[0].Delta.Content), nil
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
