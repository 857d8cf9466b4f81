package config

// LLMConfig represents the configuration for the gate provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for an OpenAI-compatible gate
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey         string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region         string
	ModelID        string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// SinkConfig represents the configuration for batch delivery
type SinkConfig struct {
	Type      string
	Endpoint  string
	Timeout   string
	OutputDir string
}

// GetLLM returns the gate provider configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		BaseURL:        c.GetString("openai.base_url"),
		ModelName:      c.GetString("openai.model_name"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxSnippetSize: c.GetInt("openai.max_snippet_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:         c.GetString("gemini.api_key"),
		ModelName:      c.GetString("gemini.model_name"),
		MaxTokens:      c.GetInt("gemini.max_tokens"),
		Temperature:    float32(c.GetFloat64("gemini.temperature")),
		TopP:           float32(c.GetFloat64("gemini.top_p")),
		MaxSnippetSize: c.GetInt("gemini.max_snippet_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:         c.GetString("bedrock.region"),
		ModelID:        c.GetString("bedrock.model_id"),
		MaxTokens:      c.GetInt("bedrock.max_tokens"),
		Temperature:    float32(c.GetFloat64("bedrock.temperature")),
		TopP:           float32(c.GetFloat64("bedrock.top_p")),
		MaxSnippetSize: c.GetInt("bedrock.max_snippet_size"),
	}
}

// GetSink returns the sink configuration
func (c *Config) GetSink() SinkConfig {
	return SinkConfig{
		Type:      c.GetString("sink.type"),
		Endpoint:  c.GetString("sink.endpoint"),
		Timeout:   c.GetString("sink.timeout"),
		OutputDir: c.GetString("sink.output_dir"),
	}
}
