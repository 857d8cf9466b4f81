package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/adapters/source"
	"github.com/karnsiree/subscription-radar/internal/config"
	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/factory"
	"github.com/karnsiree/subscription-radar/internal/knownsenders"
	"github.com/karnsiree/subscription-radar/internal/logging"
)

var (
	// LLM provider flags
	provider       = flag.String("provider", "openai", "Gate provider (openai, gemini, bedrock)")
	maxTokens      = flag.Int("max-tokens", 5, "Maximum tokens for the gate answer")
	temperature    = flag.Float64("temperature", 0.0, "Temperature for gate generation")
	topP           = flag.Float64("top-p", 1.0, "Top-p for gate generation")
	maxSnippetSize = flag.Int("max-snippet-size", 1024, "Maximum snippet size to send to the gate")

	// OpenAI-compatible flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for the OpenAI-compatible endpoint")
	openaiBaseURL   = flag.String("openai-base-url", "", "Base URL for the OpenAI-compatible endpoint")
	openaiModelName = flag.String("openai-model", "meta-llama/Llama-3.1-8B-Instruct:novita", "Model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gate flags
	knownDomains = flag.String("known-domains", "", "Comma-separated billing domains that bypass the gate")
	skipGate     = flag.Bool("skip-gate", false, "Skip the LLM gate and run the rule engine alone")

	// Input flags
	inputFile  = flag.String("file", "", "Input file: JSON email, JSON array, or RFC822 message (stdin if not specified)")
	rfc822     = flag.Bool("rfc822", false, "Treat the input as an RFC822 message instead of JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Load the emails to classify
	emails, err := loadEmails(logger)
	if err != nil {
		logger.Fatal("Failed to load input", zap.Error(err))
	}
	if len(emails) == 0 {
		logger.Fatal("No emails in input")
	}

	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	ruleEngine := core.NewRuleEngine()

	// Initialize the gate unless it is skipped
	var gate core.GateClient
	if !*skipGate {
		llmFactory := factory.NewLLMFactory(cfg, logger, textProcessor)
		gate, err = llmFactory.CreateGateClient()
		if err != nil {
			logger.Fatal("Failed to create gate client", zap.Error(err))
		}
	}

	// Parse known billing domains
	var domains []string
	if *knownDomains != "" {
		domains = strings.Split(*knownDomains, ",")
	} else {
		domains = cfg.GetStringSlice("gate.known_sender_domains")
	}
	checker := knownsenders.NewChecker(domains, logger)

	records := make([]core.SubscriptionRecord, 0, len(emails))
	for i := range emails {
		email := &emails[i]

		if !*skipGate && !checker.IsKnown(email.From) {
			verdict, err := gate.IsSubscription(context.Background(), email)
			if err != nil {
				logger.Warn("Gate call failed, treating as not a subscription",
					zap.String("sender", email.From),
					zap.Error(err))
				continue
			}
			if !verdict {
				logger.Debug("Email gated out", zap.String("sender", email.From))
				continue
			}
		}

		record := ruleEngine.Process(email)
		if !*skipGate {
			// Confidence is only exposed on the rule-only surface.
			record.Confidence = nil
		}
		records = append(records, *record)
	}

	// Print the records
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Fatal("Failed to marshal records", zap.Error(err))
	}
	fmt.Println(string(out))

	// Close any resources that need closing
	if closer, ok := gate.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close gate client", zap.Error(err))
		}
	}
}

// loadEmails reads the input emails from the configured file or stdin
func loadEmails(logger *zap.Logger) ([]core.Email, error) {
	if *rfc822 {
		return loadRFC822(logger)
	}

	if *inputFile != "" {
		return source.NewFileSource(*inputFile, logger).Load()
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}

	var emails []core.Email
	if err := json.Unmarshal(data, &emails); err == nil {
		return emails, nil
	}

	var email core.Email
	if err := json.Unmarshal(data, &email); err != nil {
		return nil, fmt.Errorf("failed to decode input as email JSON: %w", err)
	}
	return []core.Email{email}, nil
}

// loadRFC822 parses a raw email message into the pipeline's input shape
func loadRFC822(logger *zap.Logger) ([]core.Email, error) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	return []core.Email{{
		ID:      msg.Header.Get("Message-Id"),
		From:    msg.Header.Get("From"),
		Subject: msg.Header.Get("Subject"),
		Snippet: string(bodyBytes),
	}}, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set gate provider
	v.Set("llm.provider", *provider)

	// Set provider-specific configuration
	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.base_url", *openaiBaseURL)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_snippet_size", *maxSnippetSize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_snippet_size", *maxSnippetSize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_snippet_size", *maxSnippetSize)
	}

	// Set known billing domains
	if *knownDomains != "" {
		domains := strings.Split(*knownDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("gate.known_sender_domains", domains)
	} else {
		v.Set("gate.known_sender_domains", []string{})
	}

	return config.NewFromViper(v)
}
