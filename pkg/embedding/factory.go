package embedding

import "fmt"

func NewProvider(providerType, modelName, baseURL, apiKey string, dimension int) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return NewOpenAIProvider(apiKey, modelName, dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
