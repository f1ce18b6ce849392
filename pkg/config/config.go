package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Index     IndexConfig
	RAG       RAGConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type EmbeddingConfig struct {
	APIKey    string
	Model     string
	Dimension int
	BatchSize int
}

type IndexConfig struct {
	IndexPath     string
	DocumentsPath string
}

type RAGConfig struct {
	TopK int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/can2025-chat")

	viper.SetEnvPrefix("CAN2025")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.readTimeout", 90)
	viper.SetDefault("server.writeTimeout", 90)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./matches.db")

	viper.SetDefault("llm.baseURL", "https://openrouter.ai/api/v1")
	viper.SetDefault("llm.model", "mistralai/mistral-7b-instruct:free")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.maxTokens", 500)
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimension", 1536)
	viper.SetDefault("embedding.batchSize", 100)

	viper.SetDefault("index.indexPath", "./rag_index.gob")
	viper.SetDefault("index.documentsPath", "./rag_documents.json")

	viper.SetDefault("rag.topK", 25)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
