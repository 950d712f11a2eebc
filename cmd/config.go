package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")

	// Map environment variables to Viper keys for Elasticsearch
	viper.BindEnv("elasticsearch.url", "ELASTICSEARCH_URL")
	viper.BindEnv("elasticsearch.search_index", "ELASTICSEARCH_SEARCH_INDEX")
	viper.BindEnv("elasticsearch.document_index", "ELASTICSEARCH_DOCUMENT_INDEX")

	// Map environment variables to Viper keys for MinIO and Server
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	viper.BindEnv("minio.url_expiry", "MINIO_URL_EXPIRY")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.development", "SERVER_DEVELOPMENT")

	// Map environment variables to Viper keys for the vector index
	viper.BindEnv("weaviate.url", "WEAVIATE_URL")
	viper.BindEnv("weaviate.scheme", "WEAVIATE_SCHEME")
	viper.BindEnv("weaviate.class", "WEAVIATE_CLASS")

	// Map environment variables to Viper keys for embedding providers
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.model", "OLLAMA_EMBEDDING_MODEL")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_EMBEDDING_MODEL")

	// Map environment variables to Viper keys for search tunables
	viper.BindEnv("search.timeout", "SEARCH_TIMEOUT")
	viper.BindEnv("search.pool_size", "SEARCH_POOL_SIZE")
	viper.BindEnv("search.provider_ttl", "SEARCH_PROVIDER_TTL")

	// Set default values for PostgreSQL
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "mediasearch")

	// Set default values for Elasticsearch
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.search_index", "media-assets")
	viper.SetDefault("elasticsearch.document_index", "media-assets")

	// Set default values for MinIO and Server
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.use_ssl", false)
	viper.SetDefault("minio.url_expiry", "15m")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.development", false)

	// Set default values for the vector index
	viper.SetDefault("weaviate.url", "weaviate:8080")
	viper.SetDefault("weaviate.scheme", "http")
	viper.SetDefault("weaviate.class", "MediaVector")

	// Set default values for embedding providers
	viper.SetDefault("ollama.url", "http://ollama:11434/api")
	viper.SetDefault("ollama.model", "nomic-embed-text")

	// Set default values for search tunables
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.pool_size", 10)
	viper.SetDefault("search.provider_ttl", "60s")
}
