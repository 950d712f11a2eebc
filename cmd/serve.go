package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	handler "mediasearch/handler/http"
	"mediasearch/src/core/search"
	"mediasearch/src/infrastructure/providers"
	"mediasearch/src/log"
	"mediasearch/src/storage/elastic"
	"mediasearch/src/storage/minioctrl"
	"mediasearch/src/storage/postgres/providerctrl"
	"mediasearch/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the media search HTTP server",
	Long:  `The serve command starts an HTTP server that answers keyword and semantic search queries`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	log.Init(viper.GetBool("server.development"))

	// Initialize PostgreSQL connection for the provider configuration store
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	providerStore, err := providerctrl.NewProviderService(db)
	if err != nil {
		log.Error(err, "Failed to create provider store")
		return
	}

	// Initialize Elasticsearch client
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{viper.GetString("elasticsearch.url")},
	})
	if err != nil {
		log.Error(err, "Failed to create elasticsearch client")
		return
	}
	esSDK := elastic.NewSDK(es,
		viper.GetString("elasticsearch.search_index"),
		viper.GetString("elasticsearch.document_index"))

	// Initialize Weaviate client
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: viper.GetString("weaviate.scheme"),
	})
	wsdk := weaviate.NewSDK(wc, viper.GetString("weaviate.class"))

	// Initialize MinIO signing service
	signer, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
		viper.GetDuration("minio.url_expiry"))
	if err != nil {
		log.Error(err, "Failed to create minio service")
		return
	}

	// Assemble the search pipeline
	discovery, err := search.NewDiscoveryEngine(wsdk, viper.GetInt("search.pool_size"))
	if err != nil {
		log.Error(err, "Failed to create discovery engine")
		return
	}
	defer discovery.Release()

	resolver := providers.NewResolver(providers.Config{
		OllamaURL:     viper.GetString("ollama.url"),
		OllamaModel:   viper.GetString("ollama.model"),
		OpenAIAPIKey:  viper.GetString("openai.api_key"),
		OpenAIBaseURL: viper.GetString("openai.base_url"),
		OpenAIModel:   viper.GetString("openai.model"),
	})

	svc := search.NewService(
		esSDK,
		search.NewRouter(providerStore, viper.GetDuration("search.provider_ttl")),
		discovery,
		search.NewAggregator(esSDK),
		search.NewAssembler(signer),
		resolver,
		viper.GetDuration("search.timeout"),
	)

	// Setup gin router
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID(), handler.AccessLog(), handler.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewHandler(svc).RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := viper.GetDuration("server.shutdown_timeout")
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Close database connection
	if sqlDB, err := db.DB(); err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else if err := sqlDB.Close(); err != nil {
		log.Error(err, "Error closing database connection")
	}

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
