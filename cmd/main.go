package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"gopkg.in/yaml.v3"

	"mealer/internal/api"
	"mealer/internal/database"
	"mealer/internal/monitoring"
	"mealer/internal/store"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Metrics server port")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

// Config represents the application configuration
type Config struct {
	Secret   string `yaml:"secret"`
	Database struct {
		Dialect string `yaml:"dialect"`
		Args    string `yaml:"args"`
	} `yaml:"database"`
	Triage struct {
		Enabled   bool   `yaml:"enabled"`
		OpenAIKey string `yaml:"openai_key"`
		Model     string `yaml:"model"`
	} `yaml:"triage"`
	OptimisticRating bool `yaml:"optimistic_rating"`
}

func main() {
	flag.Parse()

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.InitDB(config.Database.Dialect, config.Database.Args); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	docStore, err := store.NewGormStore(database.GetDB())
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	monitor := monitoring.NewMonitor(prometheus.DefaultRegisterer)

	var triageModel llms.LLM
	if config.Triage.Enabled {
		triageModel, err = initializeLLM(config)
		if err != nil {
			log.Fatalf("Failed to initialize LLM: %v", err)
		}
	}

	server := api.NewServer(api.Config{
		Secret:           []byte(config.Secret),
		Store:            docStore,
		Monitor:          monitor,
		TriageModel:      triageModel,
		OptimisticRating: config.OptimisticRating,
	})

	go startMetricsServer(*metricsPort)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", *port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := &Config{OptimisticRating: true}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Database.Dialect == "" {
		config.Database.Dialect = "sqlite3"
	}
	if config.Database.Args == "" {
		config.Database.Args = "mealer.db"
	}
	return config, nil
}

func initializeLLM(config *Config) (llms.LLM, error) {
	model := config.Triage.Model
	if model == "" {
		model = "gpt-4-turbo-preview"
	}
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(config.Triage.OpenAIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return llm, nil
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
