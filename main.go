// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/qdrant/go-client/qdrant"
	"github.com/typesense/typesense-go/v2/typesense"
	typesenseapi "github.com/typesense/typesense-go/v2/typesense/api"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/store"
	"github.com/saqr-hq/saqr-workflows/services"
	"github.com/saqr-hq/saqr-workflows/workflows"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)
	log.Printf("Answer engine model: %s", cfg.GeminiModel)

	if cfg.GoogleAPIKey == "" {
		log.Printf("WARNING: Google API key not loaded!")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}

	ctx := context.Background()
	dbClient, err := store.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Printf("Successfully connected to database")

	if err := dbClient.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Database schema ready")

	repos := store.NewManager(dbClient)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	log.Println("Attempting to initialize Qdrant client...")
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	err = qdrantClient.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: services.AnswerVectorCollection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     1536,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Fatalf("Failed to create Qdrant collection: %v", err)
	}
	log.Printf("Qdrant collection %q is ready.", services.AnswerVectorCollection)

	log.Println("Attempting to initialize Typesense client...")
	typesenseClient := typesense.NewClient(
		typesense.WithServer(fmt.Sprintf("http://%s:%d", cfg.Typesense.Host, cfg.Typesense.Port)),
		typesense.WithAPIKey(cfg.Typesense.APIKey),
	)

	facet := true
	sortable := true
	defaultSortField := "created_at"
	answersSchema := &typesenseapi.CollectionSchema{
		Name: services.AnswerKeywordCollection,
		Fields: []typesenseapi.Field{
			{Name: "id", Type: "string"},
			{Name: "company_uid", Type: "string", Facet: &facet},
			{Name: "query_id", Type: "string", Facet: &facet},
			{Name: "query_text", Type: "string"},
			{Name: "raw_answer", Type: "string"},
			{Name: "created_at", Type: "int64", Sort: &sortable},
		},
		DefaultSortingField: &defaultSortField,
	}
	_, err = typesenseClient.Collections().Create(ctx, answersSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		log.Fatalf("Failed to create Typesense collection: %v", err)
	}
	log.Printf("Typesense collection %q is ready.", services.AnswerKeywordCollection)

	// Initialize services
	costService := services.NewCostService()
	answerEngine, err := services.NewAnswerEngine(cfg, cfg.GeminiModel, costService)
	if err != nil {
		log.Fatalf("Failed to create answer engine: %v", err)
	}
	extractionService := services.NewExtractionService(cfg, costService)
	queryRunner := services.NewQueryRunnerService(cfg, repos.Queries, answerEngine)
	indexService := services.NewAnswerIndexService(cfg, qdrantClient, typesenseClient)
	pipelineService := services.NewPipelineService(
		cfg,
		queryRunner,
		extractionService,
		repos.Companies,
		repos.Answers,
		indexService,
		answerEngine.GetProviderName(),
	)
	log.Printf("Services initialized")

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "saqr-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	log.Printf("Initializing QueryProcessor workflow...")
	queryProcessor := workflows.NewQueryProcessor(pipelineService)
	queryProcessor.SetClient(client)
	queryProcessor.ProcessQueries()
	queryProcessor.DailyQueryProcessor()
	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"saqr-workflows","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Manual trigger: sends the processing event with the posted options.
	mux.HandleFunc("/api/process-queries", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var event workflows.QueryProcessEvent
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&event); err != nil && err.Error() != "EOF" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":"invalid request body: %v"}`, err)
				return
			}
		}
		event.TriggeredBy = "manual_api"

		evt := inngestgo.Event{
			Name: "queries.process",
			Data: map[string]interface{}{
				"company_uid":   event.CompanyUID,
				"query_configs": event.QueryConfigs,
				"triggered_by":  event.TriggeredBy,
			},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send process event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, `{"error":"Failed to send event: %v"}`, err)
			return
		}
		log.Printf("Process event sent: %+v", result)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"success","event_ids":["%s"]}`, result)
	})

	port := cfg.Port
	log.Printf("Starting Saqr Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
