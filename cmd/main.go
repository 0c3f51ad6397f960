package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"prognosis-rag/internal/chromemdb"
	"prognosis-rag/internal/chunker"
	"prognosis-rag/internal/config"
	"prognosis-rag/internal/db"
	"prognosis-rag/internal/embedding"
	"prognosis-rag/internal/helper"
	"prognosis-rag/internal/models"
	"prognosis-rag/internal/pipeline"
	"prognosis-rag/internal/rag"
	"prognosis-rag/internal/server"
)

const (
	configFilePath = "./configs/config.yaml"
	inMemory       = false
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file to ingest")
	query := flag.String("query", "", "Query to be answered")
	serve := flag.Bool("serve", false, "Run the diagnosis validation server")
	dryRun := flag.Bool("dry-run", false, "Chunk only, do not embed or store")
	reset := flag.Bool("reset", false, "Drop stored documents and the vector collection")
	exportDB := flag.Bool("export", false, "Export the vector collection to an encrypted snapshot")
	importDB := flag.Bool("import", false, "Import the vector collection from an encrypted snapshot")
	flag.Parse()

	if *filePath != "" && *query != "" {
		log.Fatal().Msg("Please provide either a document file using the -file flag or a query using the -query flag, but not both")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *filePath != "":
		ingestDocument(ctx, *filePath, *dryRun)
	case *query != "":
		answerQuery(ctx, *query)
	case *serve:
		runServer(ctx)
	case *reset:
		resetStores(ctx)
	case *exportDB:
		exportIndex(ctx)
	case *importDB:
		importIndex(ctx)
	default:
		log.Fatal().Msg("Please provide -file, -query, -serve, -reset, -export or -import")
	}
}

func ingestDocument(ctx context.Context, filePath string, dryRun bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	runID, err := helper.NewRunID()
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating run id")
	}
	log.Debug().Str("run_id", runID).Interface("rag", cfg.RAG).Msg("Loaded config")

	c, err := chunker.New(cfg.RAG.MaxChunkSize, cfg.RAG.MinChunkSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building chunker")
	}

	doc, err := pipeline.New(c, cfg.Pipeline.Workers).ProcessFile(ctx, filePath)
	if err != nil {
		log.Error().Err(err).Msg("Error processing document")
		return
	}

	if err := helper.CreateFolder(cfg.Pipeline.OutputDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating output folder")
	}
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	outputPath := filepath.Join(cfg.Pipeline.OutputDir, stem+"_processed.json")
	if err := pipeline.Save(doc, outputPath); err != nil {
		log.Fatal().Err(err).Msg("Error saving processed data")
	}

	if dryRun {
		helper.PrettyPrint(doc.DocumentInfo)
		return
	}

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	chunkEmbeddings, err := embedding.EmbedChunks(ctx, embedder, filepath.Base(filePath), doc.Chunks)
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}

	vectors := openVectorDB(cfg)
	vecs := make([][]float32, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		vecs[i] = ce.Embedding
	}
	log.Info().Msgf("Adding %d documents to vector database", len(doc.Chunks))
	if err := vectors.AddChunks(ctx, doc.Chunks, vecs); err != nil {
		log.Fatal().Err(err).Msg("Error adding content to vector database")
	}

	if cfg.Database.URL != "" {
		mirrorToDatabase(ctx, cfg, chunkEmbeddings)
	}
}

// mirrorToDatabase keeps a pgvector copy of the chunks for SQL-side
// retrieval and reporting.
func mirrorToDatabase(ctx context.Context, cfg *config.Config, chunkEmbeddings []models.ChunkEmbedding) {
	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.InitDB(ctx, dbInstance); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	docs := make([]db.Document, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs[i] = db.Document{
			ChunkID:     ce.ChunkID,
			Content:     ce.Content,
			SectionType: ce.SectionType,
			PageNum:     ce.PageNum,
			SourceFile:  ce.SourceFilename,
			Embedding:   ce.Embedding,
		}
	}
	if err := db.StoreDocuments(ctx, dbInstance, docs); err != nil {
		log.Fatal().Err(err).Msg("Error storing documents")
	}
}

func answerQuery(ctx context.Context, query string) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	vectors := openVectorDB(cfg)
	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var store *bun.DB
	if cfg.Database.URL != "" {
		dbClient, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		store = db.NewDB(dbClient, cfg.Database.Debug)
		defer store.Close()
	}

	engine := rag.NewEngine(vectors, embedder, store, cfg)
	response, err := engine.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func runServer(ctx context.Context) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.Ping(ctx, dbInstance); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	vectors := openVectorDB(cfg)
	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	engine := rag.NewEngine(vectors, embedder, dbInstance, cfg)

	if err := server.New(cfg.Server.Addr, dbInstance, engine).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// resetStores drops the pgvector mirror and the vector collection so a
// corrected document set can be re-ingested from scratch.
func resetStores(ctx context.Context) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if cfg.Database.URL != "" {
		dbClient, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
		defer dbInstance.Close()

		if err := db.DropDocuments(ctx, dbInstance); err != nil {
			log.Fatal().Err(err).Msg("Error dropping documents table")
		}
		log.Info().Msg("Dropped documents table")
	}

	vectors := openVectorDB(cfg)
	if err := vectors.DeleteCollection(); err != nil {
		log.Fatal().Err(err).Msg("Error deleting collection")
	}
	log.Info().Str("collection", cfg.RAG.Collection).Msg("Deleted vector collection")
}

func exportIndex(ctx context.Context) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := openVectorDB(cfg).Export(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error exporting vector database")
	}
	log.Info().Msg("Exported vector database snapshot")
}

func importIndex(ctx context.Context) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := openVectorDB(cfg).Import(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error importing vector database")
	}
	log.Info().Msg("Imported vector database snapshot")
}

func openVectorDB(cfg *config.Config) *chromemdb.VectorDBManager {
	if err := helper.CreateFolder(cfg.RAG.DBPath); err != nil {
		log.Fatal().Err(err).Msg("Error creating folder")
	}
	vectors, err := chromemdb.NewVectorDBManager(cfg.RAG.DBPath, cfg.RAG.Collection, inMemory, cfg.RAG.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}
	if _, err := vectors.GetOrCreateCollection(cfg.RAG.Collection); err != nil {
		log.Fatal().Err(err).Msg("Error creating collection")
	}
	return vectors
}
