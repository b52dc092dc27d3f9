package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quillworks/quill/internal/branding"
	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/prompts"
	"github.com/quillworks/quill/internal/providers"
	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/runlog"
	"github.com/quillworks/quill/internal/store"
	"github.com/quillworks/quill/internal/tools"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quill", flag.ExitOnError)
	message := fs.String("message", "", "Natural-language content request (required)")
	requester := fs.String("requester", "", "Requester external id")
	email := fs.String("email", "", "Requester email")
	hint := fs.String("type", "", "Content type hint: blog, article or resource")
	topic := fs.String("topic", "", "Topic hint")
	audience := fs.String("audience", "", "Audience hint")
	tone := fs.String("tone", "", "Tone hint")
	dbPath := fs.String("db", "", "SQLite database path (default: <config dir>/quill.db)")
	maxIter := fs.Int("max-iterations", 0, "Hard iteration ceiling (default 100)")
	timeout := fs.Duration("timeout", 15*time.Minute, "Overall run timeout")
	verbose := fs.Bool("verbose", false, "Log every turn and tool call")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*message) == "" {
		fs.Usage()
		return fmt.Errorf("-message is required")
	}

	mgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	applyConfigToEnv(cfg)

	llm, model, err := providers.NewLLMClientFromEnv()
	if err != nil {
		return fmt.Errorf("llm setup failed: %w", err)
	}

	path := *dbPath
	if path == "" {
		path = cfg.DatabasePath
	}
	if path == "" {
		path = filepath.Join(mgr.Dir(), "quill.db")
		if err := os.MkdirAll(mgr.Dir(), 0755); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := store.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("store setup failed: %w", err)
	}
	defer db.Close()

	author, err := db.ResolveAuthor(ctx, *requester, *email)
	if err != nil {
		return fmt.Errorf("author resolution failed: %w", err)
	}

	index, err := research.NewIndex()
	if err != nil {
		return fmt.Errorf("research index setup failed: %w", err)
	}
	defer index.Close()

	searchURL := envOr("SEARCH_API_URL", cfg.SearchAPIURL)
	searchKey := envOr("SEARCH_API_KEY", cfg.SearchAPIKey)
	researchClient := research.NewClient(searchURL, searchKey)

	var ogImages branding.OGImageGenerator = branding.NopBranding{}
	if endpoint := envOr("OG_IMAGE_ENDPOINT", cfg.OGImageEndpoint); endpoint != "" {
		ogImages = &branding.TemplateOGGenerator{Endpoint: endpoint}
	}

	req := &orchestrator.GenerationRequest{
		RequesterID:     *requester,
		RequesterEmail:  *email,
		Message:         *message,
		ContentTypeHint: orchestrator.ContentKind(*hint),
	}
	if *topic != "" || *audience != "" || *tone != "" {
		req.Context = &orchestrator.RequestContext{
			Topic:    *topic,
			Audience: *audience,
			Tone:     *tone,
		}
	}

	state := orchestrator.NewState(author.ID)
	registry := tools.NewToolRegistry(tools.Deps{
		State:    state,
		Store:    db,
		Search:   researchClient,
		Extract:  researchClient,
		Crawl:    researchClient,
		Index:    index,
		Logos:    branding.NewClearbitFetcher(),
		OGImages: ogImages,
	})

	systemPrompt, err := prompts.UnifiedSystemPrompt(req)
	if err != nil {
		return err
	}

	var hooks engine.Hooks
	if *verbose {
		hooks = engine.Hooks{engine.LoggerHook{L: log.New(os.Stderr, "", log.LstdFlags)}}
	}

	ceiling := *maxIter
	if ceiling == 0 {
		ceiling = cfg.MaxIterations
	}

	driver := &orchestrator.Driver{
		LLM:           llm,
		Model:         model,
		Registry:      registry,
		Router:        orchestrator.NewRouter(orchestrator.RouterConfig{MaxTextOnlyTurns: cfg.MaxTextOnlyTurns}),
		Hooks:         hooks,
		MaxIterations: ceiling,
		ChatOptions:   engine.ChatOptions{MaxOutputTokens: 8192},
	}

	result, runErr := driver.Run(ctx, systemPrompt, *message, state)

	if result != nil {
		archive := runlog.NewStore(mgr.Dir())
		rec := &runlog.Record{
			RunID:   state.RunID,
			Request: req,
			State:   state,
			Result:  result,
		}
		if err := archive.Save(rec); err != nil {
			log.Printf("warning: failed to archive run: %v", err)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	return runErr
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
