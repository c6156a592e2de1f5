package main

import (
	"flag"
	"log/slog"
	"net/http"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/chatlog"
	"coursefinder-backend/lib/configutil"
	"coursefinder-backend/lib/llm"
	"coursefinder-backend/lib/serviceutil"
	"coursefinder-backend/lib/sqliteutil"
	"coursefinder-backend/services/assistant"
)

type ChatLogConfig struct {
	Database string `json:"database"`
}

type Config struct {
	// Catalog is the path of the course catalog JSON produced by the
	// scrape/merge pipeline.
	Catalog string        `json:"catalog"`
	Port    int           `json:"port"`
	Llm     llm.Config    `json:"llm"`
	ChatLog ChatLogConfig `json:"chatlog"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	courses, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		serviceutil.Fatal("load catalog", err)
	}
	store := catalog.NewStore(courses)
	slog.InfoContext(ctx, "loaded catalog", "courses", store.Len(), "path", cfg.Catalog)

	var log *chatlog.Store
	if cfg.ChatLog.Database != "" {
		db, err := sqliteutil.OpenDB(chatlog.Schema, cfg.ChatLog.Database)
		if err != nil {
			serviceutil.Fatal("init chat log", err)
		}
		s := chatlog.NewStore(db)
		log = &s
	}

	var parser assistant.QueryParser
	var formatter assistant.Formatter
	if cfg.Llm.BaseUrl != "" {
		client := llm.NewClient(cfg.Llm)
		parser = assistant.NewLLMParser(client, store)
		formatter = assistant.NewLLMFormatter(client)
	} else {
		slog.WarnContext(ctx, "no llm configured, answering with heuristics only")
		parser = assistant.NewHeuristicParser(store)
		formatter = assistant.TextFormatter{}
	}

	mux := http.NewServeMux()
	service := assistant.NewService(store, parser, formatter, log)
	service.RegisterRoutes(mux)

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()
}
