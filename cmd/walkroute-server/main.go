package main

import (
	"log/slog"
	"os"

	"github.com/Masaki-Aoki-soft/walkroute"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := walkroute.DefaultConfiguration()
	if fname := os.Getenv("WALKROUTE_CONFIG"); fname != "" {
		var err error
		cfg, err = walkroute.LoadConfiguration(fname)
		if err != nil {
			slog.Error("can't load configuration", "file", fname, slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		cfg.Files = walkroute.FilesConfiguration{
			Weights:    envOr("WALKROUTE_WEIGHTS", "result.csv"),
			Attributes: envOr("WALKROUTE_ATTRIBUTES", "oomiya_route_inf_4.csv"),
			Signals:    envOr("WALKROUTE_SIGNALS", "signal_inf.csv"),
			Nodes:      os.Getenv("WALKROUTE_NODES"),
		}
	}

	slog.Info("loading graph...")
	graph, err := walkroute.LoadGraph(cfg.Files, true)
	if err != nil {
		slog.Error("can't load graph", slog.String("error", err.Error()))
		os.Exit(1)
	}
	planner, err := walkroute.NewPlanner(graph, cfg)
	if err != nil {
		slog.Error("can't prepare planner", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	registerRoutes(r, &server{planner: planner})

	addr := ":" + envOr("PORT", "8080")
	slog.Info("walkroute server starting", "addr", addr, "edges", graph.EdgesNum())
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
