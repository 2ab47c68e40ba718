// Copyright 2025 InterviewKit
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	retriever "github.com/interviewkit/retriever"
	"github.com/interviewkit/retriever/ai"
	"github.com/interviewkit/retriever/assemble"
	"github.com/interviewkit/retriever/core"
	"github.com/interviewkit/retriever/kb"
	"github.com/interviewkit/retriever/records/jsonl"
	"github.com/interviewkit/retriever/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "retriever",
		Usage: "Hybrid retrieval over an interview-prep knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "rebuild",
				Usage:  "Rebuild the knowledge base from a source record file",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "records",
						Aliases:  []string{"r"},
						Usage:    "Path to the JSONL source record file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed per provider call",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run one retrieval against the knowledge base",
				Action: searchCommand,
				Flags: append(searchFlags(),
					&cli.BoolFlag{
						Name:  "ids-only",
						Usage: "Print only the ranked document IDs",
					},
				),
			},
			{
				Name:   "assemble",
				Usage:  "Retrieve and print the assembled context payload",
				Action: assembleCommand,
				Flags: append(searchFlags(),
					&cli.IntFlag{
						Name:  "budget",
						Usage: "Context size budget in bytes (0 = unlimited)",
						Value: 0,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// searchFlags are shared by the search and assemble commands.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "query",
			Aliases:  []string{"q"},
			Usage:    "Query text",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "semantic-k",
			Usage: "Semantic recall depth",
			Value: 20,
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of results to return",
			Value:   5,
		},
		&cli.Float64Flag{
			Name:  "semantic-weight",
			Usage: "Blend weight for semantic similarity in final ranking (0-1)",
			Value: 0,
		},
	}
}

func openEngine(c *cli.Context) (*retriever.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := retriever.NewEngine(c.String("db"), retriever.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return engine, nil
}

func rebuildCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := jsonl.NewStore(c.String("records"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	builder, err := engine.NewBuilder(
		kb.WithBatchSize(c.Int("batch-size")),
		kb.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}
	defer builder.Release()

	sourceRecords, err := store.ListSourceRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to read source records: %w", err)
	}

	report, err := builder.Rebuild(ctx, sourceRecords)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Rebuilt knowledge base in %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  added:   %d\n", report.Added)
	fmt.Fprintf(os.Stderr, "  updated: %d\n", report.Updated)
	fmt.Fprintf(os.Stderr, "  carried: %d\n", report.Carried)
	fmt.Fprintf(os.Stderr, "  pruned:  %d\n", report.Pruned)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := runRetrieval(ctx, c, engine)
	if err != nil {
		return err
	}

	if c.Bool("ids-only") {
		for _, id := range result.DocumentIDs() {
			fmt.Println(id)
		}
		return nil
	}

	for _, candidate := range result.Candidates {
		fmt.Printf("%d. %s (lexical=%.3f semantic=%.3f)\n",
			candidate.FinalRank, candidate.DocumentID,
			candidate.LexicalScore, candidate.SemanticScore)
		fmt.Println(indent(candidate.Text))
	}
	return nil
}

func assembleCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := runRetrieval(ctx, c, engine)
	if err != nil {
		return err
	}

	assembler := assemble.NewAssembler(assemble.WithBudget(c.Int("budget")))
	payload := assembler.Assemble(result)

	fmt.Println(payload.Render())
	fmt.Fprintf(os.Stderr, "\nrecommended: %s\n", strings.Join(payload.DocumentIDs, ", "))
	return nil
}

func runRetrieval(ctx context.Context, c *cli.Context, engine *retriever.Engine) (*core.Result, error) {
	r, err := engine.NewRetriever(search.WithSemanticWeight(c.Float64("semantic-weight")))
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	result, err := r.Retrieve(ctx, c.String("query"), c.Int("semantic-k"), c.Int("top"))
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return result, nil
}

func indent(text string) string {
	return "   " + strings.ReplaceAll(text, "\n", "\n   ")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
