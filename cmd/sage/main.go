// Command sage is the interactive front-end: a chat REPL over the memory
// pipeline, plus a reset subcommand to wipe a user's stored memory.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mindwell/sage/agent"
	"github.com/mindwell/sage/config"
	"github.com/mindwell/sage/llm"
	"github.com/mindwell/sage/memory"
	"github.com/mindwell/sage/memory/embedder/cached"
	"github.com/mindwell/sage/memory/embedder/mock"
	"github.com/mindwell/sage/memory/embedder/openai"
	"github.com/mindwell/sage/memory/store/chromem"
	"github.com/mindwell/sage/speech"
	"github.com/mindwell/sage/techniques"
)

const embedderCacheEntries = 4096

var (
	userID       string
	voice        bool
	speechServer string
)

func main() {
	root := &cobra.Command{
		Use:   "sage",
		Short: "AI psychologist with layered long-term memory",
		RunE:  runChat,
	}
	root.PersistentFlags().StringVar(&userID, "user", "default_user", "user identifier (one memory namespace per user)")
	root.Flags().BoolVar(&voice, "voice", false, "take input by voice (each line names a PCM audio file)")
	root.Flags().StringVar(&speechServer, "speech-server", "ws://localhost:2700", "vosk-server websocket endpoint for --voice")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all stored memory for the user",
		RunE:  runReset,
	}
	root.AddCommand(reset)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup wires the full pipeline for one user session.
func setup() (*agent.Agent, *config.Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store := memory.NewFileStore(cfg.DataStoragePath)
	vector := buildVectorIndex(cfg)
	mem := memory.NewSystem(userID, store, vector, nil, memory.Config{
		WorkingSize:   cfg.WorkingMemorySize,
		EpisodicLimit: cfg.EpisodicMemoryLimit,
	})

	catalog := techniques.Load(cfg.TechniquesFile)
	return agent.New(llm.New(cfg), mem, catalog), cfg, nil
}

// buildVectorIndex assembles the optional similarity index. Any failure is
// logged and yields nil; the session runs on recency-based recall instead.
func buildVectorIndex(cfg *config.Config) memory.VectorIndex {
	var emb memory.Embedder
	if cfg.OpenRouterAPIKey != "" {
		apiEmb, err := openai.New(openai.Config{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
		})
		if err != nil {
			log.Printf("[SAGE] Embedding client unavailable: %v", err)
			emb = mock.New()
		} else {
			emb = apiEmb
		}
	} else {
		emb = mock.New()
	}

	if wrapped, err := cached.New(emb, embedderCacheEntries); err == nil {
		emb = wrapped
	}

	index, err := chromem.New(cfg.VectorDBPath, userID, emb)
	if err != nil {
		log.Printf("[SAGE] Vector index unavailable, using recency-based recall: %v", err)
		return nil
	}
	return index
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, _, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var recognizer *speech.Recognizer
	if voice {
		recognizer, err = speech.Dial(ctx, speech.Config{ServerURL: speechServer})
		if err != nil {
			log.Printf("[SAGE] Voice input unavailable, falling back to text: %v", err)
			recognizer = nil
		} else {
			defer recognizer.Close()
		}
	}

	fmt.Println("AI心理学家 (输入 exit 退出)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("你: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "退出" {
			break
		}

		message := line
		if recognizer != nil {
			text, err := recognizeFile(ctx, recognizer, line)
			if err != nil {
				log.Printf("[SAGE] Recognition failed, treating input as text: %v", err)
			} else if text != "" {
				fmt.Printf("(识别结果: %s)\n", text)
				message = text
			}
		}

		fmt.Printf("sage: %s\n", a.Chat(ctx, message))
	}
	return scanner.Err()
}

// recognizeFile streams one audio file through the recognizer.
func recognizeFile(ctx context.Context, r *speech.Recognizer, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.Recognize(ctx, f)
}

func runReset(cmd *cobra.Command, _ []string) error {
	a, _, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a.Reset(ctx)
	fmt.Printf("已清除用户 %s 的全部记忆。\n", userID)
	return nil
}
