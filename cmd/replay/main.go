package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/foxxcyber/nutri-scan/internal/config"
	"github.com/foxxcyber/nutri-scan/internal/services"
)

// replay turns a saved provider reply into a nutrition report. With -label it
// first sends the given OCR text to the configured provider.
func main() {
	replyFile := flag.String("file", "", "Read the provider reply from this file instead of stdin")
	labelFile := flag.String("label", "", "Send this OCR text file to the configured provider first")
	format := flag.String("format", "json", "Output format: json or lines")
	showPrompt := flag.Bool("prompt", false, "Print the provider prompt and exit")
	flag.Parse()

	if *showPrompt && *labelFile == "" {
		log.Fatal("-prompt requires -label")
	}

	var reply string
	switch {
	case *labelFile != "":
		labelText, err := os.ReadFile(*labelFile)
		if err != nil {
			log.Fatalf("Failed to read label text: %v", err)
		}
		if *showPrompt {
			fmt.Println(services.BuildPrompt(string(labelText)))
			return
		}
		reply = complete(string(labelText))
	case *replyFile != "":
		data, err := os.ReadFile(*replyFile)
		if err != nil {
			log.Fatalf("Failed to read reply: %v", err)
		}
		reply = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("Failed to read reply from stdin: %v", err)
		}
		reply = string(data)
	}

	report, source := services.NewReplyParser().BuildReport(reply)
	log.Printf("Summary source: %s", source)

	switch *format {
	case "lines":
		fmt.Println(services.FormatReply(report))
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
	}
}

func complete(labelText string) string {
	godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	provider, err := services.NewCompleterFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s provider: %v", cfg.LLMProvider, err)
	}

	reply, err := provider.Complete(ctx, services.BuildPrompt(labelText))
	if err != nil {
		log.Fatalf("Provider call failed: %v", err)
	}
	return reply
}
