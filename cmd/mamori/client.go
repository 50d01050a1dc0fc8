package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/torii-sec/mamori/internal/extract"
	"github.com/torii-sec/mamori/internal/models"
	"github.com/torii-sec/mamori/internal/server"
)

// httpClient is shared by all client subcommands.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

func postJSON(serverURL, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func getJSON(serverURL, path string, out interface{}) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func deleteJSON(serverURL, path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodDelete, serverURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mamori ingest [flags] <file>...")
		os.Exit(1)
	}

	extractor := extract.NewExtractor()
	failed := 0
	for _, file := range files {
		text, err := extractor.Extract(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", file, err)
			failed++
			continue
		}
		var res struct {
			Skipped  bool             `json:"skipped"`
			Document *models.Document `json:"document"`
		}
		err = postJSON(*serverURL, "/api/v1/documents", server.IngestRequest{
			Name: filepath.Base(file),
			Text: text,
		}, &res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to ingest %s: %v\n", file, err)
			failed++
			continue
		}
		if res.Skipped {
			fmt.Printf("Skipped %s (already loaded)\n", filepath.Base(file))
			continue
		}
		fmt.Printf("Ingested %s: type=%s chunks=%d\n",
			res.Document.Name, res.Document.Type, res.Document.ChunkCount)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	showSources := fs.Bool("sources", false, "list retrieved source documents")
	_ = fs.Parse(os.Args[2:])
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: mamori ask [flags] <question>")
		os.Exit(1)
	}

	var result models.AnswerResult
	if err := postJSON(*serverURL, "/api/v1/ask", models.AskRequest{Query: query}, &result); err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}

	if result.SensitivityFlagged {
		fmt.Printf("[flagged: %s]\n", strings.Join(result.FlaggedCategories, ", "))
	}
	if result.Degraded {
		fmt.Println("[degraded: generation backend unavailable]")
	}
	fmt.Println(result.FilteredAnswer)
	if *showSources && len(result.Chunks) > 0 {
		fmt.Println("\nSources:")
		for _, ch := range result.Chunks {
			fmt.Printf("  %s (score %.3f)\n", ch.DocumentName, ch.Score)
		}
	}
}

func runDocs() {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])

	var res struct {
		Documents []*models.Document `json:"documents"`
	}
	if err := getJSON(*serverURL, "/api/v1/documents", &res); err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if len(res.Documents) == 0 {
		fmt.Println("No documents loaded.")
		return
	}
	for _, d := range res.Documents {
		fmt.Printf("%s  %-30s type=%-8s chunks=%d\n", d.ID, d.Name, d.Type, d.ChunkCount)
	}
}

func runLogs() {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	n := fs.Int("n", 10, "number of entries")
	_ = fs.Parse(os.Args[2:])

	var res struct {
		Entries []models.AuditEntry `json:"entries"`
	}
	if err := getJSON(*serverURL, fmt.Sprintf("/api/v1/logs?n=%d", *n), &res); err != nil {
		fmt.Fprintf(os.Stderr, "Logs failed: %v\n", err)
		os.Exit(1)
	}
	for _, e := range res.Entries {
		fmt.Printf("%s  %-8s %s\n", e.Time.Format(time.RFC3339), e.Severity, e.Message)
	}
}

func runClear() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[2:])

	if err := deleteJSON(*serverURL, "/api/v1/documents", nil); err != nil {
		fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Corpus cleared.")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var res struct {
		Documents int                    `json:"documents"`
		Chunks    int                    `json:"chunks"`
		Config    map[string]interface{} `json:"config"`
	}
	if err := getJSON(*serverURL, "/api/v1/status", &res); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if *outputFormat == "json" {
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("Documents: %d\nChunks:    %d\n", res.Documents, res.Chunks)
	for k, v := range res.Config {
		fmt.Printf("  %s: %v\n", k, v)
	}
}
