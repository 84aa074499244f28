// Command lingo translates lines of text using the lingo engine.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/daisied/lingo"
	"github.com/daisied/lingo/backend"
	"github.com/daisied/lingo/store"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = lingo.Version
	commit    = lingo.GitCommit
	buildDate = lingo.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lingo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	targetLang := fs.String("lang", "", "Target language code (e.g., es, pt-BR)")
	mode := fs.String("mode", string(lingo.ModePrimaryWithFallback), "Backend mode: primary, secondary, fallback")
	provider := fs.String("provider", lingo.PrimaryMicrosoft, "Primary adapter: microsoft or openai")
	key := fs.String("key", "", "Primary backend credential (default: LINGO_KEY env)")
	region := fs.String("region", "", "Primary backend region")
	endpoint := fs.String("endpoint", "", "Primary backend endpoint override")
	cacheDir := fs.String("cache-dir", "", "Directory for the durable translation memory (empty to disable)")
	ttlDays := fs.Int("ttl-days", 30, "Translation memory TTL in days")
	maxEntries := fs.Int("max-entries", 10000, "Translation memory capacity")
	concurrency := fs.Int("concurrency", 4, "Maximum concurrent backend calls")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Show version")
	exportPath := fs.String("export", "", "Export the translation memory to a file and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", lingo.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if *targetLang == "" {
		return fmt.Errorf("missing required flag: -lang")
	}

	credential := *key
	if credential == "" {
		credential = os.Getenv("LINGO_KEY")
	}

	settings := lingo.Settings{
		TargetLanguage:         *targetLang,
		Mode:                   lingo.BackendMode(*mode),
		PrimaryProvider:        *provider,
		PrimaryCredential:      credential,
		PrimaryRegion:          *region,
		PrimaryEndpoint:        *endpoint,
		MaxConcurrentRequests:  *concurrency,
		PersistentCacheEnabled: *cacheDir != "",
		TTLDays:                *ttlDays,
		MaxEntries:             *maxEntries,
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	}

	opts := []lingo.Option{
		lingo.WithBackendFactory(backend.Factory()),
		lingo.WithLogger(logger),
	}
	if *cacheDir != "" {
		opts = append(opts, lingo.WithStorage(store.NewFileStorage(*cacheDir)))
	}

	engine := lingo.New(settings, opts...)
	ctx := context.Background()
	defer engine.Close(ctx)

	if *exportPath != "" {
		mem := engine.Memory()
		if mem == nil {
			return fmt.Errorf("-export requires -cache-dir")
		}
		mem.Load(ctx)
		if err := store.NewExporter(mem).ExportToFile(*exportPath, map[string]string{
			"target_lang": *targetLang,
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d entries to %s\n", mem.Len(), *exportPath)
		return nil
	}

	// One synthetic message per line of input.
	scanner := bufio.NewScanner(stdin)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		state, err := engine.Translate(ctx, lingo.Message{
			ID:      "line-" + strconv.Itoa(line),
			Content: text,
		})
		if err != nil {
			return err
		}
		if err := printState(stdout, text, state, *jsonOutput); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printState(w io.Writer, source string, state lingo.State, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(map[string]string{
			"source":          source,
			"source_language": state.SourceLanguage,
			"text":            state.Text,
			"error":           state.Err,
		})
	}
	switch state.Kind {
	case lingo.StateReady:
		fmt.Fprintf(w, "[%s] %s\n", state.SourceLanguage, state.Text)
	case lingo.StateError:
		fmt.Fprintf(w, "!! %s\n", state.Err)
	default:
		fmt.Fprintf(w, "-- %s\n", source)
	}
	return nil
}
