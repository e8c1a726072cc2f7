// Command configurator runs the conversational welding-equipment
// configurator as an HTTP service. It wires the orchestrator to its
// backends: a Neo4j product graph (required), an LLM extraction provider
// (required), a Redis session cache (optional, in-memory fallback), a
// MongoDB archive (optional, in-memory fallback) and a Pulse lifecycle event
// stream (enabled alongside Redis).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
	"goa.design/clue/health"
	"goa.design/clue/log"
	"goa.design/pulse/rmap"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compose"
	"github.com/beedev/recommenderv2/configurator/events"
	"github.com/beedev/recommenderv2/configurator/extract"
	"github.com/beedev/recommenderv2/configurator/orchestrator"
	"github.com/beedev/recommenderv2/configurator/store"
	"github.com/beedev/recommenderv2/configurator/telemetry"
	archivemongo "github.com/beedev/recommenderv2/features/archive/mongo"
	archiveclients "github.com/beedev/recommenderv2/features/archive/mongo/clients/mongo"
	archiveinmem "github.com/beedev/recommenderv2/features/archive/mongo/clients/mongo/inmem"
	catalogneo4j "github.com/beedev/recommenderv2/features/catalog/neo4j"
	clientsneo4j "github.com/beedev/recommenderv2/features/catalog/neo4j/clients/neo4j"
	eventspulse "github.com/beedev/recommenderv2/features/events/pulse"
	clientspulse "github.com/beedev/recommenderv2/features/events/pulse/clients/pulse"
	extractanthropic "github.com/beedev/recommenderv2/features/extract/anthropic"
	extractbedrock "github.com/beedev/recommenderv2/features/extract/bedrock"
	"github.com/beedev/recommenderv2/features/extract/middleware"
	extractopenai "github.com/beedev/recommenderv2/features/extract/openai"
	sessionredis "github.com/beedev/recommenderv2/features/session/redis"
	clientsredis "github.com/beedev/recommenderv2/features/session/redis/clients/redis"
	sessioninmem "github.com/beedev/recommenderv2/features/session/redis/clients/redis/inmem"
)

func main() {
	// Define command line flags. Secrets default to their environment
	// variables so they stay out of process listings.
	var (
		httpAddrF = flag.String("http-addr", ":8080", "HTTP listen address")
		dbgF      = flag.Bool("debug", false, "Log request and response bodies")

		providerF = flag.String("llm-provider", "openai", "Extraction provider (openai, anthropic or bedrock)")
		apiKeyF   = flag.String("llm-api-key", os.Getenv("LLM_API_KEY"), "Provider API key (defaults to $LLM_API_KEY, then the provider's own variable)")
		modelF    = flag.String("llm-model", "gpt-4", "Extraction model identifier")
		tpmF      = flag.Float64("llm-tpm", 0, "Tokens-per-minute budget for extraction calls (0 disables rate limiting)")

		graphURIF  = flag.String("graph-uri", os.Getenv("GRAPH_URI"), "Neo4j bolt URI for the product graph (required)")
		graphUserF = flag.String("graph-user", envOr("GRAPH_USER", "neo4j"), "Neo4j user")
		graphPassF = flag.String("graph-password", os.Getenv("GRAPH_PASSWORD"), "Neo4j password (defaults to $GRAPH_PASSWORD)")

		cacheURLF   = flag.String("cache-url", os.Getenv("CACHE_URL"), "Redis URL for the session cache (empty keeps sessions in process memory)")
		sessionTTLF = flag.Duration("session-ttl", sessionredis.DefaultTTL, "Idle session lifetime")

		archiveDSNF = flag.String("archive-dsn", os.Getenv("ARCHIVE_DSN"), "MongoDB URI for the terminal-session archive (empty keeps the archive in process memory)")
		archiveDBF  = flag.String("archive-db", "configurator", "MongoDB database holding the archive")

		namesFileF  = flag.String("names-file", "", "YAML product-name dictionary surfaced in extraction prompts")
		applicFileF = flag.String("applicability-file", "", "YAML power-source applicability table")

		minComponentsF = flag.Int("min-components", orchestrator.DefaultMinRealComponents, "Real components required before finalization")
		turnDeadlineF  = flag.Duration("turn-deadline", orchestrator.DefaultTurnDeadline, "Whole-turn deadline")
	)
	flag.Parse()

	// Setup logger.
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	log.Print(ctx, log.KV{K: "http-addr", V: *httpAddrF}, log.KV{K: "llm-provider", V: *providerF})

	var pingers []health.Pinger

	// Session cache and per-session lock. Without Redis both live in
	// process memory, which is fine for a single node and for development.
	var (
		rdb    *goredis.Client
		cache  store.Cache
		locker store.Locker
	)
	if *cacheURLF != "" {
		ropts, err := goredis.ParseURL(*cacheURLF)
		if err != nil {
			log.Fatalf(ctx, err, "invalid cache URL %q", *cacheURLF)
		}
		rdb = goredis.NewClient(ropts)
		sessClient, err := clientsredis.New(clientsredis.Options{Redis: rdb})
		if err != nil {
			log.Fatal(ctx, err)
		}
		cache, err = sessionredis.NewCache(sessionredis.CacheOptions{Client: sessClient, TTL: *sessionTTLF})
		if err != nil {
			log.Fatal(ctx, err)
		}
		locker, err = sessionredis.NewLocker(sessionredis.LockerOptions{Client: sessClient})
		if err != nil {
			log.Fatal(ctx, err)
		}
		pingers = append(pingers, sessClient)
	} else {
		log.Printf(ctx, "no cache URL configured, sessions are held in process memory")
		cache = sessioninmem.NewCache(*sessionTTLF)
		locker = sessioninmem.NewLocker()
	}

	// Terminal-session archive.
	var (
		archive     store.Archive
		mongoClient *mongodriver.Client
	)
	if *archiveDSNF != "" {
		var err error
		mongoClient, err = mongodriver.Connect(mongooptions.Client().ApplyURI(*archiveDSNF))
		if err != nil {
			log.Fatalf(ctx, err, "connect archive %q", *archiveDSNF)
		}
		archClient, err := archiveclients.New(archiveclients.Options{Client: mongoClient, Database: *archiveDBF})
		if err != nil {
			log.Fatal(ctx, err)
		}
		archive, err = archivemongo.New(archClient)
		if err != nil {
			log.Fatal(ctx, err)
		}
		pingers = append(pingers, archClient)
	} else {
		log.Printf(ctx, "no archive DSN configured, the archive is held in process memory")
		archive = archiveinmem.New()
	}

	// Product graph. The configurator cannot answer a single turn without
	// it, so a missing URI is fatal rather than degraded.
	if *graphURIF == "" {
		log.Fatalf(ctx, errors.New("missing -graph-uri"), "the product graph is required")
	}
	graphClient, err := clientsneo4j.Connect(ctx, *graphURIF, *graphUserF, *graphPassF)
	if err != nil {
		log.Fatalf(ctx, err, "connect product graph %q", *graphURIF)
	}
	repo, err := catalogneo4j.New(catalogneo4j.Options{Client: graphClient})
	if err != nil {
		log.Fatal(ctx, err)
	}
	pingers = append(pingers, graphClient)

	// Extraction chat client.
	chat, err := newChatClient(ctx, *providerF, *apiKeyF, *modelF)
	if err != nil {
		log.Fatalf(ctx, err, "configure %s extraction client", *providerF)
	}
	if *tpmF > 0 {
		var budget *rmap.Map
		if rdb != nil {
			// Share the token budget across nodes through a replicated map.
			budget, err = rmap.Join(ctx, "configurator:extract", rdb)
			if err != nil {
				log.Fatalf(ctx, err, "join extraction budget map")
			}
		}
		limiter := middleware.NewAdaptiveRateLimiter(ctx, budget, "tpm", *tpmF, *tpmF)
		chat = limiter.Middleware()(chat)
	}

	var names catalog.Names
	if *namesFileF != "" {
		names, err = catalog.LoadNames(*namesFileF)
		if err != nil {
			log.Fatalf(ctx, err, "load product names %q", *namesFileF)
		}
	}
	extractor, err := extract.New(extract.Options{Chat: chat, Names: names})
	if err != nil {
		log.Fatal(ctx, err)
	}

	var applic *configurator.ApplicabilityTable
	if *applicFileF != "" {
		applic, err = configurator.LoadApplicabilityTable(*applicFileF)
		if err != nil {
			log.Fatalf(ctx, err, "load applicability table %q", *applicFileF)
		}
	}

	// Lifecycle event feed rides on the same Redis as the session cache.
	var publisher events.Publisher
	if rdb != nil {
		pulseClient, err := clientspulse.New(clientspulse.Options{Redis: rdb})
		if err != nil {
			log.Fatal(ctx, err)
		}
		publisher, err = eventspulse.NewPublisher(eventspulse.Options{Client: pulseClient})
		if err != nil {
			log.Fatalf(ctx, err, "open lifecycle event stream")
		}
	}

	st, err := store.New(store.Options{Cache: cache, Archive: archive})
	if err != nil {
		log.Fatal(ctx, err)
	}

	svc, err := orchestrator.New(orchestrator.Options{
		Store:             st,
		Locker:            locker,
		Repository:        repo,
		Extractor:         extractor,
		Composer:          compose.New(compose.Options{}),
		Events:            publisher,
		Applicability:     applic,
		Logger:            telemetry.NewClueLogger(),
		Metrics:           telemetry.NewClueMetrics(),
		Tracer:            telemetry.NewClueTracer(),
		MinRealComponents: *minComponentsF,
		TurnDeadline:      *turnDeadlineF,
	})
	if err != nil {
		log.Fatal(ctx, err)
	}

	checker := health.NewChecker(pingers...)

	// Create channel used by both the signal handler and server goroutines
	// to notify the main goroutine when to stop the server.
	errc := make(chan error)

	// Setup interrupt handler so SIGINT and SIGTERM stop the service
	// gracefully.
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)

	handleHTTPServer(ctx, *httpAddrF, svc, archive, checker, &wg, errc, *dbgF)

	// Wait for signal.
	log.Printf(ctx, "exiting (%v)", <-errc)

	// Send cancellation signal to the goroutines.
	cancel()
	wg.Wait()

	// Release backend connections after the server drained.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if publisher != nil {
		if err := publisher.Close(shutdownCtx); err != nil {
			log.Printf(ctx, "close event publisher: %v", err)
		}
	}
	if err := graphClient.Close(shutdownCtx); err != nil {
		log.Printf(ctx, "close product graph: %v", err)
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Printf(ctx, "disconnect archive: %v", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf(ctx, "close cache: %v", err)
		}
	}
	log.Printf(ctx, "exited")
}

// newChatClient builds the extraction chat client for the named provider.
// OpenAI and Anthropic authenticate with an API key; Bedrock uses the
// standard AWS credential chain.
func newChatClient(ctx context.Context, provider, apiKey, model string) (extract.ChatClient, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return extractopenai.NewFromAPIKey(firstNonEmpty(apiKey, os.Getenv("OPENAI_API_KEY")), model)
	case "anthropic":
		return extractanthropic.NewFromAPIKey(firstNonEmpty(apiKey, os.Getenv("ANTHROPIC_API_KEY")), model)
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS configuration: %w", err)
		}
		return extractbedrock.New(extractbedrock.Options{
			Runtime: bedrockruntime.NewFromConfig(awsCfg),
			Model:   model,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (valid providers: openai, anthropic, bedrock)", provider)
	}
}

// envOr returns the environment variable's value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
