package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/aretw0/journey/pkg/simulation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing every known journey.
const CatalogURI = "journey://catalog"

// Engine is the subset of *journey.Engine exposed as MCP tools.
type Engine interface {
	Create(ctx context.Context, name string, states []schema.StateSpec, transitions []schema.TransitionSpec) (*domain.Journey, error)
	Get(ctx context.Context, id string) (*domain.Journey, error)
	List(ctx context.Context) ([]journey.Summary, error)
	Simulate(ctx context.Context, id string, cohortSize int, seed int64) (*simulation.Result, error)
	SimulateBatch(ctx context.Context, id string, cohortSize int, seeds []int64) ([]*simulation.Result, error)
	AnalyzeBottleneck(ctx context.Context, id string, observed map[string]float64) (*analysis.BottleneckReport, error)
	MapTouchpoints(ctx context.Context, id string) (*analysis.TouchpointReport, error)
	Graph(ctx context.Context, id string, res *simulation.Result) (string, error)
}

var _ Engine = (*journey.Engine)(nil)

// JourneyArgs selects a journey.
type JourneyArgs struct {
	JourneyID string `json:"journey_id"`
}

// SimulateArgs are the arguments of simulate_journey.
type SimulateArgs struct {
	JourneyID  string  `json:"journey_id"`
	CohortSize int     `json:"cohort_size,omitempty"`
	Seed       *int64  `json:"seed,omitempty"`
	Seeds      []int64 `json:"seeds,omitempty"`
}

// BottleneckArgs are the arguments of analyze_bottleneck.
type BottleneckArgs struct {
	JourneyID    string             `json:"journey_id"`
	ObservedData map[string]float64 `json:"observed_data,omitempty"`
}

// GraphArgs are the arguments of journey_graph.
type GraphArgs struct {
	JourneyID  string `json:"journey_id"`
	Simulate   bool   `json:"simulate,omitempty"`
	CohortSize int    `json:"cohort_size,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// ListResult wraps the journey summaries in an object.
type ListResult struct {
	Journeys []journey.Summary `json:"journeys"`
}

// SimulateResult carries one result, or one per seed for batches.
type SimulateResult struct {
	Result  *simulation.Result   `json:"result,omitempty"`
	Results []*simulation.Result `json:"results,omitempty"`
}

// Server wraps the journey Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger. Logs must not go to stdout under stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("journey-mcp", journey.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves SSE on the given port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	journeyID := mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey identifier (derived from its name)"))

	s.mcpServer.AddTool(mcp.NewTool("create_journey",
		mcp.WithDescription("Create or replace a customer journey. The first state is the entry, the last is the conversion goal. Outbound probabilities of a state may sum to less than 1; the remainder is attrition."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Journey name")),
		mcp.WithArray("states", mcp.Required(), mcp.Description("Ordered states: names, or objects with name, description and dwell_days")),
		mcp.WithArray("transitions", mcp.Required(), mcp.Description("Objects with from_state, to_state, probability, channel, trigger and content_brief")),
		mcp.WithOutputSchema[domain.Journey](),
	), mcp.NewStructuredToolHandler(s.handleCreate))

	s.mcpServer.AddTool(mcp.NewTool("list_journeys",
		mcp.WithDescription("List stored and catalogued journeys."),
		mcp.WithOutputSchema[ListResult](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("get_journey",
		mcp.WithDescription("Get the full definition of a journey."),
		journeyID,
		mcp.WithOutputSchema[domain.Journey](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("simulate_journey",
		mcp.WithDescription("Run a reproducible Monte Carlo cohort through a journey and report funnel reach, drop-offs, conversion and channel usage."),
		journeyID,
		mcp.WithNumber("cohort_size", mcp.Description("Number of synthetic customers (default 1000)")),
		mcp.WithNumber("seed", mcp.Description("Random seed (default 42)")),
		mcp.WithArray("seeds", mcp.Description("Run one cohort per seed instead of a single run")),
		mcp.WithOutputSchema[SimulateResult](),
	), mcp.NewStructuredToolHandler(s.handleSimulate))

	s.mcpServer.AddTool(mcp.NewTool("analyze_bottleneck",
		mcp.WithDescription("Find the consecutive state pair with the largest relative drop, from observed per-state counts or from the transition probabilities."),
		journeyID,
		mcp.WithObject("observed_data", mcp.Description("Optional map of state name to observed count or rate")),
		mcp.WithOutputSchema[analysis.BottleneckReport](),
	), mcp.NewStructuredToolHandler(s.handleBottleneck))

	s.mcpServer.AddTool(mcp.NewTool("map_touchpoints",
		mcp.WithDescription("Group the journey's transitions by marketing channel."),
		journeyID,
		mcp.WithOutputSchema[analysis.TouchpointReport](),
	), mcp.NewStructuredToolHandler(s.handleTouchpoints))

	s.mcpServer.AddTool(mcp.NewTool("journey_graph",
		mcp.WithDescription("Render the journey as a Mermaid flowchart, optionally annotated with a simulated funnel."),
		journeyID,
		mcp.WithBoolean("simulate", mcp.Description("Overlay simulated reach and the bottleneck")),
		mcp.WithNumber("cohort_size", mcp.Description("Cohort size for the overlay (default 1000)")),
		mcp.WithNumber("seed", mcp.Description("Seed for the overlay (default 42)")),
	), s.handleGraph)
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (*domain.Journey, error) {
	def, err := dto.Decode(args)
	if err != nil {
		return nil, err
	}
	states, transitions := def.Specs()
	j, err := s.engine.Create(ctx, def.Name, states, transitions)
	if err != nil {
		return nil, describe(err)
	}
	return j, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (ListResult, error) {
	list, err := s.engine.List(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Journeys: list}, nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args JourneyArgs) (*domain.Journey, error) {
	return s.engine.Get(ctx, args.JourneyID)
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (SimulateResult, error) {
	cohort := args.CohortSize
	if cohort == 0 {
		cohort = journey.DefaultCohortSize
	}

	if len(args.Seeds) > 0 {
		results, err := s.engine.SimulateBatch(ctx, args.JourneyID, cohort, args.Seeds)
		if err != nil {
			return SimulateResult{}, err
		}
		return SimulateResult{Results: results}, nil
	}

	res, err := s.engine.Simulate(ctx, args.JourneyID, cohort, seedOrDefault(args.Seed))
	if err != nil {
		return SimulateResult{}, err
	}
	return SimulateResult{Result: res}, nil
}

func (s *Server) handleBottleneck(ctx context.Context, request mcp.CallToolRequest, args BottleneckArgs) (*analysis.BottleneckReport, error) {
	return s.engine.AnalyzeBottleneck(ctx, args.JourneyID, args.ObservedData)
}

func (s *Server) handleTouchpoints(ctx context.Context, request mcp.CallToolRequest, args JourneyArgs) (*analysis.TouchpointReport, error) {
	return s.engine.MapTouchpoints(ctx, args.JourneyID)
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GraphArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	var res *simulation.Result
	if args.Simulate {
		cohort := args.CohortSize
		if cohort == 0 {
			cohort = journey.DefaultCohortSize
		}
		var err error
		res, err = s.engine.Simulate(ctx, args.JourneyID, cohort, seedOrDefault(args.Seed))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("simulation failed: %v", err)), nil
		}
	}

	out, err := s.engine.Graph(ctx, args.JourneyID, res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Journey Catalog",
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	jsonBytes, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func seedOrDefault(seed *int64) int64 {
	if seed == nil {
		return journey.DefaultSeed
	}
	return *seed
}

// describe flattens a validation error so every violation reaches the agent.
func describe(err error) error {
	var vErr *schema.ValidationError
	if errors.As(err, &vErr) && len(vErr.Violations) > 1 {
		msg := "invalid journey:"
		for _, m := range vErr.Messages() {
			msg += "\n- " + m
		}
		return errors.New(msg)
	}
	return err
}
