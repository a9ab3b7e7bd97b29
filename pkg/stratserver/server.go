package stratserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	metricsprometheus "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetricsmiddleware "github.com/slok/go-http-metrics/middleware"
	httpmetricsstd "github.com/slok/go-http-metrics/middleware/std"

	"github.com/stratboard/stratboard/pkg/api"
	"github.com/stratboard/stratboard/pkg/apis/cache"
	v1 "github.com/stratboard/stratboard/pkg/apis/config/v1"
	"github.com/stratboard/stratboard/pkg/assistant"
)

var (
	chatTurnsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratboard_chat_turns_total",
		Help: "Number of chat turns processed, by outcome",
	}, []string{"outcome"})

	aiActionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratboard_ai_actions_total",
		Help: "Number of AI-requested actions, by kind and outcome",
	}, []string{"kind", "outcome"})

	chatDecisionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stratboard_chat_decisions_total",
		Help: "Number of confirm/reject decisions on pending actions, by decision and outcome",
	}, []string{"decision", "outcome"})
)

// Config carries the server's tunables.
type Config struct {
	ListenAddr        string
	Company           v1.CompanyConfig
	CompletionTimeout time.Duration

	// GateMediumActions also holds medium-tier actions for confirmation.
	GateMediumActions bool
}

type Server struct {
	config Config
	store  assistant.Store
	llm    assistant.ChatClient
	cache  cache.Cache
	tables *assistant.Tables

	httpServer *http.Server

	// One orchestrator per user; each is an independent, sequential state
	// machine. The map lock is the only cross-conversation state.
	lock          sync.Mutex
	orchestrators map[string]*assistant.Orchestrator
}

func NewServer(config Config, store assistant.Store, llm assistant.ChatClient, cacheClient cache.Cache) *Server {
	return &Server{
		config:        config,
		store:         store,
		llm:           llm,
		cache:         cacheClient,
		tables:        assistant.DefaultTables(),
		orchestrators: map[string]*assistant.Orchestrator{},
	}
}

// orchestratorFor returns the per-user conversation orchestrator, creating
// it on first use.
func (s *Server) orchestratorFor(user, client string) *assistant.Orchestrator {
	s.lock.Lock()
	defer s.lock.Unlock()

	if o, ok := s.orchestrators[user]; ok {
		return o
	}

	executor := assistant.NewExecutor(s.store, s.tables)
	executor.GateMediumActions = s.config.GateMediumActions

	o := assistant.NewOrchestrator(
		s.store,
		s.llm,
		assistant.NewAssembler(s.store, s.cache),
		executor,
		s.tables,
		s.cache,
		user,
		assistant.OrchestratorConfig{
			CompanyName:       s.config.Company.Name,
			AssistantName:     s.config.Company.AssistantName,
			Client:            client,
			CompletionTimeout: s.config.CompletionTimeout,
		},
	)
	s.orchestrators[user] = o
	return o
}

func (s *Server) Serve() {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.jsonHealth).Methods(http.MethodGet)

	router.HandleFunc("/api/chat", s.jsonChatSubmit).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/confirm", s.jsonChatConfirm).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/reject", s.jsonChatReject).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/conversations/new", s.jsonChatNewConversation).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/messages", s.jsonChatMessages).Methods(http.MethodGet)

	router.HandleFunc("/api/planning/vision-mission", s.jsonVisionMission).Methods(http.MethodGet)
	router.HandleFunc("/api/planning/okrs", s.jsonOKRs).Methods(http.MethodGet)
	router.HandleFunc("/api/planning/swot", s.jsonSwot).Methods(http.MethodGet)
	router.HandleFunc("/api/planning/canvas", s.jsonCanvas).Methods(http.MethodGet)

	middleware := httpmetricsmiddleware.New(httpmetricsmiddleware.Config{
		Recorder: metricsprometheus.NewRecorder(metricsprometheus.Config{}),
	})

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddr,
		Handler: httpmetricsstd.Handler("", middleware, router),
	}

	log.Infof("Serving API reports on %s", s.config.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("server exited")
	}
}

func (s *Server) jsonHealth(w http.ResponseWriter, _ *http.Request) {
	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{"status": "OK"})
}

func failureResponse(w http.ResponseWriter, statusCode int, message string) {
	api.RespondWithJSON(statusCode, w, map[string]interface{}{
		"code":    statusCode,
		"message": message,
	})
}

// getUserForRequest returns the authenticated user forwarded by the fronting
// proxy. Session management itself lives outside this service.
func getUserForRequest(req *http.Request) string {
	return req.Header.Get("X-Forwarded-User")
}
