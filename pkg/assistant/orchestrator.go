package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/stratboard/stratboard/pkg/apis/cache"
	"github.com/stratboard/stratboard/pkg/db/models"
)

// ChatClient is the completion endpoint the orchestrator talks to.
// *ai.LLMClient satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, instructions, data string) (string, error)
}

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrTurnInProgress      = errors.New("a turn is already in progress")
	ErrConfirmationPending = errors.New("an action is awaiting confirmation")
	ErrNoPendingAction     = errors.New("no action is pending confirmation")
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusInfo    = "info"
)

const completionErrorReply = "Sorry, I encountered an error. Please try again."

// Status is an action-status notification for the host interface to render.
type Status struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TurnResult is the outcome of one submitted user turn.
type TurnResult struct {
	UserMessage *models.ChatMessage `json:"user_message,omitempty"`
	Reply       *models.ChatMessage `json:"reply,omitempty"`

	// Action is the detected action kind, when the turn carried one.
	Action Kind `json:"action,omitempty"`

	// Confirmation is set when an action is held for operator approval.
	Confirmation *Confirmation `json:"confirmation,omitempty"`

	Status *Status `json:"status,omitempty"`
}

type pendingAction struct {
	intent       Intent
	confirmation Confirmation
	message      *models.ChatMessage
}

// OrchestratorConfig carries the presentation knobs for one conversation.
type OrchestratorConfig struct {
	CompanyName       string
	AssistantName     string
	Client            string
	CompletionTimeout time.Duration
}

// Orchestrator drives one user's conversation: a sequential, non-reentrant
// state machine over submit, confirm, reject and new-conversation events.
// Turns never overlap; a second submit while one is in flight fails with
// ErrTurnInProgress. At most one action is pending confirmation at a time.
type Orchestrator struct {
	store     Store
	llm       ChatClient
	assembler *Assembler
	executor  *Executor
	tables    *Tables
	cache     cache.Cache
	user      string
	cfg       OrchestratorConfig

	mu           sync.Mutex
	inFlight     bool
	conversation *models.ChatConversation
	pending      *pendingAction
}

func NewOrchestrator(store Store, llm ChatClient, assembler *Assembler, executor *Executor, tables *Tables, cacheClient cache.Cache, user string, cfg OrchestratorConfig) *Orchestrator {
	if cfg.CompanyName == "" {
		cfg.CompanyName = "your company"
	}
	if cfg.AssistantName == "" {
		cfg.AssistantName = "Stratboard AI"
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = time.Minute
	}

	return &Orchestrator{
		store:     store,
		llm:       llm,
		assembler: assembler,
		executor:  executor,
		tables:    tables,
		cache:     cacheClient,
		user:      user,
		cfg:       cfg,
	}
}

func (o *Orchestrator) beginTurn() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return ErrTurnInProgress
	}
	o.inFlight = true
	return nil
}

func (o *Orchestrator) endTurn() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// The pending action and conversation pointers are read outside the turn
// guard (PendingConfirmation serves HTTP requests directly), so every access
// goes through the mutex.

func (o *Orchestrator) hasPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

func (o *Orchestrator) setPending(pending *pendingAction) {
	o.mu.Lock()
	o.pending = pending
	o.mu.Unlock()
}

// takePending consumes the pending action; it can be taken exactly once.
func (o *Orchestrator) takePending() *pendingAction {
	o.mu.Lock()
	defer o.mu.Unlock()
	pending := o.pending
	o.pending = nil
	return pending
}

func (o *Orchestrator) currentConversation() *models.ChatConversation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conversation
}

func (o *Orchestrator) setConversation(conversation *models.ChatConversation) {
	o.mu.Lock()
	o.conversation = conversation
	o.mu.Unlock()
}

// Submit runs one user turn: persist the user message, assemble context,
// call the completion endpoint, parse for an action intent and drive the
// executor. Completion failures come back as a generic assistant reply with
// an error status, never as an error return; the conversation is always left
// resumable.
func (o *Orchestrator) Submit(ctx context.Context, text, page string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if err := o.beginTurn(); err != nil {
		return nil, err
	}
	defer o.endTurn()

	if o.hasPending() {
		return nil, ErrConfirmationPending
	}

	if err := o.ensureConversation(ctx); err != nil {
		return nil, err
	}
	conversation := o.currentConversation()

	userMessage := &models.ChatMessage{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleUser,
		Content:        text,
		User:           o.user,
	}
	if err := o.store.SaveMessage(ctx, userMessage); err != nil {
		log.WithError(err).Error("could not persist user message")
	}

	payload := o.assembler.Assemble(ctx, page)
	prompt := SystemPrompt(payload, o.cfg.CompanyName, o.cfg.AssistantName)

	cctx, cancel := context.WithTimeout(ctx, o.cfg.CompletionTimeout)
	defer cancel()
	reply, err := o.llm.Chat(cctx, prompt, text)
	if err != nil {
		log.WithError(err).Error("completion request failed")
		errorMessage := &models.ChatMessage{
			ConversationID: conversation.ID,
			Role:           models.MessageRoleAssistant,
			Content:        completionErrorReply,
		}
		if err := o.store.SaveMessage(ctx, errorMessage); err != nil {
			log.WithError(err).Error("could not persist assistant error message")
		}
		return &TurnResult{
			UserMessage: userMessage,
			Reply:       errorMessage,
			Status:      &Status{Type: StatusError, Message: completionErrorReply},
		}, nil
	}

	assistantMessage := &models.ChatMessage{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleAssistant,
		Content:        reply,
	}
	result := &TurnResult{UserMessage: userMessage, Reply: assistantMessage}

	intent := o.tables.Parse(reply)
	if intent == nil {
		if err := o.store.SaveMessage(ctx, assistantMessage); err != nil {
			log.WithError(err).Error("could not persist assistant message")
		}
		return result, nil
	}

	result.Action = intent.Kind
	execution := o.executor.Execute(ctx, intent.Kind, intent.Params, o.user, true)
	switch {
	case execution.RequiresConfirmation:
		assistantMessage.HasAction = true
		assistantMessage.ActionPending = true
		confirmation := Present(intent.Kind, intent.Params)
		result.Confirmation = &confirmation
		o.setPending(&pendingAction{
			intent:       *intent,
			confirmation: confirmation,
			message:      assistantMessage,
		})
	case execution.Success:
		assistantMessage.HasAction = true
		assistantMessage.ActionCompleted = true
		assistantMessage.Content = fmt.Sprintf("%s\n\n✅ %s", reply, execution.Message)
		o.invalidate(execution.Invalidates)
		result.Status = &Status{Type: StatusSuccess, Message: execution.Message}
	default:
		assistantMessage.HasAction = true
		assistantMessage.ActionFailed = true
		assistantMessage.Content = fmt.Sprintf("%s\n\n❌ %s", reply, errorOr(execution.Error))
		result.Status = &Status{Type: StatusError, Message: errorOr(execution.Error)}
	}

	if err := o.store.SaveMessage(ctx, assistantMessage); err != nil {
		log.WithError(err).Error("could not persist assistant message")
	}

	return result, nil
}

// Confirm executes the pending action. Confirmation is terminal: whether the
// execution succeeds or fails, the intent is consumed and a second confirm
// returns ErrNoPendingAction.
func (o *Orchestrator) Confirm(ctx context.Context) (*Status, error) {
	if err := o.beginTurn(); err != nil {
		return nil, err
	}
	defer o.endTurn()

	pending := o.takePending()
	if pending == nil {
		return nil, ErrNoPendingAction
	}

	execution := o.executor.Execute(ctx, pending.intent.Kind, pending.intent.Params, o.user, false)
	if !execution.Success {
		message := pending.message
		message.ActionPending = false
		message.ActionFailed = true
		message.Content = fmt.Sprintf("%s\n\n❌ %s", message.Content, errorOr(execution.Error))
		if err := o.store.UpdateMessage(ctx, message); err != nil {
			log.WithError(err).Error("could not update pending message after failed action")
		}
		return &Status{Type: StatusError, Message: errorOr(execution.Error)}, nil
	}

	message := pending.message
	message.ActionPending = false
	message.ActionCompleted = true
	message.Content = fmt.Sprintf("%s\n\n✅ %s", message.Content, execution.Message)
	if err := o.store.UpdateMessage(ctx, message); err != nil {
		log.WithError(err).Error("could not update pending message after completed action")
	}

	o.invalidate(execution.Invalidates)
	return &Status{Type: StatusSuccess, Message: execution.Message}, nil
}

// Reject cancels the pending action without executing it. Terminal for the
// intent; there is no resume.
func (o *Orchestrator) Reject(ctx context.Context) (*Status, error) {
	if err := o.beginTurn(); err != nil {
		return nil, err
	}
	defer o.endTurn()

	pending := o.takePending()
	if pending == nil {
		return nil, ErrNoPendingAction
	}
	o.cancelPendingMessage(ctx, pending)

	return &Status{Type: StatusInfo, Message: "Action cancelled"}, nil
}

// cancelPendingMessage resolves the held message's flag lifecycle when its
// action will never execute.
func (o *Orchestrator) cancelPendingMessage(ctx context.Context, pending *pendingAction) {
	message := pending.message
	message.ActionPending = false
	message.Content = message.Content + "\n\n❌ Action cancelled by user"
	if err := o.store.UpdateMessage(ctx, message); err != nil {
		log.WithError(err).Error("could not update pending message after cancellation")
	}
}

// StartNewConversation completes the current conversation, drops any pending
// action and opens a fresh one.
func (o *Orchestrator) StartNewConversation(ctx context.Context) error {
	if err := o.beginTurn(); err != nil {
		return err
	}
	defer o.endTurn()

	// A pending action never survives a conversation switch; resolve its
	// message rather than leaving the pending flag dangling forever.
	if pending := o.takePending(); pending != nil {
		o.cancelPendingMessage(ctx, pending)
	}

	if conversation := o.currentConversation(); conversation != nil {
		if err := o.store.CompleteConversation(ctx, conversation.ID); err != nil {
			return errors.WithMessage(err, "could not complete conversation")
		}
	}
	o.setConversation(nil)

	return o.ensureConversation(ctx)
}

// Messages returns the persisted transcript of the active conversation in
// creation order, creating the conversation if the user has none.
func (o *Orchestrator) Messages(ctx context.Context) ([]models.ChatMessage, error) {
	if err := o.beginTurn(); err != nil {
		return nil, err
	}
	defer o.endTurn()

	if err := o.ensureConversation(ctx); err != nil {
		return nil, err
	}
	return o.store.ListMessages(ctx, o.currentConversation().ID)
}

// PendingConfirmation returns the confirmation payload for the action
// currently awaiting operator decision, if any.
func (o *Orchestrator) PendingConfirmation() *Confirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return nil
	}
	confirmation := o.pending.confirmation
	return &confirmation
}

// ensureConversation finds the user's most recent active conversation or
// creates one. Querying before creating is what keeps a user at one active
// conversation.
func (o *Orchestrator) ensureConversation(ctx context.Context) error {
	if o.currentConversation() != nil {
		return nil
	}

	conversation, err := o.store.ActiveConversation(ctx, o.user)
	if err != nil {
		return errors.WithMessage(err, "could not look up active conversation")
	}
	if conversation == nil {
		conversation = &models.ChatConversation{
			User:   o.user,
			Title:  fmt.Sprintf("Chat %s", time.Now().Format("2006-01-02")),
			Status: models.ConversationStatusActive,
		}
		metadata := fmt.Sprintf(`{"started_at":%q,"client":%q}`, time.Now().Format(time.RFC3339), o.cfg.Client)
		if err := conversation.Metadata.Set([]byte(metadata)); err != nil {
			log.WithError(err).Warn("could not set conversation metadata")
		}
		if err := o.store.CreateConversation(ctx, conversation); err != nil {
			return errors.WithMessage(err, "could not create conversation")
		}
		log.WithFields(log.Fields{
			"user":           o.user,
			"conversationID": conversation.ID,
		}).Info("chat conversation created")
	}

	o.setConversation(conversation)
	return nil
}

func (o *Orchestrator) invalidate(pages []string) {
	if o.cache == nil {
		return
	}
	for _, page := range pages {
		if err := o.cache.Delete(ContextCacheKey(page)); err != nil {
			log.WithError(err).WithField("page", page).Warn("could not invalidate cached context")
		}
	}
}

func errorOr(message string) string {
	if message == "" {
		return "Action failed"
	}
	return message
}
