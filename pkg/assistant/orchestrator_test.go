package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratboard/stratboard/pkg/db/models"
)

func newTestOrchestrator(store *memStore, chat *fakeChat, cacheClient *fakeCache) *Orchestrator {
	tables := DefaultTables()
	return NewOrchestrator(
		store,
		chat,
		NewAssembler(store, cacheClient),
		NewExecutor(store, tables),
		tables,
		cacheClient,
		"alice",
		OrchestratorConfig{CompanyName: "Acme Corp", AssistantName: "Stratboard AI"},
	)
}

func TestSubmitPlainReply(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: "Your vision looks strong. Consider tightening the wording."}
	o := newTestOrchestrator(store, chat, newFakeCache())

	result, err := o.Submit(context.TODO(), "What do you think of our vision?", PageVisionMission)
	require.NoError(t, err)

	assert.Equal(t, chat.reply, result.Reply.Content)
	assert.Empty(t, result.Action)
	assert.Nil(t, result.Confirmation)
	assert.Nil(t, result.Status)
	assert.False(t, result.Reply.HasAction)

	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.MessageRoleUser, messages[0].Role)
	assert.Equal(t, models.MessageRoleAssistant, messages[1].Role)
	assert.Zero(t, store.mutationCount())
}

func TestSubmitHighTierConfirmFlow(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `Sounds good. I'll update the vision to: "Empower every team to plan with clarity."`}
	cacheClient := newFakeCache()
	o := newTestOrchestrator(store, chat, cacheClient)

	result, err := o.Submit(context.TODO(), "Please update our vision.", PageVisionMission)
	require.NoError(t, err)

	assert.Equal(t, KindUpdateVision, result.Action)
	require.NotNil(t, result.Confirmation)
	assert.Equal(t, "Update Vision Statement", result.Confirmation.Title)
	assert.Equal(t, "Empower every team to plan with clarity.", result.Confirmation.Content)
	assert.NotEmpty(t, result.Confirmation.Warning)
	assert.True(t, result.Reply.HasAction)
	assert.True(t, result.Reply.ActionPending)
	assert.Zero(t, store.mutationCount(), "nothing is written while confirmation is pending")
	require.NotNil(t, o.PendingConfirmation())

	status, err := o.Confirm(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status.Type)
	assert.Equal(t, "Vision updated successfully", status.Message)

	require.Len(t, store.visionMissions, 1)
	assert.Equal(t, "Empower every team to plan with clarity.", store.visionMissions[0].Content)
	assert.Contains(t, cacheClient.deleted, ContextCacheKey(PageVisionMission))
	assert.Nil(t, o.PendingConfirmation())

	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	reply := messages[1]
	assert.False(t, reply.ActionPending)
	assert.True(t, reply.ActionCompleted)
	assert.Contains(t, reply.Content, "✅ Vision updated successfully")

	// Confirmation is terminal.
	_, err = o.Confirm(context.TODO())
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestSubmitLowTierExecutesImmediately(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `Good point. I'll add to strength: "Strong engineering culture"`}
	cacheClient := newFakeCache()
	o := newTestOrchestrator(store, chat, cacheClient)

	result, err := o.Submit(context.TODO(), "Our engineering culture is a real asset.", PageSwot)
	require.NoError(t, err)

	assert.Equal(t, KindAddSwotItem, result.Action)
	assert.Nil(t, result.Confirmation)
	require.NotNil(t, result.Status)
	assert.Equal(t, StatusSuccess, result.Status.Type)
	assert.Equal(t, "Added to strengths", result.Status.Message)
	assert.True(t, result.Reply.ActionCompleted)
	assert.Contains(t, result.Reply.Content, "✅ Added to strengths")
	assert.Nil(t, o.PendingConfirmation())

	require.Len(t, store.swotItems, 1)
	assert.Equal(t, "strength", store.swotItems[0].Category)
	assert.Contains(t, cacheClient.deleted, ContextCacheKey(PageSwot))
}

func TestSubmitEmptyMessage(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: "hi"}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "   \n\t ", PageOKR)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, chat.calls)
	assert.Empty(t, store.messages)
}

func TestSubmitBlockedWhileConfirmationPending(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the mission to: "Deliver value every quarter."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Update the mission please.", PageVisionMission)
	require.NoError(t, err)
	require.NotNil(t, o.PendingConfirmation())

	_, err = o.Submit(context.TODO(), "Actually, one more thing.", PageVisionMission)
	assert.ErrorIs(t, err, ErrConfirmationPending)
	assert.Equal(t, 1, chat.calls, "a blocked turn never reaches the completion endpoint")

	// The pending action is still decidable.
	status, err := o.Confirm(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status.Type)
}

func TestRejectCancelsPendingAction(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the vision to: "Something bold."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Change the vision.", PageVisionMission)
	require.NoError(t, err)

	status, err := o.Reject(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, StatusInfo, status.Type)
	assert.Equal(t, "Action cancelled", status.Message)
	assert.Zero(t, store.mutationCount())
	assert.Nil(t, o.PendingConfirmation())

	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	reply := messages[1]
	assert.False(t, reply.ActionPending)
	assert.False(t, reply.ActionCompleted)
	assert.False(t, reply.ActionFailed)
	assert.True(t, strings.HasSuffix(reply.Content, "❌ Action cancelled by user"))

	// Rejection is terminal; there is no resume path.
	_, err = o.Reject(context.TODO())
	assert.ErrorIs(t, err, ErrNoPendingAction)
	_, err = o.Confirm(context.TODO())
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestConfirmFailureIsTerminal(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the vision to: "Something bold."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Change the vision.", PageVisionMission)
	require.NoError(t, err)

	store.mutationErr = fmt.Errorf("connection refused")
	status, err := o.Confirm(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, StatusError, status.Type)
	assert.Equal(t, "connection refused", status.Message)

	// The intent was consumed even though execution failed.
	_, err = o.Confirm(context.TODO())
	assert.ErrorIs(t, err, ErrNoPendingAction)

	store.mutationErr = nil
	assert.Zero(t, store.mutationCount())
	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	reply := messages[1]
	assert.True(t, reply.ActionFailed)
	assert.False(t, reply.ActionPending)
	assert.Contains(t, reply.Content, "❌ connection refused")
}

func TestSubmitFailedExecutionMarksMessage(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: "Hello!"}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Hi", PageSwot)
	require.NoError(t, err)

	store.mutationErr = fmt.Errorf("connection refused")
	chat.reply = `I'll add to strength: "Strong engineering culture"`

	// Message persistence fails too; the turn still returns a result.
	result, err := o.Submit(context.TODO(), "Add a strength.", PageSwot)
	require.NoError(t, err)
	require.NotNil(t, result.Status)
	assert.Equal(t, StatusError, result.Status.Type)
	assert.True(t, result.Reply.ActionFailed)
	assert.Contains(t, result.Reply.Content, "❌ connection refused")
}

func TestSubmitCompletionFailure(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{err: fmt.Errorf("upstream timed out")}
	o := newTestOrchestrator(store, chat, newFakeCache())

	result, err := o.Submit(context.TODO(), "Hello?", PageOKR)
	require.NoError(t, err, "completion failures are reported in-band, not as errors")
	assert.Equal(t, completionErrorReply, result.Reply.Content)
	require.NotNil(t, result.Status)
	assert.Equal(t, StatusError, result.Status.Type)

	// Both the user message and the error reply are part of the transcript.
	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, completionErrorReply, messages[1].Content)

	// The conversation stays resumable once the endpoint recovers.
	chat.err = nil
	chat.reply = "Back online. How can I help?"
	result, err = o.Submit(context.TODO(), "Are you there?", PageOKR)
	require.NoError(t, err)
	assert.Equal(t, "Back online. How can I help?", result.Reply.Content)
}

func TestConversationReuseAndReset(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: "Hello!"}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Hi", PageOKR)
	require.NoError(t, err)
	_, err = o.Submit(context.TODO(), "Hi again", PageOKR)
	require.NoError(t, err)

	require.Len(t, store.conversations, 1, "turns reuse the active conversation")
	first := store.conversations[0]

	require.NoError(t, o.StartNewConversation(context.TODO()))
	require.Len(t, store.conversations, 2)
	assert.Equal(t, models.ConversationStatusCompleted, first.Status)

	active := 0
	for _, c := range store.conversations {
		if c.Status == models.ConversationStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "a user has at most one active conversation")

	// The fresh conversation has an empty transcript.
	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestStartNewConversationDropsPendingAction(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the vision to: "Something bold."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Change the vision.", PageVisionMission)
	require.NoError(t, err)
	require.NotNil(t, o.PendingConfirmation())

	require.NoError(t, o.StartNewConversation(context.TODO()))
	assert.Nil(t, o.PendingConfirmation())
	_, err = o.Confirm(context.TODO())
	assert.ErrorIs(t, err, ErrNoPendingAction)
	assert.Zero(t, store.mutationCount())

	// The held message in the completed conversation is resolved, not left
	// pending forever.
	require.Len(t, store.messages, 2)
	reply := store.messages[1]
	assert.False(t, reply.ActionPending)
	assert.False(t, reply.ActionCompleted)
	assert.False(t, reply.ActionFailed)
	assert.True(t, strings.HasSuffix(reply.Content, "❌ Action cancelled by user"))
}

// PendingConfirmation is served to HTTP handlers outside the turn guard, so
// reads must stay safe while turns mutate the pending state concurrently.
func TestPendingConfirmationConcurrentWithTurns(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the vision to: "Something bold."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				o.PendingConfirmation()
			}
		}
	}()

	for i := 0; i < 100; i++ {
		_, err := o.Submit(context.TODO(), "Change the vision.", PageVisionMission)
		require.NoError(t, err)
		_, err = o.Reject(context.TODO())
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	assert.Nil(t, o.PendingConfirmation())
	assert.Zero(t, store.mutationCount())
}

// Every persisted assistant message carries at most one of the pending,
// completed and failed flags, and any of them implies the action flag.
func TestActionFlagExclusivity(t *testing.T) {
	store := newMemStore()
	chat := &fakeChat{reply: `I'll update the vision to: "First."`}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "Change the vision.", PageVisionMission)
	require.NoError(t, err)
	_, err = o.Confirm(context.TODO())
	require.NoError(t, err)

	chat.reply = `I'll add to weakness: "Limited brand recognition"`
	_, err = o.Submit(context.TODO(), "Note a weakness.", PageSwot)
	require.NoError(t, err)

	chat.reply = "Just a thought, no changes needed."
	_, err = o.Submit(context.TODO(), "Any advice?", PageSwot)
	require.NoError(t, err)

	chat.reply = `I'll update the mission to: "Second."`
	_, err = o.Submit(context.TODO(), "Change the mission.", PageVisionMission)
	require.NoError(t, err)
	_, err = o.Reject(context.TODO())
	require.NoError(t, err)

	messages, err := o.Messages(context.TODO())
	require.NoError(t, err)
	for _, msg := range messages {
		set := 0
		for _, flag := range []bool{msg.ActionPending, msg.ActionCompleted, msg.ActionFailed} {
			if flag {
				set++
			}
		}
		assert.LessOrEqual(t, set, 1, "message %d has conflicting action flags", msg.ID)
		if set > 0 {
			assert.True(t, msg.HasAction, "message %d has a state flag without the action flag", msg.ID)
		}
	}
}

func TestSubmitSendsContextualPrompt(t *testing.T) {
	store := newMemStore()
	store.visionMissions = []models.VisionMission{
		{Type: models.VisionMissionTypeVision, Content: "Plan with clarity", IsCurrent: true},
	}
	chat := &fakeChat{reply: "Looks good."}
	o := newTestOrchestrator(store, chat, newFakeCache())

	_, err := o.Submit(context.TODO(), "How is our vision?", PageVisionMission)
	require.NoError(t, err)

	assert.Contains(t, chat.lastInstructions, "Stratboard AI")
	assert.Contains(t, chat.lastInstructions, "Acme Corp")
	assert.Contains(t, chat.lastInstructions, "Plan with clarity")
	assert.Contains(t, chat.lastInstructions, "No mission set yet")
	assert.Equal(t, "How is our vision?", chat.lastData)
}
