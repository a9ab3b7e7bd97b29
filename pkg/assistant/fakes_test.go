package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratboard/stratboard/pkg/db/models"
)

// memStore is an in-memory Store used across the executor and orchestrator
// tests. Error injection fields simulate store failures.
type memStore struct {
	mu sync.Mutex

	conversations []*models.ChatConversation
	messages      []*models.ChatMessage

	visionMissions      []models.VisionMission
	objectives          []models.Objective
	coreValues          []models.CoreValue
	strategicObjectives []models.StrategicObjective
	strategicPillars    []models.StrategicPillar
	swotItems           []models.SwotItem
	canvasBlocks        []models.CanvasBlock
	auditLogs           []models.AuditLog

	readErr     error
	mutationErr error
	auditErr    error

	nextID uint
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) ActiveConversation(_ context.Context, user string) (*models.ChatConversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var latest *models.ChatConversation
	for _, c := range m.conversations {
		if c.User != user || c.Status != models.ConversationStatusActive {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return latest, nil
}

func (m *memStore) CreateConversation(_ context.Context, conversation *models.ChatConversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	conversation.ID = uuid.New()
	conversation.CreatedAt = time.Now()
	m.conversations = append(m.conversations, conversation)
	return nil
}

func (m *memStore) CompleteConversation(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	for _, c := range m.conversations {
		if c.ID == id {
			c.Status = models.ConversationStatusCompleted
		}
	}
	return nil
}

func (m *memStore) SaveMessage(_ context.Context, message *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	message.ID = m.id()
	message.CreatedAt = time.Now()
	m.messages = append(m.messages, message)
	return nil
}

func (m *memStore) UpdateMessage(_ context.Context, message *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	for i, existing := range m.messages {
		if existing.ID == message.ID {
			m.messages[i] = message
		}
	}
	return nil
}

func (m *memStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *memStore) CurrentVisionMission(_ context.Context) ([]models.VisionMission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []models.VisionMission
	for _, row := range m.visionMissions {
		if row.IsCurrent {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore) ActiveObjectives(_ context.Context, limit int) ([]models.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []models.Objective
	for _, row := range m.objectives {
		if row.Status == models.ObjectiveStatusActive {
			out = append(out, row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) SwotItems(_ context.Context) ([]models.SwotItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]models.SwotItem{}, m.swotItems...), nil
}

func (m *memStore) CanvasBlocks(_ context.Context) ([]models.CanvasBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]models.CanvasBlock{}, m.canvasBlocks...), nil
}

func (m *memStore) ReplaceVisionMission(_ context.Context, row *models.VisionMission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	for i := range m.visionMissions {
		if m.visionMissions[i].Type == row.Type {
			m.visionMissions[i].IsCurrent = false
		}
	}
	row.ID = m.id()
	row.CreatedAt = time.Now()
	row.IsCurrent = true
	m.visionMissions = append(m.visionMissions, *row)
	return nil
}

func (m *memStore) CreateObjective(_ context.Context, row *models.Objective) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	row.ID = m.id()
	m.objectives = append(m.objectives, *row)
	return nil
}

func (m *memStore) AddCoreValue(_ context.Context, row *models.CoreValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	row.ID = m.id()
	row.DisplayOrder = len(m.coreValues) + 1
	m.coreValues = append(m.coreValues, *row)
	return nil
}

func (m *memStore) AddStrategicObjective(_ context.Context, row *models.StrategicObjective) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	row.ID = m.id()
	row.DisplayOrder = len(m.strategicObjectives) + 1
	m.strategicObjectives = append(m.strategicObjectives, *row)
	return nil
}

func (m *memStore) AddStrategicPillar(_ context.Context, row *models.StrategicPillar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	row.ID = m.id()
	row.DisplayOrder = len(m.strategicPillars) + 1
	m.strategicPillars = append(m.strategicPillars, *row)
	return nil
}

func (m *memStore) AddSwotItem(_ context.Context, row *models.SwotItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutationErr != nil {
		return m.mutationErr
	}
	row.ID = m.id()
	m.swotItems = append(m.swotItems, *row)
	return nil
}

func (m *memStore) WriteAuditLog(_ context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auditErr != nil {
		return m.auditErr
	}
	entry.ID = m.id()
	m.auditLogs = append(m.auditLogs, *entry)
	return nil
}

func (m *memStore) mutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visionMissions) + len(m.objectives) + len(m.coreValues) +
		len(m.strategicObjectives) + len(m.strategicPillars) + len(m.swotItems)
}

// fakeChat is a scripted completion client.
type fakeChat struct {
	reply string
	err   error

	lastInstructions string
	lastData         string
	calls            int
}

func (f *fakeChat) Chat(_ context.Context, instructions, data string) (string, error) {
	f.calls++
	f.lastInstructions = instructions
	f.lastData = data
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeCache records sets and deletes.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *fakeCache) Set(key string, content []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = content
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deleted = append(c.deleted, key)
	return nil
}
