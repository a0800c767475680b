package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
	"github.com/MihaiMalos/elearning-client/pkg/metrics"
)

const chatWelcomeText = "Hi! I'm your AI tutor for this course. Ask me anything about the uploaded materials."

// ChatState backs the per-course AI tutor conversation. The transcript
// is append-only local state; the backend keeps no chat history, so a
// failed question surfaces as an inline assistant bubble instead of an
// error banner that would detach the failure from the conversation.
type ChatState struct {
	api      repository.ChatAPI
	courseID int

	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	sending  bool
	messages []models.ChatMessage
	onChange func()
}

// NewChatState creates the conversation holder for one course, seeded
// with a welcome message.
func NewChatState(chatAPI repository.ChatAPI, courseID int) *ChatState {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ChatState{
		api:      chatAPI,
		courseID: courseID,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.messages = append(s.messages, models.ChatMessage{
		ID:              uuid.NewString(),
		Text:            chatWelcomeText,
		FromUser:        false,
		TimestampMillis: time.Now().UnixMilli(),
	})
	return s
}

// SetOnChange registers a callback invoked after every state change.
func (s *ChatState) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Close abandons an in-flight question; the pending bubble stays until
// the screen is discarded with it.
func (s *ChatState) Close() {
	s.cancel()
}

// Send appends the user's bubble and a pending assistant bubble, asks
// the tutor, then replaces the pending bubble with the answer or with
// inline error text. Send never returns an error; every outcome lands
// in the transcript.
func (s *ChatState) Send(question string) {
	if question == "" {
		return
	}

	pendingID := uuid.NewString()
	s.mutate(func() {
		s.sending = true
		s.messages = append(s.messages,
			models.ChatMessage{
				ID:              uuid.NewString(),
				Text:            question,
				FromUser:        true,
				TimestampMillis: time.Now().UnixMilli(),
			},
			models.ChatMessage{
				ID:              pendingID,
				FromUser:        false,
				TimestampMillis: time.Now().UnixMilli(),
				Pending:         true,
			})
	})

	answer, err := s.api.SendChatMessage(s.ctx, api.ChatRequest{
		CourseID: s.courseID,
		Question: question,
	})

	text := answer.Answer
	if err != nil {
		metrics.ChatMessagesSent.WithLabelValues("error").Inc()
		text = "Sorry, I couldn't answer that: " + err.Error()
	} else {
		metrics.ChatMessagesSent.WithLabelValues("success").Inc()
	}

	s.mutate(func() {
		s.sending = false
		for i := range s.messages {
			if s.messages[i].ID == pendingID {
				s.messages[i].Text = text
				s.messages[i].Pending = false
				s.messages[i].TimestampMillis = time.Now().UnixMilli()
				break
			}
		}
	})
}

// Messages returns a snapshot of the transcript in order.
func (s *ChatState) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// IsSending reports whether a question is in flight.
func (s *ChatState) IsSending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending
}

// CourseID returns the course this conversation is scoped to.
func (s *ChatState) CourseID() int {
	return s.courseID
}

func (s *ChatState) mutate(apply func()) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	apply()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
