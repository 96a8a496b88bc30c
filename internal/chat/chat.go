// Package chat provides per-application and per-assignment message threads.
// Delivery is plain request/response; there is no push layer.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
	"github.com/worklink-dev/worklink/internal/media"
)

const (
	KindApplication = "application"
	KindAssignment  = "assignment"
)

type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeVideo    MessageType = "video"
	TypeDocument MessageType = "document"
	TypeSystem   MessageType = "system"
)

type Thread struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ContextID string    `json:"context_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Participant struct {
	ThreadID   string     `json:"thread_id"`
	UserID     string     `json:"user_id"`
	LeftAt     *time.Time `json:"left_at,omitempty"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

type Message struct {
	ID        string      `json:"id"`
	ThreadID  string      `json:"thread_id"`
	SenderID  string      `json:"sender_id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

const maxMessageLen = 4000

type Store interface {
	CreateThread(ctx context.Context, t Thread, participants []Participant) error
	GetThread(ctx context.Context, id string) (Thread, bool, error)
	GetThreadByContext(ctx context.Context, kind, contextID string) (Thread, bool, error)

	// Participant returns the membership row, found or not.
	Participant(ctx context.Context, threadID, userID string) (Participant, bool, error)
	MarkLeft(ctx context.Context, threadID, userID string, at time.Time) (bool, error)
	MarkRead(ctx context.Context, threadID, userID string, at time.Time) error

	CreateMessage(ctx context.Context, m Message) error
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	ListThreadsByUser(ctx context.Context, userID string) ([]Thread, error)

	// DeleteThread removes the thread with its participants and messages.
	DeleteThread(ctx context.Context, id string) error
}

// MediaCleaner removes a thread's attachments when it is torn down.
type MediaCleaner interface {
	DeleteForEntity(ctx context.Context, category, ownerID string) int
}

type Service struct {
	store Store
	media MediaCleaner
	now   func() time.Time
}

func NewService(store Store, mediaCleaner MediaCleaner) *Service {
	return &Service{
		store: store,
		media: mediaCleaner,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// OpenContext creates the thread for an application or assignment. Reopening
// an existing context returns the existing thread id.
func (s *Service) OpenContext(ctx context.Context, kind, contextID string, participants []string) (string, error) {
	if kind != KindApplication && kind != KindAssignment {
		return "", apperr.Invalidf("unknown thread kind %q", kind)
	}
	if existing, ok, err := s.store.GetThreadByContext(ctx, kind, contextID); err != nil {
		return "", apperr.Dependency("load thread", err)
	} else if ok {
		return existing.ID, nil
	}

	t := Thread{
		ID:        uuid.NewString(),
		Kind:      kind,
		ContextID: contextID,
		CreatedAt: s.now(),
	}
	members := make([]Participant, len(participants))
	for i, userID := range participants {
		members[i] = Participant{ThreadID: t.ID, UserID: userID}
	}
	if err := s.store.CreateThread(ctx, t, members); err != nil {
		return "", apperr.Dependency("create thread", err)
	}
	return t.ID, nil
}

// Send posts a message. Only active participants may write, and system
// messages only come from admins.
func (s *Service) Send(ctx context.Context, actor authz.Actor, threadID string, msgType MessageType, content string) (Message, error) {
	if content == "" {
		return Message{}, apperr.Invalid("message content is required")
	}
	if len(content) > maxMessageLen {
		return Message{}, apperr.Invalidf("message exceeds %d characters", maxMessageLen)
	}
	if msgType == "" {
		msgType = TypeText
	}
	switch msgType {
	case TypeText, TypeImage, TypeVideo, TypeDocument:
	case TypeSystem:
		if !actor.IsAdmin {
			return Message{}, apperr.Forbidden("system messages are platform-only")
		}
	default:
		return Message{}, apperr.Invalidf("unknown message type %q", msgType)
	}

	if err := s.requireActive(ctx, actor, threadID); err != nil {
		return Message{}, err
	}

	m := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		SenderID:  actor.UserID,
		Type:      msgType,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return Message{}, apperr.Dependency("create message", err)
	}
	return m, nil
}

// Messages returns a thread's messages to an active participant and marks
// the thread read.
func (s *Service) Messages(ctx context.Context, actor authz.Actor, threadID string) ([]Message, error) {
	if err := s.requireActive(ctx, actor, threadID); err != nil {
		return nil, err
	}
	out, err := s.store.ListMessages(ctx, threadID)
	if err != nil {
		return nil, apperr.Dependency("list messages", err)
	}
	if err := s.store.MarkRead(ctx, threadID, actor.UserID, s.now()); err != nil {
		return nil, apperr.Dependency("mark read", err)
	}
	return out, nil
}

// Leave flags the participant out of the thread. A left participant can
// neither read nor write; there is no rejoin.
func (s *Service) Leave(ctx context.Context, actor authz.Actor, threadID string) error {
	if err := s.requireActive(ctx, actor, threadID); err != nil {
		return err
	}
	left, err := s.store.MarkLeft(ctx, threadID, actor.UserID, s.now())
	if err != nil {
		return apperr.Dependency("leave thread", err)
	}
	if !left {
		return apperr.Conflict("membership changed concurrently")
	}
	return nil
}

// Threads lists the threads the actor belongs to.
func (s *Service) Threads(ctx context.Context, actor authz.Actor) ([]Thread, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("authentication required")
	}
	out, err := s.store.ListThreadsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Dependency("list threads", err)
	}
	return out, nil
}

// DeleteByContext tears down the thread of a deleted application or
// assignment, including its attachments.
func (s *Service) DeleteByContext(ctx context.Context, kind, contextID string) error {
	t, ok, err := s.store.GetThreadByContext(ctx, kind, contextID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.media.DeleteForEntity(ctx, media.CategoryChat, t.ID)
	return s.store.DeleteThread(ctx, t.ID)
}

// CanAccess reports whether the actor is an active participant (or admin)
// of the thread. Used by the media layer for chat attachments.
func (s *Service) CanAccess(ctx context.Context, actor authz.Actor, threadID string) error {
	return s.requireActive(ctx, actor, threadID)
}

// requireActive checks existence first, then membership: a missing thread
// is 404, a thread the actor left or never joined is 403. Admins read any
// thread but still cannot write into ones they left.
func (s *Service) requireActive(ctx context.Context, actor authz.Actor, threadID string) error {
	_, ok, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return apperr.Dependency("load thread", err)
	}
	if !ok {
		return apperr.NotFound("thread not found")
	}
	member, ok, err := s.store.Participant(ctx, threadID, actor.UserID)
	if err != nil {
		return apperr.Dependency("load participant", err)
	}
	if !ok {
		if actor.IsAdmin {
			return nil
		}
		return apperr.Forbidden("not a participant of this thread")
	}
	if member.LeftAt != nil {
		return apperr.Forbidden("you have left this thread")
	}
	return nil
}
