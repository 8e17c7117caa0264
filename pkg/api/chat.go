package api

import (
	"context"
	"sort"
	"time"
)

type ChatService interface {
	InitiateThread(ctx context.Context, initiator UserSummary, other UserSummary) (ChatThread, error)
	GetThread(ctx context.Context, threadId string) (ChatThread, error)
	GetThreads(ctx context.Context, email string) ([]ChatThread, error)
	WatchThreads(ctx context.Context, email string) (*ThreadFeed, error)
	SendMessage(ctx context.Context, threadId string, sender UserSummary, text string) (ChatMessage, error)
	GetMessages(ctx context.Context, threadId string) ([]ChatMessage, error)
	WatchMessages(ctx context.Context, threadId string) (*MessageFeed, error)
	MarkThreadRead(ctx context.Context, threadId string, email string) error
	DeleteThread(ctx context.Context, threadId string) error
}

type ChatRepository interface {
	FindThreadByIds(ctx context.Context, ids []string) (ChatThread, error)
	CreateThread(ctx context.Context, thread ChatThread) error
	GetThread(ctx context.Context, threadId string) (ChatThread, error)
	GetThreads(ctx context.Context, email string) ([]ChatThread, error)
	WatchThreads(ctx context.Context, email string) (*ThreadFeed, error)
	AddMessage(ctx context.Context, threadId string, message ChatMessage) (string, error)
	GetMessages(ctx context.Context, threadId string) ([]ChatMessage, error)
	WatchMessages(ctx context.Context, threadId string) (*MessageFeed, error)
	SetLastMessage(ctx context.Context, threadId string, lastMessage string, lastMessageTime string, unreadBy []string) error
	SetUnreadBy(ctx context.Context, threadId string, unreadBy []string) error
	DeleteThread(ctx context.Context, threadId string) error
}

type chatService struct {
	storage ChatRepository
}

func NewChatService(storage ChatRepository) ChatService {
	return &chatService{storage: storage}
}

// ThreadId derives the deterministic thread key for two participant emails.
func ThreadId(emailA, emailB string) string {
	return emailA + "_" + emailB
}

// InitiateThread resolves or creates the thread between the two users. Both
// orderings of the key are checked before creating under initiator_other.
// Lookup then create, no transaction: two concurrent initiators can still
// produce two threads.
func (c *chatService) InitiateThread(ctx context.Context, initiator UserSummary, other UserSummary) (ChatThread, error) {
	if initiator.Email == "" || other.Email == "" {
		return ChatThread{}, ErrInvalidInput
	}

	docId1 := ThreadId(initiator.Email, other.Email)
	docId2 := ThreadId(other.Email, initiator.Email)

	thread, err := c.storage.FindThreadByIds(ctx, []string{docId1, docId2})
	if err == nil {
		return thread, nil
	}
	if err != ErrNotFound {
		return ChatThread{}, err
	}

	thread = ChatThread{
		Id:        docId1,
		Users:     []UserSummary{initiator, other},
		UserIds:   []string{initiator.Email, other.Email},
		CreatedAt: time.Now(),
	}
	if err := c.storage.CreateThread(ctx, thread); err != nil {
		return ChatThread{}, err
	}

	return thread, nil
}

func (c *chatService) GetThread(ctx context.Context, threadId string) (ChatThread, error) {
	thread, err := c.storage.GetThread(ctx, threadId)

	if err != nil {
		return thread, err
	}

	return thread, nil
}

// GetThreads returns the inbox for a user: threads without a message yet are
// dropped, the rest sorted by last message time, newest first. Missing
// timestamps sort as the zero time.
func (c *chatService) GetThreads(ctx context.Context, email string) ([]ChatThread, error) {
	threads, err := c.storage.GetThreads(ctx, email)
	if err != nil {
		return nil, err
	}

	return SortInbox(threads), nil
}

func SortInbox(threads []ChatThread) []ChatThread {
	inbox := make([]ChatThread, 0, len(threads))
	for _, t := range threads {
		if t.LastMessage != "" {
			inbox = append(inbox, t)
		}
	}

	sort.SliceStable(inbox, func(i, j int) bool {
		return lastMessageTime(inbox[i]).After(lastMessageTime(inbox[j]))
	})

	return inbox
}

func lastMessageTime(t ChatThread) time.Time {
	parsed, err := time.Parse(time.RFC3339, t.LastMessageTime)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func (c *chatService) WatchThreads(ctx context.Context, email string) (*ThreadFeed, error) {
	return c.storage.WatchThreads(ctx, email)
}

// SendMessage appends to the thread's messages subcollection and merges the
// denormalized last-message state onto the thread. The timestamp comes from
// this process's clock, not the backend.
func (c *chatService) SendMessage(ctx context.Context, threadId string, sender UserSummary, text string) (ChatMessage, error) {
	if text == "" {
		return ChatMessage{}, ErrInvalidInput
	}

	thread, err := c.storage.GetThread(ctx, threadId)
	if err != nil {
		return ChatMessage{}, err
	}

	message := ChatMessage{
		Text:        text,
		SenderEmail: sender.Email,
		SenderName:  sender.Name,
		SenderImage: sender.ImageUrl,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}

	id, err := c.storage.AddMessage(ctx, threadId, message)
	if err != nil {
		return ChatMessage{}, err
	}
	message.Id = id

	// Everyone but the sender has not seen the new last message.
	unreadBy := make([]string, 0, 1)
	for _, participant := range thread.UserIds {
		if participant != sender.Email {
			unreadBy = append(unreadBy, participant)
		}
	}

	if err := c.storage.SetLastMessage(ctx, threadId, message.Text, message.CreatedAt, unreadBy); err != nil {
		return ChatMessage{}, err
	}

	return message, nil
}

func (c *chatService) GetMessages(ctx context.Context, threadId string) ([]ChatMessage, error) {
	messages, err := c.storage.GetMessages(ctx, threadId)

	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (c *chatService) WatchMessages(ctx context.Context, threadId string) (*MessageFeed, error) {
	return c.storage.WatchMessages(ctx, threadId)
}

// MarkThreadRead removes the reader from the thread's unreadBy list.
func (c *chatService) MarkThreadRead(ctx context.Context, threadId string, email string) error {
	thread, err := c.storage.GetThread(ctx, threadId)
	if err != nil {
		return err
	}

	unreadBy := make([]string, 0, len(thread.UnreadBy))
	for _, reader := range thread.UnreadBy {
		if reader != email {
			unreadBy = append(unreadBy, reader)
		}
	}
	if len(unreadBy) == len(thread.UnreadBy) {
		return nil
	}

	return c.storage.SetUnreadBy(ctx, threadId, unreadBy)
}

func (c *chatService) DeleteThread(ctx context.Context, threadId string) error {
	return c.storage.DeleteThread(ctx, threadId)
}
