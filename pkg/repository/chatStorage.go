package repository

import (
	"context"
	"log"

	"adoptionService/pkg/api"
	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

func (s *storage) threadDoc(threadId string) *firestore.DocumentRef {
	return s.client.Collection(chatCollection).Doc(threadId)
}

// FindThreadByIds queries threads whose id field matches any of the
// candidates. Used to resolve both orderings of a thread key.
func (s *storage) FindThreadByIds(ctx context.Context, ids []string) (api.ChatThread, error) {
	var thread api.ChatThread

	candidates := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		candidates = append(candidates, id)
	}

	query := s.client.Collection(chatCollection).Where("id", "in", candidates)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return thread, err
	}
	if len(snaps) == 0 {
		return thread, api.ErrNotFound
	}

	if err := snaps[0].DataTo(&thread); err != nil {
		log.Printf("Converting thread snap to struct: %v", err)
		return thread, err
	}

	return thread, nil
}

func (s *storage) CreateThread(ctx context.Context, thread api.ChatThread) error {
	_, err := s.threadDoc(thread.Id).Set(ctx, thread)
	return err
}

func (s *storage) GetThread(ctx context.Context, threadId string) (api.ChatThread, error) {
	var thread api.ChatThread

	snap, err := s.threadDoc(threadId).Get(ctx)
	if notFound(err) {
		return thread, api.ErrNotFound
	}
	if err != nil {
		return thread, err
	}

	if err := snap.DataTo(&thread); err != nil {
		log.Printf("Converting thread snap to struct: %v", err)
		return thread, err
	}

	return thread, nil
}

func (s *storage) GetThreads(ctx context.Context, email string) ([]api.ChatThread, error) {
	query := s.client.Collection(chatCollection).Where("userIds", "array-contains", email)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeThreads(snaps), nil
}

func (s *storage) WatchThreads(ctx context.Context, email string) (*api.ThreadFeed, error) {
	query := s.client.Collection(chatCollection).Where("userIds", "array-contains", email)
	return s.watchThreads(ctx, query), nil
}

func decodeThreads(snaps []*firestore.DocumentSnapshot) []api.ChatThread {
	threads := make([]api.ChatThread, 0, len(snaps))
	for _, snap := range snaps {
		var thread api.ChatThread
		if err := snap.DataTo(&thread); err != nil {
			log.Printf("Converting thread snap to struct: %v", err)
			continue
		}
		threads = append(threads, thread)
	}
	return threads
}

func (s *storage) AddMessage(ctx context.Context, threadId string, message api.ChatMessage) (string, error) {
	ref, _, err := s.threadDoc(threadId).Collection(messagesCollection).Add(ctx, message)
	if err != nil {
		log.Printf("Unable to add message document: %v", err)
		return "", err
	}
	return ref.ID, nil
}

func (s *storage) GetMessages(ctx context.Context, threadId string) ([]api.ChatMessage, error) {
	query := s.threadDoc(threadId).Collection(messagesCollection).OrderBy("createdAt", firestore.Desc)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeMessages(snaps), nil
}

func (s *storage) WatchMessages(ctx context.Context, threadId string) (*api.MessageFeed, error) {
	query := s.threadDoc(threadId).Collection(messagesCollection).OrderBy("createdAt", firestore.Desc)
	return s.watchMessages(ctx, query), nil
}

func decodeMessages(snaps []*firestore.DocumentSnapshot) []api.ChatMessage {
	messages := make([]api.ChatMessage, 0, len(snaps))
	for _, snap := range snaps {
		var message api.ChatMessage
		if err := snap.DataTo(&message); err != nil {
			log.Printf("Converting message snap to struct: %v", err)
			continue
		}
		message.Id = snap.Ref.ID
		messages = append(messages, message)
	}
	return messages
}

// SetLastMessage merges the denormalized last-message state onto the thread.
func (s *storage) SetLastMessage(ctx context.Context, threadId string, lastMessage string, lastMessageTime string, unreadBy []string) error {
	_, err := s.threadDoc(threadId).Set(ctx, map[string]interface{}{
		"lastMessage":     lastMessage,
		"lastMessageTime": lastMessageTime,
		"unreadBy":        unreadBy,
	}, firestore.MergeAll)
	return err
}

func (s *storage) SetUnreadBy(ctx context.Context, threadId string, unreadBy []string) error {
	_, err := s.threadDoc(threadId).Update(ctx, []firestore.Update{
		{
			Path:  "unreadBy",
			Value: unreadBy,
		},
	})
	if notFound(err) {
		return api.ErrNotFound
	}
	return err
}

// DeleteThread removes every message document and then the thread itself.
// The deletes are independent writes; a failure part-way leaves the thread
// with a subset of its messages.
func (s *storage) DeleteThread(ctx context.Context, threadId string) error {
	it := s.threadDoc(threadId).Collection(messagesCollection).Documents(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return err
		}
	}

	_, err := s.threadDoc(threadId).Delete(ctx)
	return err
}
