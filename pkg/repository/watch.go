package repository

import (
	"context"
	"log"

	"adoptionService/pkg/api"
	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Query snapshot listeners, one goroutine per feed. Each listener re-reads
// the full result set on every snapshot and pushes it to the feed channel;
// closing the feed cancels the listener context and stops the iterator.

func logWatchErr(what string, err error) {
	if status.Code(err) != codes.Canceled && err != context.Canceled {
		log.Printf("Snapshot listener for %s stopped: %v", what, err)
	}
}

func (s *storage) watchPets(ctx context.Context, query firestore.Query) *api.PetFeed {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []api.Pet)

	it := query.Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("pets", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logWatchErr("pets", err)
				return
			}

			select {
			case ch <- decodePets(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewPetFeed(ch, cancel)
}

func (s *storage) watchCategories(ctx context.Context, query firestore.Query) *api.CategoryFeed {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []api.Category)

	it := query.Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("categories", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logWatchErr("categories", err)
				return
			}

			select {
			case ch <- decodeCategories(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewCategoryFeed(ch, cancel)
}

func (s *storage) watchUsers(ctx context.Context, query firestore.Query) *api.UserFeed {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []api.UserProfile)

	it := query.Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("users", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logWatchErr("users", err)
				return
			}

			select {
			case ch <- decodeUsers(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewUserFeed(ch, cancel)
}

func (s *storage) watchThreads(ctx context.Context, query firestore.Query) *api.ThreadFeed {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []api.ChatThread)

	it := query.Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("threads", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logWatchErr("threads", err)
				return
			}

			select {
			case ch <- decodeThreads(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewThreadFeed(ch, cancel)
}

func (s *storage) watchMessages(ctx context.Context, query firestore.Query) *api.MessageFeed {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []api.ChatMessage)

	it := query.Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("messages", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logWatchErr("messages", err)
				return
			}

			select {
			case ch <- decodeMessages(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewMessageFeed(ch, cancel)
}
