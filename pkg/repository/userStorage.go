package repository

import (
	"context"
	"log"

	"adoptionService/pkg/api"
	"cloud.google.com/go/firestore"
)

func (s *storage) userDoc(email string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(email)
}

func (s *storage) GetProfile(ctx context.Context, email string) (api.UserProfile, error) {
	var profile api.UserProfile

	snap, err := s.userDoc(email).Get(ctx)
	if notFound(err) {
		return profile, api.ErrNotFound
	}
	if err != nil {
		return profile, err
	}

	if err := snap.DataTo(&profile); err != nil {
		log.Printf("Converting profile snap to struct: %v", err)
		return profile, err
	}

	return profile, nil
}

func (s *storage) SetProfile(ctx context.Context, profile api.UserProfile) error {
	_, err := s.userDoc(profile.Email).Set(ctx, profile)
	return err
}

func (s *storage) DeleteProfile(ctx context.Context, email string) error {
	_, err := s.userDoc(email).Delete(ctx)
	return err
}

// WatchProfile follows a single profile document. A snapshot without the
// document marks the session as revoked.
func (s *storage) WatchProfile(ctx context.Context, email string) (*api.ProfileFeed, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan api.ProfileEvent)

	it := s.userDoc(email).Snapshots(ctx)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				logWatchErr("profile", err)
				return
			}

			event := api.ProfileEvent{Revoked: !snap.Exists()}
			if snap.Exists() {
				var profile api.UserProfile
				if err := snap.DataTo(&profile); err != nil {
					log.Printf("Converting profile snap to struct: %v", err)
					continue
				}
				event.Profile = &profile
			}

			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return api.NewProfileFeed(ch, cancel), nil
}

func (s *storage) GetAllUsers(ctx context.Context) ([]api.UserProfile, error) {
	query := s.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeUsers(snaps), nil
}

func (s *storage) WatchUsers(ctx context.Context) (*api.UserFeed, error) {
	query := s.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc)
	return s.watchUsers(ctx, query), nil
}

func (s *storage) CountUsers(ctx context.Context) (int, error) {
	snaps, err := s.client.Collection(usersCollection).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(snaps), nil
}

func decodeUsers(snaps []*firestore.DocumentSnapshot) []api.UserProfile {
	users := make([]api.UserProfile, 0, len(snaps))
	for _, snap := range snaps {
		var profile api.UserProfile
		if err := snap.DataTo(&profile); err != nil {
			log.Printf("Converting profile snap to struct: %v", err)
			continue
		}
		users = append(users, profile)
	}
	return users
}
