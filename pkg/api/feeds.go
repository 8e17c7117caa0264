package api

// Feeds are realtime subscription handles returned by the data layer. Each one
// carries a receive channel and a Close that detaches the underlying snapshot
// listener. The channel is closed after Close or when the listener fails;
// every acquire must be paired with a Close.

type PetFeed struct {
	C     <-chan []Pet
	close func()
}

func NewPetFeed(c <-chan []Pet, close func()) *PetFeed {
	return &PetFeed{C: c, close: close}
}

func (f *PetFeed) Close() { f.close() }

type CategoryFeed struct {
	C     <-chan []Category
	close func()
}

func NewCategoryFeed(c <-chan []Category, close func()) *CategoryFeed {
	return &CategoryFeed{C: c, close: close}
}

func (f *CategoryFeed) Close() { f.close() }

type UserFeed struct {
	C     <-chan []UserProfile
	close func()
}

func NewUserFeed(c <-chan []UserProfile, close func()) *UserFeed {
	return &UserFeed{C: c, close: close}
}

func (f *UserFeed) Close() { f.close() }

type ThreadFeed struct {
	C     <-chan []ChatThread
	close func()
}

func NewThreadFeed(c <-chan []ChatThread, close func()) *ThreadFeed {
	return &ThreadFeed{C: c, close: close}
}

func (f *ThreadFeed) Close() { f.close() }

type MessageFeed struct {
	C     <-chan []ChatMessage
	close func()
}

func NewMessageFeed(c <-chan []ChatMessage, close func()) *MessageFeed {
	return &MessageFeed{C: c, close: close}
}

func (f *MessageFeed) Close() { f.close() }

// ProfileEvent is emitted by a profile watch. Revoked is set when the profile
// document no longer exists: the client must treat this as implicit session
// revocation and sign out.
type ProfileEvent struct {
	Profile *UserProfile
	Revoked bool
}

type ProfileFeed struct {
	C     <-chan ProfileEvent
	close func()
}

func NewProfileFeed(c <-chan ProfileEvent, close func()) *ProfileFeed {
	return &ProfileFeed{C: c, close: close}
}

func (f *ProfileFeed) Close() { f.close() }
