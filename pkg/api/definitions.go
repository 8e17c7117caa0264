package api

import (
	"strconv"
	"time"
)

// UserSummary is the denormalized copy of a user's public fields embedded in
// pets and chat threads to avoid a lookup at read time.
type UserSummary struct {
	Email    string `firestore:"email" json:"email"`
	Name     string `firestore:"name" json:"name"`
	ImageUrl string `firestore:"imageUrl" json:"imageUrl"`
}

type Pet struct {
	Id       int64       `firestore:"id" json:"id"`
	Name     string      `firestore:"name" json:"name"`
	Category string      `firestore:"category" json:"category"`
	Breed    string      `firestore:"breed" json:"breed"`
	Age      string      `firestore:"age" json:"age"`
	Sex      string      `firestore:"sex" json:"sex"`
	Weight   string      `firestore:"weight" json:"weight"`
	Address  string      `firestore:"address" json:"address"`
	About    string      `firestore:"about" json:"about"`
	ImageUrl string      `firestore:"imageUrl" json:"imageUrl"`
	Adopted  bool        `firestore:"adopted" json:"adopted"`
	Owner    UserSummary `firestore:"user" json:"user"`
}

// DocId is the decimal form of the numeric pet id, used as the Firestore
// document id.
func (p Pet) DocId() string {
	return strconv.FormatInt(p.Id, 10)
}

// NewPet carries the add-pet form fields. The id and owner summary are filled
// in by the service.
type NewPet struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Breed    string `json:"breed"`
	Age      string `json:"age"`
	Sex      string `json:"sex"`
	Weight   string `json:"weight"`
	Address  string `json:"address"`
	About    string `json:"about"`
	ImageUrl string `json:"imageUrl"`
}

type Category struct {
	Name      string    `firestore:"name" json:"name"`
	ImageUrl  string    `firestore:"imageUrl" json:"imageUrl"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// Slider is a home-screen banner image. The name doubles as the document id,
// like categories.
type Slider struct {
	Name     string `firestore:"name" json:"name"`
	ImageUrl string `firestore:"imageUrl" json:"imageUrl"`
}

type UserProfile struct {
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	PhotoURL    string    `firestore:"photoURL" json:"photoURL"`
	Role        string    `firestore:"role" json:"role"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// FavoriteList is the per-user favorites record, keyed by email. The ids are
// stored as a list; membership is treated as a set by the service.
type FavoriteList struct {
	Email     string  `firestore:"email" json:"email"`
	Favorites []int64 `firestore:"favorites" json:"favorites"`
}

// ChatThread is a conversation between two users. The document id equals the
// Id field: the two participant emails joined with an underscore.
type ChatThread struct {
	Id              string        `firestore:"id" json:"id"`
	Users           []UserSummary `firestore:"users" json:"users"`
	UserIds         []string      `firestore:"userIds" json:"userIds"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"createdAt"`
	LastMessage     string        `firestore:"lastMessage" json:"lastMessage"`
	LastMessageTime string        `firestore:"lastMessageTime" json:"lastMessageTime"`
	UnreadBy        []string      `firestore:"unreadBy" json:"unreadBy"`
}

// OtherUser returns the participant summary that is not the given email.
func (t ChatThread) OtherUser(email string) (UserSummary, bool) {
	for _, u := range t.Users {
		if u.Email != email {
			return u, true
		}
	}
	return UserSummary{}, false
}

// ChatMessage lives in the messages subcollection of a thread. CreatedAt is an
// RFC3339 string generated on the sending client, so ordering trusts client
// clocks.
type ChatMessage struct {
	Id          string `firestore:"-" json:"id,omitempty"`
	Text        string `firestore:"text" json:"text"`
	SenderEmail string `firestore:"senderEmail" json:"senderEmail"`
	SenderName  string `firestore:"senderName" json:"senderName"`
	SenderImage string `firestore:"senderImage" json:"senderImage"`
	CreatedAt   string `firestore:"createdAt" json:"createdAt"`
}

type Stats struct {
	TotalPets  int `json:"totalPets"`
	TotalUsers int `json:"totalUsers"`
}

type IncomingEvent struct {
	ThreadId    string `json:"threadId,omitempty"`
	RequestType int    `json:"requestType,omitempty"`
	Text        string `json:"text,omitempty"`
	Token       string `json:"token,omitempty"`
}

type OutgoingEvent struct {
	ThreadId     string       `json:"threadId,omitempty"`
	RequestType  int          `json:"requestType,omitempty"`
	Message      *ChatMessage `json:"message,omitempty"`
	Participants []string     `json:"participants,omitempty"`
	Client       *Client      `json:"-"`
}
