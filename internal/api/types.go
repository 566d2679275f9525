package api

import (
	"encoding/json"
	"time"
)

// createdAtLayout is the timestamp format used by v1.1 payloads,
// e.g. "Wed Mar 14 21:17:37 +0000 2018".
const createdAtLayout = time.RubyDate

// User is the subset of a user object the client works with.
type User struct {
	ID              json.Number `json:"id"`
	IDStr           string      `json:"id_str"`
	Name            string      `json:"name"`
	ScreenName      string      `json:"screen_name"`
	Description     string      `json:"description"`
	Lang            string      `json:"lang"`
	Location        string      `json:"location"`
	CreatedAt       string      `json:"created_at"`
	Protected       bool        `json:"protected"`
	Verified        bool        `json:"verified"`
	Following       bool        `json:"following"`
	FollowersCount  int         `json:"followers_count"`
	FriendsCount    int         `json:"friends_count"`
	StatusesCount   int         `json:"statuses_count"`
	FavouritesCount int         `json:"favourites_count"`
}

// IDString returns id_str, falling back to the numeric id.
func (u User) IDString() string {
	return idString(u.IDStr, u.ID)
}

// CreatedAtTime parses CreatedAt. It returns the zero time when absent or
// malformed.
func (u User) CreatedAtTime() time.Time {
	return parseCreatedAt(u.CreatedAt)
}

// Tweet is the subset of a status object returned by timeline and
// favorites endpoints.
type Tweet struct {
	ID            json.Number `json:"id"`
	IDStr         string      `json:"id_str"`
	Text          string      `json:"text"`
	FullText      string      `json:"full_text"`
	CreatedAt     string      `json:"created_at"`
	Lang          string      `json:"lang"`
	FavoriteCount int         `json:"favorite_count"`
	RetweetCount  int         `json:"retweet_count"`
	Favorited     bool        `json:"favorited"`
	User          *User       `json:"user"`
}

// Body returns the full text when the API sent it, otherwise Text.
func (t Tweet) Body() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// IDString returns id_str, falling back to the numeric id.
func (t Tweet) IDString() string {
	return idString(t.IDStr, t.ID)
}

// CreatedAtTime parses CreatedAt.
func (t Tweet) CreatedAtTime() time.Time {
	return parseCreatedAt(t.CreatedAt)
}

// DirectMessageEvent is a message_create event from direct_messages/events.
type DirectMessageEvent struct {
	ID               string        `json:"id"`
	Type             string        `json:"type"`
	CreatedTimestamp string        `json:"created_timestamp"`
	MessageCreate    MessageCreate `json:"message_create"`
}

// MessageCreate carries the target and text of a direct message.
type MessageCreate struct {
	Target      MessageTarget `json:"target"`
	SenderID    string        `json:"sender_id,omitempty"`
	MessageData MessageData   `json:"message_data"`
}

type MessageTarget struct {
	RecipientID string `json:"recipient_id"`
}

type MessageData struct {
	Text string `json:"text"`
}

// directMessageRequest is the JSON body of direct_messages/events/new.
type directMessageRequest struct {
	Event directMessageRequestEvent `json:"event"`
}

type directMessageRequestEvent struct {
	Type          string        `json:"type"`
	MessageCreate MessageCreate `json:"message_create"`
}

type directMessageResponse struct {
	Event DirectMessageEvent `json:"event"`
}

func parseCreatedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(createdAtLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func idString(str string, num json.Number) string {
	if str != "" {
		return str
	}
	return num.String()
}
