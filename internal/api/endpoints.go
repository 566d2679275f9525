package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// MaxLookupBatch is the largest id or screen name list users/lookup accepts.
	MaxLookupBatch = 100

	lookupConcurrency = 4
)

// Paths of the endpoints with typed wrappers that mutate state.
const (
	FollowPath        = "friendships/create"
	UnfollowPath      = "friendships/destroy"
	DirectMessagePath = "direct_messages/events/new"
)

// VerifyCredentials returns the authenticating user.
func (c *Client) VerifyCredentials(ctx context.Context) (*User, error) {
	res, err := c.Get(ctx, "account/verify_credentials", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := res.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FavoritesList returns the tweets liked by the authenticating user, or by
// the user named in params (user_id / screen_name).
func (c *Client) FavoritesList(ctx context.Context, params Params) ([]Tweet, error) {
	res, err := c.Get(ctx, "favorites/list", params)
	if err != nil {
		return nil, err
	}
	var tweets []Tweet
	if err := res.Decode(&tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// FriendshipTarget names the other side of a follow or unfollow. Set one of
// the fields; an empty target is sent as-is and the API answers with
// code 108.
type FriendshipTarget struct {
	UserID     string
	ScreenName string
}

// Params returns the request parameters for the target.
func (t FriendshipTarget) Params() Params {
	p := Params{}
	if id := strings.TrimSpace(t.UserID); id != "" {
		p["user_id"] = id
	}
	if name := strings.TrimPrefix(strings.TrimSpace(t.ScreenName), "@"); name != "" {
		p["screen_name"] = name
	}
	return p
}

// FollowUser follows the target. The API answers with the target user
// object, not the new relationship.
func (c *Client) FollowUser(ctx context.Context, target FriendshipTarget) (*User, error) {
	return c.friendship(ctx, FollowPath, target)
}

// UnfollowUser unfollows the target. Like FollowUser it returns the target
// user object.
func (c *Client) UnfollowUser(ctx context.Context, target FriendshipTarget) (*User, error) {
	return c.friendship(ctx, UnfollowPath, target)
}

func (c *Client) friendship(ctx context.Context, path string, target FriendshipTarget) (*User, error) {
	res, err := c.Post(ctx, path, nil, target.Params())
	if err != nil {
		return nil, err
	}
	var user User
	if err := res.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SendDirectMessage sends text to recipientID through the events API. The
// request carries a JSON body, which is not covered by the signature.
func (c *Client) SendDirectMessage(ctx context.Context, recipientID, text string) (*DirectMessageEvent, error) {
	body, err := DirectMessageBody(recipientID, text)
	if err != nil {
		return nil, err
	}
	res, err := c.Post(ctx, DirectMessagePath, body, nil)
	if err != nil {
		return nil, err
	}
	var out directMessageResponse
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return &out.Event, nil
}

// DirectMessageBody builds the message_create event SendDirectMessage sends.
func DirectMessageBody(recipientID, text string) (any, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, errors.New("recipient id is required")
	}
	return directMessageRequest{
		Event: directMessageRequestEvent{
			Type: "message_create",
			MessageCreate: MessageCreate{
				Target:      MessageTarget{RecipientID: recipientID},
				MessageData: MessageData{Text: text},
			},
		},
	}, nil
}

// UserLookup selects users for LookupUsers by id, screen name or both.
type UserLookup struct {
	UserIDs     []string
	ScreenNames []string
}

// LookupUsers fetches users in batches of MaxLookupBatch. Duplicates are
// removed before batching and results keep batch order. A batch that
// matches nobody (code 17) contributes no users; the envelope is only
// returned when every batch came back empty.
func (c *Client) LookupUsers(ctx context.Context, lookup UserLookup) ([]User, error) {
	batches := lookupBatches(lookup)
	if len(batches) == 0 {
		return nil, errors.New("at least one user id or screen name is required")
	}

	results := make([][]User, len(batches))
	misses := make([]*ErrorEnvelope, len(batches))
	sem := semaphore.NewWeighted(lookupConcurrency)
	g, gctx := errgroup.WithContext(ctx)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res, err := c.Get(gctx, "users/lookup", batch)
			if err != nil {
				return err
			}
			if res.Errors != nil {
				if res.Errors.HasCode(CodeNoUserMatches) {
					misses[i] = res.Errors
					return nil
				}
				return res.Errors
			}
			var users []User
			if err := res.Decode(&users); err != nil {
				return fmt.Errorf("users/lookup batch %d: %w", i+1, err)
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var users []User
	for _, batch := range results {
		users = append(users, batch...)
	}
	missed := 0
	for _, env := range misses {
		if env != nil {
			missed++
		}
	}
	if missed == len(batches) {
		return nil, misses[0]
	}
	return users, nil
}

func lookupBatches(lookup UserLookup) []Params {
	var out []Params
	for _, b := range chunk(dedupe(lookup.UserIDs, false), MaxLookupBatch) {
		out = append(out, Params{"user_id": b})
	}
	for _, b := range chunk(dedupe(lookup.ScreenNames, true), MaxLookupBatch) {
		out = append(out, Params{"screen_name": b})
	}
	return out
}

// dedupe trims and drops empty or repeated entries. Screen names compare
// case-insensitively and lose a leading "@".
func dedupe(values []string, screenNames bool) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := v
		if screenNames {
			v = strings.TrimPrefix(v, "@")
			key = strings.ToLower(v)
		}
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func chunk(values []string, size int) [][]string {
	var out [][]string
	for len(values) > size {
		out = append(out, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		out = append(out, values)
	}
	return out
}
