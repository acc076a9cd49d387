package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/metrics"
	"github.com/Preston-Miller/LibraryProject/internal/repository"
)

var (
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrNotRequestRecipient = errors.New("only the request recipient can perform this action")
)

// RequestOutcome is the closed set of results of sending a friend request.
// These are expected cases, not errors: the caller surfaces them as messages.
type RequestOutcome string

const (
	OutcomeSent           RequestOutcome = "sent"
	OutcomeNotFound       RequestOutcome = "not_found"
	OutcomeSelf           RequestOutcome = "self"
	OutcomeAlreadyFriends RequestOutcome = "already_friends"
	OutcomePendingByMe    RequestOutcome = "pending_by_me"
	OutcomePendingByThem  RequestOutcome = "pending_by_them"
)

// SendResult carries the outcome plus, for OutcomeSent, the resolved target.
type SendResult struct {
	Outcome RequestOutcome     `json:"outcome"`
	Friend  *domain.FriendView `json:"friend,omitempty"`
}

// Notifier pushes change notifications to live sessions.
type Notifier interface {
	NotifyPresenceChanged(old, new *domain.PresenceRecord)
	NotifyFriendshipChanged(userA, userB uuid.UUID)
}

type FriendshipService struct {
	friendRepo repository.FriendshipRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFriendshipService(friendRepo repository.FriendshipRepository, userRepo repository.UserRepository, notifier Notifier) *FriendshipService {
	return &FriendshipService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Classify partitions every edge touching selfID into friends, pending
// received and pending sent. One linear pass; the predicates are mutually
// exclusive so no edge lands in two buckets. The friend set is keyed by the
// other user's id, which keeps classification correct even when the
// check-then-insert race has left a duplicate edge between a pair.
func Classify(selfID uuid.UUID, edges []domain.FriendshipEdge, users map[uuid.UUID]domain.User) domain.Classification {
	var c domain.Classification
	c.Friends = []domain.FriendView{}
	c.PendingReceived = []domain.PendingReceived{}
	c.PendingSent = []domain.PendingSent{}

	seen := make(map[uuid.UUID]bool)
	username := func(id uuid.UUID) string {
		if u, ok := users[id]; ok {
			return u.Username
		}
		return "?"
	}

	for _, e := range edges {
		if !e.Touches(selfID) {
			continue
		}
		other := e.Other(selfID)
		switch {
		case e.Status == domain.FriendshipAccepted:
			if !seen[other] {
				seen[other] = true
				c.Friends = append(c.Friends, domain.FriendView{ID: other, Username: username(other)})
			}
		case e.ToUserID == selfID:
			c.PendingReceived = append(c.PendingReceived, domain.PendingReceived{
				ID:           e.FromUserID,
				Username:     username(e.FromUserID),
				FriendshipID: e.ID,
			})
		default:
			c.PendingSent = append(c.PendingSent, domain.PendingSent{
				ID:       other,
				Username: username(other),
			})
		}
	}
	return c
}

// Overview loads and classifies every edge touching the user.
func (s *FriendshipService) Overview(ctx context.Context, selfID uuid.UUID) (domain.Classification, error) {
	edges, err := s.friendRepo.ListByUser(ctx, selfID)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("listing friendships: %w", err)
	}

	idSet := make(map[uuid.UUID]struct{})
	for _, e := range edges {
		idSet[e.Other(selfID)] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("loading users: %w", err)
	}
	byID := make(map[uuid.UUID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	return Classify(selfID, edges, byID), nil
}

// SendRequest resolves targetUsername case-insensitively and creates a
// pending edge from selfID, unless an edge in either direction already
// exists. The lookup-then-insert is not atomic against the store; two
// sessions requesting each other at once can each pass the check and insert,
// leaving a duplicate pair of edges. That race is tolerated, not prevented:
// Classify treats any accepted edge between a pair as friendship.
func (s *FriendshipService) SendRequest(ctx context.Context, selfID uuid.UUID, targetUsername string) (SendResult, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return SendResult{}, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		metrics.IncFriendRequest(string(OutcomeNotFound))
		return SendResult{Outcome: OutcomeNotFound}, nil
	}

	if target.ID == selfID {
		metrics.IncFriendRequest(string(OutcomeSelf))
		return SendResult{Outcome: OutcomeSelf}, nil
	}

	existing, err := s.friendRepo.GetBetween(ctx, selfID, target.ID)
	if err != nil {
		return SendResult{}, err
	}
	if existing != nil {
		var outcome RequestOutcome
		switch {
		case existing.Status == domain.FriendshipAccepted:
			outcome = OutcomeAlreadyFriends
		case existing.FromUserID == selfID:
			outcome = OutcomePendingByMe
		default:
			// They already requested us. Surfaced as its own outcome so the
			// caller can point at the pending request instead of creating a
			// duplicate; no auto-accept.
			outcome = OutcomePendingByThem
		}
		metrics.IncFriendRequest(string(outcome))
		return SendResult{Outcome: outcome}, nil
	}

	edge := &domain.FriendshipEdge{
		ID:         uuid.New(),
		FromUserID: selfID,
		ToUserID:   target.ID,
		Status:     domain.FriendshipPending,
		CreatedAt:  time.Now(),
	}
	if err := s.friendRepo.Create(ctx, edge); err != nil {
		return SendResult{}, fmt.Errorf("creating friend request: %w", err)
	}

	s.notifyPair(selfID, target.ID)
	metrics.IncFriendRequest(string(OutcomeSent))
	return SendResult{
		Outcome: OutcomeSent,
		Friend:  &domain.FriendView{ID: target.ID, Username: target.Username},
	}, nil
}

// AcceptRequest marks a pending edge accepted. Only the recipient may accept.
func (s *FriendshipService) AcceptRequest(ctx context.Context, selfID, friendshipID uuid.UUID) error {
	edge, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrRequestNotFound
	}
	if edge.ToUserID != selfID {
		return ErrNotRequestRecipient
	}

	if err := s.friendRepo.UpdateStatus(ctx, friendshipID, domain.FriendshipAccepted); err != nil {
		return err
	}

	s.notifyPair(edge.FromUserID, edge.ToUserID)
	metrics.IncFriendMutation("accept")
	return nil
}

// DeclineRequest deletes a pending edge. Only the recipient may decline.
func (s *FriendshipService) DeclineRequest(ctx context.Context, selfID, friendshipID uuid.UUID) error {
	edge, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrRequestNotFound
	}
	if edge.ToUserID != selfID {
		return ErrNotRequestRecipient
	}

	if err := s.friendRepo.Delete(ctx, friendshipID); err != nil {
		return err
	}

	s.notifyPair(edge.FromUserID, edge.ToUserID)
	metrics.IncFriendMutation("decline")
	return nil
}

// RemoveFriend deletes the edge between the two users in both directions.
// Accepted edges don't track direction on the caller's side, so both deletes
// are issued unconditionally even though at most one row should exist.
func (s *FriendshipService) RemoveFriend(ctx context.Context, selfID, friendID uuid.UUID) error {
	if err := s.friendRepo.DeleteBetween(ctx, selfID, friendID); err != nil {
		return err
	}

	s.notifyPair(selfID, friendID)
	metrics.IncFriendMutation("remove")
	return nil
}

func (s *FriendshipService) notifyPair(userA, userB uuid.UUID) {
	if s.notifier != nil {
		s.notifier.NotifyFriendshipChanged(userA, userB)
	}
}
