// Package polls manages the single active poll per chat
package polls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
	guarderrors "github.com/groupwarden/groupwarden/internal/domain/guard/errors"
)

// Polls auto-resolve this long after creation, checked lazily on the next
// vote or end attempt
const pollLifetime = 24 * time.Hour

// Service runs poll creation, voting and resolution for one chat at a time
type Service struct {
	store   deps.PollRepository
	conn    deps.Connector
	ownerID string
	logger  zerolog.Logger
}

// NewService creates the poll service
func NewService(store deps.PollRepository, ownerID string, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		ownerID: ownerID,
		logger:  logger,
	}
}

// SetConnector sets the connector after construction
func (s *Service) SetConnector(conn deps.Connector) {
	s.conn = conn
}

// Create starts a new poll in a chat. A chat holds at most one live poll,
// so a second create is rejected until the first one ends or expires.
func (s *Service) Create(ctx context.Context, chatID, creator, question string, options []string) error {
	if strings.TrimSpace(question) == "" || len(options) < 2 {
		return guarderrors.ErrUnknownOption
	}

	opts, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	votes, err := json.Marshal(map[string]int{})
	if err != nil {
		return fmt.Errorf("encode votes: %w", err)
	}

	poll := &entities.Poll{
		ChatID:    chatID,
		Question:  question,
		Options:   string(opts),
		Votes:     string(votes),
		Creator:   creator,
		CreatedAt: time.Now(),
	}
	return s.store.Create(ctx, poll)
}

// Vote records one vote for an option by index (1-based) or by option text.
// A poll past its lifetime is resolved instead: the final tally is announced
// and ErrPollExpired returned so the caller knows the vote was not counted.
func (s *Service) Vote(ctx context.Context, chatID, choice string) error {
	poll, err := s.store.Get(ctx, chatID)
	if err != nil {
		return err
	}

	if s.expired(poll) {
		return s.resolve(ctx, poll)
	}

	options, tally, err := decode(poll)
	if err != nil {
		return err
	}

	option, ok := matchOption(options, choice)
	if !ok {
		return guarderrors.ErrUnknownOption
	}

	tally[option]++
	votes, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("encode votes: %w", err)
	}
	return s.store.UpdateVotes(ctx, chatID, string(votes))
}

// End closes the chat's poll and announces the tally. Only the poll's
// creator or the bot owner may end it; an expired poll is resolved for
// anyone.
func (s *Service) End(ctx context.Context, chatID, caller string) error {
	poll, err := s.store.Get(ctx, chatID)
	if err != nil {
		return err
	}

	if s.expired(poll) {
		if err := s.resolve(ctx, poll); !errors.Is(err, guarderrors.ErrPollExpired) {
			return err
		}
		return nil
	}

	if caller != poll.Creator && caller != s.ownerID {
		return guarderrors.ErrNotAuthorized
	}

	if err := s.announce(ctx, poll); err != nil {
		return err
	}
	return s.store.Delete(ctx, chatID)
}

// Status renders the chat's live poll. An expired poll is resolved instead.
func (s *Service) Status(ctx context.Context, chatID string) (string, error) {
	poll, err := s.store.Get(ctx, chatID)
	if err != nil {
		return "", err
	}

	if s.expired(poll) {
		return "", s.resolve(ctx, poll)
	}

	options, tally, err := decode(poll)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n", poll.Question)
	for i, opt := range options {
		fmt.Fprintf(&b, "%d. %s — %d\n", i+1, opt, tally[opt])
	}
	return b.String(), nil
}

// resolve announces an expired poll's final tally, deletes it and returns
// ErrPollExpired so the caller can tell the interaction was not applied
func (s *Service) resolve(ctx context.Context, poll *entities.Poll) error {
	if err := s.announce(ctx, poll); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, poll.ChatID); err != nil {
		return err
	}
	s.logger.Info().Str("chat", poll.ChatID).Msg("expired poll resolved")
	return guarderrors.ErrPollExpired
}

func (s *Service) announce(ctx context.Context, poll *entities.Poll) error {
	options, tally, err := decode(poll)
	if err != nil {
		return err
	}

	winner := ""
	best := -1
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Poll closed: %s\n", poll.Question)
	for _, opt := range options {
		count := tally[opt]
		fmt.Fprintf(&b, "• %s — %d\n", opt, count)
		if count > best {
			winner, best = opt, count
		}
	}
	if best > 0 {
		fmt.Fprintf(&b, "\nWinner: %s", winner)
	} else {
		b.WriteString("\nNo votes were cast.")
	}

	if err := s.conn.SendText(ctx, poll.ChatID, b.String()); err != nil {
		return fmt.Errorf("announce poll result: %w", err)
	}
	return nil
}

func (s *Service) expired(poll *entities.Poll) bool {
	return time.Since(poll.CreatedAt) >= pollLifetime
}

func decode(poll *entities.Poll) ([]string, map[string]int, error) {
	var options []string
	if err := json.Unmarshal([]byte(poll.Options), &options); err != nil {
		return nil, nil, fmt.Errorf("decode options: %w", err)
	}
	tally := make(map[string]int)
	if poll.Votes != "" {
		if err := json.Unmarshal([]byte(poll.Votes), &tally); err != nil {
			return nil, nil, fmt.Errorf("decode votes: %w", err)
		}
	}
	return options, tally, nil
}

// matchOption resolves a voter's choice against the option list, accepting
// either the 1-based index or the option text (case-insensitive)
func matchOption(options []string, choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	var idx int
	if _, err := fmt.Sscanf(choice, "%d", &idx); err == nil && idx >= 1 && idx <= len(options) {
		return options[idx-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(opt, choice) {
			return opt, true
		}
	}
	return "", false
}
