package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type friendService struct {
	userRepo repository.UserRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewFriendService creates a new friend service
func NewFriendService(userRepo repository.UserRepository, clk clock.Clock, logger *zap.Logger) service.FriendService {
	return &friendService{
		userRepo: userRepo,
		clock:    clk,
		logger:   logger,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", entity.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", entity.ErrInvalidInput)
	}
	return email, nil
}

// EnsureProfile creates the profile on first sign-in and returns the stored one
func (s *friendService) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*entity.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, entity.NewUser(userID, email, s.clock.Now().UTC())); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

func (s *friendService) AddFriendByEmail(ctx context.Context, userID uuid.UUID, email string) (*entity.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(user.Email, email) {
		return nil, entity.ErrSelfFriend
	}

	friend, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", entity.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if friend.ID == userID {
		return nil, entity.ErrSelfFriend
	}
	if user.HasFriend(friend.ID) {
		return nil, entity.ErrAlreadyFriends
	}

	if err := s.userRepo.AddFriendPair(ctx, userID, friend.ID); err != nil {
		return nil, fmt.Errorf("failed to add friend: %w", err)
	}

	s.logger.Info("friend_added",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friend.ID.String()),
	)

	if !friend.HasFriend(userID) {
		friend.Friends = append(friend.Friends, userID)
	}
	return friend, nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Friends) == 0 {
		return []*entity.User{}, nil
	}

	friends, err := s.userRepo.GetByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	return friends, nil
}
