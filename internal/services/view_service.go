package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
)

// View names which side of the inbox a user sees.
type View string

const (
	ViewSent     View = "sent"     // inquiries/threads the user initiated
	ViewReceived View = "received" // inquiries/threads on the user's listings
)

// ValidView reports whether s names a known view.
func ValidView(s string) bool {
	return s == string(ViewSent) || s == string(ViewReceived)
}

// IViewService resolves which inbox view a user should see and stores their
// preference.
type IViewService interface {
	ResolveView(ctx context.Context, userID string, override string) (View, error)
	SetPreference(ctx context.Context, userID string, view View) error
	GetPreference(ctx context.Context, userID string) (View, error)
}

// viewService implements IViewService. The stored preference lives in Redis
// with a rolling TTL, mirroring a session cookie's lifetime.
type viewService struct {
	redis          *redis.Client
	cfg            *config.Config
	userService    IUserService
	inquiryService IInquiryService
}

// NewViewService creates a new ViewService.
func NewViewService(redisClient *redis.Client, cfg *config.Config, userService IUserService, inquiryService IInquiryService) IViewService {
	return &viewService{redis: redisClient, cfg: cfg, userService: userService, inquiryService: inquiryService}
}

func viewPreferenceKey(userID string) string {
	return "roleview:" + userID
}

// SetPreference stores the user's chosen view.
func (s *viewService) SetPreference(ctx context.Context, userID string, view View) error {
	if !ValidView(string(view)) {
		return fmt.Errorf("invalid view: %s", view)
	}
	if err := s.redis.Set(ctx, viewPreferenceKey(userID), string(view), s.cfg.RoleViewTTL).Err(); err != nil {
		return fmt.Errorf("failed to store view preference for %s: %w", userID, err)
	}
	return nil
}

// GetPreference returns the stored view preference, or empty when none exists.
func (s *viewService) GetPreference(ctx context.Context, userID string) (View, error) {
	val, err := s.redis.Get(ctx, viewPreferenceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read view preference for %s: %w", userID, err)
	}
	if !ValidView(val) {
		return "", nil
	}
	return View(val), nil
}

// ResolveView decides which inbox view the user sees. First match wins:
//
//  1. an explicit caller-supplied override
//  2. the stored preference
//  3. the account's declared role
//  4. which profile the user owns (employer vs talent)
//  5. whether the user has ever sent an inquiry
//
// Role is a soft, user-adjustable concept here, not an access boundary; a user
// can act as both parties on different listings, hence the long chain. The
// final default is ViewSent.
func (s *viewService) ResolveView(ctx context.Context, userID string, override string) (View, error) {
	if ValidView(override) {
		// Overrides also refresh the stored preference so the choice sticks.
		if err := s.SetPreference(ctx, userID, View(override)); err != nil {
			log.Printf("Failed to persist view override for %s: %v", userID, err)
		}
		return View(override), nil
	}

	if pref, err := s.GetPreference(ctx, userID); err == nil && pref != "" {
		return pref, nil
	}

	user, err := s.userService.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	switch user.Role {
	case models.RoleEmployer:
		return ViewReceived, nil
	case models.RoleTalent:
		return ViewSent, nil
	}

	if _, err := s.userService.GetEmployerProfileByUserID(ctx, userID); err == nil {
		return ViewReceived, nil
	}
	if _, err := s.userService.GetTalentProfileByUserID(ctx, userID); err == nil {
		return ViewSent, nil
	}

	if sent, err := s.inquiryService.HasSentInquiry(ctx, userID); err == nil && sent {
		return ViewSent, nil
	}

	return ViewSent, nil
}
