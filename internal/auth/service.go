package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apppaint/apppaint/internal/store"
)

var (
	ErrInvalidTicket   = errors.New("invalid ticket")
	ErrUnknownTemplate = errors.New("template not found")
	ErrUnknownProfile  = errors.New("profile not found")
)

// Session is what a ticket grants: editing one drawing under one profile.
type Session struct {
	ProfileID  string    `json:"profileId,omitempty"`
	TemplateID string    `json:"templateId"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type Ticket struct {
	Ticket string `json:"ticket"`
	Session
}

type sessionClaims struct {
	TemplateID string `json:"tpl"`
	jwt.RegisteredClaims
}

// Service issues and validates HS256-signed edit-session tickets.
type Service struct {
	store  store.Store
	secret []byte
	ttl    time.Duration
}

func NewService(st store.Store, secret string, ttl time.Duration) *Service {
	return &Service{
		store:  st,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Open checks that the drawing exists and issues a ticket for it. An empty
// profileID binds the active profile, if any.
func (s *Service) Open(ctx context.Context, templateID, profileID string) (*Ticket, error) {
	if _, err := s.store.GetTemplate(ctx, templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownTemplate
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	if profileID != "" {
		if _, err := s.store.GetProfile(ctx, profileID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrUnknownProfile
			}
			return nil, fmt.Errorf("get profile: %w", err)
		}
	} else {
		p, err := s.store.GetActiveProfile(ctx)
		switch {
		case err == nil:
			profileID = p.ID
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("get active profile: %w", err)
		}
	}

	return s.Issue(profileID, templateID)
}

func (s *Service) Issue(profileID, templateID string) (*Ticket, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		TemplateID: templateID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}

	return &Ticket{
		Ticket: signed,
		Session: Session{
			ProfileID:  profileID,
			TemplateID: templateID,
			ExpiresAt:  expires.UTC().Truncate(time.Second),
		},
	}, nil
}

func (s *Service) Validate(ticket string) (*Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(ticket, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	if !token.Valid || claims.TemplateID == "" {
		return nil, ErrInvalidTicket
	}

	session := &Session{
		ProfileID:  claims.Subject,
		TemplateID: claims.TemplateID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}
