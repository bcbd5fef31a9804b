package services

import (
	"context"
	"time"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/model"
	"github.com/gautambamne/ECom-sub000/internal/repository"
)

// SessionService enumerates and revokes a user's device sessions.
type SessionService struct {
	Sessions repository.SessionRepository
}

func NewSessionService(sessions repository.SessionRepository) *SessionService {
	return &SessionService{Sessions: sessions}
}

// List returns all sessions belonging to the user, newest first.
func (s *SessionService) List(ctx context.Context, userID string) ([]*model.Session, error) {
	sessions, err := s.Sessions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return sessions, nil
}

// Revoke deletes one of the user's own sessions. A session that does not
// exist, or belongs to someone else, is simply not found.
func (s *SessionService) Revoke(ctx context.Context, userID, sessionID string) error {
	session, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return apperror.Internal(err)
	}
	if session == nil || session.UserID != userID {
		return apperror.NotFound("Session not found")
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// RevokeAllExcept deletes every session of the user except the one matching
// the presented refresh token ("log out everywhere else"). Without a
// resolvable current session, all sessions go.
func (s *SessionService) RevokeAllExcept(ctx context.Context, userID, currentRefreshToken string) error {
	if currentRefreshToken != "" {
		current, err := s.Sessions.GetByRefreshToken(ctx, currentRefreshToken)
		if err != nil {
			return apperror.Internal(err)
		}
		if current != nil && current.UserID == userID {
			if err := s.Sessions.DeleteByUserIDExcept(ctx, userID, current.ID); err != nil {
				return apperror.Internal(err)
			}
			return nil
		}
	}
	if err := s.Sessions.DeleteByUserID(ctx, userID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry and reports how many
// were swept.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.Sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
