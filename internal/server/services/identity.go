package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/cryptox"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/logging"
	"github.com/dmitrijs2005/rotamanager/internal/server/auth"
	"github.com/dmitrijs2005/rotamanager/internal/server/config"
	"github.com/dmitrijs2005/rotamanager/internal/server/mailer"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/repomanager"
)

// verificationTokenSize is the number of random bytes in a verification
// token; the token itself is hex encoded.
const verificationTokenSize = 32

// bcrypt ignores input beyond 72 bytes.
const maxPasswordBytes = 72

// IdentityService owns user accounts and the unverified -> verified
// transition.
type IdentityService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	hasher               cryptox.PasswordHasher
	tokens               *auth.Issuer
	sender               mailer.VerificationSender
	verificationValidity time.Duration
	log                  logging.Logger
	now                  func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher,
	tokens *auth.Issuer, sender mailer.VerificationSender, cfg *config.Config, log logging.Logger) *IdentityService {
	return &IdentityService{
		db:                   db,
		repomanager:          m,
		hasher:               hasher,
		tokens:               tokens,
		sender:               sender,
		verificationValidity: cfg.VerificationTokenValidityDuration,
		log:                  log,
		now:                  time.Now,
	}
}

// AccountUpdate carries the fields to change; nil fields are left alone.
type AccountUpdate struct {
	FullName *string
	Email    *string
	Password *string
}

// Register creates an unverified user and sends it a verification token.
// A failed delivery is logged; the user can ask for a new token.
func (s *IdentityService) Register(ctx context.Context, fullName, email, password string) (*models.User, error) {
	fullName, err := cleanName("full name", fullName, 1)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" || len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be 1 to %d bytes", common.ErrValidation, maxPasswordBytes)
	}

	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	token, err := common.MakeRandHexString(verificationTokenSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         common.DefaultUserRole,
	}

	err = withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.repomanager.VerificationTokens(tx).Upsert(ctx, &models.VerificationToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: s.now().Add(s.verificationValidity),
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.sender.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		s.log.Warn(ctx, "verification mail not delivered", "user_id", user.ID, "error", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Verify consumes token, marks its user verified and returns a session
// token. The token is deleted in the same transaction, so it verifies at
// most once; an expired token is left in place and yields
// common.ErrTokenExpired.
func (s *IdentityService) Verify(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: token is required", common.ErrValidation)
	}

	var user *models.User
	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vt, err := s.repomanager.VerificationTokens(tx).Consume(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: verification token", common.ErrorNotFound)
			}
			return err
		}
		if vt.Expired(s.now()) {
			return common.ErrTokenExpired
		}

		users := s.repomanager.Users(tx)
		if err := users.MarkVerified(ctx, vt.UserID); err != nil {
			return err
		}
		user, err = users.GetByID(ctx, vt.UserID)
		return err
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "user verified", "user_id", user.ID)
	return s.issue(user)
}

// ResendVerification replaces the pending token of an unverified user with
// a fresh one and delivers it. The previous token stops working.
func (s *IdentityService) ResendVerification(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: user", common.ErrorNotFound)
		}
		return err
	}
	if user.Verified {
		return fmt.Errorf("%w: account already verified", common.ErrConflict)
	}

	token, err := common.MakeRandHexString(verificationTokenSize)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := s.repomanager.VerificationTokens(s.db).Upsert(ctx, &models.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.verificationValidity),
	}); err != nil {
		return err
	}

	if err := s.sender.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return nil
}

// Authenticate checks credentials and returns a session token. Unknown
// email and wrong password are indistinguishable to the caller; an
// unverified account with the right password gets common.ErrAccessDenied.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, cryptox.ErrMismatchedPassword) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !user.Verified {
		return "", fmt.Errorf("%w: account not verified", common.ErrAccessDenied)
	}

	return s.issue(user)
}

// GetAccount returns the caller's account.
func (s *IdentityService) GetAccount(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateAccount changes the caller's name, email or password. A changed
// password must have at least 8 characters including an upper-case and a
// lower-case letter, a digit and a special character.
func (s *IdentityService) UpdateAccount(ctx context.Context, userID string, upd AccountUpdate) (*models.User, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		if user.FullName, err = cleanName("full name", *upd.FullName, 2); err != nil {
			return nil, err
		}
	}

	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if other, err := users.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, fmt.Errorf("%w: email already registered", common.ErrConflict)
			} else if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if upd.Password != nil {
		if err := checkPasswordStrength(*upd.Password); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = s.hasher.Hash(*upd.Password); err != nil {
			return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
		}
	}

	if err := users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the caller's account with its memberships and
// assignments. Teams the caller is the only member of are deleted too.
// While the caller is the only manager of a team that has other members the
// account cannot be deleted.
//
// The caller's teams are locked in id order before any member count is
// read; LeaveTeam and member inserts on those teams wait on the same rows.
func (s *IdentityService) DeleteAccount(ctx context.Context, userID string) error {
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		teams := s.repomanager.Teams(tx)
		members := s.repomanager.Members(tx)

		summaries, err := teams.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		teamIDs := make([]string, 0, len(summaries))
		for _, t := range summaries {
			teamIDs = append(teamIDs, t.ID)
		}
		slices.Sort(teamIDs)

		for _, id := range teamIDs {
			if _, err := teams.LockByID(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}

		blocked, err := members.SoleManagedTeams(ctx, userID)
		if err != nil {
			return err
		}
		if len(blocked) > 0 {
			return fmt.Errorf("%w: hand over the manager role of %d team(s) first", common.ErrConflict, len(blocked))
		}

		for _, id := range teamIDs {
			total, _, err := members.CountByTeam(ctx, id)
			if err != nil {
				return err
			}
			if total == 1 {
				if err := teams.Delete(ctx, id); err != nil {
					return err
				}
			}
		}

		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
}

func (s *IdentityService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return email, nil
}

func checkPasswordStrength(p string) error {
	if len(p) < 8 || len(p) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be 8 to %d characters", common.ErrValidation, maxPasswordBytes)
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: password needs upper and lower case letters, a digit and a special character", common.ErrValidation)
	}
	return nil
}
