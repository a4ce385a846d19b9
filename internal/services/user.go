package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName *string) (*types.User, error)
	// SetAdmin grants or revokes the admin role; callers must already be admins.
	SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) (*types.User, error)
	// PromoteByEmail is the bootstrap path used by the seed command.
	PromoteByEmail(ctx context.Context, email string) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
	}
}

func (us *userService) getUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("user not found")
	}
	return found[0], nil
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		us.log.Warn("Request data not set in context")
		return nil, apierr.Unauthorized("unauthorized")
	}
	return us.getUser(dbc, rd.UserID)
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName *string) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}
	updates := map[string]any{}
	for col, v := range map[string]*string{"first_name": firstName, "last_name": lastName} {
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if n := len([]rune(trimmed)); n == 0 || n > maxNameLen {
			return nil, apierr.Validation("%s must be between 1 and %d characters", col, maxNameLen)
		}
		updates[col] = trimmed
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("nothing to update")
	}
	updates["updated_at"] = time.Now().UTC()

	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := tx.WithContext(ctx).
			Model(&types.User{}).
			Where("id = ?", rd.UserID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		u, err := us.getUser(dbc, rd.UserID)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	p, ok := PrincipalFromRequestData(rd)
	if !ok {
		return nil, apierr.Unauthorized("unauthorized")
	}
	if !p.IsAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	if p.UserID == userID && !isAdmin {
		return nil, apierr.Validation("admins cannot revoke their own role")
	}
	return us.setAdmin(ctx, userID, isAdmin, p.UserID)
}

func (us *userService) PromoteByEmail(ctx context.Context, email string) (*types.User, error) {
	users, err := us.userRepo.GetByEmails(dbctx.New(ctx), []string{normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("no user with email %s", normalizeEmail(email))
	}
	return us.setAdmin(ctx, users[0].ID, true, uuid.Nil)
}

func (us *userService) setAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool, actorID uuid.UUID) (*types.User, error) {
	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ok, err := us.userRepo.UpdateIsAdmin(dbc, userID, isAdmin)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if !ok {
			return apierr.NotFound("user not found")
		}
		u, err := us.getUser(dbc, userID)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	us.log.Info("User role changed", "user_id", userID, "is_admin", isAdmin, "actor_id", actorID)
	return out, nil
}
