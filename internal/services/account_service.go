package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
)

// accountService handles the user's cash account.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// GetUserAccount returns the cash account owned by the user.
func (s *accountService) GetUserAccount(ctx context.Context, userID string) (*models.Account, error) {
	return findAccount(s.db.WithContext(ctx), userID)
}

// GetProfile returns the user joined with their account balances.
func (s *accountService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account, err := findAccount(db, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		AccountID:      account.ID,
		AccountName:    account.Name,
		Currency:       account.Currency,
		InitialBalance: account.OpeningBalance,
		CurrentAmount:  account.Balance,
	}, nil
}

// RenameAccount changes the display name of the user's cash account.
func (s *accountService) RenameAccount(ctx context.Context, userID, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ?", userID).Update("name", name)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrAccountNotFound
	}

	return s.GetProfile(ctx, userID)
}

// findAccount loads the user's account using db, which may be a transaction.
func findAccount(db *gorm.DB, userID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}
