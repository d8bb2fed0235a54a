package service

import (
	"context"
	"errors"

	"coin_exchange/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// How many recent transactions and trades the user-details view returns.
const recentLimit = 10

// UserService handles registration, authentication and user views.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService on top of the given store.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserDetails is the full per-user view: identity, wallet with holdings, and
// the last ten transactions and trades, newest first.
type UserDetails struct {
	User         domain.User          `json:"user"`
	Wallet       *domain.Wallet       `json:"wallet"`
	Transactions []domain.Transaction `json:"transactions"`
	Trades       []domain.Trade       `json:"trades"`
}

// Create registers a user and their wallet atomically. The wallet is named
// after the user. A duplicate email aborts the whole operation with a
// conflict error, leaving no orphaned user row behind.
func (s *UserService) Create(ctx context.Context, firstName, lastName, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The wallet row is created explicitly below, not via association.
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewError(domain.KindConflict, "Email already registered")
			}
			return err
		}
		wallet := domain.Wallet{UserID: user.ID, Name: firstName + " " + lastName}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
		user.Wallet = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"wallet_id": user.Wallet.ID,
		"email":     email,
	}).Info("User registered")
	return &user, nil
}

// Authenticate checks email and password and returns the user's ID. Both an
// unknown email and a wrong password come back as the same error so callers
// cannot probe which emails exist.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (uint, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewError(domain.KindUnauthenticated, "Invalid credentials")
		}
		return 0, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return 0, domain.NewError(domain.KindUnauthenticated, "Invalid credentials")
	}
	return user.ID, nil
}

// List returns all users without wallets or histories.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Details returns the detailed view for one user.
func (s *UserService) Details(ctx context.Context, userID uint) (*UserDetails, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "User not found.")
		}
		return nil, err
	}

	details := UserDetails{User: user}

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Preload("Holdings.Coin").
		Where("user_id = ?", userID).First(&wallet).Error
	switch {
	case err == nil:
		details.Wallet = &wallet
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc, id desc").
		Limit(recentLimit).
		Find(&details.Transactions).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc, id desc").
		Limit(recentLimit).
		Find(&details.Trades).Error; err != nil {
		return nil, err
	}
	return &details, nil
}
