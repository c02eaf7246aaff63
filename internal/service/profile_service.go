package service

import (
	"strings"
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/pkg/jwt"
	"go-credit-inventory/pkg/validator"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CreateProfileRequest struct {
	Username     string      `json:"username" validate:"required,username"`
	FullName     string      `json:"full_name"`
	Location     string      `json:"location"`
	BusinessName string      `json:"business_name"`
	CurrencyRate NumberField `json:"currency_rate"`
}

type UpdateProfileRequest struct {
	FullName     string      `json:"full_name"`
	Location     string      `json:"location"`
	BusinessName string      `json:"business_name"`
	CurrencyRate NumberField `json:"currency_rate"`
}

// Session selects the profile later requests operate on
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Profile   *model.Profile `json:"profile"`
}

// StoreDropper removes the data of a deleted profile
type StoreDropper interface {
	Drop(username string) error
}

type ProfileService interface {
	Create(req *CreateProfileRequest) (*model.Profile, error)
	Update(username string, req *UpdateProfileRequest) (*model.Profile, error)
	Delete(username string) error
	List() ([]model.Profile, error)
	Get(username string) (*model.Profile, error)
	OpenSession(username string) (*Session, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	stores      StoreDropper
	tokens      *jwt.Issuer
	defaultRate decimal.Decimal
	now         func() time.Time
}

func NewProfileService(pRepo repository.ProfileRepository, stores StoreDropper, tokens *jwt.Issuer, defaultRate decimal.Decimal) ProfileService {
	return &profileService{
		profileRepo: pRepo,
		stores:      stores,
		tokens:      tokens,
		defaultRate: defaultRate,
		now:         time.Now,
	}
}

// NormalizeUsername lowercases and trims a username the way it is stored
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *profileService) parseRate(n NumberField) (decimal.Decimal, error) {
	if strings.TrimSpace(string(n)) == "" {
		return s.defaultRate, nil
	}
	rate, err := parseDecimal("currency_rate", n, 4)
	if err != nil {
		return decimal.Zero, err
	}
	if !rate.IsPositive() {
		return decimal.Zero, invalid("currency_rate", "must be greater than zero")
	}
	return rate, nil
}

func (s *profileService) Create(req *CreateProfileRequest) (*model.Profile, error) {
	req.Username = NormalizeUsername(req.Username)
	if err := fromValidator(validator.ValidateStruct(req)); err != nil {
		return nil, err
	}
	rate, err := s.parseRate(req.CurrencyRate)
	if err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.FindByUsername(req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storage("create profile", err)
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	profile := &model.Profile{
		Username:     req.Username,
		FullName:     strings.TrimSpace(req.FullName),
		Location:     strings.TrimSpace(req.Location),
		BusinessName: strings.TrimSpace(req.BusinessName),
		CurrencyRate: rate,
		CreatedDate:  s.now(),
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, storage("create profile", err)
	}

	log.WithField("profile", profile.Username).Info("profile created")
	return profile, nil
}

func (s *profileService) Update(username string, req *UpdateProfileRequest) (*model.Profile, error) {
	username = NormalizeUsername(username)
	profile, err := s.profileRepo.FindByUsername(username)
	if err != nil {
		return nil, storageOrNotFound("update profile", "profile", username, err)
	}

	rate := profile.CurrencyRate
	if strings.TrimSpace(string(req.CurrencyRate)) != "" {
		if rate, err = s.parseRate(req.CurrencyRate); err != nil {
			return nil, err
		}
	}

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.Location = strings.TrimSpace(req.Location)
	profile.BusinessName = strings.TrimSpace(req.BusinessName)
	profile.CurrencyRate = rate
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, storage("update profile", err)
	}
	return profile, nil
}

// Delete removes the registry entry first, then the profile's catalog and ledger
func (s *profileService) Delete(username string) error {
	username = NormalizeUsername(username)
	if _, err := s.profileRepo.FindByUsername(username); err != nil {
		return storageOrNotFound("delete profile", "profile", username, err)
	}
	// Store before registry row: a failed drop must leave the profile intact
	if s.stores != nil {
		if err := s.stores.Drop(username); err != nil {
			return storage("drop profile store", err)
		}
	}
	if err := s.profileRepo.Delete(username); err != nil {
		return storageOrNotFound("delete profile", "profile", username, err)
	}

	log.WithField("profile", username).Info("profile deleted")
	return nil
}

func (s *profileService) List() ([]model.Profile, error) {
	profiles, err := s.profileRepo.FindAll()
	if err != nil {
		return nil, storage("list profiles", err)
	}
	return profiles, nil
}

func (s *profileService) Get(username string) (*model.Profile, error) {
	username = NormalizeUsername(username)
	profile, err := s.profileRepo.FindByUsername(username)
	if err != nil {
		return nil, storageOrNotFound("get profile", "profile", username, err)
	}
	return profile, nil
}

// OpenSession records the login and issues a session token for the profile
func (s *profileService) OpenSession(username string) (*Session, error) {
	profile, err := s.Get(username)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.profileRepo.UpdateLastLogin(profile.Username, now); err != nil {
		return nil, storageOrNotFound("open session", "profile", profile.Username, err)
	}
	profile.LastLogin = &now

	token, expiresAt, err := s.tokens.GenerateToken(profile.Username)
	if err != nil {
		return nil, errors.Wrap(err, "generate session token")
	}

	log.WithField("profile", profile.Username).Info("session opened")
	return &Session{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}
