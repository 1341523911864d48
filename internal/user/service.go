package user

import (
	"context"
	"errors"

	"rowmatch/internal/apperr"
	"rowmatch/internal/auth"
	"rowmatch/internal/availability"
	"rowmatch/internal/metrics"
	"rowmatch/internal/rowing"
)

var (
	ErrUserExists           = apperr.New(apperr.KindConflict, "User already exists")
	ErrEmailExists          = apperr.New(apperr.KindConflict, "email already exists")
	ErrAvailabilityNotFound = apperr.New(apperr.KindNotFound, "Availability interval not found")
	ErrAvailabilityExists   = apperr.New(apperr.KindConflict, "Availability interval already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error)
	AddAvailability(ctx context.Context, userID string, iv availability.Interval) (*User, error)
	RemoveAvailability(ctx context.Context, userID string, iv availability.Interval) (*User, error)
	EditAvailability(ctx context.Context, userID string, req EditAvailabilityRequest) (*User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.IDExists(ctx, req.ID)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrUserExists
	}

	exists, err = s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user := &User{
		ID:              req.ID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Positions:       rowing.Positions(req.Positions),
		Availability:    availability.Intervals(req.Availability),
		CoxCertificates: req.CoxCertificates,
		Gender:          req.Gender,
		Organisation:    req.Organisation,
		Competitive:     req.Competitive,
		Role:            auth.RoleMember,
		PasswordHash:    passwordHash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", "", err
	}
	metrics.RecordRegistration()

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.repo.EmailExists(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Positions != nil {
		user.Positions = rowing.Positions(*req.Positions)
	}
	if req.CoxCertificates != nil {
		user.CoxCertificates = *req.CoxCertificates
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Organisation != nil {
		user.Organisation = *req.Organisation
	}
	if req.Competitive != nil {
		user.Competitive = *req.Competitive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) editAvailability(ctx context.Context, userID string, edit func(availability.Intervals) (availability.Intervals, error)) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := edit(user.Availability)
	if err != nil {
		return nil, err
	}
	user.Availability = updated

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) AddAvailability(ctx context.Context, userID string, iv availability.Interval) (*User, error) {
	return s.editAvailability(ctx, userID, func(cur availability.Intervals) (availability.Intervals, error) {
		if cur.Index(iv) >= 0 {
			return nil, ErrAvailabilityExists
		}
		return cur.Add(iv), nil
	})
}

func (s *service) RemoveAvailability(ctx context.Context, userID string, iv availability.Interval) (*User, error) {
	return s.editAvailability(ctx, userID, func(cur availability.Intervals) (availability.Intervals, error) {
		out, ok := cur.Remove(iv)
		if !ok {
			return nil, ErrAvailabilityNotFound
		}
		return out, nil
	})
}

func (s *service) EditAvailability(ctx context.Context, userID string, req EditAvailabilityRequest) (*User, error) {
	return s.editAvailability(ctx, userID, func(cur availability.Intervals) (availability.Intervals, error) {
		if cur.Index(req.Old) < 0 {
			return nil, ErrAvailabilityNotFound
		}
		out, ok := cur.Replace(req.Old, req.New)
		if !ok {
			return nil, ErrAvailabilityExists
		}
		return out, nil
	})
}
