package services

import (
	"chat-garden/auth"
	"chat-garden/errors"
	"chat-garden/repositories"
	"fmt"
)

type IAuthService interface {
	Login(actor, password string) (Token, error)
	Register(actor, password string) (Token, error)
}

type AuthService struct {
	actorRepository repositories.IActorRepository
	issuer          *auth.Issuer
	hasher          *auth.PasswordHasher
}

type Token string

func NewAuthService(repo repositories.IActorRepository, issuer *auth.Issuer, hasher *auth.PasswordHasher) IAuthService {
	return &AuthService{actorRepository: repo, issuer: issuer, hasher: hasher}
}

// Register creates the actor and opens its first session.
func (s *AuthService) Register(actor, password string) (Token, error) {
	// Checked before any expensive cryptographic operation
	if err := auth.ValidateRegister(auth.RegisterRequest{Actor: actor, Password: password}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	if err = s.actorRepository.CreateActor(actor, hashedPassword); err != nil {
		return "", err
	}

	token, err := s.issuer.GenerateToken(actor)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(actor, password string) (Token, error) {
	stored, err := s.actorRepository.GetActor(actor)
	if err != nil {
		// Generic error to prevent actor enumeration
		return "", errors.ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(password, stored.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.GenerateToken(stored.ID)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}
