package domain

import (
	"context"
	"errors"
)

type CreateClientRequest struct {
	Name string
	Code string
}

type UpdateClientRequest struct {
	ID     string
	Name   *string
	Active *bool
}

type GetClientRequest struct {
	ID string
}

// CreateClientResponse carries the one-time plaintext API token alongside
// the created client. The token is never retrievable again; only its hash
// is stored.
type CreateClientResponse struct {
	Client   Client `json:"client"`
	APIToken string `json:"api_token"`
}

type Service interface {
	Create(context.Context, CreateClientRequest) (CreateClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	List(context.Context) ([]Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	// RotateToken issues a replacement API token for the client.
	RotateToken(ctx context.Context, id string) (CreateClientResponse, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrCodeTaken   = errors.New("code_taken")
	ErrNotFound    = errors.New("not_found")
)
