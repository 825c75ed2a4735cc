package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCodigoNoEncontrado is returned when no pending code exists for a user,
// either because none was issued or because it already expired or was used.
var ErrCodigoNoEncontrado = fmt.Errorf("código de verificación no encontrado")

// VerificacionRepository stores short-lived single-use verification codes
// keyed by user. Codes live in Redis with a TTL so they survive process
// restarts and multi-instance deployments.
type VerificacionRepository interface {
	Guardar(ctx context.Context, userID uint, codigo string, ttl time.Duration) error
	// Consumir returns the pending code for the user and deletes it
	// atomically, enforcing single use.
	Consumir(ctx context.Context, userID uint) (string, error)
}

type redisVerificacionRepository struct {
	redisClient *redis.Client
}

// NewVerificacionRepository creates a new VerificacionRepository.
func NewVerificacionRepository(redisClient *redis.Client) VerificacionRepository {
	return &redisVerificacionRepository{redisClient: redisClient}
}

func (r *redisVerificacionRepository) clave(userID uint) string {
	return fmt.Sprintf("verificacion:%d", userID)
}

// Guardar stores the code under the user's key with the given expiry.
func (r *redisVerificacionRepository) Guardar(ctx context.Context, userID uint, codigo string, ttl time.Duration) error {
	return r.redisClient.Set(ctx, r.clave(userID), codigo, ttl).Err()
}

// Consumir fetches and deletes the pending code in one round trip.
func (r *redisVerificacionRepository) Consumir(ctx context.Context, userID uint) (string, error) {
	codigo, err := r.redisClient.GetDel(ctx, r.clave(userID)).Result()
	if err == redis.Nil {
		return "", ErrCodigoNoEncontrado
	}
	if err != nil {
		return "", fmt.Errorf("no se pudo consumir el código: %w", err)
	}
	return codigo, nil
}
