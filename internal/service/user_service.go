package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
	"sgo-sapem/pkg/hash"
	"sgo-sapem/pkg/log"
	"sgo-sapem/pkg/token"
)

// Verification codes live this long and are consumed on first use.
const vigenciaCodigo = 10 * time.Minute

// UserService defines the user-facing account operations.
type UserService interface {
	Registrar(ctx context.Context, username, password, nombre, email, rol string) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	Perfil(ctx context.Context, username string) (*model.User, error)
	Listar(ctx context.Context) ([]model.User, error)
	ListarInspectores(ctx context.Context) ([]model.User, error)
	CambiarRol(ctx context.Context, id uint, rol string) (*model.User, error)
	EnviarCodigoVerificacion(ctx context.Context, userID uint) error
	VerificarCodigo(ctx context.Context, userID uint, codigo string) error
}

type userService struct {
	usuarios       repository.UserRepository
	verificaciones repository.VerificacionRepository
	jwtManager     *token.JWTManager
}

// NewUserService creates a new UserService.
func NewUserService(usuarios repository.UserRepository, verificaciones repository.VerificacionRepository, jwtManager *token.JWTManager) UserService {
	return &userService{usuarios: usuarios, verificaciones: verificaciones, jwtManager: jwtManager}
}

// Registrar creates a user account with the given role.
func (s *userService) Registrar(ctx context.Context, username, password, nombre, email, rol string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errValidacion("usuario y contraseña son obligatorios")
	}
	switch rol {
	case model.RolAdmin, model.RolInspector, model.RolOperador:
	default:
		return nil, errValidacion("rol desconocido: " + rol)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, errInterno("no se pudo procesar la contraseña", err)
	}
	user := &model.User{
		Username: username,
		Password: hashed,
		Nombre:   nombre,
		Email:    email,
		Rol:      rol,
	}
	if err := s.usuarios.Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errConflicto("el nombre de usuario ya existe", err)
		}
		return nil, errInterno("no se pudo crear el usuario", err)
	}
	return user, nil
}

// Login validates credentials and issues the token pair.
func (s *userService) Login(ctx context.Context, username, password string) (string, string, error) {
	user, err := s.usuarios.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", errValidacion("credenciales inválidas")
		}
		return "", "", errInterno("no se pudo buscar el usuario", err)
	}
	if !hash.CheckPassword(password, user.Password) {
		return "", "", errValidacion("credenciales inválidas")
	}

	access, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Rol)
	if err != nil {
		return "", "", errInterno("no se pudo generar el token", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Rol)
	if err != nil {
		return "", "", errInterno("no se pudo generar el token de refresco", err)
	}
	return access, refresh, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair.
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", newAppError(401, "token de refresco inválido o expirado", err)
	}
	// Re-read the user so a changed role takes effect on refresh.
	user, err := s.usuarios.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", "", newAppError(401, "el usuario ya no existe", err)
	}
	access, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Rol)
	if err != nil {
		return "", "", errInterno("no se pudo generar el token", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Rol)
	if err != nil {
		return "", "", errInterno("no se pudo generar el token de refresco", err)
	}
	return access, refresh, nil
}

// Perfil returns the account behind a username.
func (s *userService) Perfil(ctx context.Context, username string) (*model.User, error) {
	user, err := s.usuarios.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("el usuario no existe")
		}
		return nil, errInterno("no se pudo obtener el usuario", err)
	}
	return user, nil
}

// Listar returns every account.
func (s *userService) Listar(ctx context.Context) ([]model.User, error) {
	users, err := s.usuarios.FindAll(ctx)
	if err != nil {
		return nil, errInterno("no se pudieron listar los usuarios", err)
	}
	return users, nil
}

// ListarInspectores returns the accounts holding the Inspector role, used
// to populate assignment selects.
func (s *userService) ListarInspectores(ctx context.Context) ([]model.User, error) {
	users, err := s.usuarios.FindByRol(ctx, model.RolInspector)
	if err != nil {
		return nil, errInterno("no se pudieron listar los inspectores", err)
	}
	return users, nil
}

// CambiarRol assigns a new role to an account.
func (s *userService) CambiarRol(ctx context.Context, id uint, rol string) (*model.User, error) {
	switch rol {
	case model.RolAdmin, model.RolInspector, model.RolOperador:
	default:
		return nil, errValidacion("rol desconocido: " + rol)
	}
	user, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("el usuario no existe")
		}
		return nil, errInterno("no se pudo obtener el usuario", err)
	}
	user.Rol = rol
	if err := s.usuarios.Update(ctx, user); err != nil {
		return nil, errInterno("no se pudo actualizar el usuario", err)
	}
	return user, nil
}

// EnviarCodigoVerificacion issues a single-use 6-digit code with a short
// TTL. The code survives restarts because it lives in Redis, not in
// process memory.
func (s *userService) EnviarCodigoVerificacion(ctx context.Context, userID uint) error {
	user, err := s.usuarios.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoEncontrado("el usuario no existe")
		}
		return errInterno("no se pudo obtener el usuario", err)
	}

	codigo := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := s.verificaciones.Guardar(ctx, user.ID, codigo, vigenciaCodigo); err != nil {
		return errInterno("no se pudo guardar el código de verificación", err)
	}
	// Mail delivery is handled outside this service; the code is logged for
	// the operations team in the meantime.
	log.Infow("código de verificación emitido", "userId", user.ID, "email", user.Email)
	return nil
}

// VerificarCodigo consumes the pending code for the user, failing when the
// code expired, was already used, or does not match.
func (s *userService) VerificarCodigo(ctx context.Context, userID uint, codigo string) error {
	pendiente, err := s.verificaciones.Consumir(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCodigoNoEncontrado) {
			return errValidacion("no hay un código pendiente o ya expiró")
		}
		return errInterno("no se pudo verificar el código", err)
	}
	if pendiente != codigo {
		return errValidacion("el código no coincide")
	}
	return nil
}
