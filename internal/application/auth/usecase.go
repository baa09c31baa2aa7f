package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer emite el token de sesión de un usuario.
type TokenIssuer interface {
	Issue(userID, username string) (string, time.Time, error)
}

// Hooks eventos de autenticación observados por la auditoría.
type Hooks interface {
	Login(ctx context.Context, user *entity.User, req *entity.RequestContext)
	Logout(ctx context.Context, user *entity.User, req *entity.RequestContext)
	LoginFailed(ctx context.Context, username string, req *entity.RequestContext)
	EntityCreated(ctx context.Context, actor *entity.User, e entity.Auditable, req *entity.RequestContext)
}

// AuthUseCase casos de uso de autenticación: registro, login y logout.
type AuthUseCase struct {
	userRepo repository.UserRepository
	hooks    Hooks
	tokens   TokenIssuer
}

// NewAuthUseCase construye el caso de uso de auth. hooks puede ser nil.
func NewAuthUseCase(userRepo repository.UserRepository, hooks Hooks, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, hooks: hooks, tokens: tokens}
}

// RegisterInput datos para crear un usuario (password en texto, se hashea aquí).
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste. actor nil = alta de sistema (sin auditoría).
func (uc *AuthUseCase) RegisterUser(ctx context.Context, actor *entity.User, in RegisterInput, req *entity.RequestContext) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if uc.hooks != nil {
		uc.hooks.EntityCreated(ctx, actor, user, req)
	}
	return user, nil
}

// Login verifica username/password y emite el token de sesión.
// Cualquier fallo deja un registro de login fallido; usuario inexistente y password incorrecta
// se reportan igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, req *entity.RequestContext) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.loginFailed(ctx, in.Username, req)
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.loginFailed(ctx, in.Username, req)
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		uc.loginFailed(ctx, in.Username, req)
		return nil, domain.ErrForbidden
	}
	token, exp, err := uc.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if uc.hooks != nil {
		uc.hooks.Login(ctx, user, req)
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      *ToUserResponse(user),
	}, nil
}

// Logout registra el cierre de sesión. El token JWT expira por sí solo.
func (uc *AuthUseCase) Logout(ctx context.Context, actor *entity.User, req *entity.RequestContext) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if uc.hooks != nil {
		uc.hooks.Logout(ctx, actor, req)
	}
	return nil
}

func (uc *AuthUseCase) loginFailed(ctx context.Context, username string, req *entity.RequestContext) {
	if uc.hooks != nil {
		uc.hooks.LoginFailed(ctx, username, req)
	}
}

// ToUserResponse mapea el usuario a su DTO (sin password).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
