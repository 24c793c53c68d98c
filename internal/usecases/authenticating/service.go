package authenticating

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/metrics-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/metrics-dashboard-api/internal/config"
	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
	"github.com/vfg2006/metrics-dashboard-api/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

type Authenticator interface {
	LoginUser(identity, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
	CurrentUser(claims *domain.Claims) domain.User
}

type Service struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewService(userRepo repository.UserRepository, cfg *config.Config) Authenticator {
	return &Service{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginUser valida as credenciais contra o users.csv e devolve um token JWT.
// O campo password do arquivo pode ser um hash bcrypt ou texto puro (legado);
// ambos são comparados em tempo constante.
func (s *Service) LoginUser(identity, password string) (string, error) {
	if identity == "" || password == "" {
		return "", NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Usuário e senha são obrigatórios")
	}

	identity = strings.TrimSpace(identity)

	user, err := s.userRepo.GetByIdentity(identity)
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao consultar a fonte de usuários")
	}

	if user == nil {
		return "", NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, "Usuário não encontrado")
	}

	if !passwordMatches(user.Password, password) {
		return "", NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Senha incorreta")
	}

	token, err := generateJWT(user, s.cfg.SecretKey)
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return token, nil
}

// ValidateToken verifica a assinatura e expiração do token e devolve os claims.
func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// CurrentUser materializa a identidade do token no formato exposto pela API.
func (s *Service) CurrentUser(claims *domain.Claims) domain.User {
	return domain.User{
		Identity: claims.Identity,
		Role:     claims.Role,
	}
}

// passwordMatches aceita hashes bcrypt ("$2a$...", "$2b$...") e, para
// arquivos legados, texto puro comparado em tempo constante.
func passwordMatches(stored, provided string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) == 1
}

func generateJWT(user *repository.UserRecord, secretKey string) (string, error) {
	claims := domain.Claims{
		Identity: user.Identity,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
