package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Papéis reconhecidos pelo controle de acesso. O papel "admin" é o único que
// habilita a visualização de cost_micros.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User é a identidade resolvida a partir do users.csv. A chave pode ser um
// username ou um email, conforme o que existir no arquivo.
type User struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// IsAdmin indica se o usuário pode ver colunas restritas.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Claims é o payload do token JWT emitido no login.
type Claims struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin indica se o portador do token pode ver colunas restritas.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
