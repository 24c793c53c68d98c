package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vfg2006/metrics-dashboard-api/internal/domain"
)

// UserRecord é uma linha do users.csv. O campo Password pode conter um hash
// bcrypt ou texto puro (arquivos legados); a decisão de como comparar é do
// serviço de autenticação.
type UserRecord struct {
	Identity string
	Password string
	Role     string
}

type UserRepository interface {
	GetByIdentity(identity string) (*UserRecord, error)
	ListUsers() ([]*UserRecord, error)
}

// userRepository lê o users.csv a cada chamada: o arquivo é pequeno e a
// releitura dispensa qualquer invalidação quando ele é substituído em disco.
type userRepository struct {
	path string
}

func NewUserRepository(path string) UserRepository {
	return &userRepository{
		path: path,
	}
}

// GetByIdentity procura um usuário por username ou email. Devolve nil (sem
// erro) quando o usuário não existe ou quando o próprio arquivo não existe.
func (r *userRepository) GetByIdentity(identity string) (*UserRecord, error) {
	users, err := r.ListUsers()
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.Identity == identity {
			return user, nil
		}
	}

	return nil, nil
}

// ListUsers carrega todas as linhas válidas do users.csv. Colunas aceitas:
// username OU email (chave), password e role; linhas sem chave são ignoradas
// e role vazio assume "user".
func (r *userRepository) ListUsers() ([]*UserRecord, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*UserRecord{}, nil
		}
		return nil, fmt.Errorf("erro ao abrir users.csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []*UserRecord{}, nil
		}
		return nil, fmt.Errorf("erro ao ler cabeçalho do users.csv: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	users := make([]*UserRecord, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler users.csv: %w", err)
		}

		identity := fieldAt(record, columns, "username")
		if identity == "" {
			identity = fieldAt(record, columns, "email")
		}
		if identity == "" {
			continue
		}

		role := fieldAt(record, columns, "role")
		if role == "" {
			role = domain.RoleUser
		}

		users = append(users, &UserRecord{
			Identity: identity,
			Password: fieldAt(record, columns, "password"),
			Role:     role,
		})
	}

	return users, nil
}

func fieldAt(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
