package domain

import "time"

// Role clasifica a los usuarios del marketplace.
type Role string

const (
	RoleClient        Role = "client"
	RoleBusinessOwner Role = "business_owner"
	RoleAdmin         Role = "admin"
)

// IsValid retorna true si el rol es conocido.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleBusinessOwner, RoleAdmin:
		return true
	}
	return false
}

// User representa una cuenta del marketplace.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	FullName      string
	Role          Role
	Phone         string
	Address       string
	Approved      bool // dueños de negocio requieren aprobación de un admin
	EmailVerified bool
	Disabled      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanSell indica si el usuario puede publicar catálogo y operar un negocio.
func (u *User) CanSell() bool {
	return u.Role == RoleBusinessOwner && u.Approved && !u.Disabled
}

// RefreshToken es un token de sesión opaco; sólo se persiste su hash.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash []byte
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UserAgent string
	IP        string
}

// TokenPurpose distingue los tokens de un solo uso.
type TokenPurpose string

const (
	TokenPurposeReset  TokenPurpose = "reset"
	TokenPurposeVerify TokenPurpose = "verify"
)
