package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the account model. Verification and reset codes live on the
// record itself; a non nil code column means there is an outstanding code
// for that flow, and clearing the column consumes it.
type Account struct {
	bun.BaseModel   `bun:"table:accounts,alias:acc"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	Verified        bool       `bun:"is_verified" json:"is_verified,omitempty"`
	EmailCode       *string    `bun:"email_code,nullzero" json:"-"`
	EmailCodeSentAt *time.Time `bun:"email_code_sent_at,nullzero" json:"-"`
	ResetCode       *string    `bun:"reset_code,nullzero" json:"-"`
	ResetCodeSentAt *time.Time `bun:"reset_code_sent_at,nullzero" json:"-"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPendingEmailCode reports whether a verification code is outstanding.
func (a *Account) HasPendingEmailCode() bool {
	return a.EmailCode != nil && *a.EmailCode != ""
}

// HasPendingResetCode reports whether a reset code is outstanding.
func (a *Account) HasPendingResetCode() bool {
	return a.ResetCode != nil && *a.ResetCode != ""
}

// MatchesEmailCode compares code against the outstanding verification code.
// Comparison is exact and case sensitive.
func (a *Account) MatchesEmailCode(code string) bool {
	return code != "" && a.HasPendingEmailCode() && *a.EmailCode == code
}

// MatchesResetCode compares code against the outstanding reset code.
func (a *Account) MatchesResetCode(code string) bool {
	return code != "" && a.HasPendingResetCode() && *a.ResetCode == code
}

// PublicProfile is the caller facing projection of an account. It never
// carries the password hash or any code material.
type PublicProfile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Profile returns the public projection of the account.
func (a *Account) Profile() PublicProfile {
	return PublicProfile{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}
