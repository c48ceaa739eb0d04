package streamauth

import "context"

// Role is the coarse account role carried on a user record.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "USER"
	// RoleStreamer marks accounts allowed to publish streams.
	RoleStreamer Role = "STREAMER"
	// RoleAdmin marks platform operators.
	RoleAdmin Role = "ADMIN"
)

// UserRecord is the account representation the engine reads and writes
// through [UserProvider]. The engine treats the backing storage as opaque.
type UserRecord struct {
	UserID       string
	UserName     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Enabled      bool
}

// UserProvider is the repository collaborator callers must implement to
// integrate streamauth with their user database.
type UserProvider interface {
	// GetByEmail returns the record for email. Absence is reported through
	// the second return, not an error; the engine translates it into the
	// appropriate error kind per flow.
	GetByEmail(ctx context.Context, email string) (UserRecord, bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save creates the record or overwrites an existing record with the
	// same email; Register relies on overwrite for disabled accounts.
	Save(ctx context.Context, user UserRecord) (UserRecord, error)
	// UpdatePasswordHash persists a new hash for the user. It must return
	// an error when the record no longer exists.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// Mailer is the outbound notification collaborator. Dispatch is
// fire-and-forget from the engine's perspective: a returned error is
// reported as [ErrNotificationFailed] but never reverses committed store
// state.
type Mailer interface {
	SendOTPEmail(ctx context.Context, email, code string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
	SendPasswordChangeConfirmationEmail(ctx context.Context, email string) error
}

// PasswordHasher abstracts the hashing collaborator. [password.Argon2]
// satisfies it and is the default installed by [Builder.Build].
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encodedHash string) (bool, error)
}

// RegisterInput is the payload accepted by [Engine.Register].
type RegisterInput struct {
	Name     string
	UserName string
	Email    string
	Password string
}
