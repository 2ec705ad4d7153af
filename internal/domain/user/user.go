package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"marketplace/internal/shared/biztime"
)

var (
	ErrInvalidEmail         = errors.New("invalid email")
	ErrEmptyPasswordHash    = errors.New("password hash cannot be empty")
	ErrTokenMismatch        = errors.New("verification token does not match")
	ErrTokenExpired         = errors.New("verification token expired")
	ErrEmailAlreadyVerified = errors.New("email already verified")
)

const (
	RoleFree    = "free"
	RolePremium = "premium"

	verificationTokenTTL = 48 * time.Hour
)

// User is a marketplace account. External credential fields mirror
// the provisioning state on the license platform: once a user is
// registered there, the stored username and password are the only
// copy the portal handoff can ever show again, so later activations
// must never overwrite them.
type User struct {
	id           uint
	email        string
	passwordHash string
	firstName    string
	lastName     string
	role         string
	language     string

	phoneNumber   string
	phoneVerified bool

	identityNumber string

	emailVerified            bool
	emailVerificationToken   string
	emailVerificationExpires *time.Time

	externalRegistered bool
	externalUsername   string
	externalPassword   string
	externalClientID   *int
	externalUserID     *int
	externalLicenses   int

	createdAt time.Time
	updatedAt time.Time
}

func NewUser(email, passwordHash, firstName, lastName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	now := biztime.NowUTC()
	return &User{
		email:        email,
		passwordHash: passwordHash,
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		role:         RoleFree,
		language:     "es",
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUserParams carries persisted state back into the aggregate.
type ReconstructUserParams struct {
	ID                       uint
	Email                    string
	PasswordHash             string
	FirstName                string
	LastName                 string
	Role                     string
	Language                 string
	PhoneNumber              string
	PhoneVerified            bool
	IdentityNumber           string
	EmailVerified            bool
	EmailVerificationToken   string
	EmailVerificationExpires *time.Time
	ExternalRegistered       bool
	ExternalUsername         string
	ExternalPassword         string
	ExternalClientID         *int
	ExternalUserID           *int
	ExternalLicenses         int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func ReconstructUser(params ReconstructUserParams) *User {
	return &User{
		id:                       params.ID,
		email:                    params.Email,
		passwordHash:             params.PasswordHash,
		firstName:                params.FirstName,
		lastName:                 params.LastName,
		role:                     params.Role,
		language:                 params.Language,
		phoneNumber:              params.PhoneNumber,
		phoneVerified:            params.PhoneVerified,
		identityNumber:           params.IdentityNumber,
		emailVerified:            params.EmailVerified,
		emailVerificationToken:   params.EmailVerificationToken,
		emailVerificationExpires: params.EmailVerificationExpires,
		externalRegistered:       params.ExternalRegistered,
		externalUsername:         params.ExternalUsername,
		externalPassword:         params.ExternalPassword,
		externalClientID:         params.ExternalClientID,
		externalUserID:           params.ExternalUserID,
		externalLicenses:         params.ExternalLicenses,
		createdAt:                params.CreatedAt,
		updatedAt:                params.UpdatedAt,
	}
}

func (u *User) ID() uint { return u.id }
func (u *User) Email() string { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) FirstName() string { return u.firstName }
func (u *User) LastName() string { return u.lastName }
func (u *User) Role() string { return u.role }
func (u *User) Language() string { return u.language }
func (u *User) PhoneNumber() string { return u.phoneNumber }
func (u *User) PhoneVerified() bool { return u.phoneVerified }
func (u *User) IdentityNumber() string { return u.identityNumber }
func (u *User) EmailVerified() bool { return u.emailVerified }
func (u *User) ExternalRegistered() bool { return u.externalRegistered }
func (u *User) ExternalUsername() string { return u.externalUsername }
func (u *User) ExternalPassword() string { return u.externalPassword }
func (u *User) ExternalClientID() *int { return u.externalClientID }
func (u *User) ExternalUserID() *int { return u.externalUserID }
func (u *User) ExternalLicenses() int { return u.externalLicenses }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) EmailVerificationToken() string { return u.emailVerificationToken }
func (u *User) EmailVerificationExpires() *time.Time {
	return u.emailVerificationExpires
}

func (u *User) SetID(id uint) { u.id = id }

func (u *User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

// IsNewClient reports whether the user has never been provisioned on
// the license platform. The stored external password is the marker:
// it is written exactly once, on first registration.
func (u *User) IsNewClient() bool {
	return !u.externalRegistered || u.externalPassword == ""
}

func (u *User) SetIdentityNumber(identityNumber string) {
	u.identityNumber = strings.ToUpper(strings.TrimSpace(identityNumber))
	u.updatedAt = biztime.NowUTC()
}

func (u *User) SetPhoneNumber(phone string) {
	u.phoneNumber = phone
	u.phoneVerified = false
	u.updatedAt = biztime.NowUTC()
}

func (u *User) MarkPhoneVerified() {
	u.phoneVerified = true
	u.updatedAt = biztime.NowUTC()
}

func (u *User) PromoteToPremium() {
	u.role = RolePremium
	u.updatedAt = biztime.NowUTC()
}

// GenerateVerificationToken mints a fresh email verification token.
func (u *User) GenerateVerificationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := biztime.NowUTC().Add(verificationTokenTTL)
	u.emailVerificationToken = token
	u.emailVerificationExpires = &expires
	u.updatedAt = biztime.NowUTC()
	return token, nil
}

func (u *User) VerifyEmail(token string) error {
	if u.emailVerified {
		return ErrEmailAlreadyVerified
	}
	if u.emailVerificationToken == "" || token != u.emailVerificationToken {
		return ErrTokenMismatch
	}
	if u.emailVerificationExpires != nil && biztime.NowUTC().After(*u.emailVerificationExpires) {
		return ErrTokenExpired
	}
	u.emailVerified = true
	u.emailVerificationToken = ""
	u.emailVerificationExpires = nil
	u.updatedAt = biztime.NowUTC()
	return nil
}

// StoreProvisioningResult records the outcome of a license-platform
// registration. Full credentials are written only the first time; on
// later activations only the license count moves, so the original
// portal credentials survive.
func (u *User) StoreProvisioningResult(username, password string, clientID, userID *int, licenses int) {
	if u.IsNewClient() {
		u.externalUsername = username
		u.externalPassword = password
		u.externalClientID = clientID
		u.externalUserID = userID
		u.externalRegistered = true
	}
	if licenses > 0 {
		u.externalLicenses = licenses
	}
	u.updatedAt = biztime.NowUTC()
}
