package model

import (
    "strings"
    "time"
)

// Role names stored in users.role and in the "role" JWT claim.
const (
    RoleOwner  = "OWNER"
    RoleSeeker = "SEEKER"
)

// NormalizeRole upper-cases raw and falls back to SEEKER for anything
// that is not a known role.
func NormalizeRole(raw string) string {
    r := strings.ToUpper(strings.TrimSpace(raw))
    if r != RoleOwner && r != RoleSeeker {
        return RoleSeeker
    }
    return r
}

// IsOwner reports whether the role may list cars and decide deal requests.
func IsOwner(role string) bool { return role == RoleOwner }

// IsSeeker reports whether the role may submit deal requests.
func IsSeeker(role string) bool { return role == RoleSeeker }

// User represents an application user record as stored in the
// `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – OWNER or SEEKER.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `gorm:"primaryKey"`
    Email        string    `gorm:"size:255;not null;uniqueIndex"`
    PasswordHash string    `gorm:"size:255;not null"`
    Role         string    `gorm:"size:16;not null;default:SEEKER"`
    IsActive     bool      `gorm:"not null;default:true"`
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
    ID        uint64     `gorm:"primaryKey"`
    UserID    uint64     `gorm:"not null;index"`
    TokenHash string     `gorm:"size:64;not null;uniqueIndex"`
    ExpiresAt time.Time  `gorm:"not null"`
    RevokedAt *time.Time
    CreatedAt time.Time
}

// All returns every persisted model in dependency order, for migrations.
func All() []any {
    return []any{&User{}, &RefreshToken{}, &Car{}, &DealRequest{}}
}
