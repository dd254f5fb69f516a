package utils // package utils issues and verifies session tokens

import (
    "crypto/rand"   // refresh token entropy
    "crypto/sha256" // refresh tokens are stored hashed
    "encoding/hex"
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseAccessToken for any token that cannot
// be trusted: bad signature, wrong algorithm, expired or malformed claims.
var ErrInvalidToken = errors.New("invalid access token")

// AccessToken is a signed HS256 JWT together with its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the raw value handed to the client. Only its SHA-256 hash
// is persisted.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// Identity is what an access token asserts about its bearer.
type Identity struct {
    UserID uint64
    Role   string
}

// NewAccessToken signs a token carrying the user id in "sub" and the
// marketplace role in "role".
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  fmt.Sprintf("%d", userID),
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and extracts the identity.
func ParseAccessToken(secret, raw string) (Identity, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // only HMAC; anything else is a forged header
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return Identity{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Identity{}, ErrInvalidToken
    }
    sub, err := claims.GetSubject()
    if err != nil || sub == "" {
        return Identity{}, ErrInvalidToken
    }
    var id uint64
    if _, err := fmt.Sscanf(sub, "%d", &id); err != nil || id == 0 {
        return Identity{}, ErrInvalidToken
    }
    role, _ := claims["role"].(string)
    return Identity{UserID: id, Role: role}, nil
}

// NewRefreshToken returns 96 hex chars of randomness valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw is the lookup key stored in refresh_tokens.token_hash.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
