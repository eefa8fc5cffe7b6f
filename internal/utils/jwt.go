package utils // package utils provides helpers for password hashing and session tokens

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens with a bad signature, a wrong
// algorithm, an expired exp claim or a missing sid claim.
var ErrInvalidToken = errors.New("invalid token")

// SessionJWT is a signed bearer token wrapping an opaque session token.
// API clients that cannot keep cookies send it as "Authorization: Bearer".
type SessionJWT struct {
    Token string    // the serialized JWT string
    Exp   time.Time // UTC expiration, equal to the session's expiry
}

// NewSessionJWT signs an HS256 JWT carrying the session token in "sid",
// the user id in "sub" and the role name in "role".
func NewSessionJWT(secret, sessionToken string, userID uint64, role string, exp time.Time) (SessionJWT, error) {
    claims := jwt.MapClaims{
        "sid":  sessionToken,
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionJWT{}, err
    }
    return SessionJWT{Token: signed, Exp: exp.UTC()}, nil
}

// ParseSessionJWT verifies raw and returns the session token it carries.
func ParseSessionJWT(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // reject anything that is not HMAC to block alg=none and RS/HS confusion
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrInvalidToken
    }
    sid, ok := claims["sid"].(string)
    if !ok || sid == "" {
        return "", ErrInvalidToken
    }
    return sid, nil
}
