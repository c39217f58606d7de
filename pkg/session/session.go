package session

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"strconv"
	"time"
)

// Session is a cached session record.
//
// ID and ExpiresAt are the only fields the cache interprets. Everything else
// is application data carried through the storage blob untouched.
type Session struct {
	ExpiresAt    time.Time      `json:"expires_at"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	UserID       *string        `json:"user_id,omitempty"` // nil = anonymous session
	Values       map[string]any `json:"values,omitempty"`
	ID           string         `json:"id"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
}

// New creates a session with the given ID that expires at expiresAt.
func New(id string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
	}
}

// IsAuthenticated returns true if the session has an associated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// TTL returns the time left until expiry relative to now.
// A zero or negative result means the session is already expired.
func (s *Session) TTL(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// Clone returns a copy of the session that shares no mutable state with s.
// Values are copied one level deep.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	if s.Values != nil {
		c.Values = maps.Clone(s.Values)
	}
	return &c
}

// SetValue stores a value in the session.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
}

// GetValue retrieves a value from the session.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value from the session.
func (s *Session) DeleteValue(key string) {
	delete(s.Values, key)
}

// Value is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	if typed, ok := val.(T); ok {
		return typed, nil
	}
	if n, ok := val.(json.Number); ok {
		if typed, ok := numberAs[T](n); ok {
			return typed, nil
		}
	}

	return zero, errors.New("session: type mismatch for key: " + key)
}

// numberAs converts a decoded JSON number to T. Integer targets reject
// fractional and out-of-range values.
func numberAs[T any](n json.Number) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *int:
		return out, setInt(n, p, math.MinInt, math.MaxInt)
	case *int8:
		return out, setInt(n, p, math.MinInt8, math.MaxInt8)
	case *int16:
		return out, setInt(n, p, math.MinInt16, math.MaxInt16)
	case *int32:
		return out, setInt(n, p, math.MinInt32, math.MaxInt32)
	case *int64:
		return out, setInt(n, p, math.MinInt64, math.MaxInt64)
	case *uint:
		return out, setUint(n, p, math.MaxUint)
	case *uint8:
		return out, setUint(n, p, math.MaxUint8)
	case *uint16:
		return out, setUint(n, p, math.MaxUint16)
	case *uint32:
		return out, setUint(n, p, math.MaxUint32)
	case *uint64:
		return out, setUint(n, p, math.MaxUint64)
	case *float64:
		f, err := n.Float64()
		*p = f
		return out, err == nil
	case *float32:
		f, err := strconv.ParseFloat(n.String(), 32)
		*p = float32(f)
		return out, err == nil
	default:
		return out, false
	}
}

func setInt[I ~int | ~int8 | ~int16 | ~int32 | ~int64](n json.Number, p *I, lo, hi int64) bool {
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || v < lo || v > hi {
		return false
	}
	*p = I(v)
	return true
}

func setUint[U ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](n json.Number, p *U, hi uint64) bool {
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil || v > hi {
		return false
	}
	*p = U(v)
	return true
}

// ValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
