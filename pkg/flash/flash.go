// Package flash carries one-shot user messages across a redirect in a
// signed and encrypted cookie.
package flash

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

// Level is the severity shown with a message.
type Level string

const (
	Success Level = "success"
	Warning Level = "warning"
	Danger  Level = "danger"
)

// Message is one flash entry.
type Message struct {
	Level Level  `json:"l"`
	Text  string `json:"t"`
}

// Store reads and writes flash cookies.
type Store struct {
	codec  *securecookie.SecureCookie
	name   string
	secure bool
}

// New creates a Store from cfg, generating keys that are missing.
func New(cfg *Config) (*Store, error) {
	hashKey, err := key(cfg.HashKey, 64)
	if err != nil {
		return nil, fmt.Errorf("flash hash key: %w", err)
	}
	blockKey, err := key(cfg.BlockKey, 32)
	if err != nil {
		return nil, fmt.Errorf("flash block key: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(300)

	return &Store{codec: codec, name: cfg.CookieName, secure: cfg.Secure}, nil
}

// Add queues msgs for the next request, after any still pending in r.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, msgs ...Message) error {
	pending := s.read(r)
	pending = append(pending, msgs...)

	value, err := s.codec.Encode(s.name, pending)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending messages and clears the cookie.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	msgs := s.read(r)
	if msgs == nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return msgs
}

func (s *Store) read(r *http.Request) []Message {
	c, err := r.Cookie(s.name)
	if err != nil {
		return nil
	}

	var msgs []Message
	if err := s.codec.Decode(s.name, c.Value, &msgs); err != nil {
		return nil
	}
	return msgs
}

func key(encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return securecookie.GenerateRandomKey(size), nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}
