package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// CredentialsProvider supplies the session token attached to outgoing
// requests. It is injected at construction time and resolved once per
// request; nothing in the client reads ambient state.
type CredentialsProvider interface {
	Token(ctx context.Context) (string, error)
}

var ErrNoCredentials = errors.New("backend: no credentials configured")

// StaticCredentials wraps a fixed token.
type StaticCredentials string

func (s StaticCredentials) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredentials
	}
	return string(s), nil
}

// FileCredentials reads the token from a file once and caches it, so a token
// rotated on disk is picked up by restarting the process.
type FileCredentials struct {
	Path string

	once  sync.Once
	token string
	err   error
}

func (f *FileCredentials) Token(context.Context) (string, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			f.err = fmt.Errorf("backend: read token file: %w", err)
			return
		}
		f.token = strings.TrimSpace(string(data))
	})
	if f.err != nil {
		return "", f.err
	}
	if f.token == "" {
		return "", ErrNoCredentials
	}
	return f.token, nil
}

// AnonymousCredentials sends no Authorization header at all.
type AnonymousCredentials struct{}

func (AnonymousCredentials) Token(context.Context) (string, error) {
	return "", nil
}
