// Package blobstore stores uploaded product images and resolves them to public URLs.
package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	// Upload stores data at path and returns the URL it is served from.
	Upload(ctx context.Context, path string, data []byte) (string, error)
	Open(ctx context.Context, path string) ([]byte, error)
}

// URLFor joins the public media base and a blob path.
func URLFor(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

type Memory struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: baseURL, blobs: make(map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, path string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = append([]byte(nil), data...)
	return URLFor(m.baseURL, path), nil
}

func (m *Memory) Open(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
