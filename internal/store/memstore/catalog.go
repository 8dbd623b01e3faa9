package memstore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"salonbook/internal/domain"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// CatalogStore serves a catalog held in memory. The booking service only reads
// it; SaveCatalog replaces the whole snapshot.
type CatalogStore struct {
	mu sync.RWMutex
	c  domain.Catalog
}

func NewCatalogStore(c domain.Catalog) *CatalogStore {
	return &CatalogStore{c: c}
}

func (s *CatalogStore) Catalog(ctx context.Context) (domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Catalog{
		Employees: append([]domain.Employee(nil), s.c.Employees...),
		Services:  append([]domain.Service(nil), s.c.Services...),
	}, nil
}

func (s *CatalogStore) SaveCatalog(ctx context.Context, c domain.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()
	return nil
}

// DecodeCatalog reads a JSON catalog document and validates it.
func DecodeCatalog(r io.Reader) (domain.Catalog, error) {
	var c domain.Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return domain.Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// LoadCatalog reads the catalog file at path, or the built-in salon catalog
// when path is empty.
func LoadCatalog(path string) (domain.Catalog, error) {
	if path == "" {
		return DecodeCatalog(bytes.NewReader(defaultCatalog))
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Catalog{}, err
	}
	defer f.Close()
	return DecodeCatalog(f)
}
