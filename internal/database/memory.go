package database

import (
	"context"
	"sync"

	"monitor-estoque/internal/models"
)

// Memory é um Store em memória, usado em testes e em execuções de teste local
type Memory struct {
	mu          sync.Mutex
	collections map[models.Collection]map[string]string
}

// NewMemory cria um Store vazio em memória
func NewMemory() *Memory {
	return &Memory{collections: make(map[models.Collection]map[string]string)}
}

// GetAll retorna uma cópia da coleção
func (m *Memory) GetAll(_ context.Context, collection models.Collection) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := make(map[string]string, len(m.collections[collection]))
	for id, url := range m.collections[collection] {
		products[id] = url
	}
	return products, nil
}

func (m *Memory) Insert(_ context.Context, id, url string, collection models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]string)
	}
	m.collections[collection][id] = url
	return nil
}

func (m *Memory) Delete(_ context.Context, id string, collection models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

// Has informa se o id está na coleção
func (m *Memory) Has(collection models.Collection, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.collections[collection][id]
	return ok
}

// Close não faz nada; existe para satisfazer o mesmo contrato dos outros backends
func (m *Memory) Close() error {
	return nil
}
