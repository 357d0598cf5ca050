package diagnostics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrorLog acumula os erros recuperáveis de uma execução, um por chave.
// Uma chave repetida sobrescreve a mensagem anterior.
type ErrorLog struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewErrorLog cria um log de erros vazio
func NewErrorLog() *ErrorLog {
	return &ErrorLog{entries: make(map[string]string)}
}

// Record registra o erro sob a chave informada
func (l *ErrorLog) Record(key string, err error) {
	if err == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = err.Error()
}

// Get retorna a mensagem registrada para a chave
func (l *ErrorLog) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, ok := l.entries[key]
	return msg, ok
}

// Len retorna a quantidade de chaves registradas
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Keys retorna as chaves em ordem alfabética
func (l *ErrorLog) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]string, 0, len(l.entries))
	for key := range l.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Format monta o relatório enviado ao canal de diagnóstico.
// Retorna "" quando não há erros.
func (l *ErrorLog) Format(elapsed time.Duration) string {
	keys := l.Keys()
	if len(keys) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Maze API: %.2f\n\n", elapsed.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		line := key + ": " + l.entries[key]
		b.WriteString(strings.ReplaceAll(line, "_", " "))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
