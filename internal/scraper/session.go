package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type proxyKey struct{}

// Identity é o proxy e o user-agent aplicados a uma requisição.
// Campos vazios mantêm o padrão da sessão.
type Identity struct {
	Proxy     *url.URL
	UserAgent string
}

// Session é o cliente HTTP compartilhado por todas as requisições de uma iteração
type Session struct {
	client    *http.Client
	transport *http.Transport
	userAgent string
}

// NewSession cria uma sessão com o user-agent informado e timeout por requisição
func NewSession(userAgent string, timeout time.Duration) *Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFromContext

	return &Session{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		transport: transport,
		userAgent: userAgent,
	}
}

// proxyFromContext usa o proxy anexado à requisição; sem proxy, conexão direta
func proxyFromContext(req *http.Request) (*url.URL, error) {
	if proxy, ok := req.Context().Value(proxyKey{}).(*url.URL); ok && proxy != nil {
		return proxy, nil
	}
	return nil, nil
}

// UserAgent retorna o user-agent sorteado para a sessão
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Get baixa o conteúdo da URL. Status fora de 2xx é tratado como erro.
func (s *Session) Get(ctx context.Context, target string, identity Identity) ([]byte, error) {
	if identity.Proxy != nil {
		ctx = context.WithValue(ctx, proxyKey{}, identity.Proxy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	userAgent := s.userAgent
	if identity.UserAgent != "" {
		userAgent = identity.UserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Close libera as conexões ociosas da sessão
func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}
