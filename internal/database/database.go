package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"monitor-estoque/internal/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrUnknownDriver é retornado quando STORE_DRIVER não corresponde a nenhum backend
var ErrUnknownDriver = errors.New("driver de banco de dados desconhecido")

// Store é o acesso às coleções de estado (id do produto -> URL).
// Cada chamada é independente, sem transações.
type Store interface {
	GetAll(ctx context.Context, collection models.Collection) (map[string]string, error)
	Insert(ctx context.Context, id, url string, collection models.Collection) error
	Delete(ctx context.Context, id string, collection models.Collection) error
}

// DB encapsula a conexão com um banco SQL (SQLite ou Postgres)
type DB struct {
	conn     *sql.DB
	postgres bool
}

// New cria uma nova instância do banco de dados SQLite
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	return setup(conn, false)
}

// NewPostgres cria uma instância do banco usando Postgres
func NewPostgres(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return setup(conn, true)
}

func setup(conn *sql.DB, postgres bool) (*DB, error) {
	db := &DB{conn: conn, postgres: postgres}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria a tabela de coleções
func (db *DB) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS memberships (
		collection TEXT NOT NULL,
		product_id TEXT NOT NULL,
		url        TEXT NOT NULL,
		PRIMARY KEY (collection, product_id)
	);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

// rebind troca os placeholders "?" pelo formato "$n" do Postgres
func (db *DB) rebind(query string) string {
	if !db.postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GetAll retorna todos os produtos de uma coleção
func (db *DB) GetAll(ctx context.Context, collection models.Collection) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind("SELECT product_id, url FROM memberships WHERE collection = ?"),
		string(collection),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]string)
	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, err
		}
		products[id] = url
	}
	return products, rows.Err()
}

// Insert grava o produto na coleção, sobrescrevendo a URL se já existir
func (db *DB) Insert(ctx context.Context, id, url string, collection models.Collection) error {
	_, err := db.conn.ExecContext(ctx,
		db.rebind("INSERT INTO memberships (collection, product_id, url) VALUES (?, ?, ?) ON CONFLICT (collection, product_id) DO UPDATE SET url = excluded.url"),
		string(collection), id, url,
	)
	return err
}

// Delete remove o produto da coleção
func (db *DB) Delete(ctx context.Context, id string, collection models.Collection) error {
	_, err := db.conn.ExecContext(ctx,
		db.rebind("DELETE FROM memberships WHERE collection = ? AND product_id = ?"),
		string(collection), id,
	)
	return err
}
