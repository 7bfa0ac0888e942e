package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

func init() {
	registerSeeder(&UserSeeder{})
}

// UserSeedData represents the JSON structure for user seed files.
type UserSeedData struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is one user record with its initial token grant.
type SeedUser struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	TokensGranted int64     `json:"tokens_granted"`
}

// UserSeeder populates demo users with opening token balances. Grants are
// recorded in the ledger so seeded balances reconcile like real ones.
type UserSeeder struct {
	file string
}

// Name returns "users" as the seeder identifier.
func (s *UserSeeder) Name() string {
	return "users"
}

// Description returns a human-readable description of this seeder.
func (s *UserSeeder) Description() string {
	return "Seeds demo users with initial token grants"
}

// SetFile configures an external seed file path, overriding the embedded default.
func (s *UserSeeder) SetFile(path string) {
	s.file = path
}

// Seed inserts each user and, for newly created users only, records the
// initial grant on both the user row and the token ledger. Re-running the
// seeder leaves existing users untouched.
func (s *UserSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	data, err := s.loadSeedData()
	if err != nil {
		return err
	}

	for _, u := range data.Users {
		created, err := s.insertUser(ctx, tx, u)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.DisplayName, err)
		}
		if !created || u.TokensGranted == 0 {
			continue
		}
		if err := s.recordGrant(ctx, tx, u); err != nil {
			return fmt.Errorf("record grant for %s: %w", u.DisplayName, err)
		}
	}

	return nil
}

func (s *UserSeeder) loadSeedData() (*UserSeedData, error) {
	var content []byte
	var err error

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/users.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data UserSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	return &data, nil
}

func (s *UserSeeder) insertUser(ctx context.Context, tx *sql.Tx, u SeedUser) (bool, error) {
	const query = `
		INSERT INTO users (id, display_name, tokens_granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRowContext(ctx, query, u.ID, u.DisplayName, u.TokensGranted).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserSeeder) recordGrant(ctx context.Context, tx *sql.Tx, u SeedUser) error {
	const query = `
		INSERT INTO token_ledger (id, user_id, amount, reason)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.ExecContext(ctx, query, uuid.New(), u.ID, u.TokensGranted, "initial grant")
	return err
}
