package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devdir/internal/model"
	"devdir/internal/repository"
)

//go:embed fixture.json
var defaultFixture []byte

// Fixture is the seed document: users, and profiles keyed by their owner's email.
type Fixture struct {
	Users      []SeedUser      `json:"users"`
	Developers []SeedDeveloper `json:"developers"`
}

// SeedUser is one account to create.
type SeedUser struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// SeedDeveloper is one profile to create for an existing student.
type SeedDeveloper struct {
	OwnerEmail string         `json:"owner_email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	WorkType   model.WorkType `json:"work_type"`
	Field      model.Field    `json:"field"`
	GitHub     *string        `json:"github,omitempty"`
	LinkedIn   *string        `json:"linkedin,omitempty"`
	Email      string         `json:"email"`
}

// Stats counts what a seed run did.
type Stats struct {
	UsersCreated      int
	UsersSkipped      int
	DevelopersCreated int
	DevelopersSkipped int
}

// Seeder inserts a Fixture, skipping records that already exist.
type Seeder struct {
	users      repository.UserRepository
	developers repository.DeveloperRepository
	logger     *slog.Logger
}

// loadFixture reads the seed document from a file, a URL, or the embedded default.
func loadFixture(ctx context.Context, path, url string) (*Fixture, error) {
	var data []byte
	var err error
	switch {
	case path != "":
		data, err = os.ReadFile(path)
	case url != "":
		data, err = fetch(ctx, url)
	default:
		data = defaultFixture
	}
	if err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &fixture, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Seed creates the fixture's users, admins included, then their profiles.
func (s *Seeder) Seed(ctx context.Context, fixture *Fixture) (Stats, error) {
	var stats Stats
	owners := make(map[string]*model.User, len(fixture.Users))

	for _, u := range fixture.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if !u.Role.Valid() {
			return stats, fmt.Errorf("user %s: unknown role %q", email, u.Role)
		}

		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			owners[email] = existing
			stats.UsersSkipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, fmt.Errorf("error checking user %s: %w", email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return stats, fmt.Errorf("hash password for %s: %w", email, err)
		}
		user := &model.User{Email: email, Name: u.Name, PasswordHash: string(hash), Role: u.Role}
		if err := s.users.Create(ctx, user); err != nil {
			return stats, fmt.Errorf("error creating user %s: %w", email, err)
		}
		owners[email] = user
		stats.UsersCreated++
		s.logger.Debug("user created", "email", email, "role", u.Role)
	}

	for _, d := range fixture.Developers {
		ownerEmail := strings.ToLower(strings.TrimSpace(d.OwnerEmail))
		owner, ok := owners[ownerEmail]
		if !ok {
			return stats, fmt.Errorf("developer %s %s: owner %s not in fixture", d.FirstName, d.LastName, ownerEmail)
		}

		if _, err := s.developers.FindByOwner(ctx, owner.ID); err == nil {
			stats.DevelopersSkipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, fmt.Errorf("error checking profile of %s: %w", ownerEmail, err)
		}

		developer := &model.Developer{
			OwnerUserID: owner.ID,
			FirstName:   d.FirstName,
			LastName:    d.LastName,
			WorkType:    d.WorkType,
			Field:       d.Field,
			GitHub:      d.GitHub,
			LinkedIn:    d.LinkedIn,
			Email:       d.Email,
		}
		if err := s.developers.Create(ctx, developer); err != nil {
			return stats, fmt.Errorf("error creating profile of %s: %w", ownerEmail, err)
		}
		stats.DevelopersCreated++
	}

	return stats, nil
}
