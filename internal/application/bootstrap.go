package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/serenity-bookings/internal/persistence"
)

// seedServices is the initial catalog installed on an empty database. Existing
// entries are never overwritten.
var seedServices = []Service{
	{
		ID:          "tarot",
		Name:        "Tirage de tarot",
		Description: "Lecture complète du tarot de Marseille pour éclairer votre situation.",
		Price:       decimal.RequireFromString("45.00"),
		Duration:    "30 minutes",
		Features:    []string{"Tirage en croix", "Question ouverte", "Support visio ou téléphone"},
		Active:      true,
	},
	{
		ID:          "voyance",
		Name:        "Consultation de voyance",
		Description: "Séance de voyance personnalisée, sans support imposé.",
		Price:       decimal.RequireFromString("60.00"),
		Duration:    "30 minutes",
		Features:    []string{"Flashs spontanés", "Questions illimitées", "Compte rendu par email"},
		Active:      true,
	},
	{
		ID:          "numerologie",
		Name:        "Étude de numérologie",
		Description: "Analyse de votre thème numérologique à partir de vos nom et date de naissance.",
		Price:       decimal.RequireFromString("50.00"),
		Duration:    "30 minutes",
		Features:    []string{"Chemin de vie", "Année personnelle", "Document remis après séance"},
		Active:      true,
	},
	{
		ID:          "pendule",
		Name:        "Séance de pendule",
		Description: "Réponses par radiesthésie à vos questions fermées.",
		Price:       decimal.RequireFromString("40.00"),
		Duration:    "30 minutes",
		Features:    []string{"Questions fermées", "Recherche d'objets ou de personnes"},
		Active:      true,
	},
}

// Bootstrapper seeds the catalog and the administrator account on startup.
// Every step is idempotent; running it against a populated database changes
// nothing.
type Bootstrapper struct {
	services    ServiceCatalogRepository
	users       CredentialStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBootstrapper constructs a bootstrapper.
func NewBootstrapper(services ServiceCatalogRepository, users CredentialStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Bootstrapper {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Bootstrapper{
		services:    services,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Bootstrap installs the seed catalog and ensures the administrator account
// exists with the configured credentials.
func (b *Bootstrapper) Bootstrap(ctx context.Context, adminEmail, adminPassword string) error {
	if b == nil {
		return fmt.Errorf("Bootstrapper is nil")
	}

	logger := serviceLogger(ctx, b.logger, "Bootstrapper", "Bootstrap")

	if err := b.seedCatalog(ctx, logger); err != nil {
		return err
	}
	if err := b.ensureAdmin(ctx, logger, adminEmail, adminPassword); err != nil {
		return err
	}
	return nil
}

func (b *Bootstrapper) seedCatalog(ctx context.Context, logger *slog.Logger) error {
	for _, seed := range seedServices {
		if _, err := b.services.GetService(ctx, seed.ID); err == nil {
			continue
		} else if !errors.Is(err, persistence.ErrNotFound) && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check seed service %s: %w", seed.ID, err)
		}

		now := b.now()
		seed.CreatedAt = now
		seed.UpdatedAt = now
		if _, err := b.services.CreateService(ctx, seed); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("seed service %s: %w", seed.ID, err)
		}
		logger.InfoContext(ctx, "seeded service", "service_id", seed.ID)
	}
	return nil
}

func (b *Bootstrapper) ensureAdmin(ctx context.Context, logger *slog.Logger, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("administrator credentials are not configured")
	}

	if _, err := b.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check administrator account: %w", err)
	}

	hash, err := CreatePasswordHash(password)
	if err != nil {
		return fmt.Errorf("hash administrator password: %w", err)
	}

	now := b.now()
	user := User{
		ID:           b.idGenerator(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := b.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create administrator account: %w", err)
	}

	logger.InfoContext(ctx, "created administrator account", "email", email)
	return nil
}
