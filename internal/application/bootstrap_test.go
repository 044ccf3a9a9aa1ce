package application

import (
	"context"
	"testing"
)

type seedCatalogStub struct {
	catalogRepoStub
	existing map[string]Service
	created  []Service
}

func (c *seedCatalogStub) GetService(ctx context.Context, id string) (Service, error) {
	if service, ok := c.existing[id]; ok {
		return service, nil
	}
	return Service{}, ErrNotFound
}

func (c *seedCatalogStub) CreateService(ctx context.Context, service Service) (Service, error) {
	c.created = append(c.created, service)
	return service, nil
}

func TestBootstrapper_Bootstrap(t *testing.T) {
	idGen := func() string { return "user-1" }

	t.Run("seeds the full catalog on an empty database", func(t *testing.T) {
		catalog := &seedCatalogStub{}
		users := &userStoreStub{}
		b := NewBootstrapper(catalog, users, idGen, fixedNow, nil)

		if err := b.Bootstrap(context.Background(), "admin@example.com", "secret"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(catalog.created) != len(seedServices) {
			t.Fatalf("expected %d seeded services, got %d", len(seedServices), len(catalog.created))
		}
		if users.created.Email != "admin@example.com" {
			t.Fatalf("expected administrator account, got %+v", users.created)
		}
		if users.created.Role != RoleAdmin || !users.created.Active {
			t.Fatalf("expected active admin role, got %+v", users.created)
		}
		if err := VerifyPassword(users.created.PasswordHash, "secret"); err != nil {
			t.Fatalf("expected stored hash to verify: %v", err)
		}
	})

	t.Run("never overwrites existing entries", func(t *testing.T) {
		catalog := &seedCatalogStub{existing: map[string]Service{
			"tarot":       {ID: "tarot"},
			"voyance":     {ID: "voyance"},
			"numerologie": {ID: "numerologie"},
			"pendule":     {ID: "pendule"},
		}}
		users := &userStoreStub{user: User{ID: "admin-1", Email: "admin@example.com"}}
		b := NewBootstrapper(catalog, users, idGen, fixedNow, nil)

		if err := b.Bootstrap(context.Background(), "admin@example.com", "secret"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(catalog.created) != 0 {
			t.Fatalf("expected no services created, got %d", len(catalog.created))
		}
		if users.created.ID != "" {
			t.Fatalf("expected no user created, got %+v", users.created)
		}
	})

	t.Run("requires administrator credentials", func(t *testing.T) {
		b := NewBootstrapper(&seedCatalogStub{}, &userStoreStub{}, idGen, fixedNow, nil)

		if err := b.Bootstrap(context.Background(), "", ""); err == nil {
			t.Fatalf("expected an error for missing credentials")
		}
	})
}
