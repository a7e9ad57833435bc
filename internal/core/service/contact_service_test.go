package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/infrastructure/db/memory"
)

func TestContactService_SaveIgnoresClientID(t *testing.T) {
	svc := NewContactService(memory.NewContactRepository(), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Save(ctx, domain.Contact{ID: "999", Name: "John Doe", Number: "1234567890"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" || first.ID == "999" {
		t.Fatalf("expected store-assigned id, got %q", first.ID)
	}

	second, err := svc.Save(ctx, domain.Contact{ID: first.ID, Name: "Jane Doe", Number: "555"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("save must never overwrite an existing contact")
	}

	all, _ := svc.List(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(all))
	}
}

func TestContactService_Update(t *testing.T) {
	svc := NewContactService(memory.NewContactRepository(), zerolog.Nop())
	ctx := context.Background()

	c, err := svc.Save(ctx, domain.Contact{Name: "John Doe", Number: "1234567890"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Number = "999"
	if err := svc.Update(ctx, *c); err != nil {
		t.Fatalf("update: %v", err)
	}
	all, _ := svc.List(ctx)
	if len(all) != 1 || all[0].Number != "999" {
		t.Fatalf("expected updated number, got %+v", all)
	}

	if err := svc.Update(ctx, domain.Contact{Name: "No Id", Number: "1"}); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound for empty id, got %v", err)
	}
	if err := svc.Update(ctx, domain.Contact{ID: "404", Name: "Gone", Number: "1"}); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound for unknown id, got %v", err)
	}
}

func TestContactService_DeleteAndDeleteAll(t *testing.T) {
	svc := NewContactService(memory.NewContactRepository(), zerolog.Nop())
	ctx := context.Background()

	a, _ := svc.Save(ctx, domain.Contact{Name: "A", Number: "1"})
	_, _ = svc.Save(ctx, domain.Contact{Name: "B", Number: "2"})
	_, _ = svc.Save(ctx, domain.Contact{Name: "C", Number: "3"})

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := svc.List(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 contacts after delete, got %d", len(all))
	}

	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	all, _ = svc.List(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty phonebook, got %d", len(all))
	}
}
