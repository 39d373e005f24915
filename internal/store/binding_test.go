package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBindingRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Bindings()

	b := &Binding{
		ID:         "b1",
		Event:      EventErase,
		HookName:   "notify",
		ActionName: "say",
		Config:     json.RawMessage(`{"text":"erased"}`),
		Enabled:    true,
	}
	if err := repo.Create(b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	got, err := repo.GetByID("b1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.HookName != "notify" || got.ActionName != "say" || !got.Enabled {
		t.Errorf("GetByID() = %+v", got)
	}
	if string(got.Config) != `{"text":"erased"}` {
		t.Errorf("Config = %s", got.Config)
	}

	got.Enabled = false
	got.ActionName = "beep"
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	enabled, err := repo.ListEnabledByEvent(EventErase)
	if err != nil {
		t.Fatalf("ListEnabledByEvent() error = %v", err)
	}
	if len(enabled) != 0 {
		t.Errorf("ListEnabledByEvent() = %d bindings, want 0 after disabling", len(enabled))
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].ActionName != "beep" {
		t.Errorf("List() = %+v", all)
	}

	if err := repo.Delete("b1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID("b1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestBindingRepository_DefaultConfig(t *testing.T) {
	s := newTestStore(t)

	b := &Binding{ID: "b1", Event: EventStrokeStart, HookName: "h", ActionName: "a", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, _ := s.Bindings().GetByID("b1")
	if string(got.Config) != "{}" {
		t.Errorf("Config = %s, want {}", got.Config)
	}
}

func TestBindingRepository_RejectsUnknownEvent(t *testing.T) {
	s := newTestStore(t)

	b := &Binding{ID: "b1", Event: "wave", HookName: "h", ActionName: "a"}
	if err := s.Bindings().Create(b); err == nil {
		t.Error("Create() with an unknown event should fail the CHECK constraint")
	}
}

func TestBindingRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.Bindings().Update(&Binding{ID: "missing", Event: EventErase}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Bindings().Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestValidEvent(t *testing.T) {
	tests := []struct {
		event string
		want  bool
	}{
		{EventErase, true},
		{EventStrokeStart, true},
		{EventStrokeEnd, true},
		{"draw", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidEvent(tt.event); got != tt.want {
			t.Errorf("ValidEvent(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
