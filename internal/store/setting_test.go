package store

import (
	"errors"
	"testing"
)

func TestSettingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("detector.pairing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("detector.pairing", "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("detector.pairing", "nearest"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := repo.Get("detector.pairing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "nearest" {
		t.Errorf("Get() = %q, want nearest", got)
	}

	if err := repo.SetAll(map[string]string{
		"board.max_stroke_gap": "150",
		"log.level":            "debug",
	}); err != nil {
		t.Fatalf("SetAll() error = %v", err)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 3 || all["board.max_stroke_gap"] != "150" {
		t.Errorf("All() = %v", all)
	}

	if err := repo.Delete("log.level"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("log.level"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
