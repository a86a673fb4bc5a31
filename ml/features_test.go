package ml

import "testing"

func TestDescriptionFlags(t *testing.T) {
	flags := DescriptionFlags("Departamento luminoso con balcón y parrilla")

	wantOn := []string{"has_luminoso", "has_balcon", "has_parrilla"}
	for _, col := range wantOn {
		if flags[col] != 1 {
			t.Errorf("%s = %.0f; want 1", col, flags[col])
		}
	}
	if flags["has_pileta"] != 0 {
		t.Errorf("has_pileta = %.0f; want 0", flags["has_pileta"])
	}
}

func TestDescriptionFlagsEmptyDescription(t *testing.T) {
	flags := DescriptionFlags("")

	if len(flags) != len(KeywordColumns()) {
		t.Fatalf("expected %d flags, got %d", len(KeywordColumns()), len(flags))
	}
	for col, v := range flags {
		if v != 0 {
			t.Errorf("%s = %.0f; want 0 for empty description", col, v)
		}
	}
}

func TestDescriptionFlagsAccentInsensitive(t *testing.T) {
	withAccent := DescriptionFlags("BALCÓN al frente")
	if withAccent["has_balcon"] != 1 {
		t.Error("accented uppercase keyword should still match")
	}
}

func TestDescriptionFlagsMultiWordKeyword(t *testing.T) {
	flags := DescriptionFlags("incluye cochera cubierta y seguridad 24hs")
	if flags["has_cochera_cubierta"] != 1 {
		t.Error("multi-word keyword should match on the raw text")
	}
	if flags["has_seguridad"] != 1 {
		t.Error("has_seguridad should be set")
	}
}
