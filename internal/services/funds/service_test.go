package funds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/models"
)

func writeRegistryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funds.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadRegistry_EmptyPathUsesDefaults(t *testing.T) {
	r, err := LoadRegistry(common.NewSilentLogger(), "")
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 built-in descriptors, got %d", len(descriptors))
	}
	if descriptors[0].ISIN != "INF174K01LC6" {
		t.Errorf("expected first descriptor INF174K01LC6, got %s", descriptors[0].ISIN)
	}
}

func TestLoadRegistry_ParsesFile(t *testing.T) {
	path := writeRegistryFile(t, `
[[funds]]
match = "parag parikh flexi"
isin = "INF879O01027"
short = "PP"
color = "#e879f9"
house = "PPFAS"
`)

	r, err := LoadRegistry(common.NewSilentLogger(), path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descriptors))
	}
	if descriptors[0].ISIN != "INF879O01027" || descriptors[0].House != "PPFAS" {
		t.Errorf("unexpected descriptor %+v", descriptors[0])
	}
}

func TestLoadRegistry_MissingFileErrors(t *testing.T) {
	if _, err := LoadRegistry(common.NewSilentLogger(), filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing registry file")
	}
}

func TestLoadRegistry_MalformedFileErrors(t *testing.T) {
	path := writeRegistryFile(t, "[[funds]\nmatch = broken")
	if _, err := LoadRegistry(common.NewSilentLogger(), path); err == nil {
		t.Fatal("expected error for malformed registry file")
	}
}

func TestLoadRegistry_SkipsEntriesWithoutMatch(t *testing.T) {
	path := writeRegistryFile(t, `
[[funds]]
match = ""
isin = "INF000000000"

[[funds]]
match = "kotak arbitrage"
isin = "INF174K01LC6"
`)

	r, err := LoadRegistry(common.NewSilentLogger(), path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if got := len(r.Descriptors()); got != 1 {
		t.Errorf("expected patternless entry to be skipped, got %d descriptors", got)
	}
}

func TestResolve_CaseFoldedSubstring(t *testing.T) {
	r, err := LoadRegistry(common.NewSilentLogger(), "")
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	descriptor, index := r.Resolve("KOTAK Arbitrage Fund - Direct Plan - Growth")
	if index != 0 {
		t.Fatalf("expected registry index 0, got %d", index)
	}
	if descriptor.ISIN != "INF174K01LC6" {
		t.Errorf("expected ISIN INF174K01LC6, got %s", descriptor.ISIN)
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	path := writeRegistryFile(t, `
[[funds]]
match = "icici prudential"
isin = "FIRST0000000"

[[funds]]
match = "icici prudential multi"
isin = "SECOND000000"
`)

	r, err := LoadRegistry(common.NewSilentLogger(), path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	descriptor, index := r.Resolve("ICICI Prudential Multi-Asset Fund")
	if index != 0 || descriptor.ISIN != "FIRST0000000" {
		t.Errorf("expected first entry to win, got index %d isin %s", index, descriptor.ISIN)
	}
}

func TestResolve_UnmatchedSynthesizesDescriptor(t *testing.T) {
	r, err := LoadRegistry(common.NewSilentLogger(), "")
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	descriptor, index := r.Resolve("HDFC Liquid Fund")
	if index != -1 {
		t.Fatalf("expected index -1 for unmatched name, got %d", index)
	}
	if descriptor.ISIN != "" {
		t.Errorf("expected empty ISIN, got %s", descriptor.ISIN)
	}
	if descriptor.Short != "HD" {
		t.Errorf("expected short code HD, got %s", descriptor.Short)
	}
	if descriptor.House != models.UnknownHouse {
		t.Errorf("expected house %s, got %s", models.UnknownHouse, descriptor.House)
	}
	if descriptor.Color != models.UnknownColor {
		t.Errorf("expected color %s, got %s", models.UnknownColor, descriptor.Color)
	}
}

func TestDescriptors_ReturnsCopy(t *testing.T) {
	r, err := LoadRegistry(common.NewSilentLogger(), "")
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	first := r.Descriptors()
	first[0].ISIN = "MUTATED00000"

	if got := r.Descriptors()[0].ISIN; got != "INF174K01LC6" {
		t.Errorf("expected registry to be immutable through Descriptors, got %s", got)
	}
}
