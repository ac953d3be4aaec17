package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaultwars/internal/vw"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if got := len(c.MoveNames()); got < 9 {
		t.Errorf("len(MoveNames()) = %d, want at least one move per type", got)
	}
	seen := map[vw.MoveType]bool{}
	for _, name := range c.MoveNames() {
		m, _ := c.Move(name)
		seen[m.Type] = true
	}
	for _, typ := range []vw.MoveType{
		vw.MoveAttack, vw.MoveDefense, vw.MoveUtility, vw.MoveSupport, vw.MoveControl,
		vw.MoveMobility, vw.MoveStealth, vw.MoveReveal, vw.MoveCleanse,
	} {
		if !seen[typ] {
			t.Errorf("built-in catalog has no %s move", typ)
		}
	}

	card, ok := c.Card("truth_bolt")
	if !ok {
		t.Fatal("Card(truth_bolt) not found")
	}
	if card.Strength(2) != 45 {
		t.Errorf("truth_bolt Strength(2) = %d, want 45", card.Strength(2))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "minimal catalog",
			yaml: `
moves:
  - name: jab
    category: manifest
    type: attack
    cost: 5
    damage: 10
cards:
  - name: zap
    effect: { type: damage, strength: 5 }
    max_uses: 1
    truth_metal_cost: 1
`,
		},
		{
			name:    "empty document",
			yaml:    "",
			wantErr: "",
		},
		{
			name: "unknown field",
			yaml: `
moves:
  - name: jab
    category: manifest
    type: attack
    cost: 5
    dammage: 10
`,
			wantErr: "invalid catalog",
		},
		{
			name: "negative cost",
			yaml: `
moves:
  - name: jab
    category: manifest
    type: attack
    cost: -5
`,
			wantErr: "invalid catalog",
		},
		{
			name: "unknown category",
			yaml: `
moves:
  - name: jab
    category: arcane
    type: attack
    cost: 5
`,
			wantErr: "invalid catalog",
		},
		{
			name: "damage on a defense move",
			yaml: `
moves:
  - name: spiked_wall
    category: manifest
    type: defense
    cost: 5
    damage: 10
`,
			wantErr: "cannot carry offensive payloads",
		},
		{
			name: "buff used as debuff",
			yaml: `
moves:
  - name: odd
    category: system
    type: attack
    cost: 5
    debuff: { type: regen, strength: 5, duration: 2 }
`,
			wantErr: "not a debuff",
		},
		{
			name: "duplicate card",
			yaml: `
cards:
  - name: zap
    effect: { type: damage, strength: 5 }
    max_uses: 1
    truth_metal_cost: 1
  - name: zap
    effect: { type: damage, strength: 6 }
    max_uses: 1
    truth_metal_cost: 1
`,
			wantErr: "duplicate card",
		},
		{
			name:    "malformed yaml",
			yaml:    "moves: [",
			wantErr: "decoding catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				if c == nil {
					t.Fatal("Parse() returned nil catalog")
				}
				return
			}
			if err == nil {
				t.Fatalf("Parse() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses built-in catalog", func(t *testing.T) {
		c, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, ok := c.Move("pulse_strike"); !ok {
			t.Error("built-in catalog missing pulse_strike")
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		data := "moves:\n  - name: jab\n    category: manifest\n    type: attack\n    cost: 5\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if names := c.MoveNames(); len(names) != 1 || names[0] != "jab" {
			t.Errorf("MoveNames() = %v, want [jab]", names)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("Load() expected error for missing file")
		}
	})
}
