package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Inventory.Backend != "memory" || cfg.Orders.Backend != "memory" {
		t.Errorf("expected memory backends, got %q / %q", cfg.Inventory.Backend, cfg.Orders.Backend)
	}
	if cfg.Inventory.Seed["Laptop-X"] != 5 || cfg.Inventory.Seed["Mouse-Z"] != 1 {
		t.Errorf("unexpected seed: %v", cfg.Inventory.Seed)
	}
	if cfg.Collaborators.StepTimeout != 3*time.Second {
		t.Errorf("expected 3s step timeout, got %s", cfg.Collaborators.StepTimeout)
	}
	if cfg.Server.HTTPAddress() != "0.0.0.0:8080" || cfg.Server.GRPCAddress() != "0.0.0.0:9090" {
		t.Errorf("unexpected addresses %s / %s", cfg.Server.HTTPAddress(), cfg.Server.GRPCAddress())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("INVENTORY_BACKEND", "redis")
	t.Setenv("ORDER_BACKEND", "sqlite")
	t.Setenv("INVENTORY_SEED", "Widget:7")
	t.Setenv("CHECKOUT_STEP_TIMEOUT", "250ms")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Inventory.Backend != "redis" || cfg.Orders.Backend != "sqlite" {
		t.Errorf("unexpected backends %q / %q", cfg.Inventory.Backend, cfg.Orders.Backend)
	}
	if len(cfg.Inventory.Seed) != 1 || cfg.Inventory.Seed["Widget"] != 7 {
		t.Errorf("unexpected seed: %v", cfg.Inventory.Seed)
	}
	if cfg.Collaborators.StepTimeout != 250*time.Millisecond {
		t.Errorf("unexpected timeout %s", cfg.Collaborators.StepTimeout)
	}
	if want := "app:secret@tcp(localhost:3306)/checkout?parseTime=true"; cfg.MySQL.DSN() != want {
		t.Errorf("expected DSN %q, got %q", want, cfg.MySQL.DSN())
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("ORDER_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLoad_RejectsNegativeSeed(t *testing.T) {
	t.Setenv("INVENTORY_SEED", "Laptop-X:-1")

	if _, err := Load(); err == nil {
		t.Error("expected error for negative seed")
	}
}

func TestPrettyLogs(t *testing.T) {
	tests := []struct {
		env    string
		pretty string
		want   bool
	}{
		{"development", "false", true},
		{"production", "false", false},
		{"production", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.pretty, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("LOG_PRETTY", tt.pretty)

			cfg := MustLoad()
			if got := cfg.PrettyLogs(); got != tt.want {
				t.Errorf("expected PrettyLogs %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("INVENTORY_BACKEND", "etcd")

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid config")
		}
	}()
	MustLoad()
}
