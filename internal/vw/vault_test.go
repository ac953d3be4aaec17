package vw

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func TestNewVault_Defaults(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)

	if v.Capacity != 1000 || v.MaxShieldStrength != 100 {
		t.Errorf("capacity/max shield = %d/%d, want 1000/100", v.Capacity, v.MaxShieldStrength)
	}
	if v.VaultHealth != 100 || v.MaxHealth() != 100 {
		t.Errorf("health = %d/%d, want 100/100", v.VaultHealth, v.MaxHealth())
	}
	if v.MovesRemainingToday != 3 || v.GeneratorLevel != 1 {
		t.Errorf("moves/generator = %d/%d, want 3/1", v.MovesRemainingToday, v.GeneratorLevel)
	}
	if err := v.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants() error = %v", err)
	}
}

func TestVault_CreditDebit(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)

	added, err := v.Credit(250, dayStart)
	if err != nil || added != 250 {
		t.Fatalf("Credit(250) = (%d, %v), want (250, nil)", added, err)
	}
	if err := v.Debit(250); err != nil {
		t.Fatalf("Debit(250) error = %v", err)
	}
	if v.CurrentPoints != 0 {
		t.Errorf("CurrentPoints after round trip = %d, want 0", v.CurrentPoints)
	}

	err = v.Debit(1)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Debit on empty vault error = %v, want ErrInsufficientFunds", err)
	}
	if v.CurrentPoints != 0 {
		t.Errorf("failed debit changed points to %d", v.CurrentPoints)
	}

	if _, err := v.Credit(-5, dayStart); err == nil {
		t.Error("Credit(-5) expected error")
	}
	if err := v.Debit(-5); err == nil {
		t.Error("Debit(-5) expected error")
	}
}

func TestVault_CreditIgnoresCapacity(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)
	if _, err := v.Credit(5000, dayStart); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if v.CurrentPoints != 5000 {
		t.Errorf("CurrentPoints = %d, want 5000", v.CurrentPoints)
	}
}

func TestVault_CreditWithBoost(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)
	b, err := NewBoost(1.5, time.Hour, "event", dayStart)
	if err != nil {
		t.Fatalf("NewBoost() error = %v", err)
	}
	v.Boost = b

	if added, _ := v.Credit(15, dayStart.Add(time.Minute)); added != 22 {
		t.Errorf("boosted Credit(15) = %d, want 22", added)
	}
	if added, _ := v.Credit(15, dayStart.Add(time.Hour)); added != 15 {
		t.Errorf("Credit(15) after expiry = %d, want 15", added)
	}
}

func TestVault_ShieldClamp(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)

	tests := []struct {
		delta      int
		wantApply  int
		wantShield int
	}{
		{delta: 60, wantApply: 60, wantShield: 60},
		{delta: 60, wantApply: 40, wantShield: 100},
		{delta: -30, wantApply: -30, wantShield: 70},
		{delta: -500, wantApply: -70, wantShield: 0},
	}
	for _, tt := range tests {
		got := v.ApplyShieldDelta(tt.delta)
		if got != tt.wantApply || v.ShieldStrength != tt.wantShield {
			t.Errorf("ApplyShieldDelta(%d) = %d, shield %d; want %d, shield %d",
				tt.delta, got, v.ShieldStrength, tt.wantApply, tt.wantShield)
		}
	}
}

func TestVault_HealthCooldown(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)

	if lost := v.ApplyVaultHealthDelta(-150, dayStart); lost != -100 {
		t.Errorf("ApplyVaultHealthDelta(-150) = %d, want -100", lost)
	}
	if v.VaultHealthCooldownStart == nil {
		t.Fatal("cooldown not started when health reached zero")
	}
	if !v.Immune(dayStart.Add(time.Hour)) {
		t.Error("Immune(+1h) = false, want true")
	}
	if got := v.CooldownRemaining(dayStart.Add(time.Hour)); got != 3*time.Hour {
		t.Errorf("CooldownRemaining(+1h) = %v, want 3h", got)
	}

	if v.ExpireCooldown(dayStart.Add(3 * time.Hour)) {
		t.Error("ExpireCooldown before 4h = true, want false")
	}
	if !v.ExpireCooldown(dayStart.Add(VaultHealthCooldown)) {
		t.Fatal("ExpireCooldown at 4h = false, want true")
	}
	if v.VaultHealth != 100 || v.VaultHealthCooldownStart != nil {
		t.Errorf("after expiry health = %d, cooldown = %v; want 100, nil", v.VaultHealth, v.VaultHealthCooldownStart)
	}
}

func TestVault_RestoreVaultHealth(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)
	v.ApplyVaultHealthDelta(-100, dayStart)

	if got := v.RestoreVaultHealth(30, false, dayStart); got != 30 {
		t.Errorf("RestoreVaultHealth(30) = %d, want 30", got)
	}
	if v.VaultHealthCooldownStart == nil {
		t.Error("cooldown cleared without clearCooldown")
	}
	v.RestoreVaultHealth(0, true, dayStart)
	if v.VaultHealthCooldownStart != nil {
		t.Error("cooldown still active after clearCooldown")
	}
}

func TestVault_Firewall(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)
	if got := v.ApplyFirewallDelta(130); got != 100 {
		t.Errorf("ApplyFirewallDelta(130) = %d, want 100", got)
	}
	if got := v.ApplyFirewallDelta(-20); got != -20 || v.Firewall != 80 {
		t.Errorf("ApplyFirewallDelta(-20) = %d, firewall %d; want -20, 80", got, v.Firewall)
	}
}

func TestVault_LoanAndRepay(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)

	if _, err := v.RepayDebt(10); !errors.Is(err, ErrNothingToRestore) {
		t.Errorf("RepayDebt without debt error = %v, want ErrNothingToRestore", err)
	}
	if err := v.TakeLoan(0); err == nil {
		t.Error("TakeLoan(0) expected error")
	}
	if err := v.TakeLoan(200); err != nil {
		t.Fatalf("TakeLoan() error = %v", err)
	}
	if !v.DebtActive || v.DebtAmount != 200 || v.CurrentPoints != 200 {
		t.Errorf("after loan: active=%v debt=%d points=%d", v.DebtActive, v.DebtAmount, v.CurrentPoints)
	}

	repaid, err := v.RepayDebt(500)
	if err != nil {
		t.Fatalf("RepayDebt() error = %v", err)
	}
	if repaid != 200 || v.DebtActive || v.CurrentPoints != 0 {
		t.Errorf("repaid=%d active=%v points=%d; want 200, false, 0", repaid, v.DebtActive, v.CurrentPoints)
	}
}

func TestVault_CloneIsDeep(t *testing.T) {
	v := NewVault("alice", DefaultRules(), dayStart)
	v.ApplyVaultHealthDelta(-100, dayStart)
	v.Boost, _ = NewBoost(2, time.Hour, "x", dayStart)

	c := v.Clone()
	*c.VaultHealthCooldownStart = dayStart.Add(time.Hour)
	c.Boost.Multiplier = 3

	if !v.VaultHealthCooldownStart.Equal(dayStart) || v.Boost.Multiplier != 2 {
		t.Error("Clone() shares pointers with the original")
	}
}

func TestVault_CheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Vault)
	}{
		{"negative points", func(v *Vault) { v.CurrentPoints = -1 }},
		{"shield over max", func(v *Vault) { v.ShieldStrength = 101 }},
		{"health over max", func(v *Vault) { v.VaultHealth = 101 }},
		{"firewall over 100", func(v *Vault) { v.Firewall = 101 }},
		{"negative overshield", func(v *Vault) { v.OvershieldCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVault("alice", DefaultRules(), dayStart)
			tt.mutate(v)
			if err := v.CheckInvariants(); err == nil {
				t.Error("CheckInvariants() expected error")
			}
		})
	}
}

func TestVault_RandomDeltasKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	v := NewVault("alice", DefaultRules(), dayStart)
	now := dayStart

	for i := 0; i < 1000; i++ {
		now = now.Add(time.Duration(rng.IntN(60)) * time.Minute)
		switch rng.IntN(4) {
		case 0:
			v.ApplyShieldDelta(rng.IntN(301) - 150)
		case 1:
			v.ApplyVaultHealthDelta(rng.IntN(301)-150, now)
		case 2:
			v.ApplyFirewallDelta(rng.IntN(101) - 50)
		case 3:
			v.ExpireCooldown(now)
		}
		if err := v.CheckInvariants(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}
