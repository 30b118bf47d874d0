package params

import "testing"

func TestDifficultyAdjustmentInterval(t *testing.T) {
	if got := MainNetParams.DifficultyAdjustmentInterval(); got != 2016 {
		t.Errorf("mainnet interval = %d, want 2016", got)
	}
	if got := RegressionNetParams.DifficultyAdjustmentInterval(); got != 2016 {
		t.Errorf("regtest interval = %d, want 2016", got)
	}
}

func TestByName(t *testing.T) {
	for name, want := range map[string]*Params{
		"mainnet": &MainNetParams,
		"":        &MainNetParams,
		"testnet": &TestNetParams,
		"regtest": &RegressionNetParams,
	} {
		got, err := ByName(name)
		if err != nil || got != want {
			t.Errorf("ByName(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ByName("nonsense"); err == nil {
		t.Error("ByName accepted an unknown network")
	}
}

func TestPowLimits(t *testing.T) {
	if MainNetParams.PowLimit.BitLen() != 224 {
		t.Errorf("mainnet pow limit bit length = %d, want 224", MainNetParams.PowLimit.BitLen())
	}
	if MainNetParams.ForkBeginPowLimit.Cmp(MainNetParams.PowLimit) >= 0 {
		t.Error("fork begin pow limit should be harder than the pow limit")
	}
	if RegressionNetParams.PowLimit.BitLen() != 255 {
		t.Errorf("regtest pow limit bit length = %d, want 255", RegressionNetParams.PowLimit.BitLen())
	}
}
