package proposal

import "testing"

func TestPaymentMethodPrices(t *testing.T) {
	tests := []struct {
		name       string
		pm         PaymentMethod
		wantMinute float64
		wantHour   float64
		wantGiB    float64
	}{
		{
			name:       "time and traffic",
			pm:         PaymentMethod{Price: Money{Amount: 10, Currency: "MYST"}, Rate: PaymentRate{PerSeconds: 30, PerBytes: bytesInGiB / 2}},
			wantMinute: 20,
			wantHour:   1200,
			wantGiB:    20,
		},
		{
			name: "free",
			pm:   PaymentMethod{Price: Money{Amount: 10, Currency: "MYST"}},
		},
		{
			name:       "rounded",
			pm:         PaymentMethod{Price: Money{Amount: 1, Currency: "MYST"}, Rate: PaymentRate{PerSeconds: 7}},
			wantMinute: 9,
			wantHour:   540,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pm.PricePerMinute(); got.Amount != tt.wantMinute || got.Currency != "MYST" {
				t.Fatalf("PricePerMinute = %+v, want %v MYST", got, tt.wantMinute)
			}
			if got := tt.pm.PricePerHour().Amount; got != tt.wantHour {
				t.Fatalf("PricePerHour = %v, want %v", got, tt.wantHour)
			}
			if got := tt.pm.PricePerGiB().Amount; got != tt.wantGiB {
				t.Fatalf("PricePerGiB = %v, want %v", got, tt.wantGiB)
			}
		})
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		q    *Quality
		want QualityLevel
	}{
		{q: nil, want: QualityUnknown},
		{q: &Quality{Quality: 0}, want: QualityLow},
		{q: &Quality{Quality: 0.99}, want: QualityLow},
		{q: &Quality{Quality: 1}, want: QualityMedium},
		{q: &Quality{Quality: 2}, want: QualityHigh},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.q); got != tt.want {
			t.Fatalf("LevelOf(%+v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestParseQualityLevel(t *testing.T) {
	for _, level := range []QualityLevel{QualityUnknown, QualityLow, QualityMedium, QualityHigh} {
		got, err := ParseQualityLevel(level.String())
		if err != nil || got != level {
			t.Fatalf("ParseQualityLevel(%q) = %v, %v", level.String(), got, err)
		}
	}
	if got, err := ParseQualityLevel(" Medium "); err != nil || got != QualityMedium {
		t.Fatalf("ParseQualityLevel is not lenient: %v, %v", got, err)
	}
	if _, err := ParseQualityLevel("excellent"); err == nil {
		t.Fatal("ParseQualityLevel accepted an unknown name")
	}
}

func TestFiltersApply(t *testing.T) {
	level := QualityHigh
	base := Filters{
		Price:   PriceFilter{PerHour: floatPtr(100)},
		Quality: QualityFilter{IncludeFailed: true},
	}

	patched := base.Apply(FilterPatch{PricePerGiB: floatPtr(5), QualityLevel: &level})
	if patched.Price.PerHour == nil || *patched.Price.PerHour != 100 {
		t.Fatalf("unpatched ceiling lost: %+v", patched.Price)
	}
	if patched.Price.PerGiB == nil || *patched.Price.PerGiB != 5 {
		t.Fatalf("patched ceiling missing: %+v", patched.Price)
	}
	if patched.Quality.Level != QualityHigh || !patched.Quality.IncludeFailed {
		t.Fatalf("quality merge wrong: %+v", patched.Quality)
	}
	if base.Price.PerGiB != nil {
		t.Fatal("Apply modified its receiver")
	}

	reset := patched.Apply(FilterPatch{ResetPrice: true, PricePerHour: floatPtr(7)})
	if reset.Price.PerGiB != nil || reset.Price.PerHour == nil || *reset.Price.PerHour != 7 {
		t.Fatalf("ResetPrice merge wrong: %+v", reset.Price)
	}
}
