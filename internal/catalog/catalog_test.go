package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	res, err := rate.NewResolver(c.Rates).Resolve(20, 30_000.0/275_000.0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Tier != rate.TierStandard || res.RatePercent != 3.22 {
		t.Fatalf("scenario A resolution = %+v", res)
	}

	if c.Pricing.InsuranceAnnualRate != 0.0036 || c.Pricing.BankFees.Mode != simulation.BankFeeFixed || c.Pricing.BankFees.Amount != 1000 {
		t.Fatalf("pricing = %+v", c.Pricing)
	}

	for _, pt := range document.ProjectTypes {
		if _, err := c.Requirements.Required(pt, true); err != nil {
			t.Fatalf("Required(%s): %v", pt, err)
		}
	}
	for _, s := range loan.Statuses {
		if c.Hints.For(s) == "" {
			t.Fatalf("no hint for %s", s)
		}
	}
	if c.EscrowFundedLabel == "" {
		t.Fatal("missing escrow funded label")
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil || c == nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	custom := strings.Replace(string(defaultYAML), "amount: 1000", "amount: 750", 1)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Pricing.BankFees.Amount != 750 {
		t.Fatalf("bank fee = %v", c.Pricing.BankFees.Amount)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Errors(t *testing.T) {
	base := string(defaultYAML)
	cases := map[string]string{
		"missing cell":    strings.Replace(base, ", cautious: 3.48", "", 1),
		"unknown field":   base + "\nextra: true\n",
		"unknown project": strings.Replace(base, "renovation:", "castle:", 1),
		"unknown status":  strings.Replace(base, "funded: Your loan", "archived: Your loan", 1),
		"bad fee mode":    strings.Replace(base, "mode: fixed", "mode: tiered", 1),
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	_, err := Parse([]byte(strings.Replace(base, ", cautious: 3.48", "", 1)))
	if !errors.Is(err, rate.ErrMissingCell) {
		t.Fatalf("want ErrMissingCell, got %v", err)
	}
}
