package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// EscrowFundedHint is the statuses key holding the nextAction set when escrow completes.
const EscrowFundedHint = "escrow_funded"

// Catalog is the immutable reference data the engine is built from.
type Catalog struct {
	Rates             *rate.Table
	Pricing           simulation.Pricing
	Requirements      *document.RequirementTable
	Hints             loan.Hints
	EscrowFundedLabel string
}

type file struct {
	Rates struct {
		Tiers []struct {
			Name                 string  `yaml:"name"`
			MinContributionRatio float64 `yaml:"min_contribution_ratio"`
			MaxDurationYears     int     `yaml:"max_duration_years"`
		} `yaml:"tiers"`
		Brackets map[int]map[string]float64 `yaml:"brackets"`
	} `yaml:"rates"`
	Pricing struct {
		InsuranceAnnualRate float64 `yaml:"insurance_annual_rate"`
		BankFees            struct {
			Mode    string  `yaml:"mode"`
			Amount  float64 `yaml:"amount"`
			Percent float64 `yaml:"percent"`
			Min     float64 `yaml:"min"`
			Max     float64 `yaml:"max"`
		} `yaml:"bank_fees"`
	} `yaml:"pricing"`
	Documents struct {
		Coborrower []string            `yaml:"coborrower"`
		Projects   map[string][]string `yaml:"projects"`
	} `yaml:"documents"`
	Statuses map[string]string `yaml:"statuses"`
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) { return Parse(defaultYAML) }

// Load reads a catalog file, falling back to the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	thresholds := make([]rate.Threshold, 0, len(f.Rates.Tiers))
	for _, t := range f.Rates.Tiers {
		thresholds = append(thresholds, rate.Threshold{
			Tier:                 rate.Tier(t.Name),
			MinContributionRatio: t.MinContributionRatio,
			MaxDurationYears:     t.MaxDurationYears,
		})
	}
	cells := make(map[int]map[rate.Tier]float64, len(f.Rates.Brackets))
	for years, row := range f.Rates.Brackets {
		cells[years] = make(map[rate.Tier]float64, len(row))
		for tier, pct := range row {
			cells[years][rate.Tier(tier)] = pct
		}
	}
	table, err := rate.NewTable(thresholds, cells)
	if err != nil {
		return nil, fmt.Errorf("catalog rates: %w", err)
	}

	pricing := simulation.Pricing{
		InsuranceAnnualRate: f.Pricing.InsuranceAnnualRate,
		BankFees: simulation.BankFeeSchedule{
			Mode:    simulation.BankFeeMode(f.Pricing.BankFees.Mode),
			Amount:  f.Pricing.BankFees.Amount,
			Percent: f.Pricing.BankFees.Percent,
			Min:     f.Pricing.BankFees.Min,
			Max:     f.Pricing.BankFees.Max,
		},
	}
	if err := pricing.Validate(); err != nil {
		return nil, fmt.Errorf("catalog pricing: %w", err)
	}

	byProject := make(map[document.ProjectType][]document.Category, len(f.Documents.Projects))
	for pt, cats := range f.Documents.Projects {
		if !document.ProjectType(pt).Valid() {
			return nil, fmt.Errorf("catalog documents: %w: %q", document.ErrUnknownProject, pt)
		}
		byProject[document.ProjectType(pt)] = categories(cats)
	}
	reqs, err := document.NewRequirementTable(byProject, categories(f.Documents.Coborrower))
	if err != nil {
		return nil, fmt.Errorf("catalog documents: %w", err)
	}

	hints := make(loan.Hints, len(f.Statuses))
	var escrowLabel string
	for k, label := range f.Statuses {
		if k == EscrowFundedHint {
			escrowLabel = label
			continue
		}
		if !loan.Status(k).Valid() {
			return nil, fmt.Errorf("catalog statuses: unknown status %q", k)
		}
		hints[loan.Status(k)] = label
	}
	if escrowLabel == "" {
		return nil, errors.New("catalog statuses: missing escrow_funded label")
	}

	return &Catalog{
		Rates:             table,
		Pricing:           pricing,
		Requirements:      reqs,
		Hints:             hints,
		EscrowFundedLabel: escrowLabel,
	}, nil
}

func categories(in []string) []document.Category {
	out := make([]document.Category, 0, len(in))
	for _, c := range in {
		out = append(out, document.Category(c))
	}
	return out
}
