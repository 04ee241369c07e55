package main

import (
	"encoding/json"

	"mortgage-underwriting/internal/catalog"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"
	ucSimulation "mortgage-underwriting/internal/usecase/simulation"

	"github.com/spf13/cobra"
)

// newSimulateCmd prices a project offline against the configured catalog.
func newSimulateCmd(a *app) *cobra.Command {
	var in simulation.Input
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print the financing figures for a project as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(a.cfg.CatalogPath)
			if err != nil {
				return err
			}
			uc := ucSimulation.NewUsecase(rate.NewResolver(cat.Rates), simulation.NewCalculator(cat.Pricing))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(uc.Simulate(in))
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.PropertyPrice, "property-price", 0, "property price")
	f.Float64Var(&in.NotaryFees, "notary-fees", 0, "notary fees")
	f.Float64Var(&in.AgencyFees, "agency-fees", 0, "agency fees")
	f.Float64Var(&in.WorksAmount, "works", 0, "works amount")
	f.Float64Var(&in.DownPayment, "down-payment", 0, "personal contribution")
	f.IntVar(&in.DurationYears, "years", 20, "loan duration in years")
	_ = cmd.MarkFlagRequired("property-price")
	return cmd
}
