// Leasecheck is the command-line companion to the Young & Home service.
// It runs the same risk engine locally: analyze a registry document,
// print the district price table, run the housing finance calculators,
// or benchmark the engine.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/soccz/young-and-home/internal/domain"
	"github.com/soccz/young-and-home/internal/finance"
	"github.com/soccz/young-and-home/internal/risk"
	"github.com/soccz/young-and-home/internal/sample"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "leasecheck",
		Short: "Lease safety analysis from the command line",
		Long: `Leasecheck screens Korean rental contracts for jeonse fraud risk.

It estimates the property's market value from the district price table,
scores the registry for mortgages, seizures and prior leases, and
cross-validates the contract against the registry.`,
		Version: version,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(districtsCmd())
	rootCmd.AddCommand(financeCmd())
	rootCmd.AddCommand(benchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	var (
		sampleKey    string
		registryPath string
		contractPath string
		deposit      int64
		locale       string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a lease for risk",
		Long: `Analyze a registry document, optionally cross-validated against a
contract.

Example:
  leasecheck analyze --sample risky
  leasecheck analyze --registry registry.json --contract contract.json --deposit 250000000
  leasecheck analyze --sample safe --locale EN --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				registry *domain.RegistryRecord
				contract *domain.ContractRecord
			)

			switch {
			case sampleKey != "":
				sampleType, err := domain.ParseSampleType(sampleKey)
				if err != nil {
					return err
				}
				registry = sample.Registry(sampleType)
				contract = sample.Contract(sampleType)

			case registryPath != "":
				registry = &domain.RegistryRecord{}
				if err := readJSONFile(registryPath, registry); err != nil {
					return fmt.Errorf("failed to read registry: %w", err)
				}
				if contractPath != "" {
					contract = &domain.ContractRecord{}
					if err := readJSONFile(contractPath, contract); err != nil {
						return fmt.Errorf("failed to read contract: %w", err)
					}
				}

			default:
				return fmt.Errorf("either --sample or --registry is required")
			}

			engine := risk.NewEngine(risk.DefaultScorerConfig(), nil)
			result := engine.Analyze(registry, contract, deposit, domain.ParseLocale(locale))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Println(result.Report)
			return nil
		},
	}

	cmd.Flags().StringVar(&sampleKey, "sample", "", "built-in sample: safe, risky or moderate")
	cmd.Flags().StringVar(&registryPath, "registry", "", "path to a registry JSON file")
	cmd.Flags().StringVar(&contractPath, "contract", "", "path to a contract JSON file")
	cmd.Flags().Int64Var(&deposit, "deposit", 0, "proposed deposit in won (a contract's deposit takes precedence)")
	cmd.Flags().StringVar(&locale, "locale", "KO", "report locale: KO or EN")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func districtsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "districts",
		Short: "Print the per-district price table",
		RunE: func(cmd *cobra.Command, args []string) error {
			districts := risk.Districts()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(districts)
			}

			fmt.Printf("%-12s %15s\n", "District", "Won per pyeong")
			for _, d := range districts {
				fmt.Printf("%-12s %15d\n", d.Name, d.PricePerPyeong)
			}
			fmt.Printf("\nDefault (unlisted district): %d won per pyeong\n", risk.DefaultPricePerPyeong)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func financeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finance",
		Short: "Housing finance calculators",
		Long: `Calculators for prospective tenants: compare jeonse-via-loan against
monthly rent, screen loan eligibility under the DSR cap, and list youth
loan products for a borrower profile.`,
	}

	cmd.AddCommand(financeCompareCmd())
	cmd.AddCommand(financeEligibilityCmd())
	cmd.AddCommand(financeProductsCmd())
	return cmd
}

func financeCompareCmd() *cobra.Command {
	var (
		jeonseDeposit int64
		monthlyRent   int64
		managementFee int64
		loanRate      float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare jeonse loan cost against monthly rent",
		Long: `Example:
  leasecheck finance compare --jeonse 200000000 --rent 600000 --fee 100000 --rate 4.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jeonseDeposit <= 0 {
				return fmt.Errorf("--jeonse must be positive")
			}

			result := finance.CompareRentVsJeonse(jeonseDeposit, monthlyRent, managementFee, loanRate)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Printf("Jeonse (loan):   %12d won/month (interest %d + management %d)\n",
				result.Jeonse.Total, result.Jeonse.Interest, result.Jeonse.Management)
			fmt.Printf("Monthly rent:    %12d won/month (rent %d + management %d)\n",
				result.Rent.Total, result.Rent.Rent, result.Rent.Management)
			fmt.Printf("\n%s\n", result.Recommendation)
			return nil
		},
	}

	cmd.Flags().Int64Var(&jeonseDeposit, "jeonse", 0, "jeonse deposit in won")
	cmd.Flags().Int64Var(&monthlyRent, "rent", 0, "monthly rent in won")
	cmd.Flags().Int64Var(&managementFee, "fee", 0, "monthly management fee in won")
	cmd.Flags().Float64Var(&loanRate, "rate", finance.DefaultLoanRate, "annual jeonse loan rate in percent")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func financeEligibilityCmd() *cobra.Command {
	var (
		annualIncome  int64
		existingLoans int64
		targetDeposit int64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Screen loan eligibility under the DSR cap",
		Long: `Example:
  leasecheck finance eligibility --income 50000000 --deposit 200000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if annualIncome <= 0 {
				return fmt.Errorf("--income must be positive")
			}

			result := finance.CheckLoanEligibility(annualIncome, existingLoans, targetDeposit)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Printf("Status:   %s\n", result.Status)
			fmt.Printf("Max loan: %d won\n", result.MaxLoan)
			fmt.Printf("%s\n", result.Reason)
			return nil
		},
	}

	cmd.Flags().Int64Var(&annualIncome, "income", 0, "annual income in won")
	cmd.Flags().Int64Var(&existingLoans, "loans", 0, "existing loan principal in won")
	cmd.Flags().Int64Var(&targetDeposit, "deposit", 0, "target deposit in won")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func financeProductsCmd() *cobra.Command {
	var (
		age          int
		annualIncome int64
		employment   string
		smallCompany bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List loan products for a borrower profile",
		Long: `Example:
  leasecheck finance products --age 28 --income 35000000 --employment 재직자 --sme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if age <= 0 {
				return fmt.Errorf("--age must be positive")
			}

			products := finance.RecommendLoanProducts(finance.BorrowerProfile{
				Age:          age,
				AnnualIncome: annualIncome,
				Employment:   finance.EmploymentType(employment),
				SmallCompany: smallCompany,
			})

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(products)
			}

			for _, p := range products {
				fmt.Printf("[%s] %s\n", p.Tag, p.Name)
				fmt.Printf("  금리: %s  한도: %s\n", p.Rate, p.Limit)
				fmt.Printf("  %s\n\n", p.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "borrower age")
	cmd.Flags().Int64Var(&annualIncome, "income", 0, "annual income in won")
	cmd.Flags().StringVar(&employment, "employment", "재직자", "employment type: 재직자, 취업준비생 or 프리랜서")
	cmd.Flags().BoolVar(&smallCompany, "sme", false, "employed at a small or medium enterprise")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the products as JSON")

	return cmd
}

func benchCmd() *cobra.Command {
	var iterations int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the analysis engine",
		Long: `Run the full analysis pipeline repeatedly over the built-in samples
and report throughput. The engine is deterministic, so every run of a
sample produces the same verdict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations <= 0 {
				return fmt.Errorf("iterations must be positive")
			}

			engine := risk.NewEngine(risk.DefaultScorerConfig(), nil)
			samples := []domain.SampleType{domain.SampleSafe, domain.SampleModerate, domain.SampleRisky}

			levels := make(map[domain.RiskLevel]int)
			durations := make([]time.Duration, 0, iterations*len(samples))

			start := time.Now()
			for i := 0; i < iterations; i++ {
				for _, s := range samples {
					opStart := time.Now()
					result := engine.Analyze(sample.Registry(s), sample.Contract(s), 0, domain.LocaleKO)
					durations = append(durations, time.Since(opStart))
					levels[result.Verdict.Level]++
				}
			}
			elapsed := time.Since(start)
			analyses := len(durations)

			sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

			fmt.Printf("Analyses:   %d\n", analyses)
			fmt.Printf("Elapsed:    %s\n", elapsed.Round(time.Millisecond))
			fmt.Printf("Throughput: %.0f analyses/sec\n", float64(analyses)/elapsed.Seconds())
			fmt.Printf("Latency:    p50 %s  p95 %s  p99 %s\n",
				durations[analyses*50/100],
				durations[analyses*95/100],
				durations[analyses*99/100])
			fmt.Println("Levels:")
			for _, level := range []domain.RiskLevel{domain.LevelSafe, domain.LevelCaution, domain.LevelDanger, domain.LevelUnknown} {
				if n := levels[level]; n > 0 {
					fmt.Printf("  %-8s %d\n", level, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "n", 1000, "iterations over the sample set")
	return cmd
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
