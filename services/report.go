package services

import (
	"fmt"
	"strings"
)

// LoadReport combines the transformation counters with the load-policy
// outcome for one ETL run.
type LoadReport struct {
	Transform *TransformReport
	Dropped   int
	Inserted  int
}

// PrintLoadReport renders an end-of-run summary to stdout.
func PrintLoadReport(r *LoadReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  PROPIEDADES ETL SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	t := r.Transform
	fmt.Printf("\033[1;33m  Transformation\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Records read          : \033[1m%d\033[0m\n", t.Total)
	fmt.Printf("  Invalid prices        : %d\n", t.InvalidPrices)
	fmt.Printf("  Unmapped barrios      : %d\n", t.UnmappedBarrios)
	fmt.Printf("  Missing superficie    : %d\n", t.MissingSuperficie)
	if t.ImputedExpensas > 0 {
		fmt.Printf("  Expensas imputed      : %d (median $%.2f ARS)\n",
			t.ImputedExpensas, t.MedianExpensas)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Load\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Dropped (no price or barrio) : \033[1;31m%d\033[0m\n", r.Dropped)
	fmt.Printf("  Inserted                     : \033[1;32m%d\033[0m\n", r.Inserted)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}
