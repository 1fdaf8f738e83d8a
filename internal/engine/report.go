package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/RollCut/internal/model"
)

// buildResult assembles the report for the chosen plan: totals,
// per-pattern usage, and ordered cutting instructions. The trace and
// performance counters are attached by the caller.
func buildResult(req model.Request, demand []model.DemandLine, chosen candidate, baseline planMetrics, unitCost float64) model.Result {
	usages := orderedUsages(chosen.p)
	rollLength := req.MasterRollLength

	patterns := make([]model.PatternUsage, 0, len(usages))
	instructions := make([]model.CuttingInstruction, 0, len(usages)+1)
	for i, u := range usages {
		patterns = append(patterns, model.PatternUsage{
			ID:          u.pattern.ID(),
			Cuts:        u.pattern.Cuts(),
			TotalLength: u.pattern.TotalLength(),
			Waste:       u.pattern.Waste(),
			RollsUsed:   u.rolls,
		})
		instructions = append(instructions, model.CuttingInstruction{
			Step:        i + 1,
			Description: rollDescription(u.rolls, rollLength),
			Pattern:     u.pattern.String(),
			RollsCount:  u.rolls,
		})
	}
	instructions = append(instructions, inventoryCheck(demand, len(instructions)+1))

	m := chosen.metrics
	return model.Result{
		TotalRolls:          m.rolls,
		Efficiency:          m.efficiency,
		WastePercentage:     100 - m.efficiency,
		TotalWaste:          m.waste,
		CostSavings:         baseline.cost - m.cost,
		Patterns:            patterns,
		CuttingInstructions: instructions,
	}
}

// orderedUsages sorts the plan for reporting: most-used patterns first,
// then longest cut content, then pattern id for a stable total order.
func orderedUsages(p plan) []patternUsage {
	out := make([]patternUsage, len(p.usages))
	copy(out, p.usages)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rolls != out[j].rolls {
			return out[i].rolls > out[j].rolls
		}
		if out[i].pattern.TotalLength() != out[j].pattern.TotalLength() {
			return out[i].pattern.TotalLength() > out[j].pattern.TotalLength()
		}
		return out[i].pattern.ID() < out[j].pattern.ID()
	})
	return out
}

func rollDescription(rolls, rollLength int) string {
	plural := ""
	if rolls > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Take %d master roll%s of %dmm length", rolls, plural, rollLength)
}

// inventoryCheck is the closing instruction restating the demand so the
// shop can verify the cut output against it.
func inventoryCheck(demand []model.DemandLine, step int) model.CuttingInstruction {
	parts := make([]string, len(demand))
	for i, d := range demand {
		parts[i] = fmt.Sprintf("%d pieces of %dmm", d.Quantity, d.Length)
	}
	return model.CuttingInstruction{
		Step:        step,
		Description: "Final inventory check:",
		Pattern:     fmt.Sprintf("%s - all requirements met", strings.Join(parts, ", ")),
		RollsCount:  0,
	}
}
