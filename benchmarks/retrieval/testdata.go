// ABOUTME: Benchmark corpus and query cases with ground-truth expectations
// ABOUTME: Small synthetic policy library spanning products and section types

package retrieval

import (
	"github.com/guidewell/policyrag/internal/models"
)

// Case is one benchmark query with its ground truth.
type Case struct {
	Name             string
	Query            string
	ExpectedRootIDs  []string
	ExpectedProducts []string
	MinRecall        float64
	MinPrecision     float64
}

// Corpus returns the benchmark document set.
func Corpus() []models.Document {
	docs := []struct {
		rootID   string
		title    string
		path     string
		products []string
		content  string
	}{
		{
			"x1001", "VA PACE Lien Requirements", "x1001_x200_x310", []string{"VA"},
			`PACE liens on VA loans must be subordinate to the first mortgage.
The servicer must obtain a recorded subordination agreement before closing.
The minimum documentation includes the assessment contract and payoff statement.
Eligibility requires that the PACE assessment is current with no delinquent installments.`,
		},
		{
			"x1002", "FHA PACE Lien Requirements", "x1002_x200_x310", []string{"FHA"},
			`FHA permits PACE assessments that remain with the property, provided the
assessment does not accelerate on transfer. The lender must verify the PACE
obligation is current and must include the assessment in the qualifying ratios.
A PACE lien may not exceed the limits in the FHA handbook.`,
		},
		{
			"x1003", "Partial Claim Filing Procedure", "x1003_x210_x320", []string{"FHA"},
			`Follow these steps to file a partial claim.
Step 1: Confirm the borrower completed the trial payment plan.
Step 2: Submit the claim package through the servicing portal.
Step 3: Record the subordinate mortgage within the required window.
Step 4: Upload the recorded documents and enter the claim in the system.`,
		},
		{
			"x1004", "Escrow Account Overview", "x1004_x220", []string{"VA", "FHA", "CONV"},
			`An escrow account holds funds collected with the monthly payment to cover
property taxes and insurance premiums. The servicer analyzes the account each
year and adjusts the payment when the projected balance changes. Surplus above
the cushion is refunded to the borrower.`,
		},
		{
			"x1005", "Subordination Agreement Definitions", "x1005_x200_x330", []string{"CONV"},
			`A subordination agreement is defined as a contract that changes lien
priority between creditors. The term refers to the reordering of claims so a
new first mortgage records ahead of an existing junior lien. Resubordination
means executing a new agreement after refinancing.`,
		},
	}

	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		path, err := models.ParsePath(d.path)
		if err != nil {
			panic(err) // corpus paths are fixed at compile time
		}
		out = append(out, models.Document{
			RootID:   d.rootID,
			Title:    d.title,
			Content:  d.content,
			Path:     path,
			Products: d.products,
		})
	}
	return out
}

// Cases returns the benchmark queries with ground-truth expectations.
func Cases() []Case {
	return []Case{
		{
			Name:            "product specific requirements",
			Query:           "What are the VA requirements for PACE liens?",
			ExpectedRootIDs: []string{"x1001"},
			MinRecall:       1.0,
			MinPrecision:    0.5,
		},
		{
			Name:             "comparison across products",
			Query:            "Compare VA and FHA PACE lien requirements",
			ExpectedRootIDs:  []string{"x1001", "x1002"},
			ExpectedProducts: []string{"VA", "FHA"},
			MinRecall:        1.0,
			MinPrecision:     0.5,
		},
		{
			Name:            "procedure lookup",
			Query:           "How do I submit a partial claim package?",
			ExpectedRootIDs: []string{"x1003"},
			MinRecall:       1.0,
			MinPrecision:    0.5,
		},
		{
			Name:            "general overview",
			Query:           "Tell me about escrow accounts and annual analysis",
			ExpectedRootIDs: []string{"x1004"},
			MinRecall:       1.0,
			MinPrecision:    1.0,
		},
		{
			Name:            "definition lookup",
			Query:           "What does resubordination of a junior lien mean?",
			ExpectedRootIDs: []string{"x1005"},
			MinRecall:       1.0,
			MinPrecision:    0.5,
		},
	}
}
