// Command gen-catalog writes a set of sample journey documents that can be
// served read-only with `journey --catalog <dir>`.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/pkg/domain"
	"github.com/aretw0/journey/pkg/dsl"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"gopkg.in/yaml.v3"
)

func main() {
	targetDir := "catalog"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		fail(err)
	}
	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Generating sample catalog in: %s\n", absPath)

	// No versioning: plain files that can be edited by hand afterwards.
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		fail(err)
	}

	ids, err := generate(context.Background(), repo)
	if err != nil {
		fail(err)
	}
	for _, id := range ids {
		fmt.Println("  wrote", id)
	}
	fmt.Println("Done. Try: journey --catalog", targetDir, "list")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// samples are the journeys written by generate, in order.
func samples() []*domain.Journey {
	return []*domain.Journey{
		dsl.New("SaaS Trial").
			State("Awareness").Describe("Sees an ad or article").
			Go("Signup", 0.25).Via("paid_search").On("ad_click").Brief("Benefit-led search ad").
			Go("Signup", 0.1).Via("organic").On("blog_read").
			State("Signup").Dwell(1).
			Go("Activated", 0.55).Via("email").On("welcome_sequence").Brief("Three-step setup guide").
			State("Activated").Dwell(7).
			Go("Paid", 0.3).Via("sales_call").On("trial_ending").
			Go("Paid", 0.1).Via("in_app").On("upgrade_prompt").
			State("Paid").
			MustBuild(),

		dsl.New("Ecommerce Checkout").
			State("Product View").
			Go("Cart", 0.3).Via("web").On("add_to_cart").
			State("Cart").Dwell(0.5).
			Go("Checkout", 0.6).Via("web").
			Go("Product View", 0.2).Via("retargeting").On("abandoned_cart").Brief("Reminder with social proof").
			State("Checkout").Dwell(0.1).
			Go("Purchase", 0.7).Via("web").On("payment").
			State("Purchase").
			MustBuild(),

		dsl.New("Win Back").
			State("Lapsed").
			Go("Re-engaged", 0.15).Via("email").On("discount_offer").Brief("20% comeback code").
			Go("Re-engaged", 0.05).Via("sms").
			State("Re-engaged").Dwell(14).
			Go("Retained", 0.5).Via("in_app").
			State("Retained").
			MustBuild(),
	}
}

// generate saves every sample as a Markdown document with YAML frontmatter
// and returns the document IDs.
func generate(ctx context.Context, repo core.Repository) ([]string, error) {
	var ids []string
	for _, j := range samples() {
		front, err := yaml.Marshal(dto.FromJourney(j))
		if err != nil {
			return nil, err
		}
		doc := core.Document{
			ID:      j.ID + ".md",
			Content: fmt.Sprintf("---\n%s---\nSample journey: %s.\n", front, j.Name),
		}
		if err := repo.Save(ctx, doc); err != nil {
			return nil, fmt.Errorf("save %s: %w", doc.ID, err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}
