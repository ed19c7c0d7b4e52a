package main

import (
	"context"
	"fmt"
	"log"

	"github.com/civigraph/civigraph"
	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
)

// Observations of the same organization and person as they appear across
// different public-records feeds, with the spelling drift and identifier
// coverage typical of such sources.
var observations = []*model.EntityCandidate{
	{
		Name:       "Harborview Development Inc.",
		Type:       model.CandidateTypeOrganization,
		Source:     "state_registry",
		Attributes: model.Attributes{"state": "WA"},
		Identifiers: map[model.IdentifierKind]string{
			model.IdentifierTaxID: "91-1234567",
		},
	},
	{
		Name:   "Harborview Development LLC",
		Type:   model.CandidateTypeOrganization,
		Source: "city_contracts",
	},
	{
		Name:       "Harborview Dev Group",
		Type:       model.CandidateTypeOrganization,
		Source:     "campaign_finance",
		Attributes: model.Attributes{"total_donated": 12500},
		Identifiers: map[model.IdentifierKind]string{
			model.IdentifierTaxID: "91-1234567",
		},
	},
	{
		Name:       "Diane Okafor",
		Type:       model.CandidateTypePerson,
		Source:     "state_registry",
		Attributes: model.Attributes{"title": "President"},
	},
	{
		Name:   "Diane Okafer",
		Type:   model.CandidateTypePerson,
		Source: "council_minutes",
	},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	c, err := civigraph.NewCivigraph(dbConfig, model.DefaultResolverConfig())
	if err != nil {
		log.Fatalf("Failed to create civigraph: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	// Resolve each observation against the graph. The three organization
	// sightings and the two person sightings should collapse onto one
	// entity each.
	fmt.Println("Resolving observations...")
	var orgID, personID = "", ""
	for _, candidate := range observations {
		resolved, err := c.ResolveEntity(ctx, candidate)
		if err != nil {
			log.Fatalf("Failed to resolve %q: %v", candidate.Name, err)
		}
		fmt.Printf("  %-30s -> %s (new=%t, matched_by=%s, confidence=%.3f)\n",
			candidate.Name, resolved.EntityID, resolved.IsNew, resolved.MatchedBy, resolved.Confidence)

		switch candidate.Type {
		case model.CandidateTypeOrganization:
			orgID = resolved.EntityID.String()
		case model.CandidateTypePerson:
			personID = resolved.EntityID.String()
		}
	}

	// Connect the person to the organization
	org, err := c.SearchEntities(ctx, "harborview", nil, 1)
	if err != nil || len(org) == 0 {
		log.Fatalf("Failed to find organization: %v", err)
	}
	person, err := c.SearchEntities(ctx, "okafor", nil, 1)
	if err != nil || len(person) == 0 {
		log.Fatalf("Failed to find person: %v", err)
	}

	rel := &model.Relationship{
		SourceEntityID: person[0].ID,
		TargetEntityID: org[0].ID,
		RelationType:   model.RelationTypeOfficerOf,
		Weight:         1.0,
	}
	if err := c.AddRelationship(ctx, rel); err != nil {
		log.Fatalf("Failed to add relationship: %v", err)
	}
	fmt.Printf("\nLinked %s -[%s]-> %s\n", person[0].Name, rel.RelationType, org[0].Name)

	// Show what the merged organization looks like
	fmt.Printf("\nOrganization %s (%s):\n", org[0].Name, orgID)
	fmt.Printf("  Aliases:  %v\n", org[0].Aliases)
	fmt.Printf("  Sources:  %v\n", org[0].Attributes.Sources())
	fmt.Printf("  Mentions: %d\n", org[0].MentionCount)
	fmt.Printf("\nPerson %s (%s), mentions: %d\n", person[0].Name, personID, person[0].MentionCount)

	// Sweep for remaining near-duplicates
	pairs, err := c.FindDuplicates(ctx, 0.85)
	if err != nil {
		log.Fatalf("Failed to scan for duplicates: %v", err)
	}
	fmt.Printf("\nDuplicate scan found %d pair(s):\n", len(pairs))
	for _, pair := range pairs {
		fmt.Printf("  %q <-> %q (score %.3f)\n", pair.NameA, pair.NameB, pair.Score)
	}

	// Merge any surfaced pair, keeping the first entity as primary
	for _, pair := range pairs {
		if err := c.MergeEntities(ctx, pair.EntityAID, pair.EntityBID); err != nil {
			log.Fatalf("Failed to merge %q into %q: %v", pair.NameB, pair.NameA, err)
		}
		fmt.Printf("Merged %q into %q\n", pair.NameB, pair.NameA)
	}

	fmt.Println("\nBasic example completed successfully!")
}
