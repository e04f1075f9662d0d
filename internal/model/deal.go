package model

import "time"

// Pipeline stages a deal can occupy, in board order.  This is a fixed
// enumeration; the service validates membership only and applies no
// transition rules between stages.
const (
	StageSourced   = "Sourced"
	StageScreen    = "Screen"
	StageDiligence = "Diligence"
	StageIC        = "IC"
	StageInvested  = "Invested"
	StagePassed    = "Passed"
)

// Stages lists all pipeline stages in board order.
var Stages = []string{
	StageSourced, StageScreen, StageDiligence, StageIC, StageInvested, StagePassed,
}

// ValidStage reports whether s is a known pipeline stage.
func ValidStage(s string) bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Deal represents a row in the `deals` table.  A deal tracks one investment
// opportunity moving across the Kanban board.
//
// Fields:
//  ID         – primary key identifier of the deal.
//  Name       – deal name shown on the board card.
//  CompanyURL – optional link to the target company (nullable).
//  Owner      – free-form name of the person driving the deal.
//  Stage      – one of the Stage* constants above.
//  Round      – optional funding round label (nullable).
//  CheckSize  – optional proposed check size in dollars (nullable).
//  Status     – "active" or "archived".
//  CreatedBy  – id of the user who created the record.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Deal struct {
	ID         uint64    // deals.id
	Name       string    // deals.name
	CompanyURL *string   // deals.company_url (nullable)
	Owner      string    // deals.owner
	Stage      string    // deals.stage
	Round      *string   // deals.round (nullable)
	CheckSize  *float64  // deals.check_size (nullable)
	Status     string    // deals.status
	CreatedBy  uint64    // deals.created_by
	CreatedAt  time.Time // deals.created_at
	UpdatedAt  time.Time // deals.updated_at
}
