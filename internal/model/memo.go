package model

import "time"

// Memo represents a row in the `ic_memos` table: the current version of a
// deal's investment-committee memo. One memo per deal; every save bumps
// CurrentVersion and snapshots the content into `ic_memo_versions`.
//
// Fields:
//  ID             – primary key identifier of the memo.
//  DealID         – deal this memo evaluates (unique).
//  CreatedBy      – id of the user who wrote the first version.
//  LastUpdatedBy  – id of the user who wrote the current version.
//  CurrentVersion – version number of the content held on this row.
//  Summary..OpenQuestions – the memo sections, all optional (nullable).
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type Memo struct {
	ID             uint64    // ic_memos.id
	DealID         uint64    // ic_memos.deal_id
	CreatedBy      uint64    // ic_memos.created_by
	LastUpdatedBy  uint64    // ic_memos.last_updated_by
	CurrentVersion int       // ic_memos.current_version
	Summary        *string   // ic_memos.summary (nullable)
	Market         *string   // ic_memos.market (nullable)
	Product        *string   // ic_memos.product (nullable)
	Traction       *string   // ic_memos.traction (nullable)
	Risks          *string   // ic_memos.risks (nullable)
	OpenQuestions  *string   // ic_memos.open_questions (nullable)
	CreatedAt      time.Time // ic_memos.created_at
	UpdatedAt      time.Time // ic_memos.updated_at
}

// MemoVersion represents a row in the `ic_memo_versions` table: an
// immutable snapshot of the memo content at one version number.
type MemoVersion struct {
	ID            uint64    // ic_memo_versions.id
	MemoID        uint64    // ic_memo_versions.memo_id
	DealID        uint64    // ic_memo_versions.deal_id
	VersionNumber int       // ic_memo_versions.version_number
	CreatedBy     uint64    // ic_memo_versions.created_by
	Summary       *string   // ic_memo_versions.summary (nullable)
	Market        *string   // ic_memo_versions.market (nullable)
	Product       *string   // ic_memo_versions.product (nullable)
	Traction      *string   // ic_memo_versions.traction (nullable)
	Risks         *string   // ic_memo_versions.risks (nullable)
	OpenQuestions *string   // ic_memo_versions.open_questions (nullable)
	ChangeSummary *string   // ic_memo_versions.change_summary (nullable)
	CreatedAt     time.Time // ic_memo_versions.created_at
}
