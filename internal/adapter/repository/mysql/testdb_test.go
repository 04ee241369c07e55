package mysql

import (
	"testing"
	"time"

	"mortgage-underwriting/internal/domain/audit"
	docDomain "mortgage-underwriting/internal/domain/document"
	loanDomain "mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with every table the repositories touch.
// One connection only: a second one would see a different, empty database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&loanDomain.Loan{}, &docDomain.Document{}, &audit.Record{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLoan(borrowerID string, status loanDomain.Status) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:          id.NewID32(),
		BorrowerID:      borrowerID,
		Amount:          245_000,
		DurationYears:   20,
		Rate:            3.22,
		Tier:            "standard",
		MonthlyCredit:   1385.90,
		MonthlyTotal:    1459.40,
		ProjectType:     docDomain.ProjectPrimaryResidence,
		Status:          status,
		StatusUpdatedAt: time.Now().UTC(),
		EscrowStatus:    "none",
	}
}

func makeDocument(loanNumericID uint64, c docDomain.Category, s docDomain.Status) *docDomain.Document {
	return &docDomain.Document{
		DocumentID: id.NewID32(),
		LoanID:     loanNumericID,
		BorrowerID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Category:   c,
		Direction:  docDomain.DirectionOutgoing,
		Owner:      docDomain.OwnerPrimary,
		Status:     s,
		BlobPath:   "loans/x/" + string(c) + ".pdf",
		FileName:   string(c) + ".pdf",
	}
}
