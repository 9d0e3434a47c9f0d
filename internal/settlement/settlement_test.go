package settlement

import (
	"errors"
	"math"
	"testing"

	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/models"
)

func expenseWith(owner string, users ...string) *models.Expense {
	return &models.Expense{
		ID:       "expense-1",
		Name:     "Holiday",
		IsActive: true,
		OwnerID:  owner,
		UserIDs:  users,
	}
}

func transaction(payer string, value float64) *models.Transaction {
	return &models.Transaction{
		Name:      "tx",
		OwnerID:   payer,
		ExpenseID: "expense-1",
		Value:     value,
	}
}

func TestParticipantCount(t *testing.T) {
	tests := []struct {
		name    string
		expense *models.Expense
		mode    Counting
		want    int
	}{
		{
			name:    "owner not listed, owner counted",
			expense: expenseWith("bob", "john"),
			mode:    CountOwnerAlways,
			want:    2,
		},
		{
			name:    "owner not listed, listed only",
			expense: expenseWith("bob", "john"),
			mode:    CountListedOnly,
			want:    1,
		},
		{
			name:    "owner listed, owner counted once",
			expense: expenseWith("bob", "bob", "john"),
			mode:    CountOwnerAlways,
			want:    2,
		},
		{
			name:    "no participants, owner counted",
			expense: expenseWith("bob"),
			mode:    CountOwnerAlways,
			want:    1,
		},
		{
			name:    "no participants, listed only",
			expense: expenseWith("bob"),
			mode:    CountListedOnly,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParticipantCount(tt.expense, tt.mode); got != tt.want {
				t.Errorf("ParticipantCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOwed(t *testing.T) {
	expense := expenseWith("bob", "john", "anna")
	transactions := []*models.Transaction{
		transaction("bob", 100),
		transaction("anna", 30),
		transaction("john", 60),
	}

	// Owner counted: 3 participants (bob implicit + john + anna).
	owed, err := Owed(expense, transactions, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}
	// John owes 100/3 to bob and 30/3 to anna; his own 60 is excluded.
	want := 100.0/3 + 30.0/3
	if math.Abs(owed-want) > 1e-9 {
		t.Errorf("Owed = %v, want %v", owed, want)
	}

	// Listed only: 2 participants.
	owed, err = Owed(expense, transactions, "john", CountListedOnly)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}
	want = 100.0/2 + 30.0/2
	if math.Abs(owed-want) > 1e-9 {
		t.Errorf("Owed = %v, want %v", owed, want)
	}
}

func TestOwedSingleTransaction(t *testing.T) {
	// Bob pays 100 on an expense shared with John only.
	expense := expenseWith("bob", "john")
	transactions := []*models.Transaction{transaction("bob", 100)}

	owed, err := Owed(expense, transactions, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}
	if math.Abs(owed-50.0) > 1e-9 {
		t.Errorf("Owed = %v, want 50", owed)
	}

	// The payer owes nothing across other payers.
	owed, err = Owed(expense, transactions, "bob", CountOwnerAlways)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}
	if owed != 0 {
		t.Errorf("payer Owed = %v, want 0", owed)
	}
}

func TestOwedByPayer(t *testing.T) {
	expense := expenseWith("bob", "john", "anna")
	transactions := []*models.Transaction{
		transaction("bob", 90),
		transaction("bob", 30),
		transaction("anna", 60),
	}

	owed, err := OwedByPayer(expense, transactions, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("OwedByPayer failed: %v", err)
	}

	if math.Abs(owed["bob"]-40.0) > 1e-9 {
		t.Errorf("owed[bob] = %v, want 40", owed["bob"])
	}
	if math.Abs(owed["anna"]-20.0) > 1e-9 {
		t.Errorf("owed[anna] = %v, want 20", owed["anna"])
	}
	if _, ok := owed["john"]; ok {
		t.Error("requesting user must not appear in the breakdown")
	}
}

func TestOwedAdditivity(t *testing.T) {
	expense := expenseWith("bob", "john", "anna", "carol")
	transactions := []*models.Transaction{
		transaction("bob", 100),
		transaction("anna", 33.33),
		transaction("carol", 7),
		transaction("john", 12),
	}

	for _, mode := range []Counting{CountOwnerAlways, CountListedOnly} {
		total, err := Owed(expense, transactions, "john", mode)
		if err != nil {
			t.Fatalf("Owed failed: %v", err)
		}
		breakdown, err := OwedByPayer(expense, transactions, "john", mode)
		if err != nil {
			t.Fatalf("OwedByPayer failed: %v", err)
		}

		var sum float64
		for _, v := range breakdown {
			sum += v
		}
		if math.Abs(total-sum) > 1e-9 {
			t.Errorf("mode %v: aggregate %v != breakdown sum %v", mode, total, sum)
		}
	}
}

func TestOwedScaleInvariant(t *testing.T) {
	expense := expenseWith("bob", "john", "anna")
	transactions := []*models.Transaction{
		transaction("bob", 100),
		transaction("anna", 45.5),
	}
	doubled := []*models.Transaction{
		transaction("bob", 200),
		transaction("anna", 91),
	}

	base, err := OwedByPayer(expense, transactions, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("OwedByPayer failed: %v", err)
	}
	scaled, err := OwedByPayer(expense, doubled, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("OwedByPayer failed: %v", err)
	}

	for payer, v := range base {
		if math.Abs(scaled[payer]-2*v) > 1e-9 {
			t.Errorf("owed[%s] = %v after doubling, want %v", payer, scaled[payer], 2*v)
		}
	}
}

func TestOwedZeroParticipants(t *testing.T) {
	expense := expenseWith("bob")
	transactions := []*models.Transaction{transaction("bob", 100)}

	_, err := Owed(expense, transactions, "john", CountListedOnly)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("Owed error = %v, want invalid state", err)
	}

	_, err = OwedByPayer(expense, transactions, "john", CountListedOnly)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("OwedByPayer error = %v, want invalid state", err)
	}
}

func TestOwedIgnoresSubParticipants(t *testing.T) {
	expense := expenseWith("bob", "john", "anna")

	plain := []*models.Transaction{transaction("bob", 90)}
	narrowed := []*models.Transaction{
		{Name: "tx", OwnerID: "bob", ExpenseID: "expense-1", Value: 90, UserIDs: []string{"john"}},
	}

	a, err := Owed(expense, plain, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}
	b, err := Owed(expense, narrowed, "john", CountOwnerAlways)
	if err != nil {
		t.Fatalf("Owed failed: %v", err)
	}

	// The sub-participant list is validated at creation but not consumed
	// by the division.
	if a != b {
		t.Errorf("sub-participant list changed the division: %v != %v", a, b)
	}
}
