package settlement

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mihau1211/expense-share/internal/apperr"
	"github.com/mihau1211/expense-share/internal/models"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// SortTransactions orders transactions in place by the given field and
// direction. String fields compare with locale-aware collation; numeric
// fields by value. The order is deterministic for non-equal keys; ties keep
// no particular order.
func SortTransactions(transactions []*models.Transaction, field, direction string) error {
	if direction != Asc && direction != Desc {
		return apperr.New(apperr.ErrValidation, "", "sort direction must be asc or desc")
	}

	var less func(a, b *models.Transaction) bool
	switch field {
	case "name":
		c := collate.New(language.English)
		less = func(a, b *models.Transaction) bool {
			return c.CompareString(a.Name, b.Name) < 0
		}
	case "description":
		c := collate.New(language.English)
		less = func(a, b *models.Transaction) bool {
			return c.CompareString(a.Description, b.Description) < 0
		}
	case "value":
		less = func(a, b *models.Transaction) bool {
			return a.Value < b.Value
		}
	case "date":
		less = func(a, b *models.Transaction) bool {
			return a.Date < b.Date
		}
	default:
		return apperr.New(apperr.ErrValidation, "", "unknown sort field: "+field)
	}

	sort.Slice(transactions, func(i, j int) bool {
		if direction == Desc {
			return less(transactions[j], transactions[i])
		}
		return less(transactions[i], transactions[j])
	})

	return nil
}
