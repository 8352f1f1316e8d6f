package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/billing"
)

// nextDocumentNumber reads the highest business number in a table and returns
// the scheme's successor. Zero-padding keeps lexicographic and numeric order
// aligned, so MAX(column) is the latest number.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, table, column string, scheme billing.NumberScheme) (string, error) {
	var current string
	err := dbFor(ctx, db).
		Table(table).
		Select(column).
		Where(fmt.Sprintf("%s LIKE ?", column), scheme.Prefix+"-%").
		Order(fmt.Sprintf("%s DESC", column)).
		Limit(1).
		Scan(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return scheme.Next(current), nil
}
