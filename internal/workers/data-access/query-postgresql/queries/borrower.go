// internal/workers/data-access/query-postgresql/queries/borrower.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func BorrowerProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	borrowerID, ok := params["borrowerId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, email, relationshipTier, createdAt string
	var activeApplications int

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, relationship_tier, active_applications, created_at
		FROM borrowers
		WHERE id = $1`, borrowerID).Scan(
		&id, &name, &email,
		&relationshipTier, &activeApplications, &createdAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                 id,
		"name":               name,
		"email":              email,
		"relationshipTier":   relationshipTier,
		"activeApplications": activeApplications,
		"createdAt":          createdAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
