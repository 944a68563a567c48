// internal/workers/data-access/query-postgresql/queries/application.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

func ApplicationFullDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	applicationID, ok := params["applicationId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, borrowerName, loanProgram, applicationData, status, createdAt, updatedAt string
	var loanAmount float64

	err := db.QueryRowContext(ctx, `
		SELECT id, borrower_name, loan_program, loan_amount,
		       application_data, status, created_at, updated_at
		FROM applications
		WHERE id = $1`, applicationID).Scan(
		&id, &borrowerName, &loanProgram, &loanAmount,
		&applicationData, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":              id,
		"borrowerName":    borrowerName,
		"loanProgram":     loanProgram,
		"loanAmount":      loanAmount,
		"applicationData": applicationData,
		"status":          status,
		"createdAt":       createdAt,
		"updatedAt":       updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func ApplicationDecision(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	applicationID, ok := params["applicationId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var appID, decision, riskGrade, pricingTier, decisionData, decidedAt string
	var totalScore float64

	err := db.QueryRowContext(ctx, `
		SELECT application_id, decision, total_score, risk_grade,
		       pricing_tier, decision_data, decided_at
		FROM decisions
		WHERE application_id = $1`, applicationID).Scan(
		&appID, &decision, &totalScore, &riskGrade,
		&pricingTier, &decisionData, &decidedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"applicationId": appID,
		"decision":      decision,
		"totalScore":    totalScore,
		"riskGrade":     riskGrade,
		"pricingTier":   pricingTier,
		"decisionData":  decisionData,
		"decidedAt":     decidedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func ApplicationsByStatus(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	filters, _ := params["filters"].(map[string]interface{})
	status, ok := filters["status"].(string)
	if !ok || status == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, borrower_name, loan_program, loan_amount, status, created_at
		FROM applications
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 100`, status)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, borrowerName, loanProgram, rowStatus, createdAt string
		var loanAmount float64
		if err := rows.Scan(&id, &borrowerName, &loanProgram, &loanAmount, &rowStatus, &createdAt); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"borrowerName": borrowerName,
			"loanProgram":  loanProgram,
			"loanAmount":   loanAmount,
			"status":       rowStatus,
			"createdAt":    createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func ApplicationSummaries(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	applicationIDs, ok := params["applicationIds"].([]string)
	if !ok || len(applicationIDs) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	placeholders := make([]string, len(applicationIDs))
	args := make([]interface{}, len(applicationIDs))
	for i, id := range applicationIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT id, borrower_name, loan_program, loan_amount, status
	          FROM applications WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, borrowerName, loanProgram, status string
		var loanAmount float64
		if err := rows.Scan(&id, &borrowerName, &loanProgram, &loanAmount, &status); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"borrowerName": borrowerName,
			"loanProgram":  loanProgram,
			"loanAmount":   loanAmount,
			"status":       status,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
