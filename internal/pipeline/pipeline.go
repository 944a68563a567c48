// internal/pipeline/pipeline.go

// Package pipeline runs the full underwriting sequence in-process,
// without a workflow engine. The worker handlers stay the single source
// of scoring logic; the runner only assembles their inputs and threads
// the intermediate results through.
package pipeline

import (
	"context"
	"fmt"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	crs "mortgage-workers/internal/workers/application/check-readiness-score"
	na "mortgage-workers/internal/workers/application/normalize-application"
	vad "mortgage-workers/internal/workers/application/validate-application-data"
	acs "mortgage-workers/internal/workers/credit/analyze-credit-score"
	cdt "mortgage-workers/internal/workers/credit/calculate-dti"
	cin "mortgage-workers/internal/workers/credit/calculate-income"
	apr "mortgage-workers/internal/workers/property/analyze-property-risk"
	clt "mortgage-workers/internal/workers/property/calculate-ltv"
	sk "mortgage-workers/internal/workers/risk/screen-kyc"
	sps "mortgage-workers/internal/workers/risk/screen-pep-sanctions"
	dl "mortgage-workers/internal/workers/underwriting/decide-loan"
)

// Runner executes the underwriting stages against a single application.
type Runner struct {
	validator *vad.Handler
	normalize *na.Handler
	readiness *crs.Handler
	income    *cin.Handler
	credit    *acs.Handler
	dti       *cdt.Handler
	ltv       *clt.Handler
	property  *apr.Handler
	kyc       *sk.Handler
	sanctions *sps.Handler
	decider   *dl.Handler
	logger    logger.Logger
}

func NewRunner(log logger.Logger) *Runner {
	return &Runner{
		validator: vad.NewHandler(vad.LoadConfig(), log),
		normalize: na.NewHandler(na.LoadConfig(), log),
		readiness: crs.NewHandler(crs.LoadConfig(), log),
		income:    cin.NewHandler(cin.LoadConfig(), log),
		credit:    acs.NewHandler(acs.LoadConfig(), log),
		dti:       cdt.NewHandler(cdt.LoadConfig(), log),
		ltv:       clt.NewHandler(clt.LoadConfig(), log),
		property:  apr.NewHandler(apr.LoadConfig(), log),
		kyc:       sk.NewHandler(sk.LoadConfig(), log),
		sanctions: sps.NewHandler(sps.LoadConfig(), log),
		decider:   dl.NewHandler(dl.LoadConfig(), log),
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Result collects every stage output the run produced. Stages that did
// not run because of an earlier failure are nil.
type Result struct {
	ApplicationID string                  `json:"applicationId"`
	Validation    *vad.Output             `json:"validation,omitempty"`
	Normalized    *models.NormalizedRecord `json:"normalized,omitempty"`
	Readiness     *crs.Output             `json:"readiness,omitempty"`
	Income        *cin.Output             `json:"income,omitempty"`
	Credit        *acs.Output             `json:"credit,omitempty"`
	DTI           *cdt.Output             `json:"dti,omitempty"`
	LTV           *clt.Output             `json:"ltv,omitempty"`
	Property      *apr.Output             `json:"property,omitempty"`
	KYC           *sk.Output              `json:"kyc,omitempty"`
	Sanctions     *sps.Output             `json:"sanctions,omitempty"`
	Decision      *dl.Output              `json:"decision,omitempty"`
}

// Run validates, normalizes, scores, and decisions one application. The
// returned Result carries whatever stages completed, even on error.
func (r *Runner) Run(ctx context.Context, app models.ApplicationRecord) (*Result, error) {
	result := &Result{ApplicationID: app.ApplicationID}

	validation, err := r.validator.Execute(ctx, &vad.Input{Application: app})
	if err != nil {
		return result, fmt.Errorf("validate application: %w", err)
	}
	result.Validation = validation
	if !validation.IsValid {
		return result, fmt.Errorf("application %s failed validation with %d errors",
			app.ApplicationID, len(validation.ValidationErrors))
	}

	normalized, err := r.normalize.Execute(ctx, &na.Input{Application: app})
	if err != nil {
		return result, fmt.Errorf("normalize application: %w", err)
	}
	record := normalized.Normalized
	result.Normalized = &record

	readiness, err := r.readiness.Execute(ctx, &crs.Input{Application: app})
	if err != nil {
		return result, fmt.Errorf("check readiness: %w", err)
	}
	result.Readiness = readiness

	income, err := r.income.Execute(ctx, &cin.Input{
		ApplicationID: record.ApplicationID,
		IncomeSources: record.IncomeSources,
	})
	if err != nil {
		return result, fmt.Errorf("calculate income: %w", err)
	}
	result.Income = income

	program := resolveProgram(record.Loan)

	credit, err := r.credit.Execute(ctx, &acs.Input{
		ApplicationID: record.ApplicationID,
		CreditScores:  record.CreditScores,
		Programs:      candidatePrograms(record.Loan),
		LoanAmount:    record.Loan.LoanAmount,
	})
	if err != nil {
		return result, fmt.Errorf("analyze credit: %w", err)
	}
	result.Credit = credit

	dti, err := r.dti.Execute(ctx, &cdt.Input{
		ApplicationID:          record.ApplicationID,
		MonthlyIncome:          income.QualifiedMonthlyIncome,
		Debts:                  record.Debts,
		ProposedHousingPayment: record.Loan.EstimatedHousingPayment,
		LoanAmount:             record.Loan.LoanAmount,
		Program:                program,
	})
	if err != nil {
		return result, fmt.Errorf("calculate dti: %w", err)
	}
	result.DTI = dti

	var subordinate float64
	for _, lien := range record.Loan.SubordinateLiens {
		subordinate += lien
	}
	ltv, err := r.ltv.Execute(ctx, &clt.Input{
		ApplicationID:    record.ApplicationID,
		LoanAmount:       record.Loan.LoanAmount,
		AppraisedValue:   record.Property.AppraisedValue,
		PurchasePrice:    record.Property.PurchasePrice,
		DownPayment:      record.Loan.DownPayment,
		SubordinateLiens: subordinate,
		Program:          program,
		Purpose:          record.Loan.Purpose,
	})
	if err != nil {
		return result, fmt.Errorf("calculate ltv: %w", err)
	}
	result.LTV = ltv

	property, err := r.property.Execute(ctx, &apr.Input{
		ApplicationID: record.ApplicationID,
		Property:      record.Property,
		MonthlyIncome: income.QualifiedMonthlyIncome,
	})
	if err != nil {
		return result, fmt.Errorf("analyze property: %w", err)
	}
	result.Property = property

	kyc, err := r.kyc.Execute(ctx, &sk.Input{
		ApplicationID:        record.ApplicationID,
		Borrower:             record.Borrower,
		Documents:            record.Documents,
		VerifiedAnnualIncome: income.QualifiedAnnualIncome,
	})
	if err != nil {
		return result, fmt.Errorf("screen kyc: %w", err)
	}
	result.KYC = kyc

	sanctions, err := r.sanctions.Execute(ctx, &sps.Input{
		ApplicationID: record.ApplicationID,
		Borrower:      record.Borrower,
	})
	if err != nil {
		return result, fmt.Errorf("screen pep/sanctions: %w", err)
	}
	result.Sanctions = sanctions

	decision, err := r.decider.Execute(ctx, &dl.Input{
		ApplicationID:             record.ApplicationID,
		Program:                   program,
		LoanAmount:                record.Loan.LoanAmount,
		AppraisedValue:            record.Property.AppraisedValue,
		LoanTermMonths:            record.Loan.TermMonths,
		CreditScore:               credit.RepresentativeScore,
		TotalDTI:                  dti.TotalDTI,
		LTV:                       ltv.LTV,
		QualifiedMonthlyIncome:    income.QualifiedMonthlyIncome,
		RegulatoryCompliance:      kyc.RegulatoryComplianceStatus,
		PEPSanctionsClear:         kyc.PEPSanctionsClear && sanctions.PEPSanctionsClear,
		IncomeVerified:            record.Borrower.IncomeVerified,
		// Authenticity is reported on a 0-1 scale; the decision floor is
		// percentage based.
		DocumentAuthenticityScore: kyc.Authenticity.OverallScore * 100,
		CreditResult:              &credit.Result,
		DTIResult:                 &dti.Result,
		LTVResult:                 &ltv.Result,
		PropertyResult:            &property.Result,
		KYCResult:                 &kyc.Result,
	})
	if err != nil {
		return result, fmt.Errorf("decide loan: %w", err)
	}
	result.Decision = decision

	r.logger.Info("pipeline complete", map[string]interface{}{
		"applicationId": record.ApplicationID,
		"decision":      decision.Decision.Decision,
		"totalScore":    decision.Decision.TotalScore,
		"riskGrade":     decision.Decision.RiskGrade,
	})

	return result, nil
}

// resolveProgram picks the program the terms are priced against: the
// explicit request wins, then the first requested alternative, then
// conventional.
func resolveProgram(loan models.LoanRequest) models.LoanProgram {
	if loan.Program.Valid() {
		return loan.Program
	}
	for _, p := range loan.Programs {
		if p.Valid() {
			return p
		}
	}
	return models.LoanProgramConventional
}

func candidatePrograms(loan models.LoanRequest) []models.LoanProgram {
	if len(loan.Programs) > 0 {
		return loan.Programs
	}
	if loan.Program.Valid() {
		return []models.LoanProgram{loan.Program}
	}
	return nil
}
