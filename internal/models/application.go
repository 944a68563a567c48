// internal/models/application.go
package models

// ApplicationRecord is the top-level pipeline input. It is immutable once
// submitted: every scorer reads it, none writes it back.
type ApplicationRecord struct {
	ApplicationID string                `json:"applicationId"`
	Borrower      BorrowerInfo          `json:"borrower"`
	CreditScores  []CreditScoreEntry    `json:"creditScores"`
	IncomeSources []IncomeSourceEntry   `json:"incomeSources"`
	Debts         []DebtObligationEntry `json:"debts"`
	Property      PropertyRecord        `json:"property"`
	Loan          LoanRequest           `json:"loan"`
	Documents     []DocumentRecord      `json:"documents,omitempty"`
	SubmittedAt   string                `json:"submittedAt"`
}

type BorrowerInfo struct {
	Name           string  `json:"name"`
	FirstName      string  `json:"firstName,omitempty"`
	LastName       string  `json:"lastName,omitempty"`
	SSN            string  `json:"ssn,omitempty"`
	DateOfBirth    string  `json:"dateOfBirth,omitempty"`
	Nationality    string  `json:"nationality,omitempty"`
	PhoneNumber    string  `json:"phoneNumber,omitempty"`
	Email          string  `json:"email,omitempty"`
	CurrentAddress string  `json:"currentAddress,omitempty"`
	AnnualIncome   float64 `json:"annualIncome,omitempty"`
	IncomeVerified bool    `json:"incomeVerified,omitempty"`
}

type CreditScoreEntry struct {
	Bureau     string   `json:"bureau"`
	ScoreType  string   `json:"scoreType,omitempty"`
	ScoreValue int      `json:"scoreValue"`
	ScoreDate  string   `json:"scoreDate,omitempty"`
	Factors    []string `json:"factors,omitempty"`
}

type IncomeSourceEntry struct {
	SourceType           IncomeSourceType `json:"sourceType"`
	Employer             string           `json:"employer,omitempty"`
	Amount               float64          `json:"amount"`
	Frequency            IncomeFrequency  `json:"frequency"`
	MonthlyAmount        float64          `json:"monthlyAmount,omitempty"`
	AnnualAmount         float64          `json:"annualAmount,omitempty"`
	IsContinuing         bool             `json:"isContinuing"`
	IsVariable           bool             `json:"isVariable,omitempty"`
	StabilityMonths      int              `json:"stabilityMonths,omitempty"`
	YearOverYearChange   float64          `json:"yearOverYearChange,omitempty"`
	DocumentationQuality string           `json:"documentationQuality,omitempty"`
}

type DebtObligationEntry struct {
	DebtType        DebtType `json:"debtType"`
	Creditor        string   `json:"creditor,omitempty"`
	MonthlyPayment  float64  `json:"monthlyPayment"`
	CurrentBalance  float64  `json:"currentBalance,omitempty"`
	RemainingMonths int      `json:"remainingMonths,omitempty"`
	IsRevolving     bool     `json:"isRevolving,omitempty"`
}

type PropertyRecord struct {
	AppraisedValue   float64      `json:"appraisedValue"`
	PurchasePrice    float64      `json:"purchasePrice,omitempty"`
	PropertyType     PropertyType `json:"propertyType"`
	YearBuilt        int          `json:"yearBuilt,omitempty"`
	Address          string       `json:"address,omitempty"`
	City             string       `json:"city,omitempty"`
	State            string       `json:"state,omitempty"`
	ZipCode          string       `json:"zipCode,omitempty"`
	AnnualTaxes      float64      `json:"annualTaxes,omitempty"`
	MonthlyHOA       float64      `json:"monthlyHoa,omitempty"`
	AnnualInsurance  float64      `json:"annualInsurance,omitempty"`
	InspectionIssues []string     `json:"inspectionIssues,omitempty"`
}

type LoanRequest struct {
	LoanAmount              float64       `json:"loanAmount"`
	Program                 LoanProgram   `json:"program,omitempty"`
	Programs                []LoanProgram `json:"programs,omitempty"`
	Purpose                 LoanPurpose   `json:"purpose,omitempty"`
	TermMonths              int           `json:"termMonths,omitempty"`
	DownPayment             float64       `json:"downPayment,omitempty"`
	SubordinateLiens        []float64     `json:"subordinateLiens,omitempty"`
	EstimatedHousingPayment float64       `json:"estimatedHousingPayment,omitempty"`
	DTIHint                 float64       `json:"dtiHint,omitempty"`
	LTVHint                 float64       `json:"ltvHint,omitempty"`
}

// DocumentRecord is what intake/OCR hands over per document. ExtractedData
// keys are free-form; unknown keys are never an error.
type DocumentRecord struct {
	DocumentID       string                 `json:"documentId"`
	DocumentType     string                 `json:"documentType"`
	ValidationStatus ValidationStatus       `json:"validationStatus,omitempty"`
	ExtractedData    map[string]interface{} `json:"extractedData,omitempty"`
}

// NormalizedRecord is the Normalizer output: the same application with
// canonical annual/monthly amounts and normalized identifiers.
type NormalizedRecord struct {
	ApplicationID        string                `json:"applicationId"`
	Borrower             BorrowerInfo          `json:"borrower"`
	NormalizedSSN        string                `json:"normalizedSsn,omitempty"`
	NormalizedPhone      string                `json:"normalizedPhone,omitempty"`
	CreditScores         []CreditScoreEntry    `json:"creditScores"`
	IncomeSources        []IncomeSourceEntry   `json:"incomeSources"`
	TotalMonthlyIncome   float64               `json:"totalMonthlyIncome"`
	TotalAnnualIncome    float64               `json:"totalAnnualIncome"`
	Debts                []DebtObligationEntry `json:"debts"`
	TotalMonthlyDebt     float64               `json:"totalMonthlyDebt"`
	Property             PropertyRecord        `json:"property"`
	Loan                 LoanRequest           `json:"loan"`
	Documents            []DocumentRecord      `json:"documents,omitempty"`
	Warnings             []string              `json:"warnings,omitempty"`
}
