// internal/workers/risk/screen-kyc/handler.go
package screenkyc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"
	"mortgage-workers/internal/providers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "screen-kyc"
)

// Number of synthetic identity patterns the detector checks for.
const syntheticPatternCount = 3

type Handler struct {
	config    *Config
	logger    logger.Logger
	screening providers.SanctionsScreeningProvider
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return NewHandlerWithProvider(config, log, providers.UnavailableSanctions{})
}

func NewHandlerWithProvider(config *Config, log logger.Logger, screening providers.SanctionsScreeningProvider) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		screening: screening,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "KYC_SCREENING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Borrower.Name) == "" {
		return nil, errors.NewValidationError("borrower.name", "borrower name is required for screening")
	}

	identityDocs, addressDocs := splitDocuments(input.Documents)

	identity := verifyIdentity(&input.Borrower, identityDocs)
	address := verifyAddress(&input.Borrower, addressDocs)
	authenticity := assessAuthenticity(input.Documents)
	consistency := checkConsistency(input, identityDocs, addressDocs)
	fraud := detectFraud(&input.Borrower, identity, address, authenticity)

	risks := ComponentRisks{
		Identity:     round2((1 - identity.Confidence) * 100),
		Address:      round2((1 - address.Confidence) * 100),
		Authenticity: round2((1 - authenticity.OverallScore) * 100),
		Consistency:  round2(100 - consistency.Score),
		Fraud:        fraud.RiskScore,
	}

	overall := overallRisk(risks)
	level := riskLevel(overall)

	pepClear, complianceStatus, err := h.screenSanctions(ctx, &input.Borrower, level)
	if err != nil {
		return nil, errors.NewScreeningFailedError("watchlist", err)
	}

	output := &Output{
		ApplicationID:                input.ApplicationID,
		Identity:                     identity,
		Address:                      address,
		Authenticity:                 authenticity,
		Consistency:                  consistency,
		Fraud:                        fraud,
		ComponentRisks:               risks,
		OverallRiskScore:             overall,
		RiskLevel:                    level,
		RiskFactors:                  riskFactors(risks),
		RequiresEnhancedVerification: overall >= programs.EnhancedVerificationThreshold,
		PEPSanctionsClear:            pepClear,
		RegulatoryComplianceStatus:   complianceStatus,
		Confidence:                   confidence(identity, address, authenticity, len(identityDocs), len(addressDocs)),
	}
	output.Result = buildCategoryResult(output)

	h.logger.Info("kyc screening complete", map[string]interface{}{
		"applicationId":    input.ApplicationID,
		"overallRiskScore": overall,
		"riskLevel":        level,
		"pepClear":         pepClear,
		"compliance":       complianceStatus,
	})

	return output, nil
}

func splitDocuments(docs []models.DocumentRecord) (identity, address []models.DocumentRecord) {
	for _, doc := range docs {
		docType := strings.ToLower(doc.DocumentType)
		if programs.IdentityDocumentTypes[docType] {
			identity = append(identity, doc)
		}
		if programs.AddressDocumentTypes[docType] {
			address = append(address, doc)
		}
	}
	return identity, address
}

// verifyIdentity cross-matches the borrower's name, SSN and date of
// birth against each identity document and blends the match rates into
// one confidence.
func verifyIdentity(borrower *models.BorrowerInfo, docs []models.DocumentRecord) VerificationResult {
	result := VerificationResult{Methods: []string{}, Issues: []string{}}
	if len(docs) == 0 {
		result.Issues = append(result.Issues, "No identity documents provided")
		return result
	}

	borrowerName := strings.ToLower(strings.TrimSpace(borrower.Name))
	borrowerSSN := stripSeparators(borrower.SSN)
	borrowerDOB := normalizeDate(borrower.DateOfBirth)

	var nameSimilarities []float64
	var ssnChecks, ssnVerified int
	var dobChecks, dobVerified int
	anyNameVerified := false

	for _, doc := range docs {
		if docName := stringField(doc, "name"); docName != "" {
			similarity := tokenSimilarity(borrowerName, strings.ToLower(docName))
			nameSimilarities = append(nameSimilarities, similarity)
			if similarity >= programs.NameMatchThreshold {
				anyNameVerified = true
			}
		}
		if docSSN := stripSeparators(stringField(doc, "ssn")); docSSN != "" && borrowerSSN != "" {
			ssnChecks++
			if docSSN == borrowerSSN {
				ssnVerified++
			}
		}
		if docDOB := stringField(doc, "dateOfBirth"); docDOB != "" && borrowerDOB != "" {
			dobChecks++
			if normalizeDate(docDOB) == borrowerDOB {
				dobVerified++
			}
		}
	}

	var confidence float64
	if len(nameSimilarities) > 0 {
		confidence += average(nameSimilarities) * programs.IdentityNameWeight
		result.Methods = append(result.Methods, "name_verification")
	}
	if ssnChecks > 0 {
		confidence += float64(ssnVerified) / float64(ssnChecks) * programs.IdentitySSNWeight
		result.Methods = append(result.Methods, "ssn_verification")
	}
	if dobChecks > 0 {
		confidence += float64(dobVerified) / float64(dobChecks) * programs.IdentityDOBWeight
		result.Methods = append(result.Methods, "dob_verification")
	}

	result.Confidence = round4f(confidence)
	result.Verified = result.Confidence >= programs.IdentityConfidenceThreshold

	if len(nameSimilarities) > 0 && !anyNameVerified {
		result.Issues = append(result.Issues, "Name verification failed across all documents")
	}
	if ssnChecks > 0 && ssnVerified == 0 {
		result.Issues = append(result.Issues, "SSN verification failed")
	}
	if dobChecks > 0 && dobVerified == 0 {
		result.Issues = append(result.Issues, "Date of birth verification failed")
	}
	return result
}

// verifyAddress compares the borrower's current address against each
// address proof document and checks document recency.
func verifyAddress(borrower *models.BorrowerInfo, docs []models.DocumentRecord) VerificationResult {
	result := VerificationResult{Methods: []string{}, Issues: []string{}}
	if len(docs) == 0 {
		result.Issues = append(result.Issues, "No address proof documents provided")
		return result
	}

	borrowerAddress := strings.ToLower(strings.TrimSpace(borrower.CurrentAddress))

	var similarities []float64
	anyVerified := false
	for _, doc := range docs {
		docAddress := stringField(doc, "serviceAddress")
		if docAddress == "" {
			docAddress = stringField(doc, "address")
		}
		if docAddress != "" {
			similarity := tokenSimilarity(borrowerAddress, strings.ToLower(docAddress))
			similarities = append(similarities, similarity)
			if similarity >= programs.AddressMatchThreshold {
				anyVerified = true
			}
		}

		docDate := stringField(doc, "billDate")
		if docDate == "" {
			docDate = stringField(doc, "statementDate")
		}
		if docDate != "" {
			if age, ok := documentAgeDays(docDate); ok && age > programs.AddressDocumentMaxAgeDays {
				result.Issues = append(result.Issues,
					fmt.Sprintf("Document %s is %d days old", doc.DocumentType, age))
			}
		}
	}

	if len(similarities) > 0 {
		result.Confidence = round4f(average(similarities))
		result.Verified = result.Confidence >= programs.AddressConfidenceThreshold
		result.Methods = append(result.Methods, "address_document_verification")
	}
	if len(similarities) > 0 && !anyVerified {
		result.Issues = append(result.Issues, "Address verification failed across all documents")
	}
	return result
}

// assessAuthenticity scores each document from its intake validation tag.
// Documents without extracted data never score above unknown.
func assessAuthenticity(docs []models.DocumentRecord) AuthenticityResult {
	result := AuthenticityResult{DocumentScores: map[string]float64{}, SuspiciousDocuments: []string{}}
	if len(docs) == 0 {
		return result
	}

	var total float64
	for _, doc := range docs {
		score := programs.AuthenticityBaseScore(doc.ValidationStatus)
		if len(doc.ExtractedData) == 0 {
			score = math.Min(score, programs.AuthenticityBaseScore(models.ValidationStatusUnknown))
		}
		result.DocumentScores[doc.DocumentID] = score
		total += score
		if score < programs.AuthenticityLowConfidence {
			result.SuspiciousDocuments = append(result.SuspiciousDocuments, doc.DocumentID)
		}
	}
	result.OverallScore = round4f(total / float64(len(docs)))
	return result
}

// checkConsistency starts at 100 and deducts for divergent names,
// addresses, income figures and phone numbers across sources.
func checkConsistency(input *Input, identityDocs, addressDocs []models.DocumentRecord) ConsistencyResult {
	result := ConsistencyResult{Score: 100, Inconsistencies: []Inconsistency{}}

	names := []string{input.Borrower.Name}
	for _, doc := range identityDocs {
		if name := stringField(doc, "name"); name != "" {
			names = append(names, name)
		}
	}
	if variations := distinctValues(names, normalizeName); len(variations) > 1 {
		result.Inconsistencies = append(result.Inconsistencies, Inconsistency{
			Type:        "name_variation",
			Severity:    "medium",
			Description: fmt.Sprintf("Multiple name variations found: %s", strings.Join(variations, "; ")),
			Impact:      programs.NameVariationDeduction,
		})
		result.Score -= programs.NameVariationDeduction
	}

	addresses := []string{input.Borrower.CurrentAddress}
	for _, doc := range addressDocs {
		addr := stringField(doc, "serviceAddress")
		if addr == "" {
			addr = stringField(doc, "address")
		}
		if addr != "" {
			addresses = append(addresses, addr)
		}
	}
	if variations := distinctValues(addresses, normalizeName); len(variations) > 1 {
		result.Inconsistencies = append(result.Inconsistencies, Inconsistency{
			Type:        "address_variation",
			Severity:    "high",
			Description: fmt.Sprintf("Multiple address variations found: %s", strings.Join(variations, "; ")),
			Impact:      programs.AddressVariationDeduction,
		})
		result.Score -= programs.AddressVariationDeduction
	}

	if stated, verified := input.Borrower.AnnualIncome, input.VerifiedAnnualIncome; stated > 0 && verified > 0 {
		variance := math.Abs(stated-verified) / math.Max(stated, verified)
		if variance > programs.IncomeVarianceMajor {
			result.Inconsistencies = append(result.Inconsistencies, Inconsistency{
				Type:        "income_discrepancy",
				Severity:    "high",
				Description: fmt.Sprintf("Stated income (%.0f) differs significantly from verified income (%.0f)", stated, verified),
				Impact:      programs.IncomeMajorDeduction,
			})
			result.Score -= programs.IncomeMajorDeduction
		} else if variance > programs.IncomeVarianceMinor {
			result.Inconsistencies = append(result.Inconsistencies, Inconsistency{
				Type:        "income_discrepancy",
				Severity:    "medium",
				Description: "Minor income discrepancy detected",
				Impact:      programs.IncomeMinorDeduction,
			})
			result.Score -= programs.IncomeMinorDeduction
		}
	}

	phones := []string{input.Borrower.PhoneNumber}
	for _, doc := range append(identityDocs, addressDocs...) {
		if phone := stringField(doc, "phoneNumber"); phone != "" {
			phones = append(phones, phone)
		}
	}
	if variations := distinctValues(phones, stripSeparators); len(variations) > 1 {
		result.Inconsistencies = append(result.Inconsistencies, Inconsistency{
			Type:        "phone_number_variation",
			Severity:    "medium",
			Description: fmt.Sprintf("Multiple phone numbers found: %s", strings.Join(variations, "; ")),
			Impact:      programs.PhoneVariationDeduction,
		})
		result.Score -= programs.PhoneVariationDeduction
	}

	result.Score = math.Max(result.Score, 0)
	return result
}

// detectFraud scores synthetic identity, identity theft and document
// fraud patterns from the verification outcomes.
func detectFraud(borrower *models.BorrowerInfo, identity, address VerificationResult,
	authenticity AuthenticityResult) FraudResult {

	result := FraudResult{Indicators: []string{}, Categories: []string{}}

	var syntheticIndicators int
	if invalidSSNPattern(stripSeparators(borrower.SSN)) {
		syntheticIndicators++
	}
	if !address.Verified {
		syntheticIndicators++
	}
	if suspiciousPhonePattern(stripSeparators(borrower.PhoneNumber)) {
		syntheticIndicators++
	}
	result.SyntheticIdentityRisk = round4f(float64(syntheticIndicators) / syntheticPatternCount)
	if result.SyntheticIdentityRisk >= 0.5 {
		result.Indicators = append(result.Indicators, "High synthetic identity risk detected")
		result.Categories = append(result.Categories, "synthetic_identity")
	}

	var theftIndicators int
	if !identity.Verified {
		theftIndicators++
	}
	if authenticity.OverallScore > 0 && authenticity.OverallScore < 0.5 {
		theftIndicators++
	}
	for _, issue := range identity.Issues {
		if strings.Contains(issue, "Name verification failed") {
			theftIndicators++
			break
		}
	}
	if theftIndicators >= 2 {
		result.IdentityTheftRisk = true
		result.Indicators = append(result.Indicators, "Identity theft risk indicators detected")
		result.Categories = append(result.Categories, "identity_theft")
	}

	documentFraudCount := 0
	for _, score := range authenticity.DocumentScores {
		if score < programs.SuspiciousDocumentThreshold {
			documentFraudCount++
		}
	}
	if documentFraudCount > 0 {
		result.Indicators = append(result.Indicators, "Document authenticity concerns detected")
		result.Categories = append(result.Categories, "document_fraud")
	}

	theftPoints := 0.0
	if result.IdentityTheftRisk {
		theftPoints = programs.IdentityTheftPoints
	}
	result.RiskScore = math.Min(100,
		result.SyntheticIdentityRisk*programs.SyntheticIdentityPoints+
			theftPoints+
			float64(documentFraudCount)*programs.DocumentFraudPoints)

	if result.RiskScore >= 60 {
		result.Indicators = append(result.Indicators, "High overall fraud risk detected")
	} else if result.RiskScore >= 30 {
		result.Indicators = append(result.Indicators, "Moderate fraud risk detected")
	}
	return result
}

// overallRisk takes the maximum weighted contribution, normalized to the
// dominant component weight, so correlated component failures count once.
func overallRisk(risks ComponentRisks) float64 {
	contributions := []float64{
		risks.Identity * programs.KYCWeightIdentity,
		risks.Address * programs.KYCWeightAddress,
		risks.Authenticity * programs.KYCWeightAuthenticity,
		risks.Consistency * programs.KYCWeightConsistency,
		risks.Fraud * programs.KYCWeightFraud,
	}
	highest := 0.0
	for _, c := range contributions {
		if c > highest {
			highest = c
		}
	}
	return round2(highest / programs.KYCWeightIdentity)
}

func riskLevel(score float64) models.RiskLevel {
	switch {
	case score >= programs.KYCHighRiskThreshold:
		return models.RiskHigh
	case score >= programs.KYCMediumRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func riskFactors(risks ComponentRisks) []string {
	factors := []string{}
	if risks.Identity >= 50 {
		factors = append(factors, "Identity verification concerns")
	}
	if risks.Address >= 50 {
		factors = append(factors, "Address verification issues")
	}
	if risks.Authenticity >= 50 {
		factors = append(factors, "Document authenticity concerns")
	}
	if risks.Consistency >= 30 {
		factors = append(factors, "Data consistency issues")
	}
	if risks.Fraud >= 40 {
		factors = append(factors, "Fraud indicators detected")
	}
	return factors
}

// screenSanctions runs the quick list screen behind the compliance
// flags. The dedicated sanctions worker performs the full screen.
func (h *Handler) screenSanctions(ctx context.Context, borrower *models.BorrowerInfo,
	level models.RiskLevel) (pepClear bool, compliance bool, err error) {

	subject := providers.ScreeningSubject{
		FullName:    borrower.Name,
		FirstName:   borrower.FirstName,
		LastName:    borrower.LastName,
		DateOfBirth: borrower.DateOfBirth,
		Nationality: borrower.Nationality,
	}

	pepClear = true
	for _, list := range h.screening.Lists() {
		matches, err := h.screening.SanctionsMatches(ctx, list, subject)
		if err != nil {
			return false, false, err
		}
		if len(matches) > 0 {
			pepClear = false
			break
		}
	}

	if pepClear {
		isPEP, pepLevel, err := h.screening.PEPStatus(ctx, subject)
		if err != nil {
			return false, false, err
		}
		if isPEP && pepLevel == "high" {
			pepClear = false
		}
	}

	compliance = pepClear && level != models.RiskHigh
	return pepClear, compliance, nil
}

func confidence(identity, address VerificationResult, authenticity AuthenticityResult,
	identityDocCount, addressDocCount int) float64 {

	score := (identity.Confidence + address.Confidence + authenticity.OverallScore) / 3 * 100
	if identityDocCount >= 2 {
		score += 5
	}
	if addressDocCount >= 2 {
		score += 5
	}
	return round2(math.Max(0, math.Min(score, 100)))
}

func buildCategoryResult(output *Output) models.CategoryResult {
	result := models.NewCategoryResult("kyc", output.OverallRiskScore, output.RiskLevel)
	result.Confidence = output.Confidence
	result.Indicators = append(result.Indicators, output.RiskFactors...)
	result.Indicators = append(result.Indicators, output.Fraud.Indicators...)

	switch output.RiskLevel {
	case models.RiskHigh:
		result.Recommendations = append(result.Recommendations,
			"Recommend declining application due to high KYC risk",
			"If proceeding, require enhanced due diligence")
	case models.RiskMedium:
		result.Recommendations = append(result.Recommendations,
			"Implement additional verification measures",
			"Consider enhanced monitoring")
	}
	if !output.Identity.Verified {
		result.Recommendations = append(result.Recommendations,
			"Require additional identity verification documents")
	}
	if !output.Address.Verified {
		result.Recommendations = append(result.Recommendations,
			"Obtain additional address proof documentation")
	}
	if output.Authenticity.OverallScore > 0 && output.Authenticity.OverallScore < programs.AuthenticityMediumConfidence {
		result.Recommendations = append(result.Recommendations,
			"Conduct enhanced document authenticity verification")
	}
	if !output.PEPSanctionsClear {
		result.Recommendations = append(result.Recommendations,
			"Escalate to compliance for sanctions and PEP review")
	}
	return result
}

// ==========================
// Matching helpers
// ==========================

// tokenSimilarity is Jaccard overlap on whitespace tokens.
func tokenSimilarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, token := range strings.Fields(s) {
		token = strings.Trim(token, ".,#")
		if token != "" {
			set[token] = true
		}
	}
	return set
}

func stringField(doc models.DocumentRecord, key string) string {
	if doc.ExtractedData == nil {
		return ""
	}
	if value, ok := doc.ExtractedData[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func stripSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// distinctValues normalizes each value and returns the distinct
// non-empty normalized forms.
func distinctValues(values []string, normalize func(string) string) []string {
	seen := map[string]bool{}
	distinct := []string{}
	for _, v := range values {
		normalized := normalize(v)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		distinct = append(distinct, normalized)
	}
	return distinct
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02", "January 2, 2006"}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func documentAgeDays(s string) (int, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return int(time.Since(t).Hours() / 24), true
		}
	}
	return 0, false
}

// invalidSSNPattern flags structurally impossible SSNs: wrong length,
// area 000/666/9xx, zero group or serial, or one repeated digit.
func invalidSSNPattern(ssn string) bool {
	if len(ssn) != 9 {
		return ssn != ""
	}
	area, group, serial := ssn[:3], ssn[3:5], ssn[5:]
	if area == "000" || area == "666" || area[0] == '9' {
		return true
	}
	if group == "00" || serial == "0000" {
		return true
	}
	allSame := true
	for i := 1; i < len(ssn); i++ {
		if ssn[i] != ssn[0] {
			allSame = false
			break
		}
	}
	return allSame
}

// suspiciousPhonePattern flags repeated or strictly sequential digit
// strings.
func suspiciousPhonePattern(phone string) bool {
	if len(phone) < 7 {
		return false
	}
	allSame, sequential := true, true
	for i := 1; i < len(phone); i++ {
		if phone[i] != phone[0] {
			allSame = false
		}
		if phone[i] != phone[i-1]+1 {
			sequential = false
		}
	}
	return allSame || sequential
}

func average(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4f(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
