// internal/programs/screening.go
package programs

// SanctionsListInfo carries screening priority and the risk score a match
// on that list contributes.
type SanctionsListInfo struct {
	Priority    int
	RiskScore   float64
	Description string
}

var SanctionsLists = map[string]SanctionsListInfo{
	"OFAC_SDN":      {Priority: 1, RiskScore: 100, Description: "OFAC Specially Designated Nationals"},
	"OFAC_CONS":     {Priority: 1, RiskScore: 95, Description: "OFAC Consolidated List"},
	"UN_SANCTIONS":  {Priority: 1, RiskScore: 90, Description: "UN Security Council Sanctions"},
	"EU_SANCTIONS":  {Priority: 2, RiskScore: 85, Description: "European Union Sanctions"},
	"UK_SANCTIONS":  {Priority: 2, RiskScore: 80, Description: "UK HM Treasury Sanctions"},
	"FATF_GREYLIST": {Priority: 3, RiskScore: 60, Description: "FATF Grey List Countries"},
}

// PEPLevelScores map a PEP exposure level to its risk score.
var PEPLevelScores = map[string]float64{
	"low":    20,
	"medium": 50,
	"high":   80,
}

// WatchlistCategories map a watchlist category to the risk score of a
// match.
var WatchlistCategories = map[string]float64{
	"terrorism":        95,
	"organized_crime":  85,
	"financial_crimes": 80,
	"drug_trafficking": 75,
	"corruption":       70,
}

// CriminalRecordsCategory is the watchlist category used for criminal
// record screening.
const CriminalRecordsCategory = "criminal_records"

// highRiskJurisdictions are ISO 3166-1 alpha-2 codes subject to enhanced
// AML scrutiny.
var highRiskJurisdictions = map[string]bool{
	"AF": true, "BY": true, "MM": true, "CF": true, "CN": true, "CU": true,
	"CD": true, "ER": true, "GW": true, "HT": true, "IR": true, "IQ": true,
	"LB": true, "LY": true, "ML": true, "NI": true, "KP": true, "PK": true,
	"PA": true, "RU": true, "SO": true, "SS": true, "SD": true, "SY": true,
	"TR": true, "UG": true, "UA": true, "VE": true, "YE": true, "ZW": true,
}

func HighRiskJurisdiction(countryCode string) bool {
	return highRiskJurisdictions[countryCode]
}

// Screening component weights. The overall score is the maximum weighted
// component, the most conservative aggregation for sanctions screening.
const (
	DirectSanctionsWeight = 1.0
	PEPStatusWeight       = 0.6
	FamilyAssociateWeight = 0.4
	WatchlistWeight       = 0.3
	JurisdictionWeight    = 0.2
	CriminalRecordWeight  = 0.5
	TerrorismWeight       = 0.8
)

// Terrorism financing risk contributions.
const (
	TerrorismWatchlistRisk    = 95.0
	TerrorismSanctionsRisk    = 90.0
	TerrorismPEPHighRisk      = 70.0
	TerrorismJurisdictionRisk = 60.0
)

// JurisdictionBaseRisk is the component risk for a high-risk nationality.
const JurisdictionBaseRisk = 60.0

// CleanScreeningBaseline is the overall score for a screening with no
// hits.
const CleanScreeningBaseline = 5.0

// Screening risk level and monitoring thresholds.
const (
	ScreeningHighRiskThreshold   = 80.0
	ScreeningMediumRiskThreshold = 40.0
	OngoingMonitoringThreshold   = 60.0
)
