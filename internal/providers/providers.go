// internal/providers/providers.go
//
// Provider interfaces for external risk signals the scoring core does not
// own: neighborhood/location data, housing market data, environmental
// hazard lookups and sanctions/PEP screening. Scorers depend only on these
// interfaces; when no real feed is configured the Unavailable
// implementations return a documented neutral signal with Available=false
// so the scorer can reduce confidence instead of inventing data.
package providers

import "context"

// LocationSignal carries neighborhood risk inputs for a property address.
type LocationSignal struct {
	Available bool
	RiskScore float64
	Factors   []string
}

type LocationDataProvider interface {
	LocationRisk(ctx context.Context, city, state, zipCode string) (LocationSignal, error)
}

// MarketSignal carries local housing market condition inputs.
type MarketSignal struct {
	Available bool
	RiskScore float64
	Trend     string
	Factors   []string
}

type MarketDataProvider interface {
	MarketRisk(ctx context.Context, city, state, zipCode string) (MarketSignal, error)
}

// EnvironmentalSignal lists hazard types present at a location. Hazard
// names key into the programs.EnvironmentalHazards table.
type EnvironmentalSignal struct {
	Available bool
	Hazards   []string
}

type EnvironmentalDataProvider interface {
	EnvironmentalHazards(ctx context.Context, city, state, zipCode string) (EnvironmentalSignal, error)
}

// ScreeningMatch is one hit against a sanctions list, PEP registry or
// watchlist.
type ScreeningMatch struct {
	ListName  string  `json:"listName"`
	MatchedOn string  `json:"matchedOn"`
	Score     float64 `json:"score"`
}

// ScreeningSubject identifies the person being screened.
type ScreeningSubject struct {
	FullName    string
	FirstName   string
	LastName    string
	DateOfBirth string
	Nationality string
}

type SanctionsScreeningProvider interface {
	// SanctionsMatches checks the subject against the named list. The
	// returned slice is empty when the subject is clear.
	SanctionsMatches(ctx context.Context, list string, subject ScreeningSubject) ([]ScreeningMatch, error)
	// PEPStatus reports whether the subject appears in a PEP registry and
	// at what level ("low", "medium", "high"); level is empty when not a
	// PEP.
	PEPStatus(ctx context.Context, subject ScreeningSubject) (bool, string, error)
	// WatchlistMatches checks the subject against the named watchlist
	// category.
	WatchlistMatches(ctx context.Context, category string, subject ScreeningSubject) ([]ScreeningMatch, error)
	// Lists returns the sanctions list names this provider can screen.
	Lists() []string
}
