// internal/providers/unavailable.go
package providers

import "context"

// Neutral scores returned when a data feed is not configured. The values
// sit in the middle of each component's banding so an unavailable feed
// reads as "unknown", not "safe".
const (
	NeutralLocationRisk = 40.0
	NeutralMarketRisk   = 30.0
)

// UnavailableLocation is the no-feed LocationDataProvider.
type UnavailableLocation struct{}

func (UnavailableLocation) LocationRisk(_ context.Context, _, _, _ string) (LocationSignal, error) {
	return LocationSignal{
		Available: false,
		RiskScore: NeutralLocationRisk,
		Factors:   []string{"Location data feed unavailable; neutral score applied"},
	}, nil
}

// UnavailableMarket is the no-feed MarketDataProvider.
type UnavailableMarket struct{}

func (UnavailableMarket) MarketRisk(_ context.Context, _, _, _ string) (MarketSignal, error) {
	return MarketSignal{
		Available: false,
		RiskScore: NeutralMarketRisk,
		Trend:     "unknown",
		Factors:   []string{"Market data feed unavailable; neutral score applied"},
	}, nil
}

// UnavailableEnvironmental is the no-feed EnvironmentalDataProvider. It
// reports no hazards; the scorer lowers its confidence when the signal is
// unavailable.
type UnavailableEnvironmental struct{}

func (UnavailableEnvironmental) EnvironmentalHazards(_ context.Context, _, _, _ string) (EnvironmentalSignal, error) {
	return EnvironmentalSignal{Available: false}, nil
}

// UnavailableSanctions is the no-feed SanctionsScreeningProvider. It
// returns no matches and no PEP status; screening workers must surface
// that the screen ran against an empty source.
type UnavailableSanctions struct{}

func (UnavailableSanctions) SanctionsMatches(_ context.Context, _ string, _ ScreeningSubject) ([]ScreeningMatch, error) {
	return nil, nil
}

func (UnavailableSanctions) PEPStatus(_ context.Context, _ ScreeningSubject) (bool, string, error) {
	return false, "", nil
}

func (UnavailableSanctions) WatchlistMatches(_ context.Context, _ string, _ ScreeningSubject) ([]ScreeningMatch, error) {
	return nil, nil
}

func (UnavailableSanctions) Lists() []string {
	return nil
}
