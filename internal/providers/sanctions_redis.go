// internal/providers/sanctions_redis.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis key layout for screening data loaded by the compliance feed job:
//   sanctions:list:<LIST>   SET of lowercase full names
//   pep:registry:<level>    SET of lowercase full names, level in low|medium|high
//   watchlist:<category>    SET of lowercase full names
const (
	sanctionsKeyPrefix = "sanctions:list:"
	pepKeyPrefix       = "pep:registry:"
	watchlistKeyPrefix = "watchlist:"
)

// DefaultSanctionsLists are screened in priority order.
var DefaultSanctionsLists = []string{
	"OFAC_SDN", "OFAC_CONS", "UN_SANCTIONS", "EU_SANCTIONS", "UK_SANCTIONS", "FATF_GREYLIST",
}

var pepLevels = []string{"high", "medium", "low"}

// RedisSanctions screens subjects against list sets cached in Redis.
type RedisSanctions struct {
	client *redis.Client
	lists  []string
}

func NewRedisSanctions(client *redis.Client) *RedisSanctions {
	return &RedisSanctions{client: client, lists: DefaultSanctionsLists}
}

func (p *RedisSanctions) Lists() []string {
	return p.lists
}

func (p *RedisSanctions) SanctionsMatches(ctx context.Context, list string, subject ScreeningSubject) ([]ScreeningMatch, error) {
	key := sanctionsKeyPrefix + list
	return p.matchAgainstSet(ctx, key, list, subject)
}

func (p *RedisSanctions) PEPStatus(ctx context.Context, subject ScreeningSubject) (bool, string, error) {
	name := normalizeScreeningName(subject.FullName)
	if name == "" {
		return false, "", nil
	}
	for _, level := range pepLevels {
		member, err := p.client.SIsMember(ctx, pepKeyPrefix+level, name).Result()
		if err != nil {
			return false, "", fmt.Errorf("pep registry lookup: %w", err)
		}
		if member {
			return true, level, nil
		}
	}
	return false, "", nil
}

func (p *RedisSanctions) WatchlistMatches(ctx context.Context, category string, subject ScreeningSubject) ([]ScreeningMatch, error) {
	key := watchlistKeyPrefix + category
	return p.matchAgainstSet(ctx, key, category, subject)
}

func (p *RedisSanctions) matchAgainstSet(ctx context.Context, key, listName string, subject ScreeningSubject) ([]ScreeningMatch, error) {
	name := normalizeScreeningName(subject.FullName)
	if name == "" {
		return nil, nil
	}

	member, err := p.client.SIsMember(ctx, key, name).Result()
	if err != nil {
		return nil, fmt.Errorf("screening lookup %s: %w", listName, err)
	}
	if member {
		return []ScreeningMatch{{ListName: listName, MatchedOn: name, Score: 1.0}}, nil
	}

	// Fall back to a scan for partial surname matches so "van der Berg,
	// Jan" style entries still hit; exact-member check above covers the
	// common case cheaply.
	if subject.LastName == "" {
		return nil, nil
	}
	last := normalizeScreeningName(subject.LastName)
	var matches []ScreeningMatch
	iter := p.client.SScan(ctx, key, 0, "*"+last+"*", 200).Iterator()
	for iter.Next(ctx) {
		entry := iter.Val()
		if screeningNameSimilarity(name, entry) >= 0.8 {
			matches = append(matches, ScreeningMatch{ListName: listName, MatchedOn: entry, Score: screeningNameSimilarity(name, entry)})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("screening scan %s: %w", listName, err)
	}
	return matches, nil
}

func normalizeScreeningName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// screeningNameSimilarity is token-overlap (Jaccard) similarity between
// two normalized names.
func screeningNameSimilarity(a, b string) float64 {
	aParts := strings.Fields(a)
	bParts := strings.Fields(b)
	if len(aParts) == 0 || len(bParts) == 0 {
		return 0
	}
	set := make(map[string]bool, len(aParts))
	for _, p := range aParts {
		set[p] = true
	}
	union := make(map[string]bool, len(aParts)+len(bParts))
	for _, p := range aParts {
		union[p] = true
	}
	intersection := 0
	for _, p := range bParts {
		if set[p] {
			intersection++
		}
		union[p] = true
	}
	return float64(intersection) / float64(len(union))
}
