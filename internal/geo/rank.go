package geo

import (
	"context"
	"fmt"
	"sort"

	"github.com/civitrack/civitrack/internal/errs"
	"github.com/civitrack/civitrack/internal/model"
)

// Ranked pairs an issue with its distance from the requester. The distance
// doubles as the ranking key and is unique within one Rank result.
type Ranked struct {
	Distance float64
	Issue    model.Issue
}

// Rank orders issues by great-circle distance from the requester, nearest
// first. Each issue's location code is resolved through the gateway; any
// resolution failure fails the whole call, there are no partial rankings.
//
// Distances serve as keys of the result, so exact ties are perturbed by a
// doubling epsilon until unique. With many collisions the accumulated
// epsilon can drift a key; result sets here are small enough that the keyed
// contract is worth that trade.
func Rank(ctx context.Context, issues []model.Issue, origin Point, gw Gateway) ([]Ranked, error) {
	if issues == nil || gw == nil {
		return nil, errs.ErrInvalidInput
	}

	byDistance := make(map[float64]model.Issue, len(issues))
	epsilon := 0.000001
	for _, is := range issues {
		p, err := gw.ResolveLocationCode(ctx, is.Location)
		if err != nil {
			return nil, fmt.Errorf("resolve location %q: %v: %w", is.Location, err, errs.ErrInvalidInput)
		}
		d := Distance(origin, p)
		for {
			if _, taken := byDistance[d]; !taken {
				break
			}
			d += epsilon
			epsilon *= 2
		}
		byDistance[d] = is
	}

	keys := make([]float64, 0, len(byDistance))
	for k := range byDistance {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]Ranked, 0, len(keys))
	for _, k := range keys {
		out = append(out, Ranked{Distance: k, Issue: byDistance[k]})
	}
	return out, nil
}

// RankByAddress resolves the requester's coordinates from a network address
// and ranks the issues against them.
func RankByAddress(ctx context.Context, issues []model.Issue, addr string, gw Gateway) ([]Ranked, error) {
	if issues == nil || gw == nil || addr == "" {
		return nil, errs.ErrInvalidInput
	}
	origin, err := gw.ResolveNetworkAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("resolve requester %q: %v: %w", addr, err, errs.ErrInvalidInput)
	}
	return Rank(ctx, issues, origin, gw)
}
