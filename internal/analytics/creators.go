package analytics

import (
	"sort"

	"streampulse/internal/events"
)

// CreatorWatchShare is a creator's contribution to total watch time.
type CreatorWatchShare struct {
	CreatorID    string  `json:"creator_id"`
	WatchSeconds float64 `json:"watch_seconds"`
	WatchShare   float64 `json:"watch_share"`
}

// CreatorWatchShares attributes watched seconds to creators and normalizes
// them into shares of the grand total. Results are sorted by watch seconds
// descending, with creator id breaking ties so the order is deterministic.
// Shares sum to 1 whenever total watch time is positive.
func CreatorWatchShares(evts []events.WatchEvent) []CreatorWatchShare {
	if len(evts) == 0 {
		return []CreatorWatchShare{}
	}

	totals := make(map[string]float64)
	var grandTotal float64
	for _, event := range evts {
		totals[event.CreatorID] += event.WatchedSeconds
		grandTotal += event.WatchedSeconds
	}

	shares := make([]CreatorWatchShare, 0, len(totals))
	for creatorID, seconds := range totals {
		share := 0.0
		if grandTotal > 0 {
			share = seconds / grandTotal
		}
		shares = append(shares, CreatorWatchShare{
			CreatorID:    creatorID,
			WatchSeconds: seconds,
			WatchShare:   share,
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].WatchSeconds != shares[j].WatchSeconds {
			return shares[i].WatchSeconds > shares[j].WatchSeconds
		}
		return shares[i].CreatorID < shares[j].CreatorID
	})
	return shares
}

// TopCreators returns the n creators with the largest watch share.
func TopCreators(evts []events.WatchEvent, n int) []CreatorWatchShare {
	shares := CreatorWatchShares(evts)
	if n < 0 {
		n = 0
	}
	if n > len(shares) {
		n = len(shares)
	}
	return shares[:n]
}
