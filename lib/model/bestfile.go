package model

import (
	"sort"
	"strings"

	"github.com/nyatla/slsk-go/lib/protocol"
)

// audioExtensions is the case-insensitive filename-suffix allowlist the
// selector ranks over, spec.md §4.5.3.
var audioExtensions = []string{
	".mp3", ".flac", ".m4a", ".ogg", ".opus", ".wav", ".aac", ".wma",
	".ape", ".alac", ".aiff", ".aif", ".wv", ".mpc",
}

// AccumulatedResult pairs a search-result file with the username offering
// it, the unit the best-file selector ranks over.
type AccumulatedResult struct {
	Username string
	File     protocol.SearchResultFile
}

func isAudioFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isFlac(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".flac")
}

func bitrate(attrs []protocol.FileAttribute) (uint32, bool) {
	for _, a := range attrs {
		if a.Type == protocol.AttrBitrate {
			return a.Value, true
		}
	}
	return 0, false
}

// PickBestFile ranks candidates by has-bitrate-info (FLAC counts as yes)
// descending, then is-FLAC descending, then bitrate descending, with a
// stable tie-break on insertion order, and returns the winner. Results are
// deduplicated by username (first occurrence kept) before ranking, per
// spec.md §4.5.3. Returns ok=false if no audio-extension candidate exists.
func PickBestFile(results []AccumulatedResult) (AccumulatedResult, bool) {
	top, ok := PickTopN(results, 1)
	if !ok || len(top) == 0 {
		return AccumulatedResult{}, false
	}
	return top[0], true
}

// PickTopN returns up to n ranked, deduplicated-by-username candidates, for
// the retry-with-alternative-source flow (spec.md §7) which needs more than
// just the single winner.
func PickTopN(results []AccumulatedResult, n int) ([]AccumulatedResult, bool) {
	seen := make(map[string]bool, len(results))
	var candidates []AccumulatedResult
	for _, r := range results {
		if !isAudioFile(r.File.Filename) {
			continue
		}
		if seen[r.Username] {
			continue
		}
		seen[r.Username] = true
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aBitrate, aHasBitrate := bitrate(a.File.Attributes)
		bBitrate, bHasBitrate := bitrate(b.File.Attributes)
		aHas := aHasBitrate || isFlac(a.File.Filename)
		bHas := bHasBitrate || isFlac(b.File.Filename)
		if aHas != bHas {
			return aHas
		}
		aFlac, bFlac := isFlac(a.File.Filename), isFlac(b.File.Filename)
		if aFlac != bFlac {
			return aFlac
		}
		return aBitrate > bBitrate
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n], true
}
