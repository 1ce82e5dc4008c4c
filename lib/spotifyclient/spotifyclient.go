// Package spotifyclient defines the seam to an external Spotify playlist
// resolver (out of scope per spec.md Non-goals — no HTTP client is wired
// here). original_source/src/bin/tui/client.rs's SpotifyClient is the
// original, in-scope-for-the-TUI implementation this boundary replaces.
package spotifyclient

// Track is one resolved playlist entry, reduced to what the search
// pipeline needs to build a query.
type Track struct {
	Artist string
	Title  string
}

// PlaylistResolver turns a Spotify URL into an ordered list of tracks to
// search for. A real implementation would call the Spotify Web API; that
// HTTP client and its auth flow are out of scope here.
type PlaylistResolver interface {
	ResolvePlaylist(url string) ([]Track, error)
}
