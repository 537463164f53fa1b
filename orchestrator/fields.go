package orchestrator

// Baseline adapters used for unrecognized fields and as fallback top-ups:
// one always-available broad-coverage source plus one syndicated feed source.
const (
	baselineBroadAdapter = "wikipedia"
	baselineFeedAdapter  = "rssfeed"
)

// fieldAdapters maps a semantic field to the adapters relevant for it, in
// priority order. Unknown fields fall back to the baseline pair.
var fieldAdapters = map[string][]string{
	"technology":     {"wikipedia", "hackernews", "arxiv", "newsapi"},
	"tech":           {"wikipedia", "hackernews", "arxiv", "newsapi"},
	"science":        {"wikipedia", "arxiv", "youtube", "newsapi"},
	"finance":        {"wikipedia", "alphavantage", "newsapi", "rssfeed"},
	"economics":      {"wikipedia", "alphavantage", "newsapi", "openlibrary"},
	"history":        {"wikipedia", "openlibrary", "rssfeed"},
	"literature":     {"wikipedia", "openlibrary", "youtube"},
	"current-events": {"newsapi", "rssfeed", "reddit"},
	"programming":    {"hackernews", "reddit", "wikipedia", "youtube"},
	"mathematics":    {"wikipedia", "arxiv", "youtube"},
}

// adaptersForField resolves the adapter names for a field. The baseline pair
// is appended for recognized fields too, so widening during fallback always
// has somewhere to go.
func adaptersForField(field string) []string {
	names, ok := fieldAdapters[field]
	if !ok {
		return []string{baselineBroadAdapter, baselineFeedAdapter}
	}

	resolved := make([]string, 0, len(names)+2)
	seen := make(map[string]struct{}, len(names)+2)
	for _, name := range names {
		if _, dup := seen[name]; !dup {
			resolved = append(resolved, name)
			seen[name] = struct{}{}
		}
	}
	for _, baseline := range []string{baselineBroadAdapter, baselineFeedAdapter} {
		if _, dup := seen[baseline]; !dup {
			resolved = append(resolved, baseline)
			seen[baseline] = struct{}{}
		}
	}

	return resolved
}
