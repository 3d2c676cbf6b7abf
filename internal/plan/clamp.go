package plan

import (
	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
)

// ClampStats counts the corrections applied by Clamp. Clamping is silent
// toward the user; the counts exist for metrics and debug logs only.
type ClampStats struct {
	VersionRewrites int
	ParamsDropped   int
	BodiesCleared   int
	UnmatchedPaths  int
}

// Clamp rewrites a proposed plan so it obeys the catalog. Pure function: no
// I/O, no error paths. For every call it
//
//  1. forces the catalog version into the path's version segment,
//  2. matches the path against the catalog and drops query params not on the
//     matched entry's allow-list (all params when nothing matches or the
//     allow-list is empty),
//  3. clears the body on GET calls.
//
// Nothing else is altered and no correction is ever reported as an error:
// the system prefers silently-narrowed calls over failing the request.
func Clamp(p Plan, cat *catalog.Catalog) (Plan, ClampStats) {
	var stats ClampStats

	for i := range p.APICalls {
		call := &p.APICalls[i]

		forced := cat.ForceVersion(call.Path)
		if forced != call.Path {
			stats.VersionRewrites++
			call.Path = forced
		}

		op, ok := cat.Match(call.Path)
		switch {
		case !ok:
			// Deny by default: unknown path keeps method/path/body but
			// loses every query parameter.
			stats.UnmatchedPaths++
			stats.ParamsDropped += len(call.Params)
			call.Params = map[string]any{}
		case len(op.Entry.QueryParams) == 0:
			stats.ParamsDropped += len(call.Params)
			call.Params = map[string]any{}
		default:
			allowed := make(map[string]struct{}, len(op.Entry.QueryParams))
			for _, key := range op.Entry.QueryParams {
				allowed[key] = struct{}{}
			}
			kept := make(map[string]any, len(call.Params))
			for key, value := range call.Params {
				if _, ok := allowed[key]; ok {
					kept[key] = value
				} else {
					stats.ParamsDropped++
				}
			}
			call.Params = kept
		}

		if call.IsGet() && call.Body != nil {
			stats.BodiesCleared++
			call.Body = nil
		}
	}

	return p, stats
}
