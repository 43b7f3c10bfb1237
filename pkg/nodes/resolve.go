package nodes

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/state"
)

// labelSearchLimit bounds the candidate list target-label/time search
// returns, per §4.2 ("at most a small bounded number of candidates").
const labelSearchLimit = 5

// fallbackTripIDPattern extracts "trip 42" / "#42" from raw text, the
// last-resort priority in target resolution (§4.5 step 6).
var fallbackTripIDPattern = regexp.MustCompile(`(?i)(?:trip\s*#?|#)(\d+)`)

// ResolveTarget is the target resolver node (C5). It maps intent
// references to verified entity ids under a strict priority order: the
// first priority that produces a result wins and every later one is
// skipped.
func (d *Deps) ResolveTarget(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	action := out.GetString("action")

	if llmclient.IsNoTargetAction(action) {
		out["resolve_result"] = "skipped"
		out["next_node"] = "decision_router"
		return out, nil
	}

	// Priority 1: structured command. Authoritative signal from the UI —
	// verified but never second-guessed against lower priorities.
	if out.GetString("source") == "structured_command" {
		if tripID, ok := getID(out, "target_entity_id"); ok {
			d.resolveVerifiedTrip(ctx, out, tripID)
		} else {
			out["resolve_result"] = "none"
		}
		out["next_node"] = "decision_router"
		return out, nil
	}

	// Priority 2: OCR path. Only applies when the image-ingest path set
	// selected_entity_id from its own matching pass.
	if out.GetBool("from_image") {
		if tripID, ok := getID(out, "selected_entity_id"); ok {
			d.resolveVerifiedTrip(ctx, out, tripID)
			out["next_node"] = "decision_router"
			return out, nil
		}
	}

	// Priority 3: LLM-suggested numeric id. A hallucinated id (no row)
	// falls through rather than surfacing as an error.
	if tripID, ok := getID(out, "target_entity_id"); ok {
		exists, err := d.Tools.TripExists(ctx, tripID)
		if err == nil && exists {
			out["trip_id"] = tripID
			out["resolve_result"] = "found"
			out["next_node"] = "decision_router"
			return out, nil
		}
	}

	// Priority 4: target time.
	if targetTime := out.GetString("target_time"); targetTime != "" {
		matches, err := d.Tools.FindTripsByTime(ctx, targetTime, time.Now())
		if err == nil && len(matches) > 0 {
			d.applyMatches(out, matches)
			out["next_node"] = "decision_router"
			return out, nil
		}
	}

	// Priority 5: target label.
	if label := out.GetString("target_label"); label != "" {
		matches, err := d.Tools.IdentifyTripFromLabel(ctx, label, labelSearchLimit)
		if err == nil && len(matches) > 0 {
			d.applyMatches(out, matches)
			out["next_node"] = "decision_router"
			return out, nil
		}
	}

	// Priority 6: regex fallback over the raw text.
	if m := fallbackTripIDPattern.FindStringSubmatch(out.GetString("text")); m != nil {
		if tripID, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			d.resolveVerifiedTrip(ctx, out, tripID)
			out["next_node"] = "decision_router"
			return out, nil
		}
	}

	out["resolve_result"] = "none"
	out["next_node"] = "decision_router"
	return out, nil
}

// resolveVerifiedTrip checks tripID against the database and records
// trip_id/resolve_result, distinguishing a cancelled or past trip from a
// simple not-found (§4.5 step 2).
func (d *Deps) resolveVerifiedTrip(ctx context.Context, out state.State, tripID int64) {
	view, err := d.Tools.GetTripStatus(ctx, tripID)
	if err != nil {
		out["resolve_result"] = "none"
		return
	}
	if view.Trip.LiveStatus == models.TripCancelled {
		out["resolve_result"] = "none"
		out["error"] = "trip_cancelled"
		return
	}
	if view.Trip.TripDate.Before(time.Now().Truncate(24 * time.Hour)) {
		out["resolve_result"] = "none"
		out["error"] = "trip_past"
		return
	}
	out["trip_id"] = tripID
	out["resolve_result"] = "found"
}

// applyMatches records a time/label search result: a single match
// resolves directly, several collapse to "multiple" with display labels.
func (d *Deps) applyMatches(out state.State, matches []models.TripSummary) {
	if len(matches) == 1 {
		out["trip_id"] = matches[0].TripID
		out["resolve_result"] = "found"
		return
	}
	out["resolve_result"] = "multiple"
	summaries := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		summaries = append(summaries, map[string]any{
			"trip_id":      m.TripID,
			"display_name": m.DisplayName,
			"trip_date":    m.TripDate.Format("2006-01-02"),
		})
	}
	out["matches"] = summaries
}
