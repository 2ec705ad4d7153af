package usecases

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/shared/biztime"
)

// External references are the only correlation between a checkout and
// the webhook that settles it. Current format:
//
//	plan_subscription_{planID}_{userID}_{yyyymmdd_hhmmss}
//
// A legacy format without a plan ID is still seen on old retried
// webhooks and resolves against a configured fallback plan:
//
//	premium_subscription_{userID}[_{suffix}]
const (
	planReferencePrefix   = "plan_subscription_"
	legacyReferencePrefix = "premium_subscription_"
)

// Reference is a decoded external reference.
type Reference struct {
	PlanID    uint
	UserID    uint
	IssuedAt  time.Time
	HasPlanID bool
}

// BuildReference encodes the current-format reference for a checkout.
func BuildReference(planID, userID uint, now time.Time) string {
	return fmt.Sprintf("%s%d_%d_%s", planReferencePrefix, planID, userID,
		biztime.ReferenceTimestamp(now))
}

// ParseReference decodes either reference format. Both formats share
// the first two underscore segments, so the split of the whole string
// disambiguates them: five or more segments whose third and fourth
// are numeric, with the plan inside the catalog range, is the current
// format; anything else with at least three segments is legacy, where
// the third segment is the user ID and the plan falls back to the
// configured default. An out-of-range plan segment therefore degrades
// to a legacy read instead of failing.
func ParseReference(ref string, maxPlanID uint) (*Reference, error) {
	if !strings.HasPrefix(ref, planReferencePrefix) && !strings.HasPrefix(ref, legacyReferencePrefix) {
		return nil, fmt.Errorf("unrecognized external reference: %q", ref)
	}

	parts := strings.Split(ref, "_")
	if len(parts) >= 5 {
		planID, planErr := strconv.ParseUint(parts[2], 10, 32)
		userID, userErr := strconv.ParseUint(parts[3], 10, 32)
		if planErr == nil && userErr == nil && userID > 0 &&
			planID > 0 && (maxPlanID == 0 || uint(planID) <= maxPlanID) {
			r := &Reference{
				PlanID:    uint(planID),
				UserID:    uint(userID),
				HasPlanID: true,
			}
			// Timestamp is informational only; a malformed one does
			// not invalidate the reference.
			if len(parts) >= 6 {
				if issuedAt, err := biztime.ParseReferenceTimestamp(parts[4] + "_" + parts[5]); err == nil {
					r.IssuedAt = issuedAt
				}
			}
			return r, nil
		}
	}

	if len(parts) >= 3 {
		userID, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil || userID == 0 {
			return nil, fmt.Errorf("invalid user segment %q in %q", parts[2], ref)
		}
		return &Reference{UserID: uint(userID)}, nil
	}
	return nil, fmt.Errorf("malformed external reference: %q", ref)
}
