package feed

import (
	"fmt"
	"sort"
	"time"

	"promofeed/internal/constants"
	apperrors "promofeed/pkg/errors"
	"promofeed/pkg/models"
)

func validateFrame(frame string) error {
	if !constants.IsValidFrame(frame) {
		return apperrors.ErrValidation.WithMessage(fmt.Sprintf("unknown time frame: %q", frame))
	}
	return nil
}

// FilterByTimeFrame keeps records whose timestamp is after now minus the frame window.
func FilterByTimeFrame(msgs []models.MessageRecord, frame string, now time.Time) ([]models.MessageRecord, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	window := constants.FrameWindows[frame]
	out := make([]models.MessageRecord, 0, len(msgs))
	if window == 0 {
		return append(out, msgs...), nil
	}

	cutoff := now.Add(-window)
	for _, m := range msgs {
		if m.Timestamp.After(cutoff) {
			out = append(out, m)
		}
	}
	return out, nil
}

// SortNewestFirst orders records by timestamp descending, keeping source order on ties.
func SortNewestFirst(msgs []models.MessageRecord) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.After(msgs[j].Timestamp)
	})
}
