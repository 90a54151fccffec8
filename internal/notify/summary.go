package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autoassign/internal/domain"

	"github.com/slack-go/slack"
)

// FormatRunSummary returns a human-readable summary of a run. runErr is the
// error Run returned, if any.
func FormatRunSummary(report domain.RunReport, runErr error) string {
	if runErr != nil && len(report.Resources) == 0 {
		return fmt.Sprintf("Complaint assignment aborted: %v", runErr)
	}

	var lines []string
	header := fmt.Sprintf("Complaint assignment: %d assigned", report.TotalAssigned())
	if failed := report.TotalFailed(); failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	if runErr != nil {
		header += fmt.Sprintf(" (interrupted: %v)", runErr)
	}
	lines = append(lines, header)

	for _, res := range report.Resources {
		if res.Skipped == domain.SkipNoPending && len(res.LookupErrors) == 0 {
			continue
		}
		var parts []string
		switch {
		case res.Skipped != "":
			parts = append(parts, "skipped: "+res.Skipped)
		default:
			newCount, reassigned := 0, 0
			for _, a := range res.Assignments {
				if a.Err != nil {
					continue
				}
				if a.Reassignment {
					reassigned++
				} else {
					newCount++
				}
			}
			parts = append(parts, fmt.Sprintf("%d new", newCount), fmt.Sprintf("%d reassigned", reassigned))
			if f := res.Failed(); f > 0 {
				parts = append(parts, fmt.Sprintf("%d failed", f))
			}
			if len(res.NoCandidate) > 0 {
				parts = append(parts, fmt.Sprintf("no inspector for %s", strings.Join(res.NoCandidate, ", ")))
			}
			if res.UnknownWorkloads > 0 {
				parts = append(parts, fmt.Sprintf("%d unknown workload(s)", res.UnknownWorkloads))
			}
		}
		if len(res.LookupErrors) > 0 {
			parts = append(parts, fmt.Sprintf("%d lookup error(s)", len(res.LookupErrors)))
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", res.Region, strings.Join(parts, ", ")))
	}

	if len(lines) == 1 && runErr == nil && report.TotalAssigned() == 0 {
		return "Complaint assignment: nothing pending."
	}
	return strings.Join(lines, "\n")
}

type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts run summaries to a Slack channel.
type Notifier struct {
	api       poster
	channelID string
}

func NewNotifier(api *slack.Client, channelID string) *Notifier {
	return &Notifier{api: api, channelID: channelID}
}

// Post sends the summary of a run. Runs with nothing to report are not posted.
func (n *Notifier) Post(ctx context.Context, report domain.RunReport, runErr error) error {
	if n == nil || n.api == nil {
		return errors.New("slack notifier is not configured")
	}
	if runErr == nil && isQuiet(report) {
		return nil
	}
	_, _, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(FormatRunSummary(report, runErr), false))
	if err != nil {
		return fmt.Errorf("posting run summary: %w", err)
	}
	return nil
}

func isQuiet(report domain.RunReport) bool {
	for _, res := range report.Resources {
		if len(res.Assignments) > 0 || len(res.NoCandidate) > 0 || len(res.LookupErrors) > 0 {
			return false
		}
		if res.Skipped != "" && res.Skipped != domain.SkipNoPending {
			return false
		}
	}
	return true
}
