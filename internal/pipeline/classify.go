package pipeline

import "fmt"

// Severity classifies an invoice (or a client, via its worst invoice) by how
// long payment has been outstanding.
type Severity int

const (
	// Recent covers invoices up to RecentMaxDays overdue.
	Recent Severity = iota
	// Moderate covers invoices from RecentMaxDays+1 to ModerateMaxDays overdue.
	Moderate
	// Severe covers everything past ModerateMaxDays.
	Severe
)

// Business constants from the follow-up policy. The boundaries are inclusive
// on the lower tier.
const (
	RecentMaxDays   = 15
	ModerateMaxDays = 30
)

// TierFor buckets a days-overdue value into a severity tier. This is the
// single threshold function used for both per-invoice display buckets and
// per-client template selection, so the two can never disagree.
func TierFor(daysOverdue int) Severity {
	switch {
	case daysOverdue <= RecentMaxDays:
		return Recent
	case daysOverdue <= ModerateMaxDays:
		return Moderate
	default:
		return Severe
	}
}

// PaymentWindowDays returns the number of days the tier's reminder message
// gives the client to settle.
func (s Severity) PaymentWindowDays() int {
	switch s {
	case Recent:
		return 30
	case Moderate:
		return 15
	default:
		return 7
	}
}

func (s Severity) String() string {
	switch s {
	case Recent:
		return "recent"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a tier name (as accepted on the command line) back
// to a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "recent":
		return Recent, nil
	case "moderate":
		return Moderate, nil
	case "severe":
		return Severe, nil
	default:
		return 0, fmt.Errorf("unknown severity tier %q (want recent, moderate or severe)", name)
	}
}

// Severities lists the tiers in ascending order, for display loops.
func Severities() []Severity {
	return []Severity{Recent, Moderate, Severe}
}
