package reminder

import (
	"dunning/internal/pipeline"
)

// State is the lifecycle position of a draft. Transitions are linear:
// Drafted → Previewed (optional) → Sent, or → Failed. Sent and Failed are
// terminal; re-sending means constructing a new draft.
type State int

const (
	StateDrafted State = iota
	StatePreviewed
	StateSent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDrafted:
		return "drafted"
	case StatePreviewed:
		return "previewed"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attachment is a file carried by a draft.
type Attachment struct {
	Filename string
	Bytes    []byte
}

// Draft is an outbound follow-up message prior to transport. Content is
// mutable while drafted; once sent or failed the draft is frozen.
type Draft struct {
	Client      string
	Tier        pipeline.Severity
	To          []string
	CC          []string
	Subject     string
	Body        string // HTML
	Attachments []Attachment

	state      State
	failReason string
}

// BuildDraft renders the group at the given tier and assembles a draft
// addressed to the group's valid member addresses.
func BuildDraft(r *Renderer, g pipeline.ClientGroup, tier pipeline.Severity, cc []string) (*Draft, error) {
	to := g.Emails()
	if len(to) == 0 {
		return nil, &RenderError{Client: g.ClientName, Tier: tier.String(), Err: ErrNoRecipient}
	}
	subject, body, err := r.Render(g, tier)
	if err != nil {
		return nil, err
	}
	return &Draft{
		Client:  g.ClientName,
		Tier:    tier,
		To:      to,
		CC:      cc,
		Subject: subject,
		Body:    body,
		state:   StateDrafted,
	}, nil
}

// Attach adds a file to the draft. Only drafted or previewed messages can
// still be modified.
func (d *Draft) Attach(filename string, data []byte) error {
	if d.state == StateSent || d.state == StateFailed {
		return ErrDraftState
	}
	d.Attachments = append(d.Attachments, Attachment{Filename: filename, Bytes: data})
	return nil
}

// State returns the draft's current lifecycle position.
func (d *Draft) State() State {
	return d.state
}

// FailReason returns the reason recorded by MarkFailed, empty otherwise.
func (d *Draft) FailReason() string {
	return d.failReason
}

// MarkPreviewed records that the user viewed the draft before sending.
func (d *Draft) MarkPreviewed() error {
	if d.state != StateDrafted {
		return ErrDraftState
	}
	d.state = StatePreviewed
	return nil
}

// MarkSent freezes the draft as successfully handed to the transport.
func (d *Draft) MarkSent() error {
	if d.state != StateDrafted && d.state != StatePreviewed {
		return ErrDraftState
	}
	d.state = StateSent
	return nil
}

// MarkFailed freezes the draft with a reason (invalid recipient, missing
// credentials, transport error). Terminal: retries build a fresh draft.
func (d *Draft) MarkFailed(reason string) error {
	if d.state != StateDrafted && d.state != StatePreviewed {
		return ErrDraftState
	}
	d.state = StateFailed
	d.failReason = reason
	return nil
}
