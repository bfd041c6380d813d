package reminder

import (
	"errors"
	"testing"
)

func TestBuildDraft(t *testing.T) {
	r := newTestRenderer(t)
	g := acmeGroup()

	draft, err := BuildDraft(r, g, g.Tier(), []string{"finance@initech.example"})
	if err != nil {
		t.Fatal(err)
	}
	if draft.State() != StateDrafted {
		t.Errorf("new draft state = %s, want drafted", draft.State())
	}
	if len(draft.To) != 1 || draft.To[0] != "billing@acme.example" {
		t.Errorf("To = %v", draft.To)
	}
	if len(draft.CC) != 1 {
		t.Errorf("CC = %v", draft.CC)
	}
	if draft.Subject == "" || draft.Body == "" {
		t.Error("draft missing rendered content")
	}
}

func TestBuildDraftNoRecipient(t *testing.T) {
	r := newTestRenderer(t)
	noMail := acmeGroup()
	for i := range noMail.Invoices {
		noMail.Invoices[i].ClientEmail = ""
	}
	_, err := BuildDraft(r, noMail, noMail.Tier(), nil)
	if !errors.Is(err, ErrNoRecipient) {
		t.Errorf("err = %v, want ErrNoRecipient", err)
	}
}

func TestDraftLifecycle(t *testing.T) {
	r := newTestRenderer(t)
	g := acmeGroup()

	t.Run("drafted to sent", func(t *testing.T) {
		d, _ := BuildDraft(r, g, g.Tier(), nil)
		if err := d.MarkSent(); err != nil {
			t.Fatal(err)
		}
		if d.State() != StateSent {
			t.Errorf("state = %s", d.State())
		}
	})

	t.Run("drafted to previewed to sent", func(t *testing.T) {
		d, _ := BuildDraft(r, g, g.Tier(), nil)
		if err := d.MarkPreviewed(); err != nil {
			t.Fatal(err)
		}
		if err := d.MarkSent(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("failed is terminal with reason", func(t *testing.T) {
		d, _ := BuildDraft(r, g, g.Tier(), nil)
		if err := d.MarkFailed("transport error"); err != nil {
			t.Fatal(err)
		}
		if d.State() != StateFailed || d.FailReason() != "transport error" {
			t.Errorf("state = %s reason = %q", d.State(), d.FailReason())
		}
		if err := d.MarkSent(); !errors.Is(err, ErrDraftState) {
			t.Errorf("resending a failed draft: err = %v, want ErrDraftState", err)
		}
	})

	t.Run("no send after sent", func(t *testing.T) {
		d, _ := BuildDraft(r, g, g.Tier(), nil)
		_ = d.MarkSent()
		if err := d.MarkSent(); !errors.Is(err, ErrDraftState) {
			t.Errorf("double send: err = %v, want ErrDraftState", err)
		}
		if err := d.MarkFailed("late"); !errors.Is(err, ErrDraftState) {
			t.Errorf("failing a sent draft: err = %v, want ErrDraftState", err)
		}
		if err := d.MarkPreviewed(); !errors.Is(err, ErrDraftState) {
			t.Errorf("previewing a sent draft: err = %v, want ErrDraftState", err)
		}
	})

	t.Run("no attach after send", func(t *testing.T) {
		d, _ := BuildDraft(r, g, g.Tier(), nil)
		if err := d.Attach("statement.pdf", []byte("%PDF")); err != nil {
			t.Fatal(err)
		}
		_ = d.MarkSent()
		if err := d.Attach("late.pdf", nil); !errors.Is(err, ErrDraftState) {
			t.Errorf("attach after send: err = %v, want ErrDraftState", err)
		}
		if len(d.Attachments) != 1 {
			t.Errorf("attachments = %d, want 1", len(d.Attachments))
		}
	})
}
