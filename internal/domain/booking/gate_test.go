package booking

import (
	"testing"
	"time"
)

var testToday = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func TestGatePendingAllowsConfirmAndCancelOnly(t *testing.T) {
	for _, ps := range AllPaymentStatuses {
		g := Evaluate(Booking{Status: StatusPending, PaymentStatus: ps}, testToday, nil)
		if !g.CanConfirm || !g.CanCancel {
			t.Fatalf("payment %s: expected confirm and cancel, got %+v", ps, g)
		}
		if g.CanCheckIn || g.CanCheckOut || g.CanWriteReview {
			t.Fatalf("payment %s: unexpected actions %v", ps, g.Actions())
		}
	}
}

func TestGateConfirmedPaidAllowsCheckIn(t *testing.T) {
	g := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid}, testToday, nil)
	if !g.CanCheckIn || !g.CanCancel || g.CanConfirm || g.CanRecordPayment {
		t.Fatalf("unexpected gate: %v", g.Actions())
	}
}

func TestGateConfirmedUnpaidBlocksCheckIn(t *testing.T) {
	for _, ps := range AllPaymentStatuses {
		if ps == PaymentPaid {
			continue
		}
		g := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: ps}, testToday, nil)
		if g.CanCheckIn {
			t.Fatalf("payment %s: check-in must be disabled", ps)
		}
		wantPayment := ps == PaymentPending || ps == PaymentPartial
		if g.CanRecordPayment != wantPayment {
			t.Fatalf("payment %s: record payment = %v, want %v", ps, g.CanRecordPayment, wantPayment)
		}
	}
}

func TestGateCheckedInAllowsCheckOutOnly(t *testing.T) {
	g := Evaluate(Booking{Status: StatusCheckedIn, PaymentStatus: PaymentPaid}, testToday, nil)
	if !g.CanCheckOut || g.CanConfirm || g.CanCancel || g.CanCheckIn {
		t.Fatalf("unexpected gate: %v", g.Actions())
	}
}

func TestGateNoShowCannotBeCancelled(t *testing.T) {
	g := Evaluate(Booking{Status: StatusNoShow, PaymentStatus: PaymentPaid}, testToday, nil)
	if len(g.Actions()) != 0 {
		t.Fatalf("expected no actions, got %v", g.Actions())
	}
}

func TestGateUnknownStatusDisablesStatusActions(t *testing.T) {
	g := Evaluate(Booking{Status: "ARCHIVED", PaymentStatus: PaymentPaid}, testToday, nil)
	if len(g.Actions()) != 0 {
		t.Fatalf("expected no actions, got %v", g.Actions())
	}
}

func TestGateWriteReviewUsesPolicy(t *testing.T) {
	b := Booking{Status: StatusCheckedOut, PaymentStatus: PaymentPaid}
	if !Evaluate(b, testToday, nil).CanWriteReview {
		t.Fatal("expected review allowed without existing review")
	}

	b.HasReview = true
	if Evaluate(b, testToday, nil).CanWriteReview {
		t.Fatal("expected default policy to block second review")
	}

	always := func(Booking) bool { return true }
	if !Evaluate(b, testToday, always).CanWriteReview {
		t.Fatal("expected custom policy to allow review")
	}

	if Evaluate(Booking{Status: StatusCheckedIn}, testToday, always).CanWriteReview {
		t.Fatal("review requires CHECKED_OUT regardless of policy")
	}
}

func TestCheckInWarnings(t *testing.T) {
	cases := []struct {
		name    string
		date    string
		payment PaymentStatus
		want    []string
	}{
		{"on time paid", "2026-03-10", PaymentPaid, nil},
		{"one day late is fine", "2026-03-09", PaymentPaid, nil},
		{"future", "2026-03-12", PaymentPaid, []string{WarnCheckInFuture}},
		{"late", "2026-03-07", PaymentPaid, []string{WarnCheckInLate}},
		{"unpaid and late", "2026-03-01", PaymentPartial, []string{WarnPaymentIncomplete, WarnCheckInLate}},
		{"unparseable date", "soon", PaymentPending, []string{WarnPaymentIncomplete}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: tc.payment, CheckInDate: tc.date}, testToday, nil)
			assertCodes(t, g.CheckInWarnings, tc.want)
		})
	}
}

func TestCheckInLateMessage(t *testing.T) {
	g := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid, CheckInDate: "2026-03-07"}, testToday, nil)
	if g.CheckInWarnings[0].Message != "Check-in is 3 days late" || g.CheckInWarnings[0].Days != 3 {
		t.Fatalf("unexpected warning: %+v", g.CheckInWarnings[0])
	}
}

func TestCheckOutWarnings(t *testing.T) {
	early := Evaluate(Booking{Status: StatusCheckedIn, PaymentStatus: PaymentPaid, CheckOutDate: "2026-03-15"}, testToday, nil)
	assertCodes(t, early.CheckOutWarnings, []string{WarnEarlyCheckOut})

	late := Evaluate(Booking{Status: StatusCheckedIn, PaymentStatus: PaymentPaid, CheckOutDate: "2026-03-09"}, testToday, nil)
	assertCodes(t, late.CheckOutWarnings, []string{WarnCheckOutLate})
	if late.CheckOutWarnings[0].Message != "Check-out is 1 day late" {
		t.Fatalf("unexpected message: %q", late.CheckOutWarnings[0].Message)
	}

	onTime := Evaluate(Booking{Status: StatusCheckedIn, PaymentStatus: PaymentPaid, CheckOutDate: "2026-03-10"}, testToday, nil)
	assertCodes(t, onTime.CheckOutWarnings, nil)
}

func TestWarningsOnlyForRelevantStatus(t *testing.T) {
	g := Evaluate(Booking{Status: StatusPending, PaymentStatus: PaymentPending, CheckInDate: "2026-01-01", CheckOutDate: "2026-01-02"}, testToday, nil)
	if len(g.CheckInWarnings) != 0 || len(g.CheckOutWarnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", g)
	}
}

func TestTimestampDatesUseTodayLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	today := time.Date(2026, 3, 10, 1, 0, 0, 0, loc)
	// 22:30 UTC on the 9th is already the 10th in EAT.
	b := Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid, CheckInDate: "2026-03-09T22:30:00Z"}
	g := Evaluate(b, today, nil)
	assertCodes(t, g.CheckInWarnings, nil)
}

func TestGateDoesNotDependOnDates(t *testing.T) {
	a := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid, CheckInDate: "2030-01-01"}, testToday, nil)
	b := Evaluate(Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid, CheckInDate: "2020-01-01"}, testToday, nil)
	if a.CanCheckIn != b.CanCheckIn || !a.CanCheckIn {
		t.Fatal("check-in permission must not depend on dates")
	}
}

func assertCodes(t *testing.T, got []Warning, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected warnings %v, got %+v", want, got)
	}
	for i := range want {
		if got[i].Code != want[i] {
			t.Fatalf("expected warnings %v, got %+v", want, got)
		}
	}
}
