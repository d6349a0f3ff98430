package tgs

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/kerberos"
)

// timeAlgebraConfig mirrors the policy knobs applyTimeAlgebra actually
// reads, isolated from the crypto/store scaffolding Execute needs, the
// same split flags_test.go uses for applyFlagRules.
func timeAlgebraConfig() *KdcConfig {
	return &KdcConfig{
		AllowableClockSkew:   int64(5 * 60 * 1000),
		MaxTicketLifetime:    int64(8 * 60 * 60 * 1000),
		MaxRenewableLifetime: int64(7 * 24 * 60 * 60 * 1000),
		RenewableAllowed:     true,
		PostdatedAllowed:     true,
	}
}

func hoursMillis(h int64) int64 { return h * 60 * 60 * 1000 }

func TestApplyTimeAlgebraRenewOptionResetsStartAndCapsToOriginalLifespan(t *testing.T) {
	now := datamodel.Now()
	base := now.Minus(hoursMillis(2))     // original authTime
	oldEnd := now.Minus(10 * 60 * 1000)   // TGT already past its old endTime
	renewTill := now.Plus(hoursMillis(72)) // far off, not the limiting factor

	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagRenewable, true)

	ctx := &context{
		config: timeAlgebraConfig(),
		now:    now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  base,
			EndTime:   oldEnd,
			RenewTill: &renewTill,
			Flags:     tgtFlags,
		},
	}

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptRenew, true)

	var newPart datamodel.EncTicketPart
	if err := applyTimeAlgebra(ctx, opts, &newPart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantEnd := now.Plus(oldEnd.Difference(base))
	if newPart.EndTime != wantEnd {
		t.Fatalf("expected renewed endTime %v (original lifespan preserved), got %v", wantEnd, newPart.EndTime)
	}
	if newPart.StartTime == nil || *newPart.StartTime != now {
		t.Fatalf("expected startTime reset to now, got %v", newPart.StartTime)
	}
}

func TestApplyTimeAlgebraRenewRejectsPastRenewTill(t *testing.T) {
	now := datamodel.Now()
	renewTill := now.Minus(hoursMillis(1))

	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagRenewable, true)

	ctx := &context{
		config: timeAlgebraConfig(),
		now:    now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  now.Minus(hoursMillis(20)),
			EndTime:   now.Minus(hoursMillis(2)),
			RenewTill: &renewTill,
			Flags:     tgtFlags,
		},
	}

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptRenew, true)

	var newPart datamodel.EncTicketPart
	err := applyTimeAlgebra(ctx, opts, &newPart)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KrbApErrTktExpired {
		t.Fatalf("expected KRB_AP_ERR_TKT_EXPIRED for a TGT past its renewTill, got %v", err)
	}
}

// TestApplyTimeAlgebraRenewableOkCapsProvisionalRenewTill exercises the
// RENEWABLE-OK upgrade: the client asked for a longer till than policy
// grants, so the KDC upgrades the ticket to RENEWABLE with a provisional
// renewal time of min(request.till, tgt.renewTill). Without an explicit
// RTime in the request, that provisional time is what bounds renewTill,
// not tgt.renewTill alone.
func TestApplyTimeAlgebraRenewableOkCapsProvisionalRenewTill(t *testing.T) {
	now := datamodel.Now()
	renewTill := now.Plus(hoursMillis(24 * 7)) // 7 days out, well past request.till

	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagRenewable, true)

	ctx := &context{
		config: timeAlgebraConfig(),
		now:    now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  now,
			EndTime:   now.Plus(hoursMillis(20)),
			RenewTill: &renewTill,
			Flags:     tgtFlags,
		},
		req: datamodel.KdcReq{
			ReqBody: datamodel.KdcReqBody{
				Till: now.Plus(hoursMillis(10)), // exceeds maxTicketLifetime (8h)
			},
		},
	}

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptRenewableOk, true)

	var newPart datamodel.EncTicketPart
	if err := applyTimeAlgebra(ctx, opts, &newPart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !newPart.Flags.Get(datamodel.TktFlagRenewable) {
		t.Fatal("expected RENEWABLE-OK to upgrade the new ticket to RENEWABLE")
	}
	wantEnd := now.Plus(hoursMillis(8)) // maxTicketLifetime caps endTime below request.till
	if newPart.EndTime != wantEnd {
		t.Fatalf("expected endTime capped by maxTicketLifetime at %v, got %v", wantEnd, newPart.EndTime)
	}
	if newPart.RenewTill == nil {
		t.Fatal("expected renewTill to be set once upgraded to RENEWABLE")
	}
	wantRenewTill := now.Plus(hoursMillis(10)) // min(request.till, tgt.renewTill), not tgt.renewTill alone
	if *newPart.RenewTill != wantRenewTill {
		t.Fatalf("expected renewTill capped at the provisional renewal time %v, got %v", wantRenewTill, *newPart.RenewTill)
	}
}

func TestApplyTimeAlgebraRenewableOkExplicitRTimeOverridesProvisional(t *testing.T) {
	now := datamodel.Now()
	renewTill := now.Plus(hoursMillis(24 * 7))

	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagRenewable, true)

	explicitRTime := now.Plus(hoursMillis(5))
	ctx := &context{
		config: timeAlgebraConfig(),
		now:    now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  now,
			EndTime:   now.Plus(hoursMillis(20)),
			RenewTill: &renewTill,
			Flags:     tgtFlags,
		},
		req: datamodel.KdcReq{
			ReqBody: datamodel.KdcReqBody{
				Till:  now.Plus(hoursMillis(10)),
				RTime: &explicitRTime,
			},
		},
	}

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptRenewableOk, true)

	var newPart datamodel.EncTicketPart
	if err := applyTimeAlgebra(ctx, opts, &newPart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if newPart.RenewTill == nil || *newPart.RenewTill != explicitRTime {
		t.Fatalf("expected the client's explicit RTime %v to win over the provisional renewal time, got %v", explicitRTime, newPart.RenewTill)
	}
}

func TestApplyValidateClearsInvalidFlag(t *testing.T) {
	now := datamodel.Now()
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagInvalid, true)
	start := now.Minus(hoursMillis(1))

	ctx := &context{
		now: now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  now.Minus(hoursMillis(2)),
			StartTime: &start,
			EndTime:   now.Plus(hoursMillis(6)),
			Flags:     tgtFlags,
		},
	}

	var newPart datamodel.EncTicketPart
	if err := applyValidate(ctx, &newPart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newPart.Flags.Get(datamodel.TktFlagInvalid) {
		t.Fatal("expected VALIDATE to clear the INVALID flag on the new ticket")
	}
	if newPart.EndTime != ctx.tgt.EndTime {
		t.Fatalf("expected VALIDATE to echo the TGT's endTime, got %v want %v", newPart.EndTime, ctx.tgt.EndTime)
	}
}

func TestApplyValidateRejectsNonInvalidTgt(t *testing.T) {
	now := datamodel.Now()
	ctx := &context{
		now: now,
		tgt: datamodel.EncTicketPart{
			AuthTime: now.Minus(hoursMillis(1)),
			EndTime:  now.Plus(hoursMillis(6)),
		},
	}

	var newPart datamodel.EncTicketPart
	err := applyValidate(ctx, &newPart)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KdcErrPolicy {
		t.Fatalf("expected KDC_ERR_POLICY for a non-INVALID TGT, got %v", err)
	}
}

func TestApplyValidateRejectsNotYetValidTgt(t *testing.T) {
	now := datamodel.Now()
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagInvalid, true)
	start := now.Plus(hoursMillis(1)) // still in the future

	ctx := &context{
		now: now,
		tgt: datamodel.EncTicketPart{
			AuthTime:  now,
			StartTime: &start,
			EndTime:   now.Plus(hoursMillis(6)),
			Flags:     tgtFlags,
		},
	}

	var newPart datamodel.EncTicketPart
	err := applyValidate(ctx, &newPart)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KrbApErrTktNyv {
		t.Fatalf("expected KRB_AP_ERR_TKT_NYV for a postdated TGT not yet valid, got %v", err)
	}
}
