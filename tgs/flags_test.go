package tgs

import (
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/kerberos"
)

func allowAllConfig() *KdcConfig {
	return &KdcConfig{
		ForwardableAllowed:    true,
		ProxiableAllowed:      true,
		PostdatedAllowed:      true,
		EmptyAddressesAllowed: true,
	}
}

func TestApplyFlagRulesForwardable(t *testing.T) {
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagForwardable, true)

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptForwardable, true)

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, allowAllConfig(), nil, &newFlags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !newFlags.Get(datamodel.TktFlagForwardable) {
		t.Fatal("expected FORWARDABLE to propagate to the new ticket")
	}
}

func TestApplyFlagRulesRejectsMissingPolicy(t *testing.T) {
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagForwardable, true)

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptForwardable, true)

	cfg := allowAllConfig()
	cfg.ForwardableAllowed = false

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, cfg, nil, &newFlags)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KdcErrPolicy {
		t.Fatalf("expected KDC_ERR_POLICY, got %v", err)
	}
}

func TestApplyFlagRulesRejectsMissingTgtCapability(t *testing.T) {
	var tgtFlags datamodel.TicketFlags // not FORWARDABLE

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptForwarded, true)

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, allowAllConfig(), nil, &newFlags)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KdcErrBadOption {
		t.Fatalf("expected KDC_ERR_BADOPTION, got %v", err)
	}
}

func TestApplyFlagRulesForwardedCopiesAddresses(t *testing.T) {
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagForwardable, true)

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptForwarded, true)

	addrs := []datamodel.HostAddress{{AddrType: 2, Address: []byte{127, 0, 0, 1}}}
	reqAddrs := datamodel.HostAddresses(&addrs)

	var newFlags datamodel.TicketFlags
	copied, err := applyFlagRules(opts, tgtFlags, allowAllConfig(), reqAddrs, &newFlags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copied == nil || len(*copied) != 1 {
		t.Fatal("expected FORWARDED to copy the requested addresses onto the new ticket")
	}
	if !newFlags.Get(datamodel.TktFlagForwarded) {
		t.Fatal("expected FORWARDED to be set on the new ticket")
	}
}

func TestApplyFlagRulesForwardedWithNoAddressesRequiresPolicy(t *testing.T) {
	var tgtFlags datamodel.TicketFlags
	tgtFlags.Set(datamodel.TktFlagForwardable, true)

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptForwarded, true)

	cfg := allowAllConfig()
	cfg.EmptyAddressesAllowed = false

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, cfg, nil, &newFlags)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KdcErrPolicy {
		t.Fatalf("expected KDC_ERR_POLICY when addresses are empty and not allowed, got %v", err)
	}
}

func TestApplyFlagRulesAllowPostdateRequiresNoTgtFlag(t *testing.T) {
	var tgtFlags datamodel.TicketFlags // no MAY-POSTDATE required

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptAllowPostdate, true)

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, allowAllConfig(), nil, &newFlags)
	if err != nil {
		t.Fatalf("ALLOW-POSTDATE should never require a TGT capability flag: %v", err)
	}
	if !newFlags.Get(datamodel.TktFlagMayPostdate) {
		t.Fatal("expected MAY-POSTDATE to be set")
	}
}

func TestApplyFlagRulesPostdatedRequiresMayPostdate(t *testing.T) {
	var tgtFlags datamodel.TicketFlags // lacks MAY-POSTDATE

	var opts datamodel.KdcOptions
	opts.Set(datamodel.KdcOptPostdated, true)

	var newFlags datamodel.TicketFlags
	_, err := applyFlagRules(opts, tgtFlags, allowAllConfig(), nil, &newFlags)
	kerr, ok := kerberos.As(err)
	if !ok || kerr.Code != datamodel.KdcErrBadOption {
		t.Fatalf("expected KDC_ERR_BADOPTION, got %v", err)
	}
}
