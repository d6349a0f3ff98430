package tgs

import (
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/kerberos"
)

// noTgtFlagRequired marks a flagRule whose option requires no TGT
// capability flag (ALLOW-POSTDATE: any TGT may request it).
const noTgtFlagRequired = -1

// flagRule is one row of the option → (policy-flag, required-TGT-flag,
// resulting-flag, copy-addresses?) table spec.md §9 recommends in place
// of the teacher's long if-cascade in authsrv.TgsExchange.
type flagRule struct {
	option          int
	policyAllowed   func(*KdcConfig) bool
	requiredTgtFlag int
	resultFlag      int
	copyAddresses   bool
}

var flagRules = []flagRule{
	{
		option:          datamodel.KdcOptForwardable,
		policyAllowed:   func(c *KdcConfig) bool { return c.ForwardableAllowed },
		requiredTgtFlag: datamodel.TktFlagForwardable,
		resultFlag:      datamodel.TktFlagForwardable,
	},
	{
		option:          datamodel.KdcOptForwarded,
		policyAllowed:   func(c *KdcConfig) bool { return c.ForwardableAllowed },
		requiredTgtFlag: datamodel.TktFlagForwardable,
		resultFlag:      datamodel.TktFlagForwarded,
		copyAddresses:   true,
	},
	{
		option:          datamodel.KdcOptProxiable,
		policyAllowed:   func(c *KdcConfig) bool { return c.ProxiableAllowed },
		requiredTgtFlag: datamodel.TktFlagProxiable,
		resultFlag:      datamodel.TktFlagProxiable,
	},
	{
		option:          datamodel.KdcOptProxy,
		policyAllowed:   func(c *KdcConfig) bool { return c.ProxiableAllowed },
		requiredTgtFlag: datamodel.TktFlagProxiable,
		resultFlag:      datamodel.TktFlagProxy,
		copyAddresses:   true,
	},
	{
		option:          datamodel.KdcOptAllowPostdate,
		policyAllowed:   func(c *KdcConfig) bool { return c.PostdatedAllowed },
		requiredTgtFlag: noTgtFlagRequired,
		resultFlag:      datamodel.TktFlagMayPostdate,
	},
	{
		option:          datamodel.KdcOptPostdated,
		policyAllowed:   func(c *KdcConfig) bool { return c.PostdatedAllowed },
		requiredTgtFlag: datamodel.TktFlagMayPostdate,
		resultFlag:      datamodel.TktFlagPostdated,
	},
}

// applyFlagRules runs the table against the options the client requested,
// setting the corresponding flags on newFlags. It returns the addresses
// to copy onto the new ticket (non-nil only if a copy-addresses rule
// fired) and the first policy/capability failure encountered, if any.
func applyFlagRules(opts datamodel.KdcOptions, tgtFlags datamodel.TicketFlags, cfg *KdcConfig, reqAddresses datamodel.HostAddresses, newFlags *datamodel.TicketFlags) (datamodel.HostAddresses, error) {
	var copied datamodel.HostAddresses
	for _, rule := range flagRules {
		if !opts.Get(rule.option) {
			continue
		}
		if !rule.policyAllowed(cfg) {
			return nil, kerberos.NewErrorC(datamodel.KdcErrPolicy)
		}
		if rule.requiredTgtFlag != noTgtFlagRequired && !tgtFlags.Get(rule.requiredTgtFlag) {
			return nil, kerberos.NewErrorC(datamodel.KdcErrBadOption)
		}
		newFlags.Set(rule.resultFlag, true)
		if rule.copyAddresses {
			if reqAddresses != nil && len(*reqAddresses) > 0 {
				copied = reqAddresses
			} else if !cfg.EmptyAddressesAllowed {
				return nil, kerberos.NewErrorC(datamodel.KdcErrPolicy)
			}
		}
	}
	return copied, nil
}
