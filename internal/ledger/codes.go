package ledger

// Grant is what a redemption code unlocks: a tier, a replacing credit
// balance, and the credential pool keys are selected from.
type Grant struct {
	Tier    int
	Credits int
	Pool    string
}

// Lookup is case-sensitive exact match.
var redemptionCodes = map[string]Grant{
	"DESK-PLUS-20":   {Tier: 20, Credits: 20, Pool: "plus"},
	"DESK-PRO-100":   {Tier: 100, Credits: 100, Pool: "pro"},
	"DESK-UNLIMITED": {Tier: TierUnlimited, Credits: 9999, Pool: "unlimited"},
}
