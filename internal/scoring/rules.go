package scoring

// Rules holds the business-override keyword lists consumed by the
// scorer. The lists are configuration data so locales can be extended
// without touching aggregation logic.
type Rules struct {
	// BillingNegative are multilingual billing/refund/overcharge markers
	// that force a conversation negative regardless of tone.
	BillingNegative []string `mapstructure:"billing_negative"`
	// TechnicalKeywords mark problem reports.
	TechnicalKeywords []string `mapstructure:"technical_keywords"`
	// PoliteMarkers mark courteous phrasing; combined with
	// TechnicalKeywords they identify polite bug reports.
	PoliteMarkers []string `mapstructure:"polite_markers"`
	// PaymentAspectNegative caps the payments aspect score when present.
	PaymentAspectNegative []string `mapstructure:"payment_aspect_negative"`
	// CardWalletNegative caps the card_wallet aspect score when present.
	CardWalletNegative []string `mapstructure:"card_wallet_negative"`
	// ContractNegative caps the contracts aspect score when present.
	ContractNegative []string `mapstructure:"contract_negative"`
	// TechnicalCategories are issue categories treated as support
	// requests for the polite-report softening rule.
	TechnicalCategories []string `mapstructure:"technical_categories"`
}

// DefaultRules returns the built-in rule lists, covering English and
// Spanish billing vocabulary.
func DefaultRules() Rules {
	return Rules{
		BillingNegative: []string{
			"refund", "reembolso", "reembolsen", "reembolsar", "reimbursement",
			"billing error", "overcharge", "wrong charge", "incorrect charge",
			"billing problem", "payment issue", "charged incorrectly",
			"cobro incorrecto", "cargo incorrecto", "se cargo", "se cobro",
			"reembolsen estos fondos", "reembolso de", "reembolsar fondos",
			"cargo a nuestra tarjeta", "cobro a nuestra tarjeta",
		},
		TechnicalKeywords: []string{
			"error", "bug", "not working", "can't", "cannot", "issue", "problem",
		},
		PoliteMarkers: []string{
			"consulta", "pregunta", "question", "help", "ayuda", "support",
			"hola", "buenas", "please", "por favor", "gracias", "thank you",
		},
		PaymentAspectNegative: []string{
			"refund", "reembolso", "overcharge", "wrong charge", "billing error",
		},
		CardWalletNegative: []string{
			"declined", "blocked", "not working", "error", "issue",
		},
		ContractNegative: []string{
			"problem", "issue", "error", "wrong",
		},
		TechnicalCategories: []string{"technical", "account"},
	}
}
