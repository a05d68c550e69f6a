package extractor

// Default rule sets. Deployments can replace these through configuration
// to extend coverage per locale without code changes.

// DefaultCategories returns the built-in generic issue category rules.
func DefaultCategories() map[string]CategoryRule {
	return map[string]CategoryRule{
		"payment": {
			Keywords: []string{"payment", "pay", "charge", "billing", "invoice", "refund", "money", "cost", "price", "fee", "transaction", "card", "credit"},
			Patterns: []string{`\$\d+`, `payment\s+issue`, `billing\s+problem`},
		},
		"technical": {
			Keywords: []string{"bug", "error", "crash", "broken", "not working", "issue", "problem", "glitch", "freeze", "slow", "loading", "connection", "login", "password"},
			Patterns: []string{`error\s+\d+`, `bug\s+in`, `not\s+working`, `can't\s+login`},
		},
		"account": {
			Keywords: []string{"account", "profile", "settings", "access", "permission", "locked", "suspended", "verification", "email", "username"},
			Patterns: []string{`account\s+locked`, `can't\s+access`, `profile\s+issue`},
		},
		"service": {
			Keywords: []string{"service", "support", "help", "assistance", "response", "waiting", "delay", "time"},
			Patterns: []string{`waiting\s+for`, `no\s+response`, `slow\s+response`},
		},
		"feature_request": {
			Keywords: []string{"feature", "request", "add", "suggest", "improvement", "enhancement", "wish", "would like"},
			Patterns: []string{`add\s+feature`, `can\s+you\s+add`, `would\s+be\s+great`},
		},
		"complaint": {
			Keywords: []string{"complaint", "unhappy", "dissatisfied", "disappointed", "frustrated", "angry", "upset", "terrible", "awful", "horrible"},
			Patterns: []string{`very\s+disappointed`, `not\s+happy`, `very\s+frustrated`},
		},
		"question": {
			Keywords: []string{"question", "how", "what", "why", "when", "where", "explain", "clarify", "understand"},
			Patterns: []string{`how\s+do\s+i`, `what\s+is`, `can\s+you\s+explain`},
		},
		"refund": {
			Keywords: []string{"refund", "return", "money back", "cancel", "reimbursement"},
			Patterns: []string{`refund\s+request`, `want\s+my\s+money\s+back`, `cancel\s+and\s+refund`},
		},
		"delivery": {
			Keywords: []string{"delivery", "shipping", "shipment", "order", "package", "arrive", "tracking"},
			Patterns: []string{`where\s+is\s+my\s+order`, `delivery\s+issue`, `shipping\s+problem`},
		},
		"quality": {
			Keywords: []string{"quality", "defect", "damaged", "broken", "wrong", "incorrect", "faulty"},
			Patterns: []string{`poor\s+quality`, `defective`, `damaged\s+product`},
		},
	}
}

// DefaultAspects returns the built-in business aspect rules.
func DefaultAspects() map[string]CategoryRule {
	return map[string]CategoryRule{
		"payments": {
			Keywords: []string{"payment", "pay", "payroll", "salary", "wage", "charge", "billing", "invoice", "refund", "money", "cost", "price", "fee", "transaction", "wire", "transfer", "currency", "exchange", "rate", "deduction", "withholding", "tax", "reimbursement"},
			Patterns: []string{`\$\d+`, `payment\s+issue`, `billing\s+problem`, `payroll\s+issue`, `salary\s+problem`, `wire\s+transfer`, `currency\s+exchange`},
		},
		"card_wallet": {
			Keywords: []string{"card", "wallet", "visa", "debit", "credit", "digital wallet", "spending", "balance", "fund", "deposit", "withdrawal", "atm", "transaction declined", "card blocked", "card issue"},
			Patterns: []string{`visa\s+card`, `card\s+blocked`, `transaction\s+declined`, `wallet\s+issue`},
		},
		"contracts": {
			Keywords: []string{"contract", "agreement", "sign", "signing", "compliance", "draft", "template", "terms", "clause", "renewal", "termination", "expiration"},
			Patterns: []string{`contract\s+issue`, `signing\s+problem`, `you\s+sign`},
		},
		"compliance": {
			Keywords: []string{"compliance", "legal", "regulation", "law", "requirement", "document", "verification", "identity", "kyc", "tax form", "w-9", "w-8", "certificate", "license", "permit", "authorization"},
			Patterns: []string{`compliance\s+issue`, `legal\s+requirement`, `tax\s+form`, `verification\s+problem`},
		},
		"support": {
			Keywords: []string{"support", "help", "assistance", "service", "response", "waiting", "delay", "time", "escalate", "escalation", "urgent", "priority", "sla", "resolution"},
			Patterns: []string{`support\s+issue`, `waiting\s+for`, `no\s+response`, `slow\s+response`, `escalation\s+request`},
		},
	}
}
