package categorize

// Rule binds a category to its keyword list. Rules are an ordered
// table: the first category with a matching keyword wins, so callers
// relying on deterministic output must not reorder them.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Uncategorized is returned for empty descriptions and for
// descriptions matching no rule.
const Uncategorized = "Uncategorized"

// DefaultRules is the built-in categorization table.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Transport", Keywords: []string{
			"uber", "lyft", "taxi", "transit", "metro", "fuel", "gas station",
			"shell", "chevron", "exxon", "bp", "parking", "toll", "railway",
			"amtrak", "greyhound", "bus", "airline", "flight",
		}},
		{Category: "Meals", Keywords: []string{
			"starbucks", "mcdonald", "restaurant", "doordash", "grubhub",
			"uber eats", "chipotle", "subway", "pizza", "coffee", "cafe",
			"dunkin", "wendy", "burger", "taco", "diner", "bakery", "food",
		}},
		{Category: "Utilities", Keywords: []string{
			"electric", "water bill", "gas bill", "internet", "comcast",
			"verizon", "at&t", "t-mobile", "spectrum", "utility", "power",
			"sewage", "waste management", "trash",
		}},
		{Category: "Subscriptions", Keywords: []string{
			"netflix", "spotify", "amazon prime", "subscription", "hulu",
			"disney+", "hbo", "apple music", "youtube premium", "membership",
			"gym", "fitness", "adobe", "microsoft 365",
		}},
		{Category: "Transfers", Keywords: []string{
			"transfer", "zelle", "venmo", "paypal", "wire transfer",
			"ach transfer", "internal transfer", "account transfer",
		}},
		{Category: "ATM/Cash", Keywords: []string{
			"atm", "cash withdrawal", "cashback", "cash back", "withdraw",
		}},
		{Category: "Income", Keywords: []string{
			"payroll", "direct deposit", "salary", "dividend", "interest earned",
			"refund", "reimbursement", "deposit", "credit", "income",
		}},
		{Category: "Shopping", Keywords: []string{
			"amazon", "walmart", "target", "costco", "best buy", "home depot",
			"lowes", "ikea", "ebay", "etsy", "clothing", "apparel", "store",
		}},
		{Category: "Healthcare", Keywords: []string{
			"pharmacy", "cvs", "walgreens", "doctor", "hospital", "medical",
			"dental", "vision", "insurance premium", "health",
		}},
		{Category: "Fees", Keywords: []string{
			"fee", "service charge", "overdraft", "interest charge", "late fee",
			"maintenance fee", "monthly fee", "annual fee",
		}},
	}
}
