package lexicon

var defaultOrder = []Category{
	CategoryProblem,
	CategorySolution,
	CategoryMarket,
	CategoryBusinessModel,
	CategoryTraction,
	CategoryDifferentiation,
}

var defaultCategories = map[Category][]string{
	CategoryProblem: {
		"problem", "problems", "pain", "struggle", "struggling", "challenge", "challenges",
		"frustrated", "frustration", "inefficient", "costly", "broken", "gap",
	},
	CategorySolution: {
		"solution", "solve", "solves", "solving", "platform", "product", "app", "technology",
		"tool", "automate", "automates", "automation", "build", "built",
	},
	CategoryMarket: {
		"market", "markets", "customer", "customers", "users", "audience", "industry",
		"segment", "demand", "billion", "million", "tam",
	},
	CategoryBusinessModel: {
		"revenue", "subscription", "pricing", "monetize", "monetization", "margin", "margins",
		"profit", "profitable", "sales", "fees", "recurring", "saas", "license",
	},
	CategoryTraction: {
		"growth", "growing", "traction", "signed", "pilot", "pilots", "partnerships",
		"partners", "retention", "launched", "mrr", "arr", "waitlist", "downloads",
	},
	CategoryDifferentiation: {
		"unique", "unlike", "competitors", "competition", "competitive", "patent", "patented",
		"proprietary", "advantage", "moat", "only", "better", "faster",
	},
}

// General business vocabulary that counts as positive without covering a category.
var defaultPositive = []string{
	"investment", "investors", "invest", "opportunity", "scalable", "scale", "team", "vision",
	"roi", "funding", "valuation", "strategy", "innovation", "innovative", "data", "startup",
}

var defaultNegative = []string{
	"um", "uh", "er", "ah", "hmm", "like", "basically", "actually", "literally", "totally",
	"kinda", "sorta", "whatever", "stuff", "things", "maybe", "honestly",
}
