package categorize

// resourceNouns is the pinned list of common REST resource nouns checked
// against operationId tokens when no tag is present. Grounded on the
// functional-category pattern tables of the api_wordlist-style categorizer
// (see DESIGN.md), narrowed to bare nouns since operationId tokens are
// already split on hyphen/underscore rather than matched as path substrings.
var resourceNouns = []string{
	"user", "order", "product", "account", "payment", "invoice", "customer",
	"item", "cart", "session", "token", "report", "file", "document",
	"image", "comment", "review", "notification", "message", "task",
	"project", "team", "organization", "role", "permission", "group",
	"tag", "category", "address", "device", "event", "log", "metric",
	"job", "webhook", "subscription", "plan", "transaction", "ticket",
}

var resourceNounSet = func() map[string]bool {
	set := make(map[string]bool, len(resourceNouns))
	for _, n := range resourceNouns {
		set[n] = true
	}
	return set
}()
