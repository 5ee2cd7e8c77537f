package match

// synonymGroups are small curated equivalence classes over developer verbs
// and nouns. Membership is symmetric: looking up any member contributes the
// whole group to the expanded keyword set.
var synonymGroups = [][]string{
	{"push", "pushed", "upload", "uploaded", "deploy", "deployed", "publish", "published", "commit", "committed"},
	{"repository", "repo", "github", "gitlab", "remote"},
	{"fix", "fixed", "repair", "repaired", "resolve", "resolved", "patch", "patched"},
	{"create", "created", "add", "added", "implement", "implemented", "build", "built", "write", "wrote", "written"},
	{"remove", "removed", "delete", "deleted", "drop", "dropped"},
	{"test", "tests", "tested", "verify", "verified", "check", "checked", "validate", "validated"},
	{"update", "updated", "modify", "modified", "change", "changed", "edit", "edited"},
	{"refactor", "refactored", "restructure", "restructured", "cleanup"},
	{"doc", "docs", "document", "documented", "documentation", "readme"},
	{"config", "configure", "configured", "configuration", "settings", "setup"},
	{"install", "installed", "dependency", "dependencies", "deps"},
	{"run", "ran", "execute", "executed", "launch", "launched"},
	{"bug", "bugs", "error", "errors", "issue", "issues", "defect"},
	{"review", "reviewed", "audit", "audited", "inspect", "inspected"},
}

// stopWords are dropped before scoring; they carry no matching signal.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "shall": true, "can": true, "to": true,
	"of": true, "in": true, "for": true, "on": true, "with": true, "at": true,
	"by": true, "from": true, "as": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true,
	"below": true, "between": true, "under": true, "again": true,
	"further": true, "then": true, "once": true, "here": true, "there": true,
	"when": true, "where": true, "why": true, "how": true, "all": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "no": true, "nor": true, "not": true,
	"only": true, "own": true, "same": true, "so": true, "than": true,
	"too": true, "very": true, "just": true, "and": true, "but": true,
	"if": true, "or": true, "because": true, "until": true, "while": true,
	"this": true, "that": true, "these": true, "those": true, "it": true,
	"its": true,
}
