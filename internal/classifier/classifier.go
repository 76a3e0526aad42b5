package classifier

import (
	"regexp"
	"strings"
)

// Classification is the verdict on a single user message: whether it asks for
// code to be generated or is a conversational question, plus confidence and
// any detected technology hints. It is derived and never persisted.
type Classification struct {
	IsCodeRequest      bool     `json:"isCodeRequest"`
	IsConversational   bool     `json:"isConversational"`
	Confidence         float64  `json:"confidence"`
	DetectedKeywords   []string `json:"detectedKeywords"`
	SuggestedFramework string   `json:"suggestedFramework,omitempty"`
	SuggestedLanguage  string   `json:"suggestedLanguage,omitempty"`
}

var codeKeywords = []string{
	// Action verbs for creation
	"create", "build", "generate", "make", "develop", "implement", "program", "write", "design",

	// Code-related terms
	"code", "component", "app", "website", "application", "function", "class", "module",

	// Technologies
	"html", "css", "javascript", "react", "vue", "angular", "node", "typescript", "python",
	"php", "java", "c++", "c#", "go", "rust", "swift", "kotlin",

	// UI/UX terms
	"button", "form", "modal", "navbar", "sidebar", "dashboard", "landing page", "carousel",
	"dropdown", "menu", "header", "footer", "layout", "responsive",

	// Specific requests
	"api", "endpoint", "database", "authentication", "login", "signup", "crud", "rest",
	"graphql", "webhook", "socket", "real-time", "chat", "messaging",

	// File types
	".js", ".ts", ".jsx", ".tsx", ".html", ".css", ".scss", ".json", ".xml", ".sql",
}

var conversationalKeywords = []string{
	// Question words
	"what", "why", "how", "when", "where", "who", "which",

	// Explanation requests
	"explain", "tell me", "describe", "define", "meaning", "purpose", "difference",
	"compare", "contrast", "pros", "cons", "advantages", "disadvantages",

	// Help requests
	"help", "assist", "guide", "tutorial", "learn", "understand", "confused",
	"stuck", "problem", "issue", "error", "bug", "debugging",

	// General conversation
	"hello", "hi", "hey", "thanks", "thank you", "please", "sorry",
}

// techTable associates a technology name with the terms that suggest it.
// Entries are checked in declaration order, so when a message matches several
// technologies the one listed first wins.
type techTable struct {
	name     string
	keywords []string
}

var frameworkKeywords = []techTable{
	{"react", []string{"react", "jsx", "tsx", "hooks", "component", "usestate", "useeffect"}},
	{"vue", []string{"vue", "vuejs", "composition api", "options api", "nuxt"}},
	{"angular", []string{"angular", "typescript", "component", "service", "directive"}},
	{"svelte", []string{"svelte", "sveltekit"}},
	{"nextjs", []string{"next.js", "nextjs", "next", "ssr", "static generation"}},
	{"nodejs", []string{"node.js", "nodejs", "express", "fastify", "koa"}},
}

var languageKeywords = []techTable{
	{"javascript", []string{"javascript", "js", "node", "npm", "yarn"}},
	{"typescript", []string{"typescript", "ts", "types", "interface", "type"}},
	{"python", []string{"python", "py", "django", "flask", "fastapi"}},
	{"html", []string{"html", "markup", "semantic"}},
	{"css", []string{"css", "styles", "styling", "tailwind", "bootstrap", "sass", "scss"}},
}

var (
	imperativeStart = regexp.MustCompile(`(?i)^(create|build|make|generate|develop|implement|write|design)`)
	questionStart   = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|explain|tell me|describe)`)
)

// Classify decides whether a message asks for code generation or conversation.
// Pure and deterministic; never fails. Keywords are matched as substrings of
// the lower-cased message, not as whole words ("howl" matches "how").
func Classify(message string) Classification {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)

	codeMatches := matchKeywords(lower, codeKeywords)
	conversationalMatches := matchKeywords(lower, conversationalKeywords)

	codeScore := len(codeMatches)
	conversationalScore := len(conversationalMatches)

	trimmed := strings.TrimSpace(message)
	if imperativeStart.MatchString(trimmed) {
		codeScore += 2
	}
	if questionStart.MatchString(trimmed) {
		conversationalScore += 2
	}

	isCodeRequest := codeScore > conversationalScore && codeScore > 0

	best := float64(codeScore)
	if float64(conversationalScore) > best {
		best = float64(conversationalScore)
	}
	denom := float64(len(words)) * 0.1
	if denom < 1 {
		denom = 1
	}
	confidence := best / denom
	if confidence > 1 {
		confidence = 1
	}

	detected := conversationalMatches
	if isCodeRequest {
		detected = codeMatches
	}

	return Classification{
		IsCodeRequest:      isCodeRequest,
		IsConversational:   !isCodeRequest,
		Confidence:         confidence,
		DetectedKeywords:   detected,
		SuggestedFramework: detectTech(lower, frameworkKeywords),
		SuggestedLanguage:  detectTech(lower, languageKeywords),
	}
}

func matchKeywords(lower string, keywords []string) []string {
	matched := make([]string, 0, 4)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func detectTech(lower string, table []techTable) string {
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.name
			}
		}
	}
	return ""
}

// Suggestions returns hints for sharpening an ambiguous request.
func Suggestions(message string) []string {
	c := Classify(message)
	var out []string
	if c.Confidence < 0.3 {
		out = append(out, "Your request is a bit ambiguous. Try being more specific.")
		if !c.IsCodeRequest {
			out = append(out, "If you want code generated, use words like 'create', 'build', or 'generate'.")
		}
		if c.IsCodeRequest && c.SuggestedFramework == "" {
			out = append(out, "Specify which framework you'd like (React, Vue, Angular, etc.).")
		}
	}
	return out
}
