package llm

import "golang.org/x/text/language"

var supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(supported)

// Match maps any requested tag onto a supported prompt language. Unknown
// or undetermined tags fall back to French.
func Match(tag language.Tag) language.Tag {
	if tag == language.Und {
		return language.French
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.French
	}
	return supported[idx]
}

// ParseLanguage parses a BCP-47 string and matches it. Invalid input
// yields French.
func ParseLanguage(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.French
	}
	return Match(tag)
}

type phrases struct {
	history     string
	context     string
	instruction string
	question    string
	answer      string
	fallback    string
	truncated   string
}

var catalog = map[language.Tag]phrases{
	language.French: {
		history:     "Historique de la conversation :",
		context:     "Contexte :",
		instruction: "Réponds de façon concise et honnête, en français. Si la réponse ne se trouve pas dans le contexte ou si tu ne la connais pas, dis-le clairement.",
		question:    "Question :",
		answer:      "Réponse :",
		fallback:    "Je suis désolé, mais je ne peux pas traiter votre demande pour le moment. Veuillez réessayer plus tard.",
		truncated:   "[truncated]",
	},
	language.English: {
		history:     "Conversation history:",
		context:     "Context:",
		instruction: "Answer concisely and honestly, in English. If the answer is not in the context or you do not know it, say so plainly.",
		question:    "Question:",
		answer:      "Answer:",
		fallback:    "I'm sorry, but I can't process your request right now. Please try again later.",
		truncated:   "[truncated]",
	},
}

func phrasesFor(tag language.Tag) phrases {
	return catalog[Match(tag)]
}

// Fallback returns the apology served when the runtime is unavailable.
func Fallback(tag language.Tag) string {
	return phrasesFor(tag).fallback
}
