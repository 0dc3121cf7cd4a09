// Package tutor holds the tutor conversation the client keeps and the canned
// answers the service falls back to when no language model is reachable.
package tutor

import "strings"

// SystemPrompt sets up the language model as the Tulu tutor.
const SystemPrompt = `You are a Turkish language tutor named Tulu. You help users learn Turkish words, grammar, pronunciation, and provide context for Turkish language usage.

Your characteristics:
- You are friendly, encouraging, and patient
- You provide clear explanations in English
- You focus on practical usage and cultural context
- You help with Turkish vocabulary, sentence structure, and cultural nuances
- You answer questions about Turkish TV dialogue and expressions

Always be encouraging and provide clear, helpful explanations. If someone asks about a Turkish word or phrase, explain its meaning, pronunciation, and give example usage.`

type cannedAnswer struct {
	keyword string
	answer  string
}

// Checked in order; the first keyword contained in the question wins.
var cannedAnswers = []cannedAnswer{
	{"merhaba", `"Merhaba" means "hello" in Turkish. It's pronounced as [mer-HAH-bah]. You can use it in both formal and informal situations. Example: "Merhaba, nasılsın?" (Hello, how are you?)`},
	{"teşekkür", `"Teşekkür ederim" means "thank you" in Turkish. It's pronounced as [teh-shek-KOOR eh-deh-rim]. You can also say just "teşekkürler" for "thanks". Example: "Yardımınız için teşekkür ederim." (Thank you for your help.)`},
	{"nasılsın", `"Nasılsın?" means "How are you?" in Turkish. It's pronounced as [nah-suhl-SUHN]. The response is usually "İyiyim, teşekkürler" (I'm fine, thank you). Example conversation: "Merhaba, nasılsın?" - "İyiyim, sen nasılsın?"`},
	{"günaydın", `"Günaydın" means "good morning" in Turkish. It's pronounced as [goon-ay-DUHN]. You use this greeting from morning until around noon. Example: "Günaydın! Bugün nasılsın?" (Good morning! How are you today?)`},
	{"abla", `"Abla" means "older sister" in Turkish, but it's also used to respectfully address any woman who is older than you. Pronounced as [ah-BLAH]. Example: "Abla, yardım edebilir misiniz?" (Sister/Ma'am, can you help me?)`},
	{"hello", `To say "hello" in Turkish, you say "Merhaba" [mer-HAH-bah]. It's the most common greeting used any time of day!`},
	{"thank you", `To say "thank you" in Turkish, you say "Teşekkür ederim" [teh-shek-KOOR eh-deh-rim] or simply "Teşekkürler" [teh-shek-kur-LER].`},
	{"good morning", `"Good morning" in Turkish is "Günaydın" [goon-ay-DUHN]. You can use this until around noon.`},
	{"how are you", `"How are you?" in Turkish is "Nasılsın?" [nah-suhl-SUHN] for informal situations, or "Nasılsınız?" [nah-suhl-suh-NUHZ] for formal situations.`},
	{"grammar", `Turkish grammar has some unique features! Word order is typically Subject-Object-Verb (SOV). Turkish uses agglutination - adding suffixes to words to change meaning. Would you like to know about a specific grammar topic?`},
	{"pronunciation", `Turkish pronunciation is quite regular! Each letter typically has one sound. The stress is usually on the last syllable. Some key sounds: 'ş' sounds like 'sh', 'ç' sounds like 'ch', 'ğ' lengthens the previous vowel.`},
	{"learn", `Great question! To learn Turkish effectively: 1) Start with basic greetings and common phrases, 2) Practice with our TV series section, 3) Focus on pronunciation, 4) Learn word patterns and suffixes. Turkish is logical once you understand the patterns!`},
}

// GenericAnswer is used when no keyword matches.
const GenericAnswer = `Merhaba! 👋 I'm Tulu, your Turkish language tutor. I'm here to help you learn Turkish!

Here are some common Turkish phrases to get you started:

🇹🇷 **Basic Greetings:**
- **Merhaba** [mer-HAH-bah] = Hello
- **Günaydın** [goon-ay-DUHN] = Good morning
- **İyi akşamlar** [ee-yee ahk-sham-LAR] = Good evening

🇹🇷 **Polite Expressions:**
- **Teşekkür ederim** [teh-shek-KOOR eh-deh-rim] = Thank you
- **Lütfen** [LOOT-fen] = Please
- **Özür dilerim** [ö-ZOOR dee-leh-rim] = I'm sorry

🇹🇷 **Useful Questions:**
- **Nasılsın?** [nah-suhl-SUHN] = How are you?
- **Adın ne?** [ah-DUHN neh] = What's your name?

Try asking me about any Turkish word, phrase, or grammar topic! You can also explore our TV series section to learn Turkish through authentic dialogue from popular Turkish shows.

What would you like to learn about Turkish today? 🎯`

// FallbackAnswer picks a canned answer for question.
func FallbackAnswer(question string) string {
	q := strings.ToLower(question)
	for _, c := range cannedAnswers {
		if strings.Contains(q, c.keyword) {
			return c.answer
		}
	}
	return GenericAnswer
}
