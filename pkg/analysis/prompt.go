package analysis

// Per-language fact-checker preambles. The default-language preamble is
// used for any code outside the supported set.
const (
	preambleUZ = "Siz jurnalist / fakt tekshiruvchi sifatida harakat qilasiz. " +
		"Quyidagi xabarni tahlil qiling.\n\n"
	preambleRU = "Вы выступаете как фактчекер. " +
		"Проанализируйте следующий текст.\n\n"
	preambleEN = "You act as a fact-checker. " +
		"Analyze the following material.\n\n"
)

// BuildPrompt prepends the language-specific fact-checking persona to the
// user content. Pure and deterministic; content is always a suffix of the
// returned prompt.
func BuildPrompt(content string, lang string) string {
	switch lang {
	case "uz":
		return preambleUZ + content
	case "ru":
		return preambleRU + content
	default:
		return preambleEN + content
	}
}
