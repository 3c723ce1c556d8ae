// Package locale holds the static language table the bot is localized in.
// Entries are immutable and safe for concurrent reads.
package locale

// DefaultCode is used whenever a user has no stored preference.
const DefaultCode = "en"

// Entry describes one supported interface language.
type Entry struct {
	Code       string
	Label      string
	Greeting   string
	Help       string
	Processing string
}

// Insertion order drives menu rendering order and must stay stable.
var entries = []Entry{
	{
		Code:       "uz",
		Label:      "🇺🇿 Oʻzbekcha",
		Greeting:   "Salom! Men fake-xabarlarni aniqlashda yordam beraman. Xabar yuboring (matn, link yoki rasm).",
		Help:       "Matn, link yoki rasm yuboring.",
		Processing: "Analiz qilinmoqda...",
	},
	{
		Code:       "ru",
		Label:      "🇷🇺 Русский",
		Greeting:   "Привет! Я помогу определить фейковые новости. Отправь мне текст, ссылку или изображение.",
		Help:       "Отправьте текст, ссылку или изображение.",
		Processing: "Анализирую...",
	},
	{
		Code:       "en",
		Label:      "🇬🇧 English",
		Greeting:   "Hello! I can help detect fake news. Send text, a link or an image.",
		Help:       "Send text, link or image.",
		Processing: "Analyzing...",
	},
}

var byCode = func() map[string]Entry {
	index := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		index[entry.Code] = entry
	}
	return index
}()

// Get returns the entry for code, reporting whether code is supported.
func Get(code string) (Entry, bool) {
	entry, ok := byCode[code]
	return entry, ok
}

// Supported reports whether code is a member of the supported set.
func Supported(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Codes returns the supported language codes in menu order.
func Codes() []string {
	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		codes = append(codes, entry.Code)
	}

	return codes
}

// Default returns the fallback entry for users without a stored preference.
func Default() Entry {
	return byCode[DefaultCode]
}
