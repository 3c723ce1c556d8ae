package bot

import "factlens/pkg/locale"

// Callback payloads routed back by the chat platform when a button is pressed.
const (
	CallbackSetLangPrefix = "setlang:"
	CallbackChangeLang    = "change_lang"
	CallbackHelp          = "help"
)

// LanguageMenu returns one button per supported language, in table order.
func LanguageMenu() []Button {
	codes := locale.Codes()
	menu := make([]Button, 0, len(codes))
	for _, code := range codes {
		entry, ok := locale.Get(code)
		if !ok {
			continue
		}
		menu = append(menu, Button{
			Label: entry.Label,
			Data:  CallbackSetLangPrefix + code,
		})
	}

	return menu
}

// MainMenu returns the post-onboarding menu. Labels are trilingual because
// the menu is shown right after selection, before the preference is read back.
func MainMenu() []Button {
	return []Button{
		{Label: "Tilni o'zgartirish / Изменить язык / Change language", Data: CallbackChangeLang},
		{Label: "Yordam / Помощь / Help", Data: CallbackHelp},
	}
}
