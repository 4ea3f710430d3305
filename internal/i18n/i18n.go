// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides internationalization support for Devkeep. It uses
// the go-i18n library to load the embedded translation files so the UI can
// be displayed in multiple languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var bundle *i18n.Bundle
var localizer *i18n.Localizer

// Init loads the embedded locales and activates the given language.
func Init(lang string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, _ := localeFS.ReadFile("locales/" + f.Name())
		bundle.ParseMessageFileBytes(data, f.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang)
}

// T translates a message by its ID. Extra args are applied with Sprintf
// when the translated message carries format verbs. Unknown IDs fall back
// to the ID itself so missing translations never break rendering.
func T(messageID string, args ...any) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		msg = messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// SetLang switches the active language.
func SetLang(lang string) {
	Init(lang)
}

// GetAvailableLocales returns the embedded locale codes mapped to their
// display names (the "language.name" message of each file).
func GetAvailableLocales() map[string]string {
	out := map[string]string{}
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		code := strings.TrimSuffix(f.Name(), ".yaml")
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			continue
		}
		name := msgs["language.name"]
		if name == "" {
			name = code
		}
		out[code] = name
	}
	return out
}

// SortedLocaleCodes returns the available locale codes in stable order.
func SortedLocaleCodes() []string {
	locales := GetAvailableLocales()
	codes := make([]string, 0, len(locales))
	for c := range locales {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
